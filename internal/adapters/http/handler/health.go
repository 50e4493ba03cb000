package handler

import (
	"net/http"
	"time"
)

// isoMillis は JavaScript の toISOString と同じ形式です。
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func healthHandler(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: now().UTC().Format(isoMillis),
		})
	}
}
