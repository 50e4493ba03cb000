package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ogurasousui/orgchart/internal/core/finance"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/core/todo"
)

// maxRequestBody はリクエストボディの上限です。
const maxRequestBody = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	writeRawJSON(w, status, b)
}

func writeRawJSON(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := toHTTPError(err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func toHTTPError(err error) (int, string) {
	switch {
	case errors.Is(err, todo.ErrInvalidTitle):
		return http.StatusBadRequest, "Title is required"
	case errors.Is(err, todo.ErrTodoNotFound), errors.Is(err, todo.ErrInvalidID):
		return http.StatusNotFound, "Todo not found"
	case errors.Is(err, orgchart.ErrInvalidID),
		errors.Is(err, orgchart.ErrMalformedDocument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, finance.ErrInvalidPeriod),
		errors.Is(err, finance.ErrInvalidTransaction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, orgchart.ErrDuplicateID):
		return http.StatusConflict, err.Error()
	case orgchart.IsLoadError(err):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}
