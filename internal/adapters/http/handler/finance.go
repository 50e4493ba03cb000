package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogurasousui/orgchart/internal/core/finance"
	"github.com/shopspring/decimal"
)

type transactionRequest struct {
	ID       any             `json:"id"`
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Payee    string          `json:"payee"`
	Amount   decimal.Decimal `json:"amount"`
	Account  string          `json:"account"`
	Notes    string          `json:"notes"`
}

type summaryRequest struct {
	Account      string               `json:"account"`
	From         string               `json:"from"`
	To           string               `json:"to"`
	Transactions []transactionRequest `json:"transactions"`
}

type periodResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type totalsResponse struct {
	Income    json.Number `json:"income"`
	Expenses  json.Number `json:"expenses"`
	Remaining json.Number `json:"remaining"`
}

type changesResponse struct {
	Income    int64 `json:"income"`
	Expenses  int64 `json:"expenses"`
	Remaining int64 `json:"remaining"`
}

type monthResponse struct {
	Name     string      `json:"name"`
	Income   json.Number `json:"income"`
	Expenses json.Number `json:"expenses"`
}

type categoryResponse struct {
	Name  string      `json:"name"`
	Value json.Number `json:"value"`
}

type summaryResponse struct {
	Account        string             `json:"account"`
	Period         periodResponse     `json:"period"`
	PreviousPeriod periodResponse     `json:"previous_period"`
	Totals         totalsResponse     `json:"totals"`
	Previous       totalsResponse     `json:"previous"`
	Changes        changesResponse    `json:"changes"`
	Months         []monthResponse    `json:"months"`
	Categories     []categoryResponse `json:"categories"`
}

// FinanceSummary は送られた取引一覧を集計して返します。状態は持ちません。
func FinanceSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	from, err := finance.ParseDate(req.From)
	if err != nil {
		writeError(w, fmt.Errorf("from: %w", finance.ErrInvalidPeriod))
		return
	}
	to, err := finance.ParseDate(req.To)
	if err != nil {
		writeError(w, fmt.Errorf("to: %w", finance.ErrInvalidPeriod))
		return
	}

	txns := make([]finance.Transaction, 0, len(req.Transactions))
	for i, t := range req.Transactions {
		d, err := finance.ParseDate(t.Date)
		if err != nil {
			writeError(w, fmt.Errorf("transactions[%d]: %w", i, err))
			return
		}
		id := ""
		if t.ID != nil {
			id = fmt.Sprint(t.ID)
		}
		txns = append(txns, finance.Transaction{
			ID:       id,
			Date:     d,
			Category: t.Category,
			Payee:    t.Payee,
			Amount:   t.Amount,
			Account:  t.Account,
			Notes:    t.Notes,
		})
	}

	account := req.Account
	if account == "" {
		account = finance.AllAccounts
	}
	s, err := finance.Summarize(txns, account, finance.Period{From: from, To: to})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(s))
}

func toSummaryResponse(s finance.Summary) summaryResponse {
	resp := summaryResponse{
		Account:        s.Account,
		Period:         toPeriodResponse(s.Current),
		PreviousPeriod: toPeriodResponse(s.Previous),
		Totals:         toTotalsResponse(s.Totals),
		Previous:       toTotalsResponse(s.Prior),
		Changes:        changesResponse(s.Changes),
		Months:         make([]monthResponse, 0, len(s.Months)),
		Categories:     make([]categoryResponse, 0, len(s.Categories)),
	}
	for _, m := range s.Months {
		resp.Months = append(resp.Months, monthResponse{Name: m.Label, Income: number(m.Income), Expenses: number(m.Expenses)})
	}
	for _, c := range s.Categories {
		resp.Categories = append(resp.Categories, categoryResponse{Name: c.Name, Value: number(c.Value)})
	}
	return resp
}

func toPeriodResponse(p finance.Period) periodResponse {
	return periodResponse{From: p.From.Format(time.DateOnly), To: p.To.Format(time.DateOnly)}
}

func toTotalsResponse(t finance.Totals) totalsResponse {
	return totalsResponse{Income: number(t.Income), Expenses: number(t.Expenses), Remaining: number(t.Remaining)}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
