package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
)

// EmployeeHandler は組織図の HTTP API です。
type EmployeeHandler struct {
	svc orgchart.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc orgchart.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

type addEmployeeRequest struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Image    string `json:"image"`
}

type updateEmployeeRequest struct {
	Name  *string `json:"name"`
	Role  *string `json:"role"`
	Image *string `json:"image"`
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type mutationResponse struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Status     string          `json:"status"`
	Removed    int             `json:"removed"`
	Error      string          `json:"error,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Employee   json.RawMessage `json:"employee,omitempty"`
	Employees  json.RawMessage `json:"employees"`
}

type rowResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Image        string `json:"image"`
	Depth        int    `json:"depth"`
	Subordinates int    `json:"subordinate_count"`
}

// List は現在のフォレストを { "employees": [...] } で返します。
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	forest, err := h.svc.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := orgchart.EncodeDocument(forest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, b)
}

// Rows は深さ付きの平坦化した行を返します。
func (h *EmployeeHandler) Rows(w http.ResponseWriter, r *http.Request) {
	forest, err := h.svc.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	rows := make([]rowResponse, 0, orgchart.Count(forest))
	for row := range orgchart.Flatten(forest) {
		rows = append(rows, rowResponse{
			ID:           row.Employee.ID,
			Name:         row.Employee.Name,
			Role:         row.Employee.Role,
			Image:        row.Employee.Image,
			Depth:        row.Depth,
			Subordinates: len(row.Employee.Subordinates),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// Replace はフォレスト全体を置き換えます。
func (h *EmployeeHandler) Replace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", orgchart.ErrMalformedDocument, err))
		return
	}
	forest, err := orgchart.DecodeDocument(body)
	if err != nil {
		writeError(w, err)
		return
	}

	m, err := h.svc.ReplaceForest(r.Context(), forest)
	h.writeMutation(w, http.StatusOK, m, err)
}

// Create は社員を追加します。parent_id が空ならトップレベルに追加します。
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req addEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", orgchart.ErrMalformedDocument, err))
		return
	}

	m, err := h.svc.AddEmployee(r.Context(), orgchart.AddEmployeeInput{
		ID:       req.ID,
		ParentID: req.ParentID,
		Name:     req.Name,
		Role:     req.Role,
		Image:    req.Image,
	})
	h.writeMutation(w, http.StatusCreated, m, err)
}

// Update は社員を部分更新します。
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateEmployeeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", orgchart.ErrMalformedDocument, err))
		return
	}

	m, err := h.svc.UpdateEmployee(r.Context(), orgchart.EmployeePatch{
		ID:    chi.URLParam(r, "employeeID"),
		Name:  req.Name,
		Role:  req.Role,
		Image: req.Image,
	})
	h.writeMutation(w, http.StatusOK, m, err)
}

// Delete は社員を部分木ごと削除します。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.DeleteEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	h.writeMutation(w, http.StatusOK, m, err)
}

// BulkDelete は複数の社員を削除します。
func (h *EmployeeHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", orgchart.ErrMalformedDocument, err))
		return
	}

	m, err := h.svc.DeleteEmployees(r.Context(), req.IDs)
	h.writeMutation(w, http.StatusOK, m, err)
}

func (h *EmployeeHandler) writeMutation(w http.ResponseWriter, status int, m *orgchart.Mutation, err error) {
	if m == nil {
		if err == nil {
			err = errors.New("orgchart: empty mutation result")
		}
		writeError(w, err)
		return
	}

	resp, encErr := toMutationResponse(m)
	if encErr != nil {
		writeError(w, encErr)
		return
	}
	if err != nil {
		status, _ = toHTTPError(err)
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func toMutationResponse(m *orgchart.Mutation) (mutationResponse, error) {
	employees, err := orgchart.EncodeEmployees(m.Forest)
	if err != nil {
		return mutationResponse{}, err
	}

	resp := mutationResponse{
		ID:         m.ID,
		Kind:       string(m.Kind),
		Status:     string(m.Status),
		Removed:    m.Removed,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
		Employees:  employees,
	}
	if m.Employee != nil {
		b, err := orgchart.EncodeEmployee(*m.Employee)
		if err != nil {
			return mutationResponse{}, err
		}
		resp.Employee = b
	}
	return resp, nil
}
