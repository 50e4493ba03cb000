package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/orgchart/internal/core/todo"
)

// TodoHandler は ToDo の HTTP API です。
type TodoHandler struct {
	svc todo.UseCase
}

// NewTodoHandler は TodoHandler を生成します。
func NewTodoHandler(svc todo.UseCase) *TodoHandler {
	return &TodoHandler{svc: svc}
}

type todoResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	CreatedAt string `json:"createdAt"`
}

type createTodoRequest struct {
	Title string `json:"title"`
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.ListTodos(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, toTodoResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, todo.ErrInvalidTitle)
		return
	}

	created, err := h.svc.CreateTodo(r.Context(), todo.CreateTodoInput{Title: req.Title})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTodoResponse(created))
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeError(w, todo.ErrTodoNotFound)
		return
	}

	toggled, err := h.svc.ToggleTodo(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTodoResponse(toggled))
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := todoID(r)
	if err != nil {
		writeError(w, todo.ErrTodoNotFound)
		return
	}

	if err := h.svc.DeleteTodo(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func todoID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "todoID"), 10, 64)
}

func toTodoResponse(t *todo.Todo) todoResponse {
	return todoResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.UTC().Format(isoMillis),
	}
}
