package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ogurasousui/orgchart/internal/core/todo"
)

// TodoRepository はプロセス内に ToDo を保持するリポジトリです。
// ID は作成時刻のミリ秒を基準に単調増加で採番します。
type TodoRepository struct {
	mu     sync.Mutex
	todos  []todo.Todo
	lastID int64
}

// NewTodoRepository は空の TodoRepository を生成します。
func NewTodoRepository() *TodoRepository {
	return &TodoRepository{}
}

func (r *TodoRepository) List(context.Context) ([]*todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*todo.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		c := t
		out = append(out, &c)
	}
	return out, nil
}

func (r *TodoRepository) Create(_ context.Context, t *todo.Todo) (*todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *t
	created.ID = r.nextID(t.CreatedAt)
	r.todos = append(r.todos, created)
	return &created, nil
}

func (r *TodoRepository) Toggle(_ context.Context, id int64) (*todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.todos {
		if r.todos[i].ID == id {
			r.todos[i].Completed = !r.todos[i].Completed
			c := r.todos[i]
			return &c, nil
		}
	}
	return nil, todo.ErrTodoNotFound
}

func (r *TodoRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.todos {
		if r.todos[i].ID == id {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return todo.ErrTodoNotFound
}

func (r *TodoRepository) nextID(at time.Time) int64 {
	id := at.UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}
