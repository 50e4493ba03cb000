package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/orgchart/internal/core/todo"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
)

// TodoRepository は PostgreSQL を利用した ToDo 永続化の実装です。
type TodoRepository struct {
	pool pgdb.Queryer
}

// NewTodoRepository は TodoRepository を生成します。
func NewTodoRepository(pool pgdb.Queryer) *TodoRepository {
	return &TodoRepository{pool: pool}
}

// List は作成順に ToDo を返します。
func (r *TodoRepository) List(ctx context.Context) ([]*todo.Todo, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	rows, err := exec.Query(ctx, `
        SELECT id, title, completed, created_at
          FROM todos
         ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("postgres: list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*todo.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list todos: %w", err)
	}
	return todos, nil
}

// Create は ToDo を新規作成します。
func (r *TodoRepository) Create(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	row := exec.QueryRow(ctx, `
        INSERT INTO todos (title, completed, created_at)
        VALUES ($1, $2, $3)
        RETURNING id, title, completed, created_at
    `, t.Title, t.Completed, t.CreatedAt)

	return scanTodo(row)
}

// Toggle は完了状態を反転します。
func (r *TodoRepository) Toggle(ctx context.Context, id int64) (*todo.Todo, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	row := exec.QueryRow(ctx, `
        UPDATE todos
           SET completed = NOT completed
         WHERE id = $1
        RETURNING id, title, completed, created_at
    `, id)

	return scanTodo(row)
}

// Delete は ToDo を削除します。
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	tag, err := exec.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return todo.ErrTodoNotFound
	}
	return nil
}

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	var (
		id        int64
		title     string
		completed bool
		createdAt time.Time
	)

	if err := row.Scan(&id, &title, &completed, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, todo.ErrTodoNotFound
		}
		return nil, err
	}

	return &todo.Todo{
		ID:        id,
		Title:     title,
		Completed: completed,
		CreatedAt: createdAt,
	}, nil
}
