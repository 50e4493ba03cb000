package todo

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// UseCase は ToDo ユースケースの公開インターフェースです。
type UseCase interface {
	ListTodos(ctx context.Context) ([]*Todo, error)
	CreateTodo(ctx context.Context, in CreateTodoInput) (*Todo, error)
	ToggleTodo(ctx context.Context, id int64) (*Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

// Service は ToDo に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateTodoInput は ToDo 作成時の入力です。
type CreateTodoInput struct {
	Title string
}

// ListTodos は全件を返します。
func (s *Service) ListTodos(ctx context.Context) ([]*Todo, error) {
	return s.repo.List(ctx)
}

// CreateTodo は未完了の ToDo を作成します。
func (s *Service) CreateTodo(ctx context.Context, in CreateTodoInput) (*Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	return s.repo.Create(ctx, &Todo{
		Title:     title,
		Completed: false,
		CreatedAt: s.clock.Now(),
	})
}

// ToggleTodo は完了状態を反転します。
func (s *Service) ToggleTodo(ctx context.Context, id int64) (*Todo, error) {
	if id <= 0 {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Toggle(ctx, id)
}

// DeleteTodo は ToDo を削除します。
func (s *Service) DeleteTodo(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, id)
}
