package todo

import "context"

// Repository は ToDo の永続化を行うインターフェースです。
// 一覧は作成順で返します。
type Repository interface {
	List(ctx context.Context) ([]*Todo, error)
	Create(ctx context.Context, t *Todo) (*Todo, error)
	Toggle(ctx context.Context, id int64) (*Todo, error)
	Delete(ctx context.Context, id int64) error
}
