package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	goredis "github.com/redis/go-redis/v9"
)

// Client は OrgChartStore が使う Redis コマンドの部分集合です。*redis.Client が満たします。
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// OrgChartStore は組織図ドキュメントを 1 つの Redis キーに保存します。
type OrgChartStore struct {
	client Client
	key    string
}

// NewOrgChartStore は "<prefix>:<chart>" をキーとする OrgChartStore を生成します。
func NewOrgChartStore(client Client, prefix, chart string) *OrgChartStore {
	return &OrgChartStore{client: client, key: fmt.Sprintf("%s:%s", prefix, chart)}
}

// Key は保存先のキーを返します。
func (s *OrgChartStore) Key() string {
	return s.key
}

// Load はキーの値を読み込みます。キーが無ければ空のフォレストを返します。
func (s *OrgChartStore) Load(ctx context.Context) (orgchart.Forest, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return orgchart.Forest{}, nil
		}
		return nil, &orgchart.LoadError{Err: fmt.Errorf("redis: get %s: %w", s.key, err)}
	}

	forest, err := orgchart.DecodeDocument(b)
	if err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}
	return forest, nil
}

// Save はフォレストを期限なしで保存します。
func (s *OrgChartStore) Save(ctx context.Context, forest orgchart.Forest) error {
	b, err := orgchart.EncodeDocument(forest)
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return &orgchart.SaveError{Err: fmt.Errorf("redis: set %s: %w", s.key, err)}
	}
	return nil
}
