// Package storage は設定に従って組織図ストアと ToDo リポジトリを組み立てます。
package storage

import (
	"context"
	"fmt"

	"github.com/ogurasousui/orgchart/internal/adapters/repository/file"
	"github.com/ogurasousui/orgchart/internal/adapters/repository/memory"
	"github.com/ogurasousui/orgchart/internal/adapters/repository/postgres"
	redisstore "github.com/ogurasousui/orgchart/internal/adapters/repository/redis"
	"github.com/ogurasousui/orgchart/internal/adapters/repository/remote"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/core/todo"
	"github.com/ogurasousui/orgchart/internal/platform/config"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Backend は選択されたドライバの永続化実装です。
// ToDo は postgres ドライバのときだけ DB に保存し、それ以外はプロセス内に保持します。
type Backend struct {
	Driver   string
	OrgChart orgchart.Store
	Todos    todo.Repository

	closers []func()
}

// Close は接続を解放します。
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Open は cfg.Store.Driver に応じてバックエンドを構築します。
func Open(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Backend, error) {
	b := &Backend{Driver: cfg.Store.Driver, Todos: memory.NewTodoRepository()}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		b.OrgChart = memory.NewOrgChartStore(nil)

	case config.DriverFile:
		b.OrgChart = file.NewOrgChartStore(cfg.Store.FilePath)

	case config.DriverPostgres:
		pool, err := pgdb.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		if log != nil {
			if state, err := pgdb.ReadSchemaState(ctx, pool); err != nil {
				log.WithError(err).Warn("storage: schema version unknown, run cmd/migrate up")
			} else if !state.Current() {
				log.WithField("schema", state.String()).Warn("storage: schema is not up to date")
			}
		}
		b.OrgChart = postgres.NewOrgChartStore(pool, pgdb.NewTransactionManager(pool), nil, cfg.Store.ChartName)
		b.Todos = postgres.NewTodoRepository(pool)

	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("storage: redis ping %s: %w", cfg.Redis.Addr, err)
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.OrgChart = redisstore.NewOrgChartStore(client, cfg.Redis.KeyPrefix, cfg.Store.ChartName)

	case config.DriverRemote:
		store, err := remote.NewOrgChartStore(cfg.Store.RemoteURL, nil, cfg.Store.Timeout)
		if err != nil {
			return nil, err
		}
		b.OrgChart = store

	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Store.Driver)
	}

	if log != nil {
		log.WithField("driver", cfg.Store.Driver).Info("storage: backend ready")
	}
	return b, nil
}
