package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ogurasousui/orgchart/internal/platform/config"
)

const applicationName = "orgchart"

// SchemaVersion は assets/migrations に含まれる最新のマイグレーション番号です。
const SchemaVersion uint = 2

// ErrNoSchema は schema_migrations が空、または存在しないことを表します。
var ErrNoSchema = errors.New("postgres: no migration applied")

// SchemaState は golang-migrate が記録した適用状態です。
type SchemaState struct {
	Version uint
	Dirty   bool
}

// Current は最新のマイグレーションまで適用済みで、途中失敗も無い状態かを返します。
func (s SchemaState) Current() bool {
	return !s.Dirty && s.Version >= SchemaVersion
}

func (s SchemaState) String() string {
	if s.Dirty {
		return fmt.Sprintf("version=%d (dirty) want=%d", s.Version, SchemaVersion)
	}
	return fmt.Sprintf("version=%d want=%d", s.Version, SchemaVersion)
}

const schemaVersionQuery = `SELECT version, dirty FROM schema_migrations LIMIT 1`

// ReadSchemaState は schema_migrations から適用済みのバージョンを読み取ります。
func ReadSchemaState(ctx context.Context, q Queryer) (SchemaState, error) {
	var (
		version int64
		dirty   bool
	)
	if err := q.QueryRow(ctx, schemaVersionQuery).Scan(&version, &dirty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SchemaState{}, ErrNoSchema
		}
		return SchemaState{}, fmt.Errorf("postgres: read schema version: %w", err)
	}
	if version < 0 {
		return SchemaState{}, ErrNoSchema
	}
	return SchemaState{Version: uint(version), Dirty: dirty}, nil
}

// BuildPoolConfig は database 設定から pgxpool.Config を構築します。
func BuildPoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	if _, ok := poolCfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	return poolCfg, nil
}

// NewPool は pgxpool.Pool を生成し疎通確認を行います。
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := BuildPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}
