package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
)

// Clock は保存時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager は保存処理を 1 トランザクションにまとめます。
type TransactionManager interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// OrgChartStore は組織図を JSONB ドキュメントとして PostgreSQL に保存します。
// 保存のたびに org_chart_revisions へ履歴を追記します。
type OrgChartStore struct {
	pool  pgdb.Queryer
	tx    TransactionManager
	clock Clock
	name  string
}

// NewOrgChartStore は OrgChartStore を生成します。
func NewOrgChartStore(pool pgdb.Queryer, tx TransactionManager, clock Clock, name string) *OrgChartStore {
	if clock == nil {
		clock = realClock{}
	}
	return &OrgChartStore{pool: pool, tx: tx, clock: clock, name: name}
}

// Load は組織図を読み込みます。行が無ければ空のフォレストを返します。
func (s *OrgChartStore) Load(ctx context.Context) (orgchart.Forest, error) {
	exec := pgdb.QueryerFromContext(ctx, s.pool)

	var document []byte
	err := exec.QueryRow(ctx, `
        SELECT document
          FROM org_charts
         WHERE name = $1
    `, s.name).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return orgchart.Forest{}, nil
		}
		return nil, &orgchart.LoadError{Err: fmt.Errorf("postgres: select org chart %s: %w", s.name, err)}
	}

	forest, err := orgchart.DecodeDocument(document)
	if err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}
	return forest, nil
}

// Save は組織図を保存し、リビジョンを 1 つ進めます。
func (s *OrgChartStore) Save(ctx context.Context, forest orgchart.Forest) error {
	document, err := orgchart.EncodeDocument(forest)
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}

	save := func(txCtx context.Context) error {
		exec := pgdb.QueryerFromContext(txCtx, s.pool)
		now := s.clock.Now()

		var revision int64
		if err := exec.QueryRow(txCtx, `
        INSERT INTO org_charts (name, revision, document, updated_at)
        VALUES ($1, 1, $2, $3)
        ON CONFLICT (name) DO UPDATE
           SET revision = org_charts.revision + 1,
               document = EXCLUDED.document,
               updated_at = EXCLUDED.updated_at
        RETURNING revision
    `, s.name, document, now).Scan(&revision); err != nil {
			return fmt.Errorf("postgres: upsert org chart %s: %w", s.name, err)
		}

		if _, err := exec.Exec(txCtx, `
        INSERT INTO org_chart_revisions (name, revision, document, created_at)
        VALUES ($1, $2, $3, $4)
    `, s.name, revision, document, now); err != nil {
			return fmt.Errorf("postgres: append revision %d: %w", revision, err)
		}
		return nil
	}

	if s.tx == nil {
		err = save(ctx)
	} else {
		err = s.tx.WithinReadWrite(ctx, save)
	}
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}
	return nil
}
