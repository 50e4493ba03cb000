package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}

var (
	selectQuery = regexp.QuoteMeta(`
        SELECT document
          FROM org_charts
         WHERE name = $1
    `)
	upsertQuery = regexp.QuoteMeta(`
        INSERT INTO org_charts (name, revision, document, updated_at)
        VALUES ($1, 1, $2, $3)
        ON CONFLICT (name) DO UPDATE
           SET revision = org_charts.revision + 1,
               document = EXCLUDED.document,
               updated_at = EXCLUDED.updated_at
        RETURNING revision
    `)
	revisionQuery = regexp.QuoteMeta(`
        INSERT INTO org_chart_revisions (name, revision, document, created_at)
        VALUES ($1, $2, $3, $4)
    `)
)

func TestOrgChartStore_Load(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	doc := []byte(`{"employees":[{"id":"1","name":"Alice","role":"Lead","image":"","subordinates":[{"id":"2","name":"Bob","role":"Dev","image":""}]}]}`)
	mock.ExpectQuery(selectQuery).
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow(doc))

	store := NewOrgChartStore(mock, nil, nil, "default")
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	want := orgchart.Forest{{ID: "1", Name: "Alice", Role: "Lead", Subordinates: orgchart.Forest{{ID: "2", Name: "Bob", Role: "Dev"}}}}
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("unexpected forest (-want +got):\n%s", diff)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrgChartStore_Load_NoRowsIsEmpty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(selectQuery).WithArgs("default").WillReturnError(pgx.ErrNoRows)

	got, err := NewOrgChartStore(mock, nil, nil, "default").Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty forest, got %+v", got)
	}
}

func TestOrgChartStore_Load_Errors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	store := NewOrgChartStore(mock, nil, nil, "default")

	mock.ExpectQuery(selectQuery).WithArgs("default").WillReturnError(errors.New("connection reset"))
	if _, err := store.Load(context.Background()); !orgchart.IsLoadError(err) {
		t.Fatalf("expected LoadError, got %v", err)
	}

	mock.ExpectQuery(selectQuery).
		WithArgs("default").
		WillReturnRows(pgxmock.NewRows([]string{"document"}).AddRow([]byte(`[]`)))
	_, err = store.Load(context.Background())
	if !orgchart.IsLoadError(err) || !errors.Is(err, orgchart.ErrMalformedDocument) {
		t.Fatalf("expected malformed LoadError, got %v", err)
	}
}

func TestOrgChartStore_Save_InTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	forest := orgchart.Forest{{ID: "1", Name: "Alice", Role: "Lead"}}
	doc, err := orgchart.EncodeDocument(forest)
	if err != nil {
		t.Fatalf("EncodeDocument returned error: %v", err)
	}

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectQuery(upsertQuery).
		WithArgs("default", doc, now).
		WillReturnRows(pgxmock.NewRows([]string{"revision"}).AddRow(int64(4)))
	mock.ExpectExec(revisionQuery).
		WithArgs("default", int64(4), doc, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	store := NewOrgChartStore(mock, pgdb.NewTransactionManager(mock), stubClock{now: now}, "default")
	if err := store.Save(context.Background(), forest); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrgChartStore_Save_RollsBackOnRevisionFailure(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectQuery(upsertQuery).
		WithArgs("default", pgxmock.AnyArg(), now).
		WillReturnRows(pgxmock.NewRows([]string{"revision"}).AddRow(int64(2)))
	mock.ExpectExec(revisionQuery).
		WithArgs("default", int64(2), pgxmock.AnyArg(), now).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	store := NewOrgChartStore(mock, pgdb.NewTransactionManager(mock), stubClock{now: now}, "default")
	err = store.Save(context.Background(), orgchart.Forest{})
	if !orgchart.IsSaveError(err) {
		t.Fatalf("expected SaveError, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
