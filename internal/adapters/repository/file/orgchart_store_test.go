package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
)

func TestOrgChartStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "employees.json")
	store := NewOrgChartStore(path)

	forest := orgchart.Forest{
		{ID: "1", Name: "Alice", Role: "Lead", Image: "a.png", Subordinates: orgchart.Forest{
			{ID: "2", Name: "Bob", Role: "Dev"},
		}},
		{ID: "3", Name: "", Role: ""},
	}

	if err := store.Save(context.Background(), forest); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if diff := cmp.Diff(forest, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temporary files left behind: %v", matches)
	}
}

func TestOrgChartStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewOrgChartStore(filepath.Join(t.TempDir(), "none.json"))
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty forest, got %+v", got)
	}
}

func TestOrgChartStore_MalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "employees.json")
	if err := os.WriteFile(path, []byte(`{"employees":{}}`), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := NewOrgChartStore(path).Load(context.Background())
	if !orgchart.IsLoadError(err) || !errors.Is(err, orgchart.ErrMalformedDocument) {
		t.Fatalf("expected malformed LoadError, got %v", err)
	}
}

func TestOrgChartStore_SaveFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write blocker: %v", err)
	}

	store := NewOrgChartStore(filepath.Join(blocker, "employees.json"))
	if err := store.Save(context.Background(), orgchart.Forest{}); !orgchart.IsSaveError(err) {
		t.Fatalf("expected SaveError, got %v", err)
	}
}

func TestOrgChartStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewOrgChartStore(filepath.Join(t.TempDir(), "employees.json"))
	if _, err := store.Load(ctx); !orgchart.IsLoadError(err) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if err := store.Save(ctx, nil); !orgchart.IsSaveError(err) {
		t.Fatalf("expected SaveError, got %v", err)
	}
}
