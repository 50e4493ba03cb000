package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
)

// OrgChartStore は組織図を JSON ファイルに保存します。
// 書き込みは一時ファイルへの書き出しと rename で行います。
type OrgChartStore struct {
	path string
	mu   sync.Mutex
}

// NewOrgChartStore は path を保存先とする OrgChartStore を生成します。
func NewOrgChartStore(path string) *OrgChartStore {
	return &OrgChartStore{path: path}
}

// Load はファイルを読み込みます。ファイルが無ければ空のフォレストを返します。
func (s *OrgChartStore) Load(ctx context.Context) (orgchart.Forest, error) {
	if err := ctx.Err(); err != nil {
		return nil, &orgchart.LoadError{Err: err}
	}

	s.mu.Lock()
	b, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return orgchart.Forest{}, nil
		}
		return nil, &orgchart.LoadError{Err: fmt.Errorf("file: read %s: %w", s.path, err)}
	}

	forest, err := orgchart.DecodeDocument(b)
	if err != nil {
		return nil, &orgchart.LoadError{Err: fmt.Errorf("file: %s: %w", s.path, err)}
	}
	return forest, nil
}

// Save はフォレストをファイルへ書き込みます。
func (s *OrgChartStore) Save(ctx context.Context, forest orgchart.Forest) error {
	if err := ctx.Err(); err != nil {
		return &orgchart.SaveError{Err: err}
	}

	b, err := orgchart.EncodeDocument(forest)
	if err != nil {
		return &orgchart.SaveError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeAtomic(s.path, b); err != nil {
		return &orgchart.SaveError{Err: err}
	}
	return nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file: create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: rename %s: %w", path, err)
	}
	return nil
}
