package memory

import (
	"context"
	"sync"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
)

// OrgChartStore はプロセス内に組織図を保持するストアです。
// 読み書きのたびにコピーを取り、呼び出し側との共有を避けます。
type OrgChartStore struct {
	mu      sync.Mutex
	forest  orgchart.Forest
	loadErr error
	saveErr error
}

// NewOrgChartStore は初期フォレストを持つストアを生成します。
func NewOrgChartStore(initial orgchart.Forest) *OrgChartStore {
	return &OrgChartStore{forest: orgchart.Clone(initial)}
}

func (s *OrgChartStore) Load(context.Context) (orgchart.Forest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, &orgchart.LoadError{Err: s.loadErr}
	}
	return orgchart.Clone(s.forest), nil
}

func (s *OrgChartStore) Save(_ context.Context, forest orgchart.Forest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return &orgchart.SaveError{Err: s.saveErr}
	}
	s.forest = orgchart.Clone(forest)
	return nil
}

// FailLoads は以降の Load を err で失敗させます。nil で解除します。
func (s *OrgChartStore) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailSaves は以降の Save を err で失敗させます。nil で解除します。
func (s *OrgChartStore) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
