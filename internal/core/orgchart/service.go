package orgchart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator は新しい社員 ID を採番します。
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// MutationKind は変更操作の種類です。
type MutationKind string

const (
	KindAdd        MutationKind = "add"
	KindUpdate     MutationKind = "update"
	KindDelete     MutationKind = "delete"
	KindBulkDelete MutationKind = "bulk_delete"
	KindReplace    MutationKind = "replace"
)

// MutationStatus は変更の保存状態です。
type MutationStatus string

const (
	StatusPending   MutationStatus = "pending"
	StatusCommitted MutationStatus = "committed"
	StatusFailed    MutationStatus = "failed"
)

const maxMutationLog = 50

// Mutation は 1 回の変更とその保存結果です。
type Mutation struct {
	ID         string
	Kind       MutationKind
	Status     MutationStatus
	Employee   *Employee
	Forest     Forest
	Removed    int
	Revision   uint64
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// UseCase は組織図ユースケースの公開インターフェースです。
type UseCase interface {
	Load(ctx context.Context) (Forest, error)
	Snapshot() Forest
	Current(ctx context.Context) (Forest, error)
	Latest(ctx context.Context) (Forest, uint64, error)
	Mutations() []Mutation
	AddEmployee(ctx context.Context, in AddEmployeeInput) (*Mutation, error)
	UpdateEmployee(ctx context.Context, patch EmployeePatch) (*Mutation, error)
	DeleteEmployee(ctx context.Context, id string) (*Mutation, error)
	DeleteEmployees(ctx context.Context, ids []string) (*Mutation, error)
	ReplaceForest(ctx context.Context, forest Forest) (*Mutation, error)
}

// AddEmployeeInput は社員追加の入力です。ParentID が空ならトップレベルに追加します。
type AddEmployeeInput struct {
	ID       string
	ParentID string
	Name     string
	Role     string
	Image    string
}

// Service は変更→保存→配信の流れを管理し、確定済みフォレストを保持します。
type Service struct {
	store Store
	bus   Broadcaster
	clock Clock
	ids   IDGenerator
	log   logrus.FieldLogger

	// commitMu は確定と配信をまとめ、保存完了順に配信されるようにします。
	commitMu sync.Mutex

	mu        sync.Mutex
	committed Forest
	revision  uint64
	loaded    bool
	history   []*Mutation
}

// NewService は Service を生成します。nil の依存は既定値で補われます。
func NewService(store Store, bus Broadcaster, clock Clock, ids IDGenerator, log logrus.FieldLogger) *Service {
	if bus == nil {
		bus = noopBroadcaster{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if ids == nil {
		ids = uuidGenerator{}
	}
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Service{store: store, bus: bus, clock: clock, ids: ids, log: log}
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(string, any) {}

// Load はストアからフォレストを読み込み、ID の無いノードに採番してキャッシュします。
// 採番した場合はその場で保存し、別プロセスや再読み込みでも同じ ID が返るようにします。
// 失敗時は *LoadError を返し、キャッシュは変更しません。
func (s *Service) Load(ctx context.Context) (Forest, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	f, err := s.store.Load(ctx)
	if err != nil {
		return nil, AsLoadError(err)
	}
	if missing := MissingIDs(f); missing > 0 {
		f = AssignIDs(f, s.ids.NewID)
		if err := s.store.Save(ctx, Clone(f)); err != nil {
			// 次に確定する変更でフォレスト全体が保存されます。
			s.log.WithError(AsSaveError(err)).WithField("assigned", missing).
				Warn("orgchart: persisting assigned ids failed")
		}
	}

	s.mu.Lock()
	s.committed = f
	s.revision++
	s.loaded = true
	s.mu.Unlock()

	return Clone(f), nil
}

// Snapshot は最後に確定したフォレストのコピーを返します。
func (s *Service) Snapshot() Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.committed)
}

// Mutations は直近の変更履歴を古い順に返します。
func (s *Service) Mutations() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mutation, 0, len(s.history))
	for _, m := range s.history {
		out = append(out, *m)
	}
	return out
}

// Current は未ロードなら一度だけ読み込み、確定済みフォレストのコピーを返します。
func (s *Service) Current(ctx context.Context) (Forest, error) {
	f, _, err := s.Latest(ctx)
	return f, err
}

// Latest は Current と同じフォレストをリビジョン付きで返します。
// リビジョンは読み込みと確定のたびに増え、UpdatedEvent.Revision と比較できます。
func (s *Service) Latest(ctx context.Context) (Forest, uint64, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.committed), s.revision, nil
}

// AddEmployee は社員を追加します。ID 未指定なら採番し、既存 ID と重複する場合は ErrDuplicateID を返します。
func (s *Service) AddEmployee(ctx context.Context, in AddEmployeeInput) (*Mutation, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = s.ids.NewID()
	}
	emp := Employee{
		ID:    id,
		Name:  strings.TrimSpace(in.Name),
		Role:  strings.TrimSpace(in.Role),
		Image: strings.TrimSpace(in.Image),
	}
	parentID := strings.TrimSpace(in.ParentID)

	return s.apply(ctx, KindAdd, func(base Forest) (Forest, *Employee, error) {
		if Contains(base, id) {
			return nil, nil, fmt.Errorf("id %s: %w", id, ErrDuplicateID)
		}
		next := Insert(base, emp, parentID)
		if !Contains(next, id) {
			return next, nil, nil
		}
		added := emp
		return next, &added, nil
	})
}

// UpdateEmployee は社員のスカラー項目を部分更新します。該当なしは no-op です。
func (s *Service) UpdateEmployee(ctx context.Context, patch EmployeePatch) (*Mutation, error) {
	patch.ID = strings.TrimSpace(patch.ID)
	if patch.ID == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.apply(ctx, KindUpdate, func(base Forest) (Forest, *Employee, error) {
		next := Update(base, patch)
		found, ok := FindByID(next, patch.ID)
		if !ok {
			return next, nil, nil
		}
		return next, &found, nil
	})
}

// DeleteEmployee は社員を部分木ごと削除します。
func (s *Service) DeleteEmployee(ctx context.Context, id string) (*Mutation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.apply(ctx, KindDelete, func(base Forest) (Forest, *Employee, error) {
		return Delete(base, id), nil, nil
	})
}

// DeleteEmployees は複数の社員を順に削除します。
func (s *Service) DeleteEmployees(ctx context.Context, ids []string) (*Mutation, error) {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	return s.apply(ctx, KindBulkDelete, func(base Forest) (Forest, *Employee, error) {
		return BulkDelete(base, cleaned), nil, nil
	})
}

// ReplaceForest はフォレスト全体を置き換えます。ID の無いノードには採番します。
func (s *Service) ReplaceForest(ctx context.Context, forest Forest) (*Mutation, error) {
	next := AssignIDs(forest, s.ids.NewID)
	if dups := DuplicateIDs(next); len(dups) > 0 {
		return nil, fmt.Errorf("ids %s: %w", strings.Join(dups, ","), ErrDuplicateID)
	}
	return s.apply(ctx, KindReplace, func(Forest) (Forest, *Employee, error) {
		return next, nil, nil
	})
}

func (s *Service) apply(ctx context.Context, kind MutationKind, plan func(base Forest) (Forest, *Employee, error)) (*Mutation, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	base := s.committed
	next, emp, err := plan(base)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	m := &Mutation{
		ID:        s.ids.NewID(),
		Kind:      kind,
		Status:    StatusPending,
		Employee:  emp,
		Forest:    Clone(next),
		Removed:   max(Count(base)-Count(next), 0),
		StartedAt: s.clock.Now(),
	}
	s.record(m)

	if err := s.store.Save(ctx, Clone(next)); err != nil {
		saveErr := AsSaveError(err)
		s.mu.Lock()
		m.Status = StatusFailed
		m.Err = saveErr
		m.FinishedAt = s.clock.Now()
		result := *m
		s.mu.Unlock()

		s.log.WithError(saveErr).WithFields(logrus.Fields{
			"mutation_id": m.ID,
			"kind":        kind,
		}).Warn("orgchart: save failed, keeping previous forest")
		return &result, saveErr
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	m.Status = StatusCommitted
	m.FinishedAt = s.clock.Now()
	s.committed = next
	s.revision++
	m.Revision = s.revision
	result := *m
	s.mu.Unlock()

	s.bus.Publish(TopicEmployeesUpdated, UpdatedEvent{Employees: Clone(next), Revision: result.Revision})
	return &result, nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if loaded {
		return nil
	}
	_, err := s.Load(ctx)
	return err
}

func (s *Service) record(m *Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, m)
	if len(s.history) > maxMutationLog {
		s.history = s.history[len(s.history)-maxMutationLog:]
	}
}

// IsLoadError は err が LoadError かを返します。
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// IsSaveError は err が SaveError かを返します。
func IsSaveError(err error) bool {
	var se *SaveError
	return errors.As(err, &se)
}
