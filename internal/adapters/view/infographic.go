package view

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
)

const (
	loadingText   = "Loading..."
	loadErrPrefix = "Failed to load employee data: "
)

// Infographic は公開ページの組織図です。
type Infographic struct {
	svc orgchart.UseCase
	bus Subscriber

	mu      sync.Mutex
	showIDs bool
	forest  orgchart.Forest
	err    error
	sub    eventbus.Subscription
	gate   revisionGate
}

// NewInfographic は Infographic を生成します。
func NewInfographic(svc orgchart.UseCase, bus Subscriber) *Infographic {
	return &Infographic{svc: svc, bus: bus}
}

// Mount は現在のフォレストを読み込み、更新通知を購読します。
func (v *Infographic) Mount(ctx context.Context) error {
	v.mu.Lock()
	if v.sub == nil && v.bus != nil {
		v.sub = v.bus.Subscribe(orgchart.TopicEmployeesUpdated, v.onUpdated)
	}
	v.mu.Unlock()

	forest, revision, err := v.svc.Latest(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.err = err
		return err
	}
	if v.gate.accept(revision) {
		v.forest = forest
		v.err = nil
	}
	return nil
}

// Unmount は購読を解除します。
func (v *Infographic) Unmount() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (v *Infographic) onUpdated(payload any) {
	ev, ok := payload.(orgchart.UpdatedEvent)
	if !ok {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gate.accept(ev.Revision) {
		v.forest = orgchart.Clone(ev.Employees)
		v.err = nil
	}
}

// ShowIDs は各カードに社員 ID を併記するかを切り替えます。
func (v *Infographic) ShowIDs(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showIDs = show
}

// Render は組織図をツリーとして描画します。
// 読み込み失敗時はエラー文、空のときは "Loading..." を返します。
func (v *Infographic) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.err != nil {
		return errorStyle.Render(loadErrPrefix + cause(v.err).Error())
	}
	if len(v.forest) == 0 {
		return loadingText
	}

	var sb strings.Builder
	sb.WriteString(headingStyle.Render("ORGANIZATIONAL"))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("INFOGRAPHICS"))
	sb.WriteString("\n\n")
	writeLevel(&sb, v.forest, "", v.showIDs)
	return strings.TrimRight(sb.String(), "\n")
}

func writeLevel(sb *strings.Builder, f orgchart.Forest, prefix string, showIDs bool) {
	for i, e := range f {
		last := i == len(f)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(branch)
		sb.WriteString(card(e))
		if showIDs && e.ID != "" {
			sb.WriteString(" ")
			sb.WriteString(mutedStyle.Render("id=" + e.ID))
		}
		sb.WriteString("\n")
		writeLevel(sb, e.Subordinates, prefix+next, showIDs)
	}
}

func card(e orgchart.Employee) string {
	return "(" + orgchart.Initial(e) + ") " + orgchart.DisplayName(e) + " " + mutedStyle.Render("["+orgchart.DisplayRole(e)+"]")
}

// cause は LoadError の内側のエラーを返します。
func cause(err error) error {
	var le *orgchart.LoadError
	if errors.As(err, &le) && le.Err != nil {
		return le.Err
	}
	return err
}
