package view

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
)

// indentPerLevel は階層 1 段あたりの字下げ幅です。
const indentPerLevel = 4

// AdminTable は管理画面の社員一覧です。行選択と一括削除を扱います。
type AdminTable struct {
	svc orgchart.UseCase
	bus Subscriber

	mu       sync.Mutex
	forest   orgchart.Forest
	selected []string
	err      error
	sub      eventbus.Subscription
	gate     revisionGate
}

// NewAdminTable は AdminTable を生成します。
func NewAdminTable(svc orgchart.UseCase, bus Subscriber) *AdminTable {
	return &AdminTable{svc: svc, bus: bus}
}

// Mount は現在のフォレストを読み込み、更新通知を購読します。
// 読み込みに失敗しても購読は行い、以降の更新で回復します。
func (v *AdminTable) Mount(ctx context.Context) error {
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
		v.setForest(forest)
	}
	return nil
}

// Unmount は購読を解除します。
func (v *AdminTable) Unmount() {
	v.mu.Lock()
	sub := v.sub
	v.sub = nil
	v.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (v *AdminTable) onUpdated(payload any) {
	ev, ok := payload.(orgchart.UpdatedEvent)
	if !ok {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gate.accept(ev.Revision) {
		v.setForest(ev.Employees)
	}
}

// setForest は mu を保持した状態で呼びます。存在しなくなった ID は選択から外します。
func (v *AdminTable) setForest(f orgchart.Forest) {
	v.forest = orgchart.Clone(f)
	v.err = nil
	v.selected = slices.DeleteFunc(v.selected, func(id string) bool {
		return !orgchart.Contains(v.forest, id)
	})
}

// Rows は表示順の行を返します。
func (v *AdminTable) Rows() []orgchart.Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Collect(orgchart.Flatten(v.forest))
}

// Err は直近の読み込みエラーを返します。
func (v *AdminTable) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Select は id の選択状態を切り替えます。
func (v *AdminTable) Select(id string, checked bool) {
	if id == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	idx := slices.Index(v.selected, id)
	switch {
	case checked && idx < 0:
		v.selected = append(v.selected, id)
	case !checked && idx >= 0:
		v.selected = slices.Delete(v.selected, idx, idx+1)
	}
}

// SelectAll はトップレベル社員をすべて選択、または選択を全解除します。
func (v *AdminTable) SelectAll(checked bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.selected = nil
	if !checked {
		return
	}
	for _, e := range v.forest {
		if e.ID != "" {
			v.selected = append(v.selected, e.ID)
		}
	}
}

// Selected は選択中の ID を選択順で返します。
func (v *AdminTable) Selected() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.selected)
}

// AllSelected はトップレベル社員数と選択数が一致するかを返します。
func (v *AdminTable) AllSelected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.forest) > 0 && len(v.selected) == len(v.forest)
}

// DeleteSelected は選択中の社員を一括削除します。保存に成功した場合のみ選択を解除します。
func (v *AdminTable) DeleteSelected(ctx context.Context) (*orgchart.Mutation, error) {
	ids := v.Selected()
	m, err := v.svc.DeleteEmployees(ctx, ids)
	if err != nil {
		return m, err
	}

	v.mu.Lock()
	if v.gate.accept(m.Revision) {
		v.setForest(m.Forest)
	}
	v.selected = nil
	v.mu.Unlock()
	return m, nil
}

// IndentedName は階層に応じて字下げした名前です。
func IndentedName(r orgchart.Row) string {
	return strings.Repeat(" ", r.Depth*indentPerLevel) + r.Employee.Name
}

// Render は一覧を表として描画します。
func (v *AdminTable) Render() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.err != nil {
		return errorStyle.Render(v.err.Error())
	}

	selected := make(map[string]bool, len(v.selected))
	for _, id := range v.selected {
		selected[id] = true
	}

	rows := make([][]string, 0, orgchart.Count(v.forest))
	for r := range orgchart.Flatten(v.forest) {
		mark := "[ ]"
		if selected[r.Employee.ID] {
			mark = "[x]"
		}
		rows = append(rows, []string{
			mark,
			r.Employee.ID,
			orgchart.Initial(r.Employee),
			IndentedName(r),
			r.Employee.Role,
			strconv.Itoa(len(r.Employee.Subordinates)),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "Image", "Name", "Role", "Subordinates").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headingStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	var sb strings.Builder
	sb.WriteString(t.String())
	if n := len(v.selected); n > 0 {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(strconv.Itoa(n) + " selected"))
	}
	return sb.String()
}
