// Package view は組織図の端末向け表示を提供します。
// 各ビューは Mount で初回読み込みと購読を行い、Unmount で購読を解除します。
package view

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
)

// Subscriber はトピック購読を提供します。eventbus.Bus が満たします。
type Subscriber interface {
	Subscribe(topic string, handler eventbus.Handler) eventbus.Subscription
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// revisionGate は反映済みのリビジョンを覚え、それ以前のフォレストを除外します。
type revisionGate struct {
	primed   bool
	revision uint64
}

func (g *revisionGate) accept(revision uint64) bool {
	if g.primed && revision <= g.revision {
		return false
	}
	g.primed = true
	g.revision = revision
	return true
}
