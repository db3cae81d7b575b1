package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*NoticeBlock)(nil)

// NoticeBlock renders a fixed statement in place of an answer: an
// infrastructure fault or a cancelled turn.
type NoticeBlock struct {
	text  string
	style lipgloss.Style
}

// NewErrorBlock creates a NoticeBlock styled as an error.
func NewErrorBlock(statement string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: statement, style: styles.Error}
}

// NewCanceledBlock creates a muted NoticeBlock for a turn the user cancelled.
func NewCanceledBlock(statement string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: statement, style: styles.Muted}
}

func (b *NoticeBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *NoticeBlock) View(width int) string {
	return b.style.Width(width).Render(b.text)
}
