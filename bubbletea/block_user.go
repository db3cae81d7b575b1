package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserBlock)(nil)

// UserBlock renders an utterance with a "> " prefix.
type UserBlock struct {
	text   string
	styles Styles
}

// NewUserBlock creates a UserBlock.
func NewUserBlock(text string, styles Styles) *UserBlock {
	return &UserBlock{text: text, styles: styles}
}

func (b *UserBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *UserBlock) View(width int) string {
	return lipgloss.NewStyle().Width(width).Render(b.styles.User.Render("> ") + b.text)
}
