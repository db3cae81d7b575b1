package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/markdown"
)

var _ MessageBlock = (*AnswerBlock)(nil)

// AnswerBlock renders the final answer of a turn as markdown. The rendering
// is cached per width.
type AnswerBlock struct {
	text    string
	theme   ticketchat.Theme
	byWidth map[int]string
}

// NewAnswerBlock creates an AnswerBlock.
func NewAnswerBlock(text string, theme ticketchat.Theme) *AnswerBlock {
	return &AnswerBlock{text: text, theme: theme, byWidth: make(map[int]string)}
}

// Text returns the raw answer.
func (b *AnswerBlock) Text() string { return b.text }

func (b *AnswerBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *AnswerBlock) View(width int) string {
	if out, ok := b.byWidth[width]; ok {
		return out
	}
	out := markdown.Render(b.text, width, b.theme)
	b.byWidth[width] = out
	return out
}
