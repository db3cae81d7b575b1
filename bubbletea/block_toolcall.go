package bubbletea

import (
	"bytes"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ticketchat"
)

var _ MessageBlock = (*ToolCallBlock)(nil)

// ToolCallBlock renders a dispatched tool call. Arguments are shown when
// expanded.
type ToolCallBlock struct {
	call      ticketchat.ToolCallBlock
	collapsed bool
	styles    Styles
}

// NewToolCallBlock creates a ToolCallBlock that starts collapsed.
func NewToolCallBlock(call ticketchat.ToolCallBlock, styles Styles) *ToolCallBlock {
	return &ToolCallBlock{call: call, collapsed: true, styles: styles}
}

// ID returns the tool call ID.
func (b *ToolCallBlock) ID() string { return b.call.ID }

// Collapsed reports whether the arguments are hidden.
func (b *ToolCallBlock) Collapsed() bool { return b.collapsed }

func (b *ToolCallBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolCallBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	content := b.styles.ToolCall.Render(indicator + " " + b.call.Name)
	if !b.collapsed && len(b.call.Arguments) > 0 {
		content += "\n" + b.styles.Muted.Render(prettyArgs(b.call.Arguments))
	}
	return b.styles.Panel.Width(width).Render(content)
}

func prettyArgs(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
