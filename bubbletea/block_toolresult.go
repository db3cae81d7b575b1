package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*ToolResultBlock)(nil)

const previewWidth = 60

// ToolResultBlock renders a tool result. Successful results start collapsed
// to a one-line preview; error results are always expanded.
type ToolResultBlock struct {
	toolName  string
	content   string
	isError   bool
	collapsed bool
	styles    Styles
}

// NewToolResultBlock creates a ToolResultBlock.
func NewToolResultBlock(toolName, content string, isError bool, styles Styles) *ToolResultBlock {
	return &ToolResultBlock{
		toolName:  toolName,
		content:   content,
		isError:   isError,
		collapsed: !isError,
		styles:    styles,
	}
}

// IsError reports whether the result is an error.
func (b *ToolResultBlock) IsError() bool { return b.isError }

func (b *ToolResultBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok && !b.isError {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolResultBlock) View(width int) string {
	icon := b.styles.Success.Render("✓")
	body := b.styles.Muted
	if b.isError {
		icon = b.styles.Error.Render("✗")
		body = b.styles.Error
	}

	if b.collapsed {
		header := b.styles.ToolCall.Render("▶ "+b.toolName) + " " + icon
		if b.content != "" {
			header += "  " + body.Render(preview(b.content))
		}
		return b.styles.Panel.Width(width).Render(header)
	}

	content := b.styles.ToolCall.Render("▼ "+b.toolName) + " " + icon
	if b.content != "" {
		content += "\n" + body.Render(b.content)
	}
	return b.styles.Panel.Width(width).Render(content)
}

// preview returns the first line of s cut to previewWidth terminal cells.
func preview(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return runewidth.Truncate(s, previewWidth, "…")
}
