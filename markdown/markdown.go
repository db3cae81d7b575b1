// Package markdown renders assistant answers as ANSI-styled terminal text.
//
// Parsing is done by goldmark with the GFM table extension; styling is done
// with lipgloss. Ticket keys such as PROJ-42 that appear in prose are
// highlighted with the theme's accent color.
package markdown

import "github.com/fwojciec/ticketchat"

const defaultWidth = 80

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks and
// tables keep their line structure.
func Render(source string, width int, theme ticketchat.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newPrinter(theme, width).print([]byte(source))
}
