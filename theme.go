package ticketchat

// Theme maps UI roles to ANSI color indices (0-15) so the chat picks up the
// terminal's own palette.
type Theme struct {
	UserMsg  int // user utterance accent
	ToolCall int // tool call header
	Error    int
	Success  int
	Muted    int // status line, placeholders, tool output
	CodeBg   int
	Accent   int // headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		ToolCall: 3,
		Error:    1,
		Success:  2,
		Muted:    8,
		CodeBg:   0,
		Accent:   5,
	}
}
