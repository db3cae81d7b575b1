package ticketchat

// Event is a sealed interface for progress notifications emitted while a
// turn runs. Events are informational; the turn's outcome comes from the
// loop's return values.
type Event interface {
	event()
}

// EventToolCall signals that a tool call is about to be dispatched.
type EventToolCall struct {
	Call ToolCallBlock
}

func (EventToolCall) event() {}

// EventToolResult carries the outcome of one dispatched tool call.
type EventToolResult struct {
	ID       string
	ToolName string
	Content  string
	IsError  bool
}

func (EventToolResult) event() {}

// Interface compliance checks.
var (
	_ Event = EventToolCall{}
	_ Event = EventToolResult{}
)
