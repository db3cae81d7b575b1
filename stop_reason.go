package ticketchat

// StopReason is the normalized reason a model call ended. The raw backend
// value is kept in AssistantMessage.RawStopReason.
type StopReason string

const (
	StopEndTurn StopReason = "end_turn"
	// StopToolUse means the reply asks for tool calls. Only the plan phase
	// acts on it.
	StopToolUse StopReason = "tool_use"
	StopLength  StopReason = "length"
	StopError   StopReason = "error"
	StopAborted StopReason = "aborted"
	StopUnknown StopReason = "unknown"
)
