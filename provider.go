package ticketchat

import "context"

// ToolChoice constrains whether the model may request tool calls.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool calls; the model must answer in text.
	ToolChoiceNone ToolChoice = "none"
)

// Provider is a strategy pattern interface for completion backends.
// Complete blocks until the full reply is available.
type Provider interface {
	Complete(ctx context.Context, req Request) (AssistantMessage, error)
}

// Request carries model selection and generation parameters.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Tools        []Tool
	ToolChoice   ToolChoice // empty = ToolChoiceAuto when tools are present
	MaxTokens    int        // 0 = provider default
	Temperature  *float64   // nil = provider default
}
