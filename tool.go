package ticketchat

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool describes one callable operation: its name, what it does and the JSON
// schema of its arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolExecutor runs tools. Execute returns error for infrastructure failures.
// ToolResult.IsError indicates tool-reported domain failures sent back to the model.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// Registry is a remote tool registry: a catalog snapshot plus invocation.
//
// ListTools returns the current catalog. Failures wrap ErrRegistryUnavailable.
//
// Invoke runs a named tool. Failures reported by the remote side come back as
// a ToolResult with IsError set. A returned error means the call could not be
// made at all; transport failures wrap ErrRegistryUnavailable.
type Registry interface {
	ListTools(ctx context.Context) ([]Tool, error)
	Invoke(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	Content []ContentBlock
	IsError bool
}

// Text concatenates the result's text blocks with a single space.
func (r *ToolResult) Text() string {
	if r == nil {
		return ""
	}
	return joinText(r.Content, " ")
}

// TextResult builds a successful single-text result.
func TextResult(text string) *ToolResult {
	return &ToolResult{Content: []ContentBlock{TextBlock{Text: text}}}
}

// ErrorResult builds a failed single-text result.
func ErrorResult(format string, args ...any) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{TextBlock{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

// FindTool returns the tool with the given name from a snapshot.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}
