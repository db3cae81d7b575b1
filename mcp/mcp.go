// Package mcp connects ticketchat to Model Context Protocol tool registries.
//
// Client implements [ticketchat.Registry] over an explicit session to a
// remote registry. Server exposes a [ticketchat.ToolExecutor] as a registry
// over SSE and streamable HTTP.
package mcp

import (
	"encoding/json"
	"strings"

	"github.com/fwojciec/ticketchat"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const implementationVersion = "0.1.0"

func toTool(t *mcpsdk.Tool) (ticketchat.Tool, error) {
	out := ticketchat.Tool{Name: t.Name, Description: t.Description}
	if t.InputSchema == nil {
		out.Parameters = json.RawMessage(`{"type":"object","properties":{}}`)
		return out, nil
	}
	b, err := json.Marshal(t.InputSchema)
	if err != nil {
		return ticketchat.Tool{}, err
	}
	out.Parameters = b
	return out, nil
}

// toResult flattens SDK content: text parts joined with a single space,
// other parts encoded as JSON.
func toResult(res *mcpsdk.CallToolResult) *ticketchat.ToolResult {
	if res == nil {
		return &ticketchat.ToolResult{}
	}
	var parts []string
	for _, c := range res.Content {
		switch v := c.(type) {
		case *mcpsdk.TextContent:
			parts = append(parts, v.Text)
		default:
			if b, err := json.Marshal(v); err == nil {
				parts = append(parts, string(b))
			}
		}
	}
	out := &ticketchat.ToolResult{IsError: res.IsError}
	if len(parts) > 0 {
		out.Content = []ticketchat.ContentBlock{ticketchat.TextBlock{Text: strings.Join(parts, " ")}}
	}
	return out
}

func fromResult(res *ticketchat.ToolResult) *mcpsdk.CallToolResult {
	out := &mcpsdk.CallToolResult{IsError: res.IsError, Content: []mcpsdk.Content{}}
	for _, b := range res.Content {
		if tb, ok := b.(ticketchat.TextBlock); ok {
			out.Content = append(out.Content, &mcpsdk.TextContent{Text: tb.Text})
		}
	}
	return out
}
