// Package openai implements [ticketchat.Provider] for the OpenAI Chat
// Completions API using github.com/sashabaranov/go-openai.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/ticketchat"
	goopenai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// Interface compliance check.
var _ ticketchat.Provider = (*Client)(nil)

// Client implements [ticketchat.Provider] for OpenAI-compatible endpoints.
type Client struct {
	client *goopenai.Client
	model  string
}

type config struct {
	baseURL    string
	httpClient *http.Client
	model      string
}

// Option configures a [Client].
type Option func(*config)

// WithBaseURL sets the API base URL, e.g. for a compatible gateway or httptest.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) { c.httpClient = hc }
}

// WithDefaultModel sets the model used when a request leaves Model empty.
func WithDefaultModel(model string) Option {
	return func(c *config) { c.model = model }
}

// New creates a new OpenAI [Client].
func New(apiKey string, opts ...Option) *Client {
	cfg := config{model: defaultModel}
	for _, o := range opts {
		o(&cfg)
	}
	oc := goopenai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		oc.BaseURL = cfg.baseURL
	}
	if cfg.httpClient != nil {
		oc.HTTPClient = cfg.httpClient
	}
	return &Client{client: goopenai.NewClientWithConfig(oc), model: cfg.model}
}

// Complete sends a chat completion request and returns the full reply.
func (c *Client) Complete(ctx context.Context, req ticketchat.Request) (ticketchat.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return ticketchat.AssistantMessage{}, fmt.Errorf("openai: %w", err)
	}
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return ticketchat.AssistantMessage{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ticketchat.AssistantMessage{}, fmt.Errorf("openai: response has no choices")
	}
	return convertResponse(resp), nil
}

func (c *Client) buildRequest(req ticketchat.Request) goopenai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	out := goopenai.ChatCompletionRequest{
		Model:     model,
		Messages:  convertMessages(req.SystemPrompt, req.Messages),
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		out.Tools = convertTools(req.Tools)
		choice := req.ToolChoice
		if choice == "" {
			choice = ticketchat.ToolChoiceAuto
		}
		out.ToolChoice = string(choice)
	}
	return out
}

func convertMessages(system string, msgs []ticketchat.Message) []goopenai.ChatCompletionMessage {
	var out []goopenai.ChatCompletionMessage
	if system != "" {
		out = append(out, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	for _, msg := range msgs {
		switch m := msg.(type) {
		case ticketchat.UserMessage:
			out = append(out, goopenai.ChatCompletionMessage{
				Role:    goopenai.ChatMessageRoleUser,
				Content: textOf(m.Content),
			})
		case ticketchat.AssistantMessage:
			am := goopenai.ChatCompletionMessage{
				Role:    goopenai.ChatMessageRoleAssistant,
				Content: m.Text(),
			}
			for _, tc := range m.ToolCalls() {
				am.ToolCalls = append(am.ToolCalls, goopenai.ToolCall{
					ID:   tc.ID,
					Type: goopenai.ToolTypeFunction,
					Function: goopenai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			out = append(out, am)
		case ticketchat.ToolResultMessage:
			out = append(out, goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    m.Text(),
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return out
}

func textOf(blocks []ticketchat.ContentBlock) string {
	return ticketchat.AssistantMessage{Content: blocks}.Text()
}

func convertTools(tools []ticketchat.Tool) []goopenai.Tool {
	out := make([]goopenai.Tool, len(tools))
	for i, t := range tools {
		out[i] = goopenai.Tool{
			Type: goopenai.ToolTypeFunction,
			Function: &goopenai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return out
}

func convertResponse(resp goopenai.ChatCompletionResponse) ticketchat.AssistantMessage {
	choice := resp.Choices[0]
	msg := ticketchat.AssistantMessage{
		StopReason:    mapFinishReason(choice.FinishReason),
		RawStopReason: string(choice.FinishReason),
		Usage:         convertUsage(resp.Usage),
		Timestamp:     time.Now(),
	}
	if choice.Message.Content != "" {
		msg.Content = append(msg.Content, ticketchat.TextBlock{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		msg.Content = append(msg.Content, ticketchat.ToolCallBlock{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: []byte(args),
		})
	}
	return msg
}

func mapFinishReason(r goopenai.FinishReason) ticketchat.StopReason {
	switch r {
	case goopenai.FinishReasonStop:
		return ticketchat.StopEndTurn
	case goopenai.FinishReasonLength:
		return ticketchat.StopLength
	case goopenai.FinishReasonToolCalls, goopenai.FinishReasonFunctionCall:
		return ticketchat.StopToolUse
	case goopenai.FinishReasonContentFilter:
		return ticketchat.StopError
	default:
		return ticketchat.StopUnknown
	}
}

// convertUsage normalizes OpenAI usage: cached prompt tokens are reported
// separately from InputTokens.
func convertUsage(u goopenai.Usage) ticketchat.Usage {
	cached := 0
	if u.PromptTokensDetails != nil {
		cached = u.PromptTokensDetails.CachedTokens
	}
	return ticketchat.Usage{
		InputTokens:     max(0, u.PromptTokens-cached),
		OutputTokens:    u.CompletionTokens,
		CacheReadTokens: cached,
	}
}
