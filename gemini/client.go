package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/ticketchat"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ ticketchat.Provider = (*Client)(nil)

// Client implements [ticketchat.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the default model ID.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Complete sends a request to the Gemini API and returns the full reply.
func (c *Client) Complete(ctx context.Context, req ticketchat.Request) (ticketchat.AssistantMessage, error) {
	if err := req.Validate(); err != nil {
		return ticketchat.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, ConvertMessages(req.Messages), BuildConfig(req))
	if err != nil {
		return ticketchat.AssistantMessage{}, fmt.Errorf("gemini: %w", err)
	}
	return ConvertResponse(resp)
}

// BuildConfig maps generation parameters and the tool choice.
// Exported for testing.
func BuildConfig(req ticketchat.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Tools:           ConvertTools(req.Tools),
	}

	if len(config.Tools) > 0 {
		mode := genai.FunctionCallingConfigModeAuto
		if req.ToolChoice == ticketchat.ToolChoiceNone {
			mode = genai.FunctionCallingConfigModeNone
		}
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: mode},
		}
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}

// ConvertMessages converts ticketchat Messages to genai Contents.
// Exported for testing.
func ConvertMessages(msgs []ticketchat.Message) []*genai.Content {
	var result []*genai.Content
	for _, msg := range msgs {
		switch m := msg.(type) {
		case ticketchat.UserMessage:
			result = append(result, &genai.Content{
				Role:  genai.RoleUser,
				Parts: convertParts(m.Content),
			})
		case ticketchat.AssistantMessage:
			result = append(result, &genai.Content{
				Role:  genai.RoleModel,
				Parts: convertParts(m.Content),
			})
		case ticketchat.ToolResultMessage:
			key := "output"
			if m.IsError {
				key = "error"
			}
			part := &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       m.ToolCallID,
				Name:     m.ToolName,
				Response: map[string]any{key: m.Text()},
			}}
			// Parallel results go back in one content, like the calls came.
			if n := len(result); n > 0 && isFunctionResponse(result[n-1]) {
				result[n-1].Parts = append(result[n-1].Parts, part)
				continue
			}
			result = append(result, &genai.Content{Role: genai.RoleUser, Parts: []*genai.Part{part}})
		}
	}
	return result
}

func isFunctionResponse(c *genai.Content) bool {
	return c.Role == genai.RoleUser && len(c.Parts) > 0 && c.Parts[0].FunctionResponse != nil
}

func convertParts(blocks []ticketchat.ContentBlock) []*genai.Part {
	var parts []*genai.Part
	for _, b := range blocks {
		switch bl := b.(type) {
		case ticketchat.TextBlock:
			parts = append(parts, &genai.Part{Text: bl.Text})
		case ticketchat.ToolCallBlock:
			var args map[string]any
			_ = json.Unmarshal(bl.Arguments, &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   bl.ID,
					Name: bl.Name,
					Args: args,
				},
			})
		}
	}
	return parts
}

// ConvertTools converts ticketchat Tools to genai Tools.
// Exported for testing.
func ConvertTools(tools []ticketchat.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, len(tools))
	for i, t := range tools {
		var schema map[string]any
		_ = json.Unmarshal(t.Parameters, &schema)
		decls[i] = &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: schema,
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// ConvertResponse converts the first candidate into an AssistantMessage.
// Gemini may omit function call ids; those get a generated one.
// Exported for testing.
func ConvertResponse(resp *genai.GenerateContentResponse) (ticketchat.AssistantMessage, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ticketchat.AssistantMessage{}, fmt.Errorf("gemini: response has no candidates")
	}
	cand := resp.Candidates[0]
	msg := ticketchat.AssistantMessage{
		StopReason:    mapFinishReason(cand.FinishReason),
		RawStopReason: string(cand.FinishReason),
		Usage:         convertUsage(resp.UsageMetadata),
		Timestamp:     time.Now(),
	}
	if cand.Content == nil {
		return msg, nil
	}
	for _, p := range cand.Content.Parts {
		switch {
		case p == nil || p.Thought:
		case p.FunctionCall != nil:
			id := p.FunctionCall.ID
			if id == "" {
				id = "call_" + uuid.NewString()
			}
			args, err := json.Marshal(p.FunctionCall.Args)
			if err != nil {
				return ticketchat.AssistantMessage{}, fmt.Errorf("gemini: encode arguments for %s: %w", p.FunctionCall.Name, err)
			}
			if p.FunctionCall.Args == nil {
				args = []byte("{}")
			}
			msg.Content = append(msg.Content, ticketchat.ToolCallBlock{ID: id, Name: p.FunctionCall.Name, Arguments: args})
			msg.StopReason = ticketchat.StopToolUse
		case p.Text != "":
			msg.Content = append(msg.Content, ticketchat.TextBlock{Text: p.Text})
		}
	}
	return msg, nil
}

func mapFinishReason(r genai.FinishReason) ticketchat.StopReason {
	switch r {
	case genai.FinishReasonStop:
		return ticketchat.StopEndTurn
	case genai.FinishReasonMaxTokens:
		return ticketchat.StopLength
	case "":
		return ticketchat.StopUnknown
	default:
		return ticketchat.StopError
	}
}

func convertUsage(u *genai.GenerateContentResponseUsageMetadata) ticketchat.Usage {
	if u == nil {
		return ticketchat.Usage{}
	}
	cached := int(u.CachedContentTokenCount)
	return ticketchat.Usage{
		InputTokens:     max(0, int(u.PromptTokenCount)-cached),
		OutputTokens:    int(u.CandidatesTokenCount) + int(u.ThoughtsTokenCount),
		CacheReadTokens: cached,
	}
}
