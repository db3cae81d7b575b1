package ticketchat_test

import (
	"testing"

	"github.com/fwojciec/ticketchat"
	"github.com/stretchr/testify/assert"
)

func userMsg(text string) ticketchat.Message {
	return ticketchat.UserMessage{Content: []ticketchat.ContentBlock{ticketchat.TextBlock{Text: text}}}
}

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid defaults", func(t *testing.T) {
		t.Parallel()
		r := ticketchat.Request{Messages: []ticketchat.Message{userMsg("hello")}}
		assert.NoError(t, r.Validate())
	})

	t.Run("valid with all fields", func(t *testing.T) {
		t.Parallel()
		temp := 1.0
		r := ticketchat.Request{
			Model:        "gpt-4o",
			SystemPrompt: "You manage tickets.",
			Messages:     []ticketchat.Message{userMsg("hello")},
			Tools:        []ticketchat.Tool{{Name: "list_jira_tickets"}},
			ToolChoice:   ticketchat.ToolChoiceNone,
			MaxTokens:    1024,
			Temperature:  &temp,
		}
		assert.NoError(t, r.Validate())
	})

	t.Run("temperature out of range", func(t *testing.T) {
		t.Parallel()
		temp := 2.5
		r := ticketchat.Request{Temperature: &temp}
		assert.ErrorIs(t, r.Validate(), ticketchat.ErrValidation)
	})

	t.Run("negative max tokens", func(t *testing.T) {
		t.Parallel()
		r := ticketchat.Request{MaxTokens: -1}
		assert.ErrorIs(t, r.Validate(), ticketchat.ErrValidation)
	})

	t.Run("unknown tool choice", func(t *testing.T) {
		t.Parallel()
		r := ticketchat.Request{ToolChoice: "required"}
		assert.ErrorIs(t, r.Validate(), ticketchat.ErrValidation)
	})

	t.Run("duplicate tool names", func(t *testing.T) {
		t.Parallel()
		r := ticketchat.Request{Tools: []ticketchat.Tool{{Name: "a"}, {Name: "a"}}}
		assert.ErrorIs(t, r.Validate(), ticketchat.ErrValidation)
	})
}

func TestValidateTools(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ticketchat.ValidateTools(nil))
	assert.ErrorIs(t, ticketchat.ValidateTools([]ticketchat.Tool{{Name: ""}}), ticketchat.ErrValidation)
}

func TestValidateMessage(t *testing.T) {
	t.Parallel()

	t.Run("tool call in user message", func(t *testing.T) {
		t.Parallel()
		msg := ticketchat.UserMessage{Content: []ticketchat.ContentBlock{ticketchat.ToolCallBlock{ID: "c1"}}}
		assert.ErrorIs(t, ticketchat.ValidateMessage(msg), ticketchat.ErrValidation)
	})

	t.Run("duplicate call ids", func(t *testing.T) {
		t.Parallel()
		msg := ticketchat.AssistantMessage{Content: []ticketchat.ContentBlock{
			ticketchat.ToolCallBlock{ID: "c1", Name: "a"},
			ticketchat.ToolCallBlock{ID: "c1", Name: "b"},
		}}
		assert.ErrorIs(t, ticketchat.ValidateMessage(msg), ticketchat.ErrValidation)
	})

	t.Run("missing call id", func(t *testing.T) {
		t.Parallel()
		msg := ticketchat.AssistantMessage{Content: []ticketchat.ContentBlock{ticketchat.ToolCallBlock{Name: "a"}}}
		assert.ErrorIs(t, ticketchat.ValidateMessage(msg), ticketchat.ErrValidation)
	})

	t.Run("tool result without call id", func(t *testing.T) {
		t.Parallel()
		msg := ticketchat.ToolResultMessage{ToolName: "a"}
		assert.ErrorIs(t, ticketchat.ValidateMessage(msg), ticketchat.ErrValidation)
	})

	t.Run("valid tool result", func(t *testing.T) {
		t.Parallel()
		msg := ticketchat.ToolResultMessage{
			ToolCallID: "c1",
			ToolName:   "a",
			Content:    []ticketchat.ContentBlock{ticketchat.TextBlock{Text: "ok"}},
		}
		assert.NoError(t, ticketchat.ValidateMessage(msg))
	})
}
