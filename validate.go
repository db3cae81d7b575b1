package ticketchat

import "fmt"

// Validate checks universal constraints on Request.
// Provider implementations may apply additional provider-specific validation.
func (r Request) Validate() error {
	if r.Temperature != nil {
		if *r.Temperature < 0 || *r.Temperature > 2 {
			return fmt.Errorf("temperature must be in [0, 2], got %g: %w", *r.Temperature, ErrValidation)
		}
	}
	if r.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative, got %d: %w", r.MaxTokens, ErrValidation)
	}
	switch r.ToolChoice {
	case "", ToolChoiceAuto, ToolChoiceNone:
	default:
		return fmt.Errorf("unknown tool choice %q: %w", r.ToolChoice, ErrValidation)
	}
	if err := ValidateTools(r.Tools); err != nil {
		return err
	}
	for _, m := range r.Messages {
		if err := ValidateMessage(m); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTools checks that every tool has a name and that names are unique
// within the snapshot.
func ValidateTools(tools []Tool) error {
	seen := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			return fmt.Errorf("tool name is empty: %w", ErrValidation)
		}
		if _, ok := seen[t.Name]; ok {
			return fmt.Errorf("duplicate tool name %q: %w", t.Name, ErrValidation)
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}

// ValidateMessage checks that a message's content blocks are valid for its role.
func ValidateMessage(msg Message) error {
	switch m := msg.(type) {
	case UserMessage:
		return validateBlocks(m.Content, m.Role(), allowText)
	case AssistantMessage:
		if err := validateBlocks(m.Content, m.Role(), allowText|allowToolCall); err != nil {
			return err
		}
		return validateCallIDs(m.ToolCalls())
	case ToolResultMessage:
		if m.ToolCallID == "" {
			return fmt.Errorf("tool result for %q has no call id: %w", m.ToolName, ErrValidation)
		}
		return validateBlocks(m.Content, m.Role(), allowText)
	default:
		return fmt.Errorf("unknown message type %T: %w", msg, ErrValidation)
	}
}

type blockAllow uint8

const (
	allowText blockAllow = 1 << iota
	allowToolCall
)

func validateBlocks(blocks []ContentBlock, role Role, allowed blockAllow) error {
	for _, b := range blocks {
		switch b.(type) {
		case TextBlock:
			if allowed&allowText == 0 {
				return fmt.Errorf("TextBlock not allowed in %s message: %w", role, ErrValidation)
			}
		case ToolCallBlock:
			if allowed&allowToolCall == 0 {
				return fmt.Errorf("ToolCallBlock not allowed in %s message: %w", role, ErrValidation)
			}
		default:
			return fmt.Errorf("unknown content block type %T in %s message: %w", b, role, ErrValidation)
		}
	}
	return nil
}

func validateCallIDs(calls []ToolCallBlock) error {
	seen := make(map[string]struct{}, len(calls))
	for _, c := range calls {
		if c.ID == "" {
			return fmt.Errorf("tool call %q has no id: %w", c.Name, ErrValidation)
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("duplicate tool call id %q: %w", c.ID, ErrValidation)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
