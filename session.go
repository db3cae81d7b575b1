package ticketchat

import (
	"time"

	"github.com/google/uuid"
)

// Turn is one utterance and everything the loop appended while answering it:
// the user message, the plan reply, tool results, and the final reply.
// Messages is append-only while the turn runs.
type Turn struct {
	ID         string
	Utterance  string
	Messages   []Message
	Answer     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// ModelCalls counts assistant messages in the turn.
func (t *Turn) ModelCalls() int {
	n := 0
	for _, m := range t.Messages {
		if m.Role() == RoleAssistant {
			n++
		}
	}
	return n
}

// Usage sums token usage over the turn's model calls.
func (t *Turn) Usage() Usage {
	var u Usage
	for _, m := range t.Messages {
		if am, ok := m.(AssistantMessage); ok {
			u = u.Add(am.Usage)
		}
	}
	return u
}

// ToolResults returns the tool results in the order they were appended.
func (t *Turn) ToolResults() []ToolResultMessage {
	var out []ToolResultMessage
	for _, m := range t.Messages {
		if trm, ok := m.(ToolResultMessage); ok {
			out = append(out, trm)
		}
	}
	return out
}

// Session is the in-memory chat history shown by the presentation shell.
// It is never persisted.
type Session struct {
	ID        string
	Turns     []Turn
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
}

// Append records a completed turn.
func (s *Session) Append(t Turn) {
	s.Turns = append(s.Turns, t)
	s.UpdatedAt = time.Now()
}
