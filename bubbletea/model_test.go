package bubbletea_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/fwojciec/ticketchat"
	bt "github.com/fwojciec/ticketchat/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(nopTurn, ticketchat.NewSession(), ticketchat.DefaultTheme())
	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
	assert.Equal(t, "Initializing...", m.View())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size sizes the viewport", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height)

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("ctrl+c while running cancels without quitting", func(t *testing.T) {
		t.Parallel()
		var canceled bool
		m := bt.SetRunning(initModel(t, nopTurn), func() { canceled = true })

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.True(t, canceled)
		assert.Nil(t, cmd)
		assert.True(t, updated.(bt.Model).Running())
	})

	t.Run("enter with empty input does nothing", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.False(t, updated.(bt.Model).Running())
		assert.Nil(t, cmd)
	})

	t.Run("enter while running is ignored", func(t *testing.T) {
		t.Parallel()
		m := bt.SetRunning(initModel(t, nopTurn), nil)
		m.Input.SetValue("again")
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, "again", updated.(bt.Model).Input.Value())
	})

	t.Run("submit shows the utterance and starts a turn", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m.Input.SetValue("  list my tickets  ")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.True(t, m.Running())
		assert.Empty(t, m.Input.Value())
		assert.Contains(t, m.View(), "> list my tickets")
		assert.Contains(t, m.View(), "Working...")
	})

	t.Run("tool events add blocks", func(t *testing.T) {
		t.Parallel()
		m := initModel(t, nopTurn)
		m = updateModel(t, m, bt.EventMsg{Event: ticketchat.EventToolCall{Call: ticketchat.ToolCallBlock{ID: "c1", Name: "list_jira_tickets", Arguments: json.RawMessage(`{}`)}}})
		m = updateModel(t, m, bt.EventMsg{Event: ticketchat.EventToolResult{ID: "c1", ToolName: "list_jira_tickets", Content: `[{"key":"PROJ-1"}]`}})

		require.Len(t, m.Blocks(), 2)
		assert.IsType(t, &bt.ToolCallBlock{}, m.Blocks()[0])
		assert.IsType(t, &bt.ToolResultBlock{}, m.Blocks()[1])
		assert.Equal(t, 1, bt.Focus(m))
		assert.Contains(t, m.View(), "PROJ-1")
	})

	t.Run("turn done records the answer", func(t *testing.T) {
		t.Parallel()
		session := ticketchat.NewSession()
		m := bt.New(nopTurn, session, ticketchat.DefaultTheme())
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
		m = bt.SetRunning(m, nil)

		m = updateModel(t, m, bt.TurnDoneMsg{Turn: &ticketchat.Turn{Utterance: "hi", Answer: "You have 2 open tickets."}})
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
		assert.Contains(t, m.View(), "You have 2 open tickets.")
		require.Len(t, session.Turns, 1)
		assert.Equal(t, "You have 2 open tickets.", session.Turns[0].Answer)
	})

	t.Run("infrastructure fault shows the fixed statement", func(t *testing.T) {
		t.Parallel()
		m := bt.SetRunning(initModel(t, nopTurn), nil)
		err := fmt.Errorf("list tools: %w: connection reset", ticketchat.ErrRegistryUnavailable)

		m = updateModel(t, m, bt.TurnDoneMsg{Err: err})
		assert.False(t, m.Running())
		assert.ErrorIs(t, m.Err(), ticketchat.ErrRegistryUnavailable)
		view := m.View()
		assert.Contains(t, view, ticketchat.StatementRegistryUnavailable)
		assert.NotContains(t, view, "connection reset")
	})

	t.Run("cancelled turn is not an error", func(t *testing.T) {
		t.Parallel()
		m := bt.SetRunning(initModel(t, nopTurn), nil)
		m = updateModel(t, m, bt.TurnDoneMsg{Err: context.Canceled})
		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
		assert.Contains(t, m.View(), ticketchat.StatementCanceled)
	})

	t.Run("long statement wraps to width", func(t *testing.T) {
		t.Parallel()
		m := bt.SetRunning(initModelWithSize(t, nopTurn, 30, 20), nil)
		m = updateModel(t, m, bt.TurnDoneMsg{Err: ticketchat.ErrModelUnavailable})
		for _, line := range strings.Split(m.Viewport.View(), "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), 30, "line %q", line)
		}
	})

	t.Run("submit after error clears it", func(t *testing.T) {
		t.Parallel()
		m := bt.SetRunning(initModel(t, nopTurn), nil)
		m = updateModel(t, m, bt.TurnDoneMsg{Err: ticketchat.ErrModelUnavailable})
		require.Error(t, m.Err())

		m.Input.SetValue("retry")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.True(t, m.Running())
		assert.NoError(t, m.Err())
	})
}

func TestModel_Focus(t *testing.T) {
	t.Parallel()

	m := initModel(t, nopTurn)
	call := func(id string) tea.Msg {
		return bt.EventMsg{Event: ticketchat.EventToolCall{Call: ticketchat.ToolCallBlock{ID: id, Name: "list_jira_statuses", Arguments: json.RawMessage(`{"ticket_key":"PROJ-3"}`)}}}
	}
	m = updateModel(t, m, call("c1"))
	m = updateModel(t, m, call("c2"))
	require.Equal(t, 1, bt.Focus(m))

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.Blocks()[1].(*bt.ToolCallBlock).Collapsed())
	assert.True(t, m.Blocks()[0].(*bt.ToolCallBlock).Collapsed())
	assert.Contains(t, m.View(), `"ticket_key": "PROJ-3"`)

	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 0, bt.Focus(m))
	m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, bt.Focus(m))
}

func TestModel_ReplaySession(t *testing.T) {
	t.Parallel()

	session := ticketchat.NewSession()
	session.Append(ticketchat.Turn{
		Utterance: "move PROJ-4 to done",
		Messages: []ticketchat.Message{
			ticketchat.NewUserMessage("move PROJ-4 to done"),
			ticketchat.AssistantMessage{Content: []ticketchat.ContentBlock{
				ticketchat.ToolCallBlock{ID: "c1", Name: "update_jira_status", Arguments: json.RawMessage(`{"ticket_key":"PROJ-4","status":"Done"}`)},
			}},
			ticketchat.ToolResultMessage{ToolCallID: "c1", ToolName: "update_jira_status", Content: []ticketchat.ContentBlock{ticketchat.TextBlock{Text: "Ticket status is successfully updated"}}},
			ticketchat.AssistantMessage{Content: []ticketchat.ContentBlock{ticketchat.TextBlock{Text: "PROJ-4 is now Done."}}},
		},
		Answer: "PROJ-4 is now Done.",
	})

	m := bt.New(nopTurn, session, ticketchat.DefaultTheme())
	m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	require.Len(t, m.Blocks(), 4)
	assert.IsType(t, &bt.UserBlock{}, m.Blocks()[0])
	assert.IsType(t, &bt.ToolCallBlock{}, m.Blocks()[1])
	assert.IsType(t, &bt.ToolResultBlock{}, m.Blocks()[2])
	assert.IsType(t, &bt.AnswerBlock{}, m.Blocks()[3])
	assert.Equal(t, 2, bt.Focus(m))
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full turn with tool activity", func(t *testing.T) {
		t.Parallel()

		run := func(_ context.Context, utterance string, onEvent func(ticketchat.Event)) (*ticketchat.Turn, error) {
			call := ticketchat.ToolCallBlock{ID: "c1", Name: "create_jira_ticket", Arguments: json.RawMessage(`{"title":"Login bug"}`)}
			onEvent(ticketchat.EventToolCall{Call: call})
			onEvent(ticketchat.EventToolResult{ID: "c1", ToolName: "create_jira_ticket", Content: `{"key":"PROJ-77"}`})
			return &ticketchat.Turn{Utterance: utterance, Answer: "Created PROJ-77."}, nil
		}
		session := ticketchat.NewSession()
		tm := teatest.NewTestModel(t, bt.New(run, session, ticketchat.DefaultTheme()),
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("file a login bug")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("create_jira_ticket")) &&
				bytes.Contains(out, []byte("Created PROJ-77.")) &&
				bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		require.Len(t, session.Turns, 1)
		assert.Equal(t, "file a login bug", session.Turns[0].Utterance)
	})

	t.Run("ctrl+c cancels a running turn", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		run := func(ctx context.Context, _ string, _ func(ticketchat.Event)) (*ticketchat.Turn, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		tm := teatest.NewTestModel(t, bt.New(run, ticketchat.NewSession(), ticketchat.DefaultTheme()),
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("slow")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
		<-started
		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte(ticketchat.StatementCanceled))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final := fm.(bt.Model)
		assert.NoError(t, final.Err())
	})
}
