package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ticketchat"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model

	run     TurnFunc
	session *ticketchat.Session
	theme   ticketchat.Theme
	styles  Styles

	blocks []MessageBlock
	focus  int // index of the focused collapsible block, -1 when none

	running bool
	cancel  context.CancelFunc
	eventCh chan ticketchat.Event
	doneCh  chan TurnDoneMsg
	err     error
	ready   bool
}

// New creates a Model that answers utterances with run and records
// completed turns in session.
func New(run TurnFunc, session *ticketchat.Session, theme ticketchat.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your tickets..."
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Focus()

	return Model{
		Input:   ti,
		run:     run,
		session: session,
		theme:   theme,
		styles:  NewStyles(theme),
		focus:   -1,
	}
}

// Running reports whether a turn is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last failed turn, if any.
func (m Model) Err() error { return m.err }

// Blocks returns the rendered conversation blocks.
func (m Model) Blocks() []MessageBlock { return m.blocks }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m = m.applyEvent(msg.Event)
		m = m.refresh()
		if m.eventCh != nil {
			return m, listen(m.eventCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		m = m.finishTurn(msg)
		m = m.refresh()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	const chrome = 4 // input, status line, and the two separators
	height := max(msg.Height-chrome, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, height)
		m = m.replaySession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = height
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			// The turn reports back through TurnDoneMsg.
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)

	case tea.KeyTab:
		if m.focus >= 0 {
			block, cmd := m.blocks[m.focus].Update(ToggleMsg{})
			m.blocks[m.focus] = block
			return m.refresh(), cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		return m.focusPrev().refresh(), nil
	}

	if m.running {
		return m, nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	// Rune keys are text, not scrolling.
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.blocks = append(m.blocks, NewUserBlock(text, m.styles))

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan ticketchat.Event, 64)
	m.doneCh = make(chan TurnDoneMsg, 1)
	m.running = true

	return m.refresh(), tea.Batch(
		startTurn(ctx, m.run, text, m.eventCh, m.doneCh),
		listen(m.eventCh, m.doneCh),
	)
}

func (m Model) applyEvent(evt ticketchat.Event) Model {
	switch e := evt.(type) {
	case ticketchat.EventToolCall:
		m.blocks = append(m.blocks, NewToolCallBlock(e.Call, m.styles))
	case ticketchat.EventToolResult:
		m.blocks = append(m.blocks, NewToolResultBlock(e.ToolName, e.Content, e.IsError, m.styles))
	}
	return m.focusLast()
}

func (m Model) finishTurn(msg TurnDoneMsg) Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil

	switch {
	case msg.Err == nil && msg.Turn != nil:
		m.session.Append(*msg.Turn)
		m.blocks = append(m.blocks, NewAnswerBlock(msg.Turn.Answer, m.theme))
	case errors.Is(msg.Err, context.Canceled):
		m.blocks = append(m.blocks, NewCanceledBlock(ticketchat.StatementCanceled, m.styles))
	case msg.Err != nil:
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(ticketchat.Statement(msg.Err), m.styles))
	}
	return m.focusLast()
}

// replaySession renders turns that completed before the model was sized.
func (m Model) replaySession() Model {
	for _, turn := range m.session.Turns {
		m.blocks = append(m.blocks, NewUserBlock(turn.Utterance, m.styles))
		for _, msg := range turn.Messages {
			switch msg := msg.(type) {
			case ticketchat.AssistantMessage:
				for _, call := range msg.ToolCalls() {
					m.blocks = append(m.blocks, NewToolCallBlock(call, m.styles))
				}
			case ticketchat.ToolResultMessage:
				m.blocks = append(m.blocks, NewToolResultBlock(msg.ToolName, msg.Text(), msg.IsError, m.styles))
			}
		}
		m.blocks = append(m.blocks, NewAnswerBlock(turn.Answer, m.theme))
	}
	return m.focusLast()
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	m.Viewport.SetContent(b.String())
	m.Viewport.GotoBottom()
	return m
}

// focusLast focuses the most recent collapsible block.
func (m Model) focusLast() Model {
	m.focus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if collapsible(m.blocks[i]) {
			m.focus = i
			break
		}
	}
	return m
}

// focusPrev moves focus to the previous collapsible block, wrapping around.
func (m Model) focusPrev() Model {
	n := len(m.blocks)
	if n == 0 {
		return m
	}
	start := m.focus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if collapsible(m.blocks[idx]) {
			m.focus = idx
			return m
		}
	}
	m.focus = -1
	return m
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(ticketchat.Statement(m.err))
	case m.running:
		return m.styles.Muted.Render("Working... Ctrl+C to cancel")
	default:
		return m.styles.Muted.Render("Enter to send, Tab to expand, Ctrl+C to quit")
	}
}

// startTurn runs the turn off the UI goroutine and reports its outcome on
// doneCh after closing eventCh.
func startTurn(ctx context.Context, run TurnFunc, utterance string, eventCh chan<- ticketchat.Event, doneCh chan<- TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		turn, err := run(ctx, utterance, func(e ticketchat.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- TurnDoneMsg{Turn: turn, Err: err}
		return nil
	}
}

// listen waits for the next event, or the turn outcome once events are done.
func listen(eventCh <-chan ticketchat.Event, doneCh <-chan TurnDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-eventCh
		if !ok {
			return <-doneCh
		}
		return EventMsg{Event: evt}
	}
}
