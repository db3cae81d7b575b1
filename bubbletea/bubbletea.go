// Package bubbletea provides the chat TUI for the ticket assistant.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ticketchat"
)

// TurnFunc answers one utterance. onEvent is called for tool activity while
// the turn runs. It blocks until the turn completes or ctx is cancelled.
type TurnFunc func(ctx context.Context, utterance string, onEvent func(ticketchat.Event)) (*ticketchat.Turn, error)

// Run creates and runs the Bubble Tea program. It blocks until the program
// exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg delivers a turn event to the model.
type EventMsg struct {
	Event ticketchat.Event
}

// TurnDoneMsg signals that a turn finished. Turn is nil when the turn never
// started.
type TurnDoneMsg struct {
	Turn *ticketchat.Turn
	Err  error
}
