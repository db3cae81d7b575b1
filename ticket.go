package ticketchat

import "context"

// Ticket is a summary of one issue in the tracker.
type Ticket struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
	Status  string `json:"status"`
}

// Transition is a workflow move the tracker currently permits for a ticket.
// The set depends on the ticket's present state, so it must be fetched fresh
// before use.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TicketService is the ticketing backend the registry tools operate on.
type TicketService interface {
	CreateTicket(ctx context.Context, title, description string) (key string, err error)
	UpdateTicket(ctx context.Context, key, title, description string) error
	ListTickets(ctx context.Context, max int) ([]Ticket, error)
	Transitions(ctx context.Context, key string) ([]Transition, error)
	ApplyTransition(ctx context.Context, key, transitionID string) error
	AddComment(ctx context.Context, key, comment string) error
}
