// Package mock provides test doubles for ticketchat interfaces using function fields.
package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/ticketchat"
)

// Interface compliance checks.
var (
	_ ticketchat.Provider      = (*Provider)(nil)
	_ ticketchat.Registry      = (*Registry)(nil)
	_ ticketchat.ToolExecutor  = (*ToolExecutor)(nil)
	_ ticketchat.TicketService = (*TicketService)(nil)
)

// Provider is a test double for ticketchat.Provider.
// Set CompleteFn before calling Complete.
type Provider struct {
	CompleteFn func(ctx context.Context, req ticketchat.Request) (ticketchat.AssistantMessage, error)
}

// Complete delegates to CompleteFn.
func (p *Provider) Complete(ctx context.Context, req ticketchat.Request) (ticketchat.AssistantMessage, error) {
	return p.CompleteFn(ctx, req)
}

// Registry is a test double for ticketchat.Registry.
type Registry struct {
	ListToolsFn func(ctx context.Context) ([]ticketchat.Tool, error)
	InvokeFn    func(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error)
}

// ListTools delegates to ListToolsFn.
func (r *Registry) ListTools(ctx context.Context) ([]ticketchat.Tool, error) {
	return r.ListToolsFn(ctx)
}

// Invoke delegates to InvokeFn.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error) {
	return r.InvokeFn(ctx, name, args)
}

// ToolExecutor is a test double for ticketchat.ToolExecutor.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error)
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error) {
	return e.ExecuteFn(ctx, name, args)
}

// TicketService is a test double for ticketchat.TicketService. It also
// satisfies the transition source used by the status resolver.
type TicketService struct {
	CreateTicketFn    func(ctx context.Context, title, description string) (string, error)
	UpdateTicketFn    func(ctx context.Context, key, title, description string) error
	ListTicketsFn     func(ctx context.Context, max int) ([]ticketchat.Ticket, error)
	TransitionsFn     func(ctx context.Context, key string) ([]ticketchat.Transition, error)
	ApplyTransitionFn func(ctx context.Context, key, transitionID string) error
	AddCommentFn      func(ctx context.Context, key, comment string) error
}

// CreateTicket delegates to CreateTicketFn.
func (s *TicketService) CreateTicket(ctx context.Context, title, description string) (string, error) {
	return s.CreateTicketFn(ctx, title, description)
}

// UpdateTicket delegates to UpdateTicketFn.
func (s *TicketService) UpdateTicket(ctx context.Context, key, title, description string) error {
	return s.UpdateTicketFn(ctx, key, title, description)
}

// ListTickets delegates to ListTicketsFn.
func (s *TicketService) ListTickets(ctx context.Context, max int) ([]ticketchat.Ticket, error) {
	return s.ListTicketsFn(ctx, max)
}

// Transitions delegates to TransitionsFn.
func (s *TicketService) Transitions(ctx context.Context, key string) ([]ticketchat.Transition, error) {
	return s.TransitionsFn(ctx, key)
}

// ApplyTransition delegates to ApplyTransitionFn.
func (s *TicketService) ApplyTransition(ctx context.Context, key, transitionID string) error {
	return s.ApplyTransitionFn(ctx, key, transitionID)
}

// AddComment delegates to AddCommentFn.
func (s *TicketService) AddComment(ctx context.Context, key, comment string) error {
	return s.AddCommentFn(ctx, key, comment)
}
