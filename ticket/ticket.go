// Package ticket provides the ticket tools served by the registry: create,
// update, list, list statuses, transition and comment.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/transition"
	"github.com/rs/zerolog"
)

// Tool names.
const (
	CreateTicketTool   = "create_jira_ticket"
	UpdateTicketTool   = "update_jira_ticket"
	ListTicketsTool    = "list_jira_tickets"
	ListStatusesTool   = "list_jira_statuses"
	UpdateStatusTool   = "update_jira_status"
	AddCommentTool     = "add_comment_to_jira_ticket"
	maxListResults     = 100
	defaultListResults = 10
)

// Compile-time interface check.
var _ ticketchat.ToolExecutor = (*Executor)(nil)

// Executor dispatches tool calls onto a ticket service.
type Executor struct {
	service  ticketchat.TicketService
	resolver *transition.Resolver
	logger   zerolog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithResolver replaces the default status resolver, e.g. to change its
// tie-break policy.
func WithResolver(r *transition.Resolver) Option {
	return func(e *Executor) { e.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor over service.
func NewExecutor(service ticketchat.TicketService, opts ...Option) *Executor {
	e := &Executor{service: service, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = transition.New(service, transition.WithLogger(e.logger))
	}
	return e
}

// Execute dispatches a tool call by name. Unknown tool names and backend
// failures return an IsError result so the model can explain them. Only
// context cancellation is returned as an error.
func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error) {
	var (
		res *ticketchat.ToolResult
		err error
	)
	switch name {
	case CreateTicketTool:
		res, err = e.create(ctx, args)
	case UpdateTicketTool:
		res, err = e.update(ctx, args)
	case ListTicketsTool:
		res, err = e.list(ctx, args)
	case ListStatusesTool:
		res, err = e.statuses(ctx, args)
	case UpdateStatusTool:
		res, err = e.updateStatus(ctx, args)
	case AddCommentTool:
		res, err = e.comment(ctx, args)
	default:
		return ticketchat.ErrorResult("unknown tool: %s", name), nil
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	e.logger.Debug().Str("tool", name).Bool("is_error", res.IsError).Msg("tool executed")
	return res, nil
}

// Tools returns the tool definitions for all ticket tools.
func (e *Executor) Tools() []ticketchat.Tool {
	return Tools()
}

// Tools returns the tool definitions for all ticket tools.
func Tools() []ticketchat.Tool {
	return []ticketchat.Tool{
		{
			Name:        CreateTicketTool,
			Description: "Create a new Jira ticket with a title and a description. Returns the new ticket key.",
			Parameters:  schemaFor(&createArgs{}),
		},
		{
			Name:        UpdateTicketTool,
			Description: "Replace the title and description of an existing Jira ticket. An empty title or description leaves that field unchanged.",
			Parameters:  schemaFor(&updateArgs{}),
		},
		{
			Name:        ListTicketsTool,
			Description: "List tickets in the Jira project with their key, summary and current status.",
			Parameters:  schemaFor(&listArgs{}),
		},
		{
			Name:        ListStatusesTool,
			Description: "List the statuses a Jira ticket can currently be moved to.",
			Parameters:  schemaFor(&statusesArgs{}),
		},
		{
			Name:        UpdateStatusTool,
			Description: "Move a Jira ticket to the named status. The status must match one of the ticket's available statuses exactly.",
			Parameters:  schemaFor(&updateStatusArgs{}),
		},
		{
			Name:        AddCommentTool,
			Description: "Add a comment to a Jira ticket.",
			Parameters:  schemaFor(&commentArgs{}),
		},
	}
}
