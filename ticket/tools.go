package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/transition"
)

type createArgs struct {
	Title       string `json:"title" jsonschema:"description=Short summary of the ticket"`
	Description string `json:"description" jsonschema:"description=Full description of the work"`
}

type updateArgs struct {
	IssueKey    string `json:"issue_key" jsonschema:"description=Ticket key such as PROJ-7"`
	Title       string `json:"title" jsonschema:"description=New summary; empty keeps the current one"`
	Description string `json:"description" jsonschema:"description=New description; empty keeps the current one"`
}

type listArgs struct {
	MaxResult int `json:"max_result,omitempty" jsonschema:"description=Maximum number of tickets to return,minimum=1,maximum=100,default=10"`
}

type statusesArgs struct {
	TicketNo string `json:"ticket_no" jsonschema:"description=Ticket key such as PROJ-7"`
}

type updateStatusArgs struct {
	TicketNo string `json:"ticket_no" jsonschema:"description=Ticket key such as PROJ-7"`
	Status   string `json:"status" jsonschema:"description=Target status name exactly as listed"`
}

type commentArgs struct {
	TicketNo string `json:"ticket_no" jsonschema:"description=Ticket key such as PROJ-7"`
	Comment  string `json:"comment" jsonschema:"description=Comment text"`
}

func decode(args json.RawMessage, v any) *ticketchat.ToolResult {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return ticketchat.ErrorResult("invalid arguments: %s", err)
	}
	return nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Executor) create(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a createArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	if a.Title == "" {
		return ticketchat.ErrorResult("title is required"), nil
	}
	key, err := e.service.CreateTicket(ctx, a.Title, a.Description)
	if err != nil {
		if isCanceled(err) {
			return nil, err
		}
		return ticketchat.ErrorResult("Error creating jira ticket: %s", err), nil
	}
	return ticketchat.TextResult(fmt.Sprintf("ticket %s is successfully created", key)), nil
}

func (e *Executor) update(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a updateArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	if a.IssueKey == "" {
		return ticketchat.ErrorResult("issue_key is required"), nil
	}
	if err := e.service.UpdateTicket(ctx, a.IssueKey, a.Title, a.Description); err != nil {
		if isCanceled(err) {
			return nil, err
		}
		return ticketchat.ErrorResult("Error updating jira ticket: %s", err), nil
	}
	return ticketchat.TextResult("ticket is successfully updated"), nil
}

func (e *Executor) list(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a listArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	n := a.MaxResult
	switch {
	case n <= 0:
		n = defaultListResults
	case n > maxListResults:
		n = maxListResults
	}
	tickets, err := e.service.ListTickets(ctx, n)
	if err != nil {
		if isCanceled(err) {
			return nil, err
		}
		return ticketchat.ErrorResult("Error listing jira tickets: %s", err), nil
	}
	if tickets == nil {
		tickets = []ticketchat.Ticket{}
	}
	b, err := json.Marshal(tickets)
	if err != nil {
		return nil, err
	}
	return ticketchat.TextResult(string(b)), nil
}

func (e *Executor) statuses(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a statusesArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	if a.TicketNo == "" {
		return ticketchat.ErrorResult("ticket_no is required"), nil
	}
	ts, err := e.service.Transitions(ctx, a.TicketNo)
	if err != nil {
		if isCanceled(err) {
			return nil, err
		}
		return ticketchat.ErrorResult("Error listing statuses: %s", err), nil
	}
	if ts == nil {
		ts = []ticketchat.Transition{}
	}
	b, err := json.Marshal(ts)
	if err != nil {
		return nil, err
	}
	return ticketchat.TextResult(string(b)), nil
}

func (e *Executor) updateStatus(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a updateStatusArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	out := e.resolver.ResolveAndApply(ctx, a.TicketNo, a.Status)
	if out.Kind != transition.Failed {
		return ticketchat.TextResult(out.String()), nil
	}
	if out.IsCanceled() {
		return nil, out.Err
	}
	return ticketchat.ErrorResult("%s", out.String()), nil
}

func (e *Executor) comment(ctx context.Context, raw json.RawMessage) (*ticketchat.ToolResult, error) {
	var a commentArgs
	if res := decode(raw, &a); res != nil {
		return res, nil
	}
	if a.TicketNo == "" || a.Comment == "" {
		return ticketchat.ErrorResult("ticket_no and comment are required"), nil
	}
	if err := e.service.AddComment(ctx, a.TicketNo, a.Comment); err != nil {
		if isCanceled(err) {
			return nil, err
		}
		return ticketchat.ErrorResult("Error adding comment: %s", err), nil
	}
	return ticketchat.TextResult("Comment is successfully added"), nil
}
