// Package transition resolves a human-readable status name to the workflow
// transition the ticketing backend currently permits, and applies it.
package transition

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/ticketchat"
	"github.com/rs/zerolog"
)

// Source lists and applies transitions for a ticket.
// ticketchat.TicketService satisfies it.
type Source interface {
	Transitions(ctx context.Context, key string) ([]ticketchat.Transition, error)
	ApplyTransition(ctx context.Context, key, transitionID string) error
}

// Kind classifies the outcome of a resolution attempt.
type Kind int

const (
	Applied Kind = iota
	UnknownStatus
	Ambiguous
	Failed
)

func (k Kind) String() string {
	switch k {
	case Applied:
		return "applied"
	case UnknownStatus:
		return "unknown_status"
	case Ambiguous:
		return "ambiguous"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of ResolveAndApply. UnknownStatus and Ambiguous are
// normal outcomes, not errors.
type Outcome struct {
	Kind       Kind
	Key        string
	Status     string
	Transition ticketchat.Transition // set when Applied
	Candidates []ticketchat.Transition
	Err        error // set when Failed
}

// String renders the outcome as the text reported back to the model.
func (o Outcome) String() string {
	switch o.Kind {
	case Applied:
		return "Ticket status is successfully updated"
	case UnknownStatus:
		return "Status is unknown"
	case Ambiguous:
		return fmt.Sprintf("Status %q is ambiguous: %d transitions share that name", o.Status, len(o.Candidates))
	default:
		return fmt.Sprintf("Error updating ticket status: %v", o.Err)
	}
}

// Policy decides what happens when several permitted transitions share the
// requested name.
type Policy int

const (
	// RejectAmbiguous reports Ambiguous and applies nothing.
	RejectAmbiguous Policy = iota
	// FirstMatch applies the first match in the order the backend listed them.
	FirstMatch
)

// Resolver maps status names to transition ids. It never caches: the set of
// permitted transitions depends on the ticket's current state.
type Resolver struct {
	source Source
	policy Policy
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPolicy sets the tie-break policy. Default RejectAmbiguous.
func WithPolicy(p Policy) Option {
	return func(r *Resolver) {
		r.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver over source.
func New(source Source, opts ...Option) *Resolver {
	r := &Resolver{source: source, policy: RejectAmbiguous, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAndApply fetches the ticket's permitted transitions, picks the one
// whose name equals status exactly (case-sensitive), and applies it.
func (r *Resolver) ResolveAndApply(ctx context.Context, key, status string) Outcome {
	out := Outcome{Key: key, Status: status}
	if key == "" || status == "" {
		out.Kind = Failed
		out.Err = fmt.Errorf("ticket key and status are required: %w", ticketchat.ErrValidation)
		return out
	}

	available, err := r.source.Transitions(ctx, key)
	if err != nil {
		out.Kind = Failed
		out.Err = fmt.Errorf("list transitions for %s: %w", key, err)
		return out
	}

	matches := Match(available, status)
	out.Candidates = matches
	switch {
	case len(matches) == 0:
		out.Kind = UnknownStatus
		r.logger.Debug().Str("key", key).Str("status", status).Int("available", len(available)).Msg("no transition matches status")
		return out
	case len(matches) > 1 && r.policy == RejectAmbiguous:
		out.Kind = Ambiguous
		r.logger.Warn().Str("key", key).Str("status", status).Int("matches", len(matches)).Msg("ambiguous status")
		return out
	}

	chosen := matches[0]
	if err := r.source.ApplyTransition(ctx, key, chosen.ID); err != nil {
		out.Kind = Failed
		out.Err = fmt.Errorf("apply transition %s to %s: %w", chosen.ID, key, err)
		return out
	}
	out.Kind = Applied
	out.Transition = chosen
	r.logger.Info().Str("key", key).Str("status", status).Str("transition", chosen.ID).Msg("status transitioned")
	return out
}

// Match returns the transitions whose name equals status exactly, in input order.
func Match(available []ticketchat.Transition, status string) []ticketchat.Transition {
	var out []ticketchat.Transition
	for _, t := range available {
		if t.Name == status {
			out = append(out, t)
		}
	}
	return out
}

// IsCanceled reports whether a Failed outcome was caused by context cancellation.
func (o Outcome) IsCanceled() bool {
	return o.Kind == Failed && (errors.Is(o.Err, context.Canceled) || errors.Is(o.Err, context.DeadlineExceeded))
}
