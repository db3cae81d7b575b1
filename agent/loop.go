// Package agent runs one chat turn: plan with tools available, execute the
// requested tool calls against the registry, then synthesize the answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/ticketchat"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	phasePlan       = "plan"
	phaseSynthesize = "synthesize"

	defaultMaxParallel = 4
)

// Loop orchestrates a turn between a Provider and a Registry. The registry
// session is owned by one loop, so turns run one at a time.
type Loop struct {
	provider     ticketchat.Provider
	registry     ticketchat.Registry
	systemPrompt string
	model        string
	maxParallel  int
	logger       zerolog.Logger
	metrics      *metricsProvider

	sem chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithSystemPrompt sets the system prompt sent with both completion calls.
func WithSystemPrompt(prompt string) Option {
	return func(l *Loop) { l.systemPrompt = prompt }
}

// WithModel sets the model ID for provider requests.
// Empty string means the provider uses its default model.
func WithModel(model string) Option {
	return func(l *Loop) { l.model = model }
}

// WithMaxParallel bounds concurrent tool invocations within a turn.
// 1 dispatches sequentially. Values below 1 are treated as 1.
func WithMaxParallel(n int) Option {
	return func(l *Loop) {
		if n < 1 {
			n = 1
		}
		l.maxParallel = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// WithMetrics registers turn, model and tool counters on registry.
func WithMetrics(registry *prometheus.Registry) Option {
	return func(l *Loop) { l.metrics = newMetricsProvider(registry) }
}

// New creates a new Loop.
func New(provider ticketchat.Provider, registry ticketchat.Registry, opts ...Option) *Loop {
	l := &Loop{
		provider:    provider,
		registry:    registry,
		maxParallel: defaultMaxParallel,
		logger:      zerolog.Nop(),
		sem:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(ticketchat.Event)
}

// WithEventHandler sets a callback that receives tool call and tool result
// events during the run, in request order. It is called from the goroutine
// running Run.
func WithEventHandler(h func(ticketchat.Event)) RunOption {
	return func(c *runConfig) { c.onEvent = h }
}

func (c *runConfig) emit(e ticketchat.Event) {
	if c.onEvent != nil {
		c.onEvent(e)
	}
}

// Run answers one utterance. It makes at most two completion calls: one with
// tools available, and, only if that reply requested tools, one more after
// all results are in with tool calls disabled.
//
// Fatal errors wrap ErrRegistryUnavailable, ErrModelUnavailable or the
// context's error. The returned Turn holds whatever was appended before the
// failure.
func (l *Loop) Run(ctx context.Context, utterance string, opts ...RunOption) (*ticketchat.Turn, error) {
	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	select {
	case l.sem <- struct{}{}:
		defer func() { <-l.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	turn := &ticketchat.Turn{
		ID:        uuid.NewString(),
		Utterance: utterance,
		StartedAt: time.Now(),
	}
	log := l.logger.With().Str("turn", turn.ID).Logger()

	err := l.run(ctx, turn, &cfg, log)
	turn.FinishedAt = time.Now()
	l.metrics.turn(outcomeOf(err))
	if err != nil {
		log.Error().Err(err).Dur("elapsed", turn.FinishedAt.Sub(turn.StartedAt)).Msg("turn failed")
		return turn, err
	}
	log.Info().
		Int("model_calls", turn.ModelCalls()).
		Int("tool_results", len(turn.ToolResults())).
		Int("input_tokens", turn.Usage().InputTokens).
		Int("output_tokens", turn.Usage().OutputTokens).
		Dur("elapsed", turn.FinishedAt.Sub(turn.StartedAt)).
		Msg("turn answered")
	return turn, nil
}

// Answer runs a turn and returns either the answer or the fixed statement
// for the infrastructure fault that aborted it.
func (l *Loop) Answer(ctx context.Context, utterance string, opts ...RunOption) string {
	turn, err := l.Run(ctx, utterance, opts...)
	if err != nil {
		return ticketchat.Statement(err)
	}
	return turn.Answer
}

func (l *Loop) run(ctx context.Context, turn *ticketchat.Turn, cfg *runConfig, log zerolog.Logger) error {
	tools, err := l.registry.ListTools(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !errors.Is(err, ticketchat.ErrRegistryUnavailable) {
			err = fmt.Errorf("%w: %w", ticketchat.ErrRegistryUnavailable, err)
		}
		return fmt.Errorf("list tools: %w", err)
	}
	log.Debug().Int("tools", len(tools)).Msg("catalog snapshot")

	turn.Messages = append(turn.Messages, ticketchat.NewUserMessage(turn.Utterance))

	plan, err := l.complete(ctx, phasePlan, turn.Messages, tools, ticketchat.ToolChoiceAuto)
	if err != nil {
		return err
	}
	plan, fixed := normalizeCallIDs(plan)
	if fixed > 0 {
		log.Warn().Int("calls", fixed).Msg("assigned ids to tool calls with missing or duplicate ids")
	}
	turn.Messages = append(turn.Messages, plan)

	calls := plan.ToolCalls()
	if len(calls) == 0 {
		turn.Answer = plan.Text()
		return nil
	}

	results, err := l.dispatch(ctx, tools, calls, cfg, log)
	if err != nil {
		return err
	}
	for _, r := range results {
		turn.Messages = append(turn.Messages, r)
		cfg.emit(ticketchat.EventToolResult{ID: r.ToolCallID, ToolName: r.ToolName, Content: r.Text(), IsError: r.IsError})
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	final, err := l.complete(ctx, phaseSynthesize, turn.Messages, tools, ticketchat.ToolChoiceNone)
	if err != nil {
		return err
	}
	if extra := final.ToolCalls(); len(extra) > 0 {
		log.Warn().Int("calls", len(extra)).Msg("ignoring tool calls in final reply")
	}
	turn.Messages = append(turn.Messages, final)
	turn.Answer = final.Text()
	return nil
}

func (l *Loop) complete(ctx context.Context, phase string, msgs []ticketchat.Message, tools []ticketchat.Tool, choice ticketchat.ToolChoice) (ticketchat.AssistantMessage, error) {
	l.metrics.modelCall(phase)
	req := ticketchat.Request{
		Model:        l.model,
		SystemPrompt: l.systemPrompt,
		Messages:     append([]ticketchat.Message(nil), msgs...),
		Tools:        tools,
		ToolChoice:   choice,
	}
	msg, err := l.provider.Complete(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ticketchat.AssistantMessage{}, ctxErr
		}
		return ticketchat.AssistantMessage{}, fmt.Errorf("%s: %w: %w", phase, ticketchat.ErrModelUnavailable, err)
	}
	return msg, nil
}

// normalizeCallIDs gives every tool call a unique id so results can be
// matched to requests. It returns the number of ids it had to assign.
func normalizeCallIDs(msg ticketchat.AssistantMessage) (ticketchat.AssistantMessage, int) {
	seen := make(map[string]struct{})
	fixed := 0
	content := make([]ticketchat.ContentBlock, len(msg.Content))
	for i, b := range msg.Content {
		if tc, ok := b.(ticketchat.ToolCallBlock); ok {
			if _, dup := seen[tc.ID]; tc.ID == "" || dup {
				tc.ID = "call_" + uuid.NewString()
				fixed++
			}
			seen[tc.ID] = struct{}{}
			b = tc
		}
		content[i] = b
	}
	msg.Content = content
	return msg, fixed
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeAnswered
	case errors.Is(err, ticketchat.ErrRegistryUnavailable):
		return outcomeRegistryUnavailable
	case errors.Is(err, ticketchat.ErrModelUnavailable):
		return outcomeModelUnavailable
	default:
		return outcomeCanceled
	}
}
