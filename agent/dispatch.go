package agent

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/ticketchat"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// dispatch invokes every call and returns one result per call, in request
// order. Calls run concurrently up to maxParallel. Only registry loss and
// cancellation are returned as errors; everything else becomes an IsError
// result for the model to explain.
func (l *Loop) dispatch(ctx context.Context, tools []ticketchat.Tool, calls []ticketchat.ToolCallBlock, cfg *runConfig, log zerolog.Logger) ([]ticketchat.ToolResultMessage, error) {
	results := make([]ticketchat.ToolResultMessage, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxParallel)
	for i, call := range calls {
		cfg.emit(ticketchat.EventToolCall{Call: call})
		g.Go(func() error {
			res, err := l.invoke(gctx, tools, call, log)
			if err != nil {
				return err
			}
			results[i] = ticketchat.ToolResultMessage{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    res.Content,
				IsError:    res.IsError,
				Timestamp:  time.Now(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

func (l *Loop) invoke(ctx context.Context, tools []ticketchat.Tool, call ticketchat.ToolCallBlock, log zerolog.Logger) (*ticketchat.ToolResult, error) {
	log = log.With().Str("tool", call.Name).Str("call", call.ID).Logger()

	if _, ok := ticketchat.FindTool(tools, call.Name); !ok {
		l.metrics.toolCall(call.Name, toolUnknown)
		log.Warn().Msg("model requested a tool outside the catalog")
		return ticketchat.ErrorResult("unknown tool: %s", call.Name), nil
	}

	res, err := l.registry.Invoke(ctx, call.Name, call.Arguments)
	switch {
	case err == nil:
	case errors.Is(err, ticketchat.ErrRegistryUnavailable):
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		l.metrics.toolCall(call.Name, toolLocalErr)
		log.Warn().Err(err).Msg("tool invocation failed locally")
		return ticketchat.ErrorResult("Error: %s", err), nil
	}

	if res == nil {
		res = &ticketchat.ToolResult{}
	}
	if res.IsError {
		l.metrics.toolCall(call.Name, toolReportedErr)
		log.Debug().Str("result", res.Text()).Msg("tool reported error")
	} else {
		l.metrics.toolCall(call.Name, toolOK)
		log.Debug().Msg("tool call succeeded")
	}
	return res, nil
}
