package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fwojciec/ticketchat"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Call outcomes recorded by the server.
const (
	outcomeOK     = "ok"
	outcomeIsErr  = "tool_error"
	outcomeFailed = "failed"
)

// Server exposes a ToolExecutor as an MCP tool registry.
type Server struct {
	server   *mcpsdk.Server
	executor ticketchat.ToolExecutor
	logger   zerolog.Logger
	metrics  *serverMetrics
}

// ServerOption configures a [Server].
type ServerOption func(*Server)

// WithServerLogger sets the logger.
func WithServerLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// WithServerMetrics registers call counters on registry.
func WithServerMetrics(registry *prometheus.Registry) ServerOption {
	return func(s *Server) { s.metrics = newServerMetrics(registry) }
}

// NewServer registers every tool on a new MCP server. Calls are dispatched
// to executor by name. Tool schemas must be JSON objects.
func NewServer(name string, executor ticketchat.ToolExecutor, tools []ticketchat.Tool, opts ...ServerOption) (*Server, error) {
	if err := ticketchat.ValidateTools(tools); err != nil {
		return nil, err
	}
	s := &Server{
		server:   mcpsdk.NewServer(&mcpsdk.Implementation{Name: name, Version: implementationVersion}, nil),
		executor: executor,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, t := range tools {
		var schema map[string]any
		if err := json.Unmarshal(t.Parameters, &schema); err != nil {
			return nil, fmt.Errorf("mcp: tool %s schema: %w: %w", t.Name, ticketchat.ErrValidation, err)
		}
		if schema["type"] != "object" {
			return nil, fmt.Errorf("mcp: tool %s schema must be an object: %w", t.Name, ticketchat.ErrValidation)
		}
		s.server.AddTool(&mcpsdk.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		}, s.handler(t.Name))
	}
	return s, nil
}

func (s *Server) handler(name string) mcpsdk.ToolHandler {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		var args json.RawMessage
		if req.Params != nil {
			args = req.Params.Arguments
		}
		res, err := s.executor.Execute(ctx, name, args)
		if err != nil {
			s.metrics.observe(name, outcomeFailed)
			s.logger.Error().Err(err).Str("tool", name).Msg("tool execution failed")
			return nil, err
		}
		if res.IsError {
			s.metrics.observe(name, outcomeIsErr)
			s.logger.Warn().Str("tool", name).Str("result", res.Text()).Msg("tool reported error")
		} else {
			s.metrics.observe(name, outcomeOK)
			s.logger.Info().Str("tool", name).Msg("tool call served")
		}
		return fromResult(res), nil
	}
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcpsdk.Server {
	return s.server
}

// Connect serves a single session over transport, e.g. stdio or an
// in-memory pipe.
func (s *Server) Connect(ctx context.Context, transport mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

// SSEHandler serves the registry with the SSE transport.
func (s *Server) SSEHandler() http.Handler {
	return mcpsdk.NewSSEHandler(func(*http.Request) *mcpsdk.Server { return s.server }, nil)
}

// StreamableHandler serves the registry with the streamable HTTP transport.
func (s *Server) StreamableHandler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server { return s.server }, nil)
}

// ServeStdio serves one session over the process's stdin and stdout until
// the peer disconnects or ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}
