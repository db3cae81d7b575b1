package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/ticketchat"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ ticketchat.Registry = (*Client)(nil)

// Client is a registry client with an explicit session lifecycle: Connect
// before use, Close when done. It never connects implicitly.
type Client struct {
	spec      string
	transport mcpsdk.Transport
	allow     []string
	logger    zerolog.Logger
	impl      *mcpsdk.Client

	mu      sync.RWMutex
	session *mcpsdk.ClientSession
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithTransport uses t instead of building a transport from the spec.
func WithTransport(t mcpsdk.Transport) ClientOption {
	return func(c *Client) { c.transport = t }
}

// WithAllowedTools restricts the catalog to tools whose names match at least
// one doublestar pattern, e.g. "*_jira_*". No patterns means everything.
func WithAllowedTools(patterns ...string) ClientOption {
	return func(c *Client) { c.allow = append(c.allow, patterns...) }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the registry described by spec (see
// [ParseSpec]). Nothing is dialed until Connect.
func NewClient(spec string, opts ...ClientOption) *Client {
	c := &Client{
		spec:   spec,
		logger: zerolog.Nop(),
		impl:   mcpsdk.NewClient(&mcpsdk.Implementation{Name: "ticketchat", Version: implementationVersion}, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the registry session. Calling Connect on a connected
// client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	for _, p := range c.allow {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("mcp: invalid tool pattern %q: %w", p, ticketchat.ErrValidation)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return nil
	}

	transport := c.transport
	if transport == nil {
		ep, err := ParseSpec(c.spec)
		if err != nil {
			return fmt.Errorf("%w: %w", ticketchat.ErrRegistryUnavailable, err)
		}
		// The spawned process, if any, must outlive the dial context.
		transport, err = ep.Transport(context.WithoutCancel(ctx))
		if err != nil {
			return fmt.Errorf("%w: %w", ticketchat.ErrRegistryUnavailable, err)
		}
	}

	session, err := c.impl.Connect(ctx, transport, nil)
	if err != nil {
		return fmt.Errorf("mcp: connect: %w: %w", ticketchat.ErrRegistryUnavailable, err)
	}
	c.session = session
	c.logger.Info().Str("registry", c.spec).Msg("registry session established")
	return nil
}

// Close tears the session down. It is safe to call on a client that never
// connected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	c.logger.Info().Str("registry", c.spec).Msg("registry session closed")
	return err
}

func (c *Client) current() (*mcpsdk.ClientSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil, fmt.Errorf("mcp: no session: %w", ticketchat.ErrRegistryUnavailable)
	}
	return c.session, nil
}

// ListTools fetches a fresh catalog snapshot, filtered by the allow-list.
func (c *Client) ListTools(ctx context.Context) ([]ticketchat.Tool, error) {
	session, err := c.current()
	if err != nil {
		return nil, err
	}

	var tools []ticketchat.Tool
	for t, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("mcp: list tools: %w: %w", ticketchat.ErrRegistryUnavailable, err)
		}
		if !c.allowed(t.Name) {
			continue
		}
		tool, err := toTool(t)
		if err != nil {
			return nil, fmt.Errorf("mcp: tool %s schema: %w: %w", t.Name, ticketchat.ErrRegistryUnavailable, err)
		}
		tools = append(tools, tool)
	}
	if err := ticketchat.ValidateTools(tools); err != nil {
		return nil, fmt.Errorf("mcp: catalog: %w: %w", ticketchat.ErrRegistryUnavailable, err)
	}
	c.logger.Debug().Int("tools", len(tools)).Msg("catalog fetched")
	return tools, nil
}

// Invoke runs a named tool. Remote failures, including protocol errors the
// registry answers with, become IsError results. Transport failures wrap
// ErrRegistryUnavailable. Arguments must be a JSON object.
func (c *Client) Invoke(ctx context.Context, name string, args json.RawMessage) (*ticketchat.ToolResult, error) {
	if !c.allowed(name) {
		return nil, fmt.Errorf("mcp: tool %s is not allowed: %w", name, ticketchat.ErrToolNotFound)
	}
	arguments := map[string]any{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return nil, fmt.Errorf("mcp: arguments for %s: %w: %w", name, ticketchat.ErrValidation, err)
		}
	}

	session, err := c.current()
	if err != nil {
		return nil, err
	}

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: name, Arguments: arguments})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("mcp: call %s: %w", name, ctxErr)
		}
		if isTransportError(err) {
			return nil, fmt.Errorf("mcp: call %s: %w: %w", name, ticketchat.ErrRegistryUnavailable, err)
		}
		c.logger.Debug().Str("tool", name).Err(err).Msg("registry rejected call")
		return ticketchat.ErrorResult("Error: %s", err), nil
	}
	return toResult(res), nil
}

func (c *Client) allowed(name string) bool {
	if len(c.allow) == 0 {
		return true
	}
	for _, p := range c.allow {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func isTransportError(err error) bool {
	var netErr net.Error
	return errors.Is(err, mcpsdk.ErrConnectionClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &netErr)
}
