package mcp

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	stdioSchemePrefix = "stdio://"
	sseSchemePrefix   = "sse://"
)

// TransportKind names the wire transport chosen for a registry spec.
type TransportKind string

const (
	TransportStdio      TransportKind = "stdio"
	TransportSSE        TransportKind = "sse"
	TransportStreamable TransportKind = "streamable"
)

// Endpoint is a parsed registry spec.
type Endpoint struct {
	Kind    TransportKind
	URL     string   // http(s) transports
	Command []string // stdio transport
}

// ParseSpec parses a registry spec:
//
//	stdio://cmd args     spawn cmd and speak MCP over its stdio
//	sse://host/path      SSE, https assumed when no scheme is given
//	http+sse://...       SSE over http
//	http+stream://...    streamable HTTP
//	http(s)://...        SSE
//	anything else        stdio command line
func ParseSpec(spec string) (Endpoint, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Endpoint{}, fmt.Errorf("mcp: registry spec is empty")
	}

	lowered := strings.ToLower(spec)
	switch {
	case strings.HasPrefix(lowered, stdioSchemePrefix):
		return stdioEndpoint(spec[len(stdioSchemePrefix):])
	case strings.HasPrefix(lowered, sseSchemePrefix):
		endpoint, err := normalizeHTTPURL(spec[len(sseSchemePrefix):], true)
		if err != nil {
			return Endpoint{}, fmt.Errorf("mcp: invalid SSE endpoint: %w", err)
		}
		return Endpoint{Kind: TransportSSE, URL: endpoint}, nil
	}

	if ep, matched, err := parseHTTPFamily(spec); err != nil {
		return Endpoint{}, err
	} else if matched {
		return ep, nil
	}

	if strings.HasPrefix(lowered, "http://") || strings.HasPrefix(lowered, "https://") {
		endpoint, err := normalizeHTTPURL(spec, false)
		if err != nil {
			return Endpoint{}, fmt.Errorf("mcp: invalid SSE endpoint: %w", err)
		}
		return Endpoint{Kind: TransportSSE, URL: endpoint}, nil
	}

	return stdioEndpoint(spec)
}

// Transport builds the SDK transport for the endpoint. The context bounds
// the lifetime of a spawned stdio process.
func (e Endpoint) Transport(ctx context.Context) (mcpsdk.Transport, error) {
	switch e.Kind {
	case TransportStdio:
		// #nosec G204 -- the command comes from operator configuration
		cmd := exec.CommandContext(ctx, e.Command[0], e.Command[1:]...)
		return &mcpsdk.CommandTransport{Command: cmd}, nil
	case TransportSSE:
		return &mcpsdk.SSEClientTransport{Endpoint: e.URL}, nil
	case TransportStreamable:
		return &mcpsdk.StreamableClientTransport{Endpoint: e.URL}, nil
	default:
		return nil, fmt.Errorf("mcp: unknown transport %q", e.Kind)
	}
}

func stdioEndpoint(cmdline string) (Endpoint, error) {
	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		return Endpoint{}, fmt.Errorf("mcp: stdio command is empty")
	}
	return Endpoint{Kind: TransportStdio, Command: parts}, nil
}

func parseHTTPFamily(spec string) (Endpoint, bool, error) {
	u, err := url.Parse(spec)
	if err != nil || u.Scheme == "" {
		return Endpoint{}, false, nil
	}
	base, hint, ok := strings.Cut(strings.ToLower(u.Scheme), "+")
	if !ok || (base != "http" && base != "https") {
		return Endpoint{}, false, nil
	}

	var kind TransportKind
	switch hint {
	case "sse":
		kind = TransportSSE
	case "stream", "streamable", "http":
		kind = TransportStreamable
	default:
		return Endpoint{}, true, fmt.Errorf("mcp: unsupported HTTP transport hint %q", hint)
	}

	normalized := *u
	normalized.Scheme = base
	endpoint, err := normalizeHTTPURL(normalized.String(), false)
	if err != nil {
		return Endpoint{}, true, fmt.Errorf("mcp: invalid %s endpoint: %w", kind, err)
	}
	return Endpoint{Kind: kind, URL: endpoint}, true, nil
}

func normalizeHTTPURL(raw string, guessScheme bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("endpoint is empty")
	}
	if guessScheme && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host")
	}
	parsed.Scheme = scheme
	return parsed.String(), nil
}
