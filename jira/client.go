package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/fwojciec/ticketchat"
	"github.com/rs/zerolog"
)

// Interface compliance check.
var _ ticketchat.TicketService = (*Client)(nil)

// Client talks to one Jira Cloud site on behalf of one project.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	projectKey string
	issueType  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithIssueType overrides the issue type used for new tickets. Default "Task".
func WithIssueType(name string) Option {
	return func(c *Client) { c.issueType = name }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a [Client]. domain is either a bare site name ("acme" for
// acme.atlassian.net) or a full base URL.
func New(domain, email, apiToken, projectKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    BaseURL(domain),
		email:      email,
		apiToken:   apiToken,
		projectKey: projectKey,
		issueType:  defaultIssueType,
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL expands a site name into its Atlassian Cloud URL. Values that
// already carry a scheme are returned without a trailing slash.
func BaseURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return strings.TrimRight(domain, "/")
	}
	domain = strings.TrimSuffix(domain, ".atlassian.net")
	return "https://" + domain + ".atlassian.net"
}

// CreateTicket creates an issue in the configured project and returns its key.
func (c *Client) CreateTicket(ctx context.Context, title, description string) (string, error) {
	body := apiCreateIssueRequest{Fields: apiIssueFields{
		Project:     &apiProject{Key: c.projectKey},
		Summary:     title,
		Description: Paragraphs(description),
		IssueType:   &apiIssueType{Name: c.issueType},
	}}
	var resp apiCreateIssueResponse
	if err := c.do(ctx, http.MethodPost, "/issue", body, http.StatusCreated, &resp); err != nil {
		return "", err
	}
	c.logger.Info().Str("key", resp.Key).Msg("issue created")
	return resp.Key, nil
}

// UpdateTicket replaces the summary and description of an issue. An empty
// title or description leaves that field unchanged.
func (c *Client) UpdateTicket(ctx context.Context, key, title, description string) error {
	fields := apiIssueFields{Summary: title}
	if description != "" {
		fields.Description = Paragraphs(description)
	}
	body := apiCreateIssueRequest{Fields: fields}
	return c.do(ctx, http.MethodPut, "/issue/"+url.PathEscape(key), body, http.StatusNoContent, nil)
}

// ListTickets returns up to max issues of the configured project.
func (c *Client) ListTickets(ctx context.Context, max int) ([]ticketchat.Ticket, error) {
	if max <= 0 {
		max = defaultMaxResults
	}
	q := url.Values{}
	q.Set("jql", "project="+c.projectKey)
	q.Set("maxResults", strconv.Itoa(max))
	q.Set("fields", "summary,status")

	var resp apiSearchResponse
	if err := c.do(ctx, http.MethodGet, "/search?"+q.Encode(), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	tickets := make([]ticketchat.Ticket, len(resp.Issues))
	for i, is := range resp.Issues {
		tickets[i] = ticketchat.Ticket{Key: is.Key, Summary: is.Fields.Summary, Status: is.Fields.Status.Name}
	}
	return tickets, nil
}

// Transitions lists the transitions currently permitted for an issue.
func (c *Client) Transitions(ctx context.Context, key string) ([]ticketchat.Transition, error) {
	var resp apiTransitionsResponse
	if err := c.do(ctx, http.MethodGet, "/issue/"+url.PathEscape(key)+"/transitions", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	out := make([]ticketchat.Transition, len(resp.Transitions))
	for i, t := range resp.Transitions {
		out[i] = ticketchat.Transition{ID: t.ID, Name: t.Name}
	}
	return out, nil
}

// ApplyTransition moves an issue through the given transition.
func (c *Client) ApplyTransition(ctx context.Context, key, transitionID string) error {
	body := apiDoTransitionRequest{Transition: apiTransitionRef{ID: transitionID}}
	return c.do(ctx, http.MethodPost, "/issue/"+url.PathEscape(key)+"/transitions", body, http.StatusNoContent, nil)
}

// AddComment appends a comment to an issue.
func (c *Client) AddComment(ctx context.Context, key, comment string) error {
	body := apiCommentRequest{Body: Paragraphs(comment)}
	return c.do(ctx, http.MethodPost, "/issue/"+url.PathEscape(key)+"/comment", body, http.StatusCreated, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("jira: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("jira request")

	if resp.StatusCode != want {
		return parseHTTPError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("jira: decode response: %w", err)
	}
	return nil
}

func parseHTTPError(resp *http.Response) error {
	e := &Error{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return e
	}
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil {
		e.Messages = []string{strings.TrimSpace(string(body))}
		return e
	}
	e.Messages = append(e.Messages, apiErr.ErrorMessages...)
	for _, field := range slices.Sorted(maps.Keys(apiErr.Errors)) {
		e.Messages = append(e.Messages, field+": "+apiErr.Errors[field])
	}
	return e
}
