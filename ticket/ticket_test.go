package ticket_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/mock"
	"github.com/fwojciec/ticketchat/ticket"
	"github.com/fwojciec/ticketchat/transition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, svc *mock.TicketService, name, args string) *ticketchat.ToolResult {
	t.Helper()
	res, err := ticket.NewExecutor(svc).Execute(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestExecutor_Tools(t *testing.T) {
	t.Parallel()

	tools := ticket.NewExecutor(&mock.TicketService{}).Tools()
	require.NoError(t, ticketchat.ValidateTools(tools))

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)

		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.Parameters, &schema), tool.Name)
		assert.Equal(t, "object", schema["type"], tool.Name)
		assert.NotContains(t, schema, "$schema")
		assert.NotContains(t, schema, "$ref")
	}
	assert.ElementsMatch(t, []string{
		ticket.CreateTicketTool,
		ticket.UpdateTicketTool,
		ticket.ListTicketsTool,
		ticket.ListStatusesTool,
		ticket.UpdateStatusTool,
		ticket.AddCommentTool,
	}, names)

	create, _ := ticketchat.FindTool(tools, ticket.CreateTicketTool)
	var schema struct {
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	require.NoError(t, json.Unmarshal(create.Parameters, &schema))
	assert.Contains(t, schema.Properties, "title")
	assert.ElementsMatch(t, []string{"title", "description"}, schema.Required)
}

func TestExecutor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("create returns key", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			CreateTicketFn: func(_ context.Context, title, description string) (string, error) {
				assert.Equal(t, "X", title)
				assert.Equal(t, "Y", description)
				return "PROJ-7", nil
			},
		}
		res := execute(t, svc, ticket.CreateTicketTool, `{"title":"X","description":"Y"}`)
		assert.False(t, res.IsError)
		assert.Equal(t, "ticket PROJ-7 is successfully created", res.Text())
	})

	t.Run("create backend failure is a result", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			CreateTicketFn: func(context.Context, string, string) (string, error) {
				return "", errors.New("jira: HTTP 400")
			},
		}
		res := execute(t, svc, ticket.CreateTicketTool, `{"title":"X","description":"Y"}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "Error creating jira ticket: jira: HTTP 400", res.Text())
	})

	t.Run("create requires title", func(t *testing.T) {
		t.Parallel()
		res := execute(t, &mock.TicketService{}, ticket.CreateTicketTool, `{"description":"Y"}`)
		assert.True(t, res.IsError)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			UpdateTicketFn: func(_ context.Context, key, title, _ string) error {
				assert.Equal(t, "PROJ-7", key)
				assert.Equal(t, "New", title)
				return nil
			},
		}
		res := execute(t, svc, ticket.UpdateTicketTool, `{"issue_key":"PROJ-7","title":"New","description":"Body"}`)
		assert.Equal(t, "ticket is successfully updated", res.Text())
	})

	t.Run("list defaults and caps max", func(t *testing.T) {
		t.Parallel()
		var got []int
		svc := &mock.TicketService{
			ListTicketsFn: func(_ context.Context, max int) ([]ticketchat.Ticket, error) {
				got = append(got, max)
				return []ticketchat.Ticket{{Key: "PROJ-1", Summary: "First", Status: "To Do"}}, nil
			},
		}
		res := execute(t, svc, ticket.ListTicketsTool, `{}`)
		assert.JSONEq(t, `[{"key":"PROJ-1","summary":"First","status":"To Do"}]`, res.Text())
		execute(t, svc, ticket.ListTicketsTool, `{"max_result":500}`)
		execute(t, svc, ticket.ListTicketsTool, ``)
		assert.Equal(t, []int{10, 100, 10}, got)
	})

	t.Run("list empty is an array", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			ListTicketsFn: func(context.Context, int) ([]ticketchat.Ticket, error) { return nil, nil },
		}
		res := execute(t, svc, ticket.ListTicketsTool, `{"max_result":3}`)
		assert.Equal(t, "[]", res.Text())
	})

	t.Run("list statuses", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			TransitionsFn: func(_ context.Context, key string) ([]ticketchat.Transition, error) {
				assert.Equal(t, "PROJ-7", key)
				return []ticketchat.Transition{{ID: "21", Name: "Done"}}, nil
			},
		}
		res := execute(t, svc, ticket.ListStatusesTool, `{"ticket_no":"PROJ-7"}`)
		assert.JSONEq(t, `[{"id":"21","name":"Done"}]`, res.Text())
	})

	t.Run("update status applies resolved transition", func(t *testing.T) {
		t.Parallel()
		var applied string
		svc := &mock.TicketService{
			TransitionsFn: func(context.Context, string) ([]ticketchat.Transition, error) {
				return []ticketchat.Transition{{ID: "11", Name: "In Progress"}, {ID: "21", Name: "Done"}}, nil
			},
			ApplyTransitionFn: func(_ context.Context, _, id string) error {
				applied = id
				return nil
			},
		}
		res := execute(t, svc, ticket.UpdateStatusTool, `{"ticket_no":"PROJ-7","status":"Done"}`)
		assert.False(t, res.IsError)
		assert.Equal(t, "Ticket status is successfully updated", res.Text())
		assert.Equal(t, "21", applied)
	})

	t.Run("unknown status is a plain outcome", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			TransitionsFn: func(context.Context, string) ([]ticketchat.Transition, error) {
				return []ticketchat.Transition{{ID: "21", Name: "Done"}}, nil
			},
		}
		res := execute(t, svc, ticket.UpdateStatusTool, `{"ticket_no":"PROJ-7","status":"Closed"}`)
		assert.False(t, res.IsError)
		assert.Equal(t, "Status is unknown", res.Text())
	})

	t.Run("first match policy through resolver option", func(t *testing.T) {
		t.Parallel()
		var applied string
		svc := &mock.TicketService{
			TransitionsFn: func(context.Context, string) ([]ticketchat.Transition, error) {
				return []ticketchat.Transition{{ID: "31", Name: "Done"}, {ID: "41", Name: "Done"}}, nil
			},
			ApplyTransitionFn: func(_ context.Context, _, id string) error {
				applied = id
				return nil
			},
		}
		exec := ticket.NewExecutor(svc, ticket.WithResolver(transition.New(svc, transition.WithPolicy(transition.FirstMatch))))
		res, err := exec.Execute(context.Background(), ticket.UpdateStatusTool, json.RawMessage(`{"ticket_no":"PROJ-7","status":"Done"}`))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "31", applied)
	})

	t.Run("comment", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			AddCommentFn: func(_ context.Context, key, comment string) error {
				assert.Equal(t, "PROJ-7", key)
				assert.Equal(t, "On it", comment)
				return nil
			},
		}
		res := execute(t, svc, ticket.AddCommentTool, `{"ticket_no":"PROJ-7","comment":"On it"}`)
		assert.Equal(t, "Comment is successfully added", res.Text())
	})

	t.Run("invalid json arguments", func(t *testing.T) {
		t.Parallel()
		res := execute(t, &mock.TicketService{}, ticket.AddCommentTool, `{not json`)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Text(), "invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		t.Parallel()
		res := execute(t, &mock.TicketService{}, "delete_jira_ticket", `{}`)
		assert.True(t, res.IsError)
		assert.Equal(t, "unknown tool: delete_jira_ticket", res.Text())
	})

	t.Run("cancellation is returned as error", func(t *testing.T) {
		t.Parallel()
		svc := &mock.TicketService{
			CreateTicketFn: func(ctx context.Context, _, _ string) (string, error) {
				return "", ctx.Err()
			},
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ticket.NewExecutor(svc).Execute(ctx, ticket.CreateTicketTool, json.RawMessage(`{"title":"X"}`))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
