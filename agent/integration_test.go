package agent_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/agent"
	"github.com/fwojciec/ticketchat/mcp"
	"github.com/fwojciec/ticketchat/mock"
	"github.com/fwojciec/ticketchat/ticket"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectRegistry serves the ticket tools over an in-memory MCP pipe.
func connectRegistry(t *testing.T, svc ticketchat.TicketService) *mcp.Client {
	t.Helper()
	ctx := context.Background()
	srv, err := mcp.NewServer("ticketd", ticket.NewExecutor(svc), ticket.Tools())
	require.NoError(t, err)

	st, ct := mcpsdk.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, st)
	require.NoError(t, err)

	client := mcp.NewClient("inmemory", mcp.WithTransport(ct))
	require.NoError(t, client.Connect(ctx))
	t.Cleanup(func() {
		_ = client.Close()
		_ = ss.Close()
	})
	return client
}

func TestLoop_CreateTicketEndToEnd(t *testing.T) {
	t.Parallel()

	svc := &mock.TicketService{
		CreateTicketFn: func(_ context.Context, title, description string) (string, error) {
			assert.Equal(t, "X", title)
			assert.Equal(t, "Y", description)
			return "PROJ-42", nil
		},
	}
	registry := connectRegistry(t, svc)

	n := 0
	provider := &mock.Provider{
		CompleteFn: func(_ context.Context, req ticketchat.Request) (ticketchat.AssistantMessage, error) {
			n++
			if n == 1 {
				_, ok := ticketchat.FindTool(req.Tools, ticket.CreateTicketTool)
				require.True(t, ok)
				return toolCalls(call("call_1", ticket.CreateTicketTool, `{"title":"X","description":"Y"}`)), nil
			}
			last, ok := req.Messages[len(req.Messages)-1].(ticketchat.ToolResultMessage)
			require.True(t, ok)
			assert.Equal(t, "call_1", last.ToolCallID)
			return text(fmt.Sprintf("Done: %s", last.Text())), nil
		},
	}

	answer := agent.New(provider, registry).Answer(context.Background(), "create a ticket titled X with description Y")

	assert.Equal(t, "Done: ticket PROJ-42 is successfully created", answer)
	assert.Equal(t, 2, n)
}

func TestLoop_TransitionEndToEnd(t *testing.T) {
	t.Parallel()

	var applied string
	svc := &mock.TicketService{
		TransitionsFn: func(context.Context, string) ([]ticketchat.Transition, error) {
			return []ticketchat.Transition{{ID: "11", Name: "In Progress"}, {ID: "21", Name: "Done"}}, nil
		},
		ApplyTransitionFn: func(_ context.Context, key, id string) error {
			applied = key + "/" + id
			return nil
		},
	}
	registry := connectRegistry(t, svc)

	args, err := json.Marshal(map[string]string{"ticket_no": "PROJ-7", "status": "Done"})
	require.NoError(t, err)
	provider, reqs := scripted(t,
		toolCalls(call("c1", ticket.UpdateStatusTool, string(args))),
		text("PROJ-7 is now Done."),
	)

	turn, err := agent.New(provider, registry).Run(context.Background(), "move PROJ-7 to Done")

	require.NoError(t, err)
	assert.Equal(t, "PROJ-7/21", applied)
	assert.Equal(t, "PROJ-7 is now Done.", turn.Answer)
	require.Len(t, turn.ToolResults(), 1)
	assert.Equal(t, "Ticket status is successfully updated", turn.ToolResults()[0].Text())
	assert.Len(t, *reqs, 2)
}
