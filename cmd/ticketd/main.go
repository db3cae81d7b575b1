// Command ticketd publishes Jira ticket operations as tools in an MCP
// registry.
//
// Usage:
//
//	ticketd serve [flags]    serve /sse, /mcp, /metrics and /healthz over HTTP
//	ticketd stdio [flags]    serve one registry session over stdin/stdout
//
// Jira settings come from flags, the environment (JIRA_DOMAIN, JIRA_EMAIL,
// JIRA_API_TOKEN, JIRA_PROJECT_KEY) or a ticketd.yaml config file.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/cli"
	"github.com/fwojciec/ticketchat/jira"
	"github.com/fwojciec/ticketchat/mcp"
	"github.com/fwojciec/ticketchat/ticket"
	"github.com/fwojciec/ticketchat/transition"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "ticketd"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// settings are the resolved options of one invocation.
type settings struct {
	Domain     string
	Email      string
	APIToken   string
	ProjectKey string
	IssueType  string
	Policy     string
	Addr       string
	Log        cli.LogConfig
}

func settingsFrom(v *viper.Viper) settings {
	return settings{
		Domain:     v.GetString("jira-domain"),
		Email:      v.GetString("jira-email"),
		APIToken:   v.GetString("jira-api-token"),
		ProjectKey: v.GetString("jira-project-key"),
		IssueType:  v.GetString("jira-issue-type"),
		Policy:     v.GetString("transition-policy"),
		Addr:       v.GetString("addr"),
		Log:        cli.LogConfigFrom(v),
	}
}

func (s settings) validate() error {
	for _, f := range []struct{ name, val string }{
		{"JIRA_DOMAIN", s.Domain},
		{"JIRA_EMAIL", s.Email},
		{"JIRA_API_TOKEN", s.APIToken},
		{"JIRA_PROJECT_KEY", s.ProjectKey},
	} {
		if f.val == "" {
			return fmt.Errorf("%s not set: %w", f.name, ticketchat.ErrValidation)
		}
	}
	if _, err := parsePolicy(s.Policy); err != nil {
		return err
	}
	return nil
}

func parsePolicy(name string) (transition.Policy, error) {
	switch name {
	case "", "reject":
		return transition.RejectAmbiguous, nil
	case "first":
		return transition.FirstMatch, nil
	default:
		return 0, fmt.Errorf("transition policy %q: must be reject or first: %w", name, ticketchat.ErrValidation)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Serve Jira ticket tools over MCP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	fs := root.PersistentFlags()
	cli.AddConfigFlag(fs)
	cli.AddLoggingFlags(fs)
	fs.String("jira-domain", "", "Jira Cloud site name or base URL")
	fs.String("jira-email", "", "Jira account email")
	fs.String("jira-api-token", "", "Jira API token")
	fs.String("jira-project-key", "", "Project that tickets are created in and listed from")
	fs.String("jira-issue-type", "Task", "Issue type of created tickets")
	fs.String("transition-policy", "reject", "How to treat a status matching several transitions: reject or first")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, logger, err := load(cmd)
			if err != nil {
				return err
			}
			metrics := newMetricsRegistry()
			server, err := newRegistryServer(s, logger, metrics)
			if err != nil {
				return err
			}
			ln, err := net.Listen("tcp", s.Addr)
			if err != nil {
				return err
			}
			return serveHTTP(cmd.Context(), ln, newHandler(server, metrics), shutdownTimeout, logger)
		},
	}
	serve.Flags().String("addr", ":9999", "Listen address")

	stdio := &cobra.Command{
		Use:   "stdio",
		Short: "Serve one registry session over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, logger, err := load(cmd)
			if err != nil {
				return err
			}
			server, err := newRegistryServer(s, logger, nil)
			if err != nil {
				return err
			}
			return server.ServeStdio(cmd.Context())
		},
	}

	root.AddCommand(serve, stdio)
	return root
}

// load resolves settings and the logger. Logs always go to stderr so that
// stdout stays free for the stdio transport.
func load(cmd *cobra.Command) (settings, zerolog.Logger, error) {
	v, err := cli.LoadConfig(cmd, appName)
	if err != nil {
		return settings{}, zerolog.Nop(), err
	}
	s := settingsFrom(v)
	if err := s.validate(); err != nil {
		return settings{}, zerolog.Nop(), err
	}
	logger, err := cli.NewLogger(s.Log, os.Stderr)
	if err != nil {
		return settings{}, zerolog.Nop(), err
	}
	return s, logger, nil
}

// newRegistryServer wires the Jira client, the status resolver and the tool
// executor into a registry server. metrics may be nil.
func newRegistryServer(s settings, logger zerolog.Logger, metrics *prometheus.Registry) (*mcp.Server, error) {
	policy, err := parsePolicy(s.Policy)
	if err != nil {
		return nil, err
	}
	jc := jira.New(s.Domain, s.Email, s.APIToken, s.ProjectKey,
		jira.WithIssueType(s.IssueType),
		jira.WithLogger(logger.With().Str("component", "jira").Logger()),
	)
	resolver := transition.New(jc,
		transition.WithPolicy(policy),
		transition.WithLogger(logger.With().Str("component", "transition").Logger()),
	)
	executor := ticket.NewExecutor(jc,
		ticket.WithResolver(resolver),
		ticket.WithLogger(logger.With().Str("component", "ticket").Logger()),
	)
	return mcp.NewServer(appName, executor, executor.Tools(),
		mcp.WithServerLogger(logger.With().Str("component", "registry").Logger()),
		mcp.WithServerMetrics(metrics),
	)
}
