// Command ticketchat is a chat client for Jira tickets. Utterances are
// answered by a language model that can call the tools published by a
// ticketd registry.
//
// Usage:
//
//	ticketchat [flags]              interactive chat
//	ticketchat ask [flags] "..."    answer one utterance and exit
//
// Settings may also come from the environment (OPENAI_API_KEY,
// GEMINI_API_KEY, ANTHROPIC_API_KEY, OPEN_AI_MODEL, OPENAI_BASE_URL,
// JIRA_MCP_SERVER_URL)
// or a ticketchat.yaml config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/agent"
	bt "github.com/fwojciec/ticketchat/bubbletea"
	"github.com/fwojciec/ticketchat/cli"
	"github.com/fwojciec/ticketchat/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	appName            = "ticketchat"
	defaultRegistryURL = "http://localhost:9999/sse"
	defaultPrompt      = "You help the user manage Jira tickets. Use the available tools to create, update, list and transition tickets and to comment on them. Refer to tickets by their keys and keep answers short."
)

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
	Provider     string
	APIKey       string
	Model        string
	Keys         backendEnv
	RegistryURL  string
	AllowedTools []string
	MaxParallel  int
	SystemPrompt string
	Log          cli.LogConfig
}

func settingsFrom(v *viper.Viper) settings {
	return settings{
		Provider: v.GetString("provider"),
		APIKey:   v.GetString("api-key"),
		Model:    v.GetString("model"),
		Keys: backendEnv{
			OpenAI:        v.GetString("openai-api-key"),
			Gemini:        v.GetString("gemini-api-key"),
			Anthropic:     v.GetString("anthropic-api-key"),
			OpenAIModel:   v.GetString("open-ai-model"),
			OpenAIBaseURL: v.GetString("openai-base-url"),
		},
		RegistryURL:  v.GetString("jira-mcp-server-url"),
		AllowedTools: v.GetStringSlice("allowed-tools"),
		MaxParallel:  v.GetInt("max-parallel"),
		SystemPrompt: v.GetString("system-prompt"),
		Log:          cli.LogConfigFrom(v),
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Chat with a model that manages your Jira tickets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			if s.Log.File == "" {
				s.Log.File = defaultLogFile()
			}
			return runChat(cmd.Context(), s)
		},
	}
	addFlags(root)

	ask := &cobra.Command{
		Use:   "ask <utterance>",
		Short: "Answer a single utterance and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			answer, err := runAsk(cmd.Context(), s, strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
	root.AddCommand(ask)
	return root
}

func addFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	cli.AddConfigFlag(fs)
	cli.AddLoggingFlags(fs)
	fs.String("provider", "", "Model provider: openai, gemini or anthropic (detected from API keys if omitted)")
	fs.String("api-key", "", "API key for the selected provider (overrides its environment variable)")
	fs.String("model", "", "Model ID (provider default if omitted)")
	fs.String("jira-mcp-server-url", defaultRegistryURL, "Tool registry endpoint: http(s) URL, http+stream:// URL or stdio://command")
	fs.StringSlice("allowed-tools", nil, "Glob patterns of registry tools the model may call (all when empty)")
	fs.Int("max-parallel", 4, "Maximum tool calls dispatched at once")
	fs.String("system-prompt", defaultPrompt, "System prompt sent with every completion")
}

func load(cmd *cobra.Command) (settings, error) {
	v, err := cli.LoadConfig(cmd, appName)
	if err != nil {
		return settings{}, err
	}
	return settingsFrom(v), nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, appName, appName+".log")
}

// session owns the registry connection and the loop built over it.
type session struct {
	loop     *agent.Loop
	registry *mcp.Client
	logger   zerolog.Logger
}

func connect(ctx context.Context, s settings) (*session, error) {
	logger, err := cli.NewLogger(s.Log, os.Stderr)
	if err != nil {
		return nil, err
	}

	provider, err := resolveProvider(ctx, s.Provider, s.APIKey, s.Model, s.Keys)
	if err != nil {
		return nil, err
	}

	registry := mcp.NewClient(s.RegistryURL,
		mcp.WithAllowedTools(s.AllowedTools...),
		mcp.WithLogger(logger.With().Str("component", "registry").Logger()),
	)
	if err := registry.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", s.RegistryURL, err)
	}

	loop := agent.New(provider, registry,
		agent.WithSystemPrompt(s.SystemPrompt),
		agent.WithModel(s.Model),
		agent.WithMaxParallel(s.MaxParallel),
		agent.WithLogger(logger.With().Str("component", "agent").Logger()),
	)
	return &session{loop: loop, registry: registry, logger: logger}, nil
}

func (s *session) Close() error {
	return s.registry.Close()
}

func runChat(ctx context.Context, s settings) error {
	sess, err := connect(ctx, s)
	if err != nil {
		return err
	}
	defer sess.Close()

	run := func(ctx context.Context, utterance string, onEvent func(ticketchat.Event)) (*ticketchat.Turn, error) {
		return sess.loop.Run(ctx, utterance, agent.WithEventHandler(onEvent))
	}
	m := bt.New(run, ticketchat.NewSession(), ticketchat.DefaultTheme())
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}

// runAsk answers one utterance. Infrastructure faults are reported as their
// fixed statement and an error so the exit status is non-zero.
func runAsk(ctx context.Context, s settings, utterance string) (string, error) {
	sess, err := connect(ctx, s)
	if err != nil {
		return "", err
	}
	defer sess.Close()

	turn, err := sess.loop.Run(ctx, utterance)
	if err != nil {
		return "", errors.New(ticketchat.Statement(err))
	}
	return turn.Answer, nil
}
