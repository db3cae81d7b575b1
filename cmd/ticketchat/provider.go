package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/ticketchat"
	"github.com/fwojciec/ticketchat/anthropic"
	"github.com/fwojciec/ticketchat/gemini"
	"github.com/fwojciec/ticketchat/openai"
)

// backendEnv holds the per-backend keys read from the environment or config,
// plus the OpenAI model (OPEN_AI_MODEL) and endpoint overrides.
type backendEnv struct {
	OpenAI        string
	Gemini        string
	Anthropic     string
	OpenAIModel   string
	OpenAIBaseURL string
}

func (k backendEnv) present() []string {
	var names []string
	if k.OpenAI != "" {
		names = append(names, "openai")
	}
	if k.Gemini != "" {
		names = append(names, "gemini")
	}
	if k.Anthropic != "" {
		names = append(names, "anthropic")
	}
	return names
}

// resolveProvider selects and constructs the completion backend. An explicit
// provider name wins; otherwise the single backend with a key is used.
// apiKey, when set, overrides the selected backend's key.
func resolveProvider(ctx context.Context, name, apiKey, model string, keys backendEnv) (ticketchat.Provider, error) {
	if name == "" {
		present := keys.present()
		switch len(present) {
		case 0:
			return nil, fmt.Errorf("no API key found: set OPENAI_API_KEY, GEMINI_API_KEY or ANTHROPIC_API_KEY (or use --provider and --api-key)")
		case 1:
			name = present[0]
		default:
			return nil, fmt.Errorf("multiple API keys found (%s): use --provider to select", strings.Join(present, ", "))
		}
	}

	switch name {
	case "openai":
		key := firstNonEmpty(apiKey, keys.OpenAI)
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set (use --api-key or the environment variable)")
		}
		var opts []openai.Option
		if model = firstNonEmpty(model, keys.OpenAIModel); model != "" {
			opts = append(opts, openai.WithDefaultModel(model))
		}
		if keys.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(keys.OpenAIBaseURL))
		}
		return openai.New(key, opts...), nil
	case "gemini":
		key := firstNonEmpty(apiKey, keys.Gemini)
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or the environment variable)")
		}
		var opts []gemini.Option
		if model != "" {
			opts = append(opts, gemini.WithModel(model))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	case "anthropic":
		key := firstNonEmpty(apiKey, keys.Anthropic)
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or the environment variable)")
		}
		var opts []anthropic.Option
		if model != "" {
			opts = append(opts, anthropic.WithModel(model))
		}
		return anthropic.New(key, opts...), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be openai, gemini or anthropic", name)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
