package main

import (
	"context"
	"testing"

	"github.com/fwojciec/ticketchat/anthropic"
	"github.com/fwojciec/ticketchat/gemini"
	"github.com/fwojciec/ticketchat/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		apiKey   string
		keys     backendEnv
		want     any
		wantErr  string
	}{
		{name: "explicit openai", provider: "openai", apiKey: "sk-test", want: &openai.Client{}},
		{name: "explicit gemini", provider: "gemini", apiKey: "gk-test", want: &gemini.Client{}},
		{name: "explicit anthropic", provider: "anthropic", apiKey: "sk-ant", want: &anthropic.Client{}},
		{name: "auto openai", keys: backendEnv{OpenAI: "sk"}, want: &openai.Client{}},
		{name: "auto gemini", keys: backendEnv{Gemini: "gk"}, want: &gemini.Client{}},
		{name: "auto anthropic", keys: backendEnv{Anthropic: "sk-ant"}, want: &anthropic.Client{}},
		{name: "flag key overrides env", provider: "openai", apiKey: "sk-flag", keys: backendEnv{OpenAI: "sk-env"}, want: &openai.Client{}},
		{name: "explicit provider picks among many", provider: "anthropic", keys: backendEnv{OpenAI: "sk", Anthropic: "sk-ant"}, want: &anthropic.Client{}},
		{name: "no keys", wantErr: "no API key found"},
		{name: "many keys", keys: backendEnv{OpenAI: "sk", Gemini: "gk"}, wantErr: "multiple API keys found (openai, gemini)"},
		{name: "unknown provider", provider: "llama", apiKey: "k", wantErr: "unknown provider"},
		{name: "openai missing key", provider: "openai", wantErr: "OPENAI_API_KEY not set"},
		{name: "gemini missing key", provider: "gemini", wantErr: "GEMINI_API_KEY not set"},
		{name: "anthropic missing key", provider: "anthropic", wantErr: "ANTHROPIC_API_KEY not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := resolveProvider(context.Background(), tt.provider, tt.apiKey, "", tt.keys)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, p)
		})
	}
}
