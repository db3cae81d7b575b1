package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/ticketchat"
	bt "github.com/fwojciec/ticketchat/bubbletea"
	"github.com/stretchr/testify/require"
)

func initModel(t *testing.T, run bt.TurnFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24)
}

func initModelWithSize(t *testing.T, run bt.TurnFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(run, ticketchat.NewSession(), ticketchat.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func nopTurn(_ context.Context, utterance string, _ func(ticketchat.Event)) (*ticketchat.Turn, error) {
	return &ticketchat.Turn{Utterance: utterance, Answer: "ok"}, nil
}
