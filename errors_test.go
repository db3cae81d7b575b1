package ticketchat_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/ticketchat"
	"github.com/stretchr/testify/assert"
)

func TestStatement(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"registry", fmt.Errorf("list tools: %w", ticketchat.ErrRegistryUnavailable), ticketchat.StatementRegistryUnavailable},
		{"model", fmt.Errorf("plan: %w", ticketchat.ErrModelUnavailable), ticketchat.StatementModelUnavailable},
		{"canceled", context.Canceled, ticketchat.StatementCanceled},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), ticketchat.StatementCanceled},
		{"other", errors.New("boom"), ticketchat.StatementUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ticketchat.Statement(tt.err))
		})
	}
}
