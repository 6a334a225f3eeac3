package notify

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_Dispatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	n := NewNoOpNotifier(log)

	result, err := n.Dispatch(context.Background(), testPayload())
	require.NoError(t, err)
	assert.False(t, result.Delivered)
	assert.Equal(t, "no webhook configured", result.Detail)
	assert.Contains(t, buf.String(), "outreach discarded")
}
