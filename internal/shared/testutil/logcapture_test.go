package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, capture := NewLogCapture(t)
	logger.With(slog.String("component", "store")).Info("Reload finished", slog.Int("rows", 3))
	logger.Warn("Source missing")

	records := capture.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "store", records[0].Attrs["component"])
	assert.Equal(t, int64(3), records[0].Attrs["rows"])

	r := AssertLogged(t, capture, slog.LevelWarn, "missing")
	assert.Equal(t, "Source missing", r.Message)

	_, ok := capture.Find(slog.LevelError, "missing")
	assert.False(t, ok)
}
