package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramgpt/diagramgpt/internal/config"
)

func TestSetupAcceptsAllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN", "bogus"} {
		t.Run(level, func(t *testing.T) {
			log, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	stored := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithLogger(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx))

	// Without a stored logger the default logger is returned.
	assert.NotNil(t, FromContext(context.Background()))
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	def := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.Same(t, def, FromContextOrDefault(context.Background(), def))

	stored := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := WithLogger(context.Background(), stored)
	assert.Same(t, stored, FromContextOrDefault(ctx, def))
}
