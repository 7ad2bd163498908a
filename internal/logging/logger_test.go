package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xterio/xdeploy/internal/domain/config"
)

func TestNewLoggerLevel(t *testing.T) {
	t.Setenv("XDEPLOY_LOG_LEVEL", "")

	logger := NewLogger(&config.RuntimeConfig{})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))

	logger = NewLogger(&config.RuntimeConfig{Debug: true})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	t.Setenv("XDEPLOY_LOG_LEVEL", "warn")
	logger = NewLogger(&config.RuntimeConfig{Debug: true})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}

func TestShortPath(t *testing.T) {
	assert.Equal(t, "internal/usecase/deploy_contract.go", shortPath("/home/ci/src/xdeploy/internal/usecase/deploy_contract.go"))
	assert.Equal(t, "main.go", shortPath("/tmp/main.go"))
}
