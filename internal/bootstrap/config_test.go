package bootstrap

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitLoggerDevEnablesDebug(t *testing.T) {
	logger := InitLogger(true)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestInitLoggerProductionIsInfoLevel(t *testing.T) {
	logger := InitLogger(false)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
