package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/leadforge/linkedin-leads-crawler/internal/logging"
)

func TestNewDevelopmentEnablesDebug(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewProductionStartsAtInfo(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
