package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"trading-journal-go/internal/config"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name        string
		cfg         config.Logger
		expectError bool
	}{
		{name: "Console debug", cfg: config.Logger{Level: "debug", Format: "console"}},
		{name: "JSON info", cfg: config.Logger{Level: "info", Format: "json"}},
		{name: "Empty format falls back to console", cfg: config.Logger{Level: "warn"}},
		{name: "Invalid level", cfg: config.Logger{Level: "loud", Format: "json"}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := NewLogger(tc.cfg)
			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "logger.level")
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			expected, _ := zapcore.ParseLevel(tc.cfg.Level)
			assert.True(t, log.Core().Enabled(expected))
			assert.False(t, log.Core().Enabled(expected-1))
		})
	}
}
