package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestConfigure_LogFile(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved; output = os.Stderr }()

	path := filepath.Join(t.TempDir(), "firecrown.log")
	require.NoError(t, Configure("debug", path, false))
	assert.Equal(t, log.DebugLevel, Logger.GetLevel())

	Debug("setup complete", "analysis", "twopoint")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "setup complete")
	assert.Contains(t, string(data), "twopoint")
}

func TestConfigure_EnvironmentLevel(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved; output = os.Stderr }()

	t.Setenv("FIRECROWN_LOG_LEVEL", "warn")
	require.NoError(t, Configure("", "", false))
	assert.Equal(t, log.WarnLevel, Logger.GetLevel())

	// Flag wins over the environment
	require.NoError(t, Configure("error", "", false))
	assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
}

func TestTypeResolution(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved; output = os.Stderr }()

	var buf bytes.Buffer
	SetOutput(&buf)

	TypeResolution("systematic", "photoz_wobble", errors.New("not registered"))
	assert.Contains(t, buf.String(), "photoz_wobble")
	assert.Contains(t, buf.String(), "not registered")
}

func TestNewStyledLogger_FollowsGlobalLevel(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved; output = os.Stderr }()

	var buf bytes.Buffer
	SetOutput(&buf)
	Logger.SetLevel(log.WarnLevel)

	component := NewStyledLogger("Calculator")
	component.Info("hidden")
	component.Warn("shown", "state", "Ready")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Calculator")
	assert.Contains(t, buf.String(), "shown")
}
