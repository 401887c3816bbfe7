package shared

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"loud", log.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("debug overrides level", func(t *testing.T) {
		logger := SetupLogger(&bytes.Buffer{}, LogOptions{Level: "error", Debug: true})
		assert.Equal(t, log.DebugLevel, logger.GetLevel())
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := SetupLogger(&buf, LogOptions{Format: "json"})
		logger.Info("Spin settled", "payout", 1000)
		logger.Debug("hidden")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "Spin settled", entry["msg"])
		assert.EqualValues(t, 1000, entry["payout"])
	})
}
