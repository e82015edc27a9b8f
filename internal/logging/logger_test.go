package logging_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/ruleflow/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{" INFO ", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, slog.LevelInfo)

	log.Debug("hidden")
	log.Error("failed", "error", errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=boom")
}
