package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		value string
		env   string
		want  slog.Level
	}{
		{"debug", "production", slog.LevelDebug},
		{"WARN", "production", slog.LevelWarn},
		{"fatal", "production", LevelCritical},
		{"", "development", slog.LevelDebug},
		{"", "production", slog.LevelInfo},
		{"bogus", "production", slog.LevelInfo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseLevel(tc.value, tc.env), "value=%q env=%q", tc.value, tc.env)
	}
}

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	log.Critical("app: init failed", "component", "db")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "CRITICAL", entry["level"])
	assert.Equal(t, "db", entry["component"])
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "json")

	log.BusinessError("partners.get: not found", nil)
	assert.Zero(t, buf.Len())

	log.BusinessError("partners.get: not found", errors.New("partner not found"), "partner_id", "1234")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "partner not found", entry["err"])
	assert.Equal(t, "1234", entry["partner_id"])
}
