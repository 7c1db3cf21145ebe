package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLogger_JSON_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "cic", Out: &buf})

	l.With(map[string]any{"consulta_id": "c1"}).Warn("fallback de orden", map[string]any{
		"orden": "createdAt",
		"error": errors.New("boom"),
		"":      "ignorado",
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "fallback de orden", entry["message"])
	assert.Equal(t, "cic", entry["app"])
	assert.Equal(t, "c1", entry["consulta_id"])
	assert.Equal(t, "createdAt", entry["orden"])
	assert.Equal(t, "boom", entry["error"])
	_, hasEmpty := entry[""]
	assert.False(t, hasEmpty)
}

func TestZeroLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatJSON, Out: &buf})

	l.Info("no sale", nil)
	assert.Zero(t, buf.Len())

	l.Error("sale", nil)
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Info, ParseLevel("raro"))
	assert.Equal(t, FormatJSON, ParseFormat(" json "))
	assert.Equal(t, FormatText, ParseFormat("otro"))
}
