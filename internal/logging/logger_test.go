package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, FormatJSON, "warn")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("provider", "claude").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "claude", line["provider"])
	assert.Equal(t, "enzo-translator", line["service"])
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewWithOutput_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "Console", "")
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "{")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(FormatJSON, "loud")
	assert.Error(t, err)
}
