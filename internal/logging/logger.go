// Package logging builds the zerolog logger shared by all components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to stderr. format "console" gives
// human-readable output, anything else JSON lines.
func New(format, level string) (zerolog.Logger, error) {
	return NewWithOutput(os.Stderr, format, level)
}

func NewWithOutput(w io.Writer, format, level string) (zerolog.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}

	writer := w
	if strings.EqualFold(strings.TrimSpace(format), FormatConsole) {
		writer = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(writer).
		Level(parsedLevel).
		With().
		Timestamp().
		Str("service", "enzo-translator").
		Logger()

	return logger, nil
}
