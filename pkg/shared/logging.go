package shared

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog logger. Format "json" writes JSON lines, anything
// else writes human-readable console output. Unknown levels fall back to info.
func NewLogger(w io.Writer, level string, format string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}

	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsedLevel == zerolog.NoLevel {
		parsedLevel = zerolog.InfoLevel
	}

	output := w
	if !strings.EqualFold(strings.TrimSpace(format), "json") {
		output = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).Level(parsedLevel).With().Timestamp().Logger()
}

// LoggerOrNop dereferences logger, substituting a no-op logger for nil.
func LoggerOrNop(logger *zerolog.Logger) zerolog.Logger {
	if logger == nil {
		return zerolog.Nop()
	}
	return *logger
}
