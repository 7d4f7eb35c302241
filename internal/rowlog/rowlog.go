// Package rowlog configures the process-wide structured logger used for
// internal diagnostics. User-facing command output (status tables,
// directory listings, group plans) goes through internal/ux instead —
// rowlog is for the "-v/-q" diagnostic axis, kept separate from
// user-visible error reporting.
package rowlog

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// New builds a logger whose level is shifted by verbose (each -v lowers
// the floor by one step) and quiet (raises it by one step), starting from
// zerolog.InfoLevel.
func New(verbose, quiet int, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	for i := 0; i < verbose; i++ {
		level = stepDown(level)
	}
	for i := 0; i < quiet; i++ {
		level = stepUp(level)
	}

	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) && os.Getenv("ROW_COLOR") != "never" {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func stepDown(l zerolog.Level) zerolog.Level {
	switch l {
	case zerolog.WarnLevel:
		return zerolog.InfoLevel
	case zerolog.InfoLevel:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

func stepUp(l zerolog.Level) zerolog.Level {
	switch l {
	case zerolog.InfoLevel:
		return zerolog.WarnLevel
	case zerolog.WarnLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}
