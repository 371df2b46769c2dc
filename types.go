package jobs

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Clock returns the server time used for timestamps and token expiry.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] JOBS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] JOBS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] JOBS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] JOBS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger discards everything.
func NopLogger() Logger { return nopLogger{} }

type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to the Logger interface.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return zerologLogger{logger: logger}
}

func (z zerologLogger) Debug(format string, args ...any) { z.logger.Debug().Msgf(format, args...) }
func (z zerologLogger) Info(format string, args ...any)  { z.logger.Info().Msgf(format, args...) }
func (z zerologLogger) Warn(format string, args ...any)  { z.logger.Warn().Msgf(format, args...) }
func (z zerologLogger) Error(format string, args ...any) { z.logger.Error().Msgf(format, args...) }

// SetupZerolog builds the process logger. Debug mode switches to a
// human readable console writer.
func SetupZerolog(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Str("service", "jobs").Logger()

	if debug {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Caller().Logger()
	}

	return logger
}
