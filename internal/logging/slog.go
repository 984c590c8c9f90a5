package logging

import (
	"log/slog"

	"github.com/arloliu/rudder/types"
)

// SlogLogger adapts a *slog.Logger to the types.Logger interface.
//
// The key/value argument convention is identical, so the adaptation is
// a straight pass-through.
type SlogLogger struct {
	logger *slog.Logger
}

// Compile-time assertion that SlogLogger implements types.Logger.
var _ types.Logger = (*SlogLogger)(nil)

// NewSlogLogger wraps a *slog.Logger.
//
// Passing nil uses slog.Default().
//
// Parameters:
//   - logger: The slog logger to wrap
//
// Returns:
//   - *SlogLogger: A types.Logger backed by slog
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *SlogLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}
