package types

// Logger is the structured logging interface used across Rudder.
//
// Messages carry alternating key/value pairs, which makes the interface
// compatible with zap.SugaredLogger's *w methods and with log/slog.
// Use internal/logging.NewSlogLogger to adapt a *slog.Logger, or pass
// any implementation of your own.
//
// Implementations MUST be safe for concurrent use from multiple goroutines.
type Logger interface {
	// Debug logs a message at debug level with key/value pairs.
	Debug(msg string, args ...any)

	// Info logs a message at info level with key/value pairs.
	Info(msg string, args ...any)

	// Warn logs a message at warn level with key/value pairs.
	Warn(msg string, args ...any)

	// Error logs a message at error level with key/value pairs.
	Error(msg string, args ...any)
}
