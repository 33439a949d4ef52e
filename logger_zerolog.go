package baseapi

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to the Logger interface, mapping
// key/value pairs onto structured fields.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog logger.
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

// Debug implements Logger.
func (z *ZerologLogger) Debug(msg string, keysAndValues ...any) {
	z.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Info implements Logger.
func (z *ZerologLogger) Info(msg string, keysAndValues ...any) {
	z.logger.Info().Fields(keysAndValues).Msg(msg)
}

// Warn implements Logger.
func (z *ZerologLogger) Warn(msg string, keysAndValues ...any) {
	z.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// Error implements Logger.
func (z *ZerologLogger) Error(msg string, keysAndValues ...any) {
	z.logger.Error().Fields(keysAndValues).Msg(msg)
}

// WithZerolog routes client debug output through the given zerolog logger.
func WithZerolog(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = NewZerologLogger(logger)
	}
}
