package baseapi

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

// Logger receives structured debug output as a message plus alternating
// key/value pairs. Provide one via WithLogger, WithSimpleLogger, or
// NewZerologLogger; without a logger the client stays silent.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// SimpleLogger writes leveled lines through the standard library logger.
// It is meant for development; production setups should prefer the zerolog
// adapter.
type SimpleLogger struct {
	logger *log.Logger
}

// NewSimpleLogger creates a SimpleLogger writing to stderr.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{
		logger: log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
	}
}

// Debug implements Logger.
func (l *SimpleLogger) Debug(msg string, keysAndValues ...any) {
	l.print("DEBUG", msg, keysAndValues)
}

// Info implements Logger.
func (l *SimpleLogger) Info(msg string, keysAndValues ...any) {
	l.print("INFO", msg, keysAndValues)
}

// Warn implements Logger.
func (l *SimpleLogger) Warn(msg string, keysAndValues ...any) {
	l.print("WARN", msg, keysAndValues)
}

// Error implements Logger.
func (l *SimpleLogger) Error(msg string, keysAndValues ...any) {
	l.print("ERROR", msg, keysAndValues)
}

func (l *SimpleLogger) print(level, msg string, keysAndValues []any) {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(level)
	b.WriteString("] ")
	b.WriteString(msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(&b, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(&b, " %v=<missing>", keysAndValues[len(keysAndValues)-1])
	}
	l.logger.Println(b.String())
}

// DebugConfig gates debug logging per area so enabling insight in one place
// does not flood the rest.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogCache     bool
	LogRateLimit bool
	LogCircuit   bool
	// RequestIDGen produces the ID attached to logs and errors for one
	// request. Replace it to correlate with external trace IDs.
	RequestIDGen func() string
}

// DefaultDebugConfig returns a disabled configuration with every area
// switched on, so WithDebug alone yields full output. Narrow the areas to
// reduce noise.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogCache:     true,
		LogRateLimit: true,
		LogCircuit:   true,
		RequestIDGen: defaultRequestIDGen,
	}
}

var requestIDCounter uint64

// defaultRequestIDGen produces process-unique IDs cheap enough for hot paths.
func defaultRequestIDGen() string {
	return "req-" + strconv.FormatUint(atomic.AddUint64(&requestIDCounter, 1), 10)
}
