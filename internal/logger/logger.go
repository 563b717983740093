package logger

import (
	"sync"

	"go.uber.org/zap"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns a singleton logger configured with the provided level and
// format. The first call initializes the logger; subsequent calls ignore
// their arguments and return the already initialized instance.
func Get(level, format string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level, format)
	})
	return globalLogger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Named returns a child logger tagged with a component name.
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}
