package attendascot

import (
	"fmt"
	"log"
)

// SLogger is the internal logging interface used by the bot and handed to
// plugins. Debug output is gated by configuration rather than by callers
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *log.Logger
	debug  bool
}

// NewSLogger creates a new logger writing through the provided standard
// library logger with debug statements included only when debug is true
func NewSLogger(logger *log.Logger, debug bool) (l *sLogger) {
	l = new(sLogger)
	l.logger = logger
	l.debug = debug

	return l
}

// Printf logs a line by delegating to the wrapped logger's Output
func (l *sLogger) Printf(format string, v ...interface{}) {
	l.logger.Output(2, fmt.Sprintf(format, v...))
}

// Debugf logs a line only when debug logging is enabled
func (l *sLogger) Debugf(format string, v ...interface{}) {
	if l.debug {
		l.logger.Output(2, fmt.Sprintf(format, v...))
	}
}
