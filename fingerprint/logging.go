package fingerprint

import (
	"io"
	"log"
)

// Logger receives diagnostic output from a scan. Query failures are
// warnings; everything else is debug chatter.
type Logger interface {
	Debug(message string)
	Debugf(message string, args ...interface{})
	Warnf(message string, args ...interface{})
}

type nopLogger struct{}

func (l nopLogger) Debug(message string) {}

func (l nopLogger) Debugf(message string, args ...interface{}) {}

func (l nopLogger) Warnf(message string, args ...interface{}) {}

var NopLogger Logger = nopLogger{}

type defaultLogger struct {
	l *log.Logger
}

func (l *defaultLogger) Debug(message string) {
	l.l.Println(message)
}

func (l *defaultLogger) Debugf(message string, args ...interface{}) {
	l.l.Printf(message, args...)
}

func (l *defaultLogger) Warnf(message string, args ...interface{}) {
	l.l.Printf("WARN "+message, args...)
}

var DefaultLogger = func(out io.Writer) Logger {
	return &defaultLogger{log.New(out, "fwscan ", log.LstdFlags)}
}
