package particles

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// DefaultPrefix tags lines from a DefaultLogger created without a prefix.
const DefaultPrefix = "particles"

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger writes debug and info lines to one writer and warnings and
// errors to another. Safe for concurrent use.
type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewDefaultLoggerTo(os.Stdout, os.Stderr, prefix, debug)
}

// NewDefaultLoggerTo is NewDefaultLogger with explicit destinations.
func NewDefaultLoggerTo(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) emit(dst *log.Logger, level, format string, args ...any) {
	dst.Printf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if l.DebugEnabled() {
		l.emit(l.out, "DEBUG", format, args...)
	}
}

func (l *DefaultLogger) Infof(format string, args ...any)  { l.emit(l.out, "INFO", format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.emit(l.err, "WARN", format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.emit(l.err, "ERROR", format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool    { return false }
func (nopLogger) SetDebug(bool)         {}
func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// loggerOrNop never returns nil.
func loggerOrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}

// logFrame reports what one Update did to the pool. Nothing is formatted
// unless debug output is on.
func logFrame(l Logger, before, after SimulationStats, active, capacity int) {
	if !l.DebugEnabled() {
		return
	}
	d := after.sub(before)
	if d == (SimulationStats{}) {
		return
	}
	l.Debugf("pool %d/%d: +%d emitted, %d expired, %d overwritten, %d compactions",
		active, capacity, d.Emitted, d.Expired, d.Overwritten, d.Compactions)
}
