// Package obslog wires structured logging (go.uber.org/zap) the way the
// rest of the pack configures it: built once at main(), threaded down
// through constructors, never reached for via a package-level global.
package obslog

import "go.uber.org/zap"

// Logger wraps a *zap.Logger so grounding/search components can accept one
// without ever nil-checking the caller's choice not to pass one.
type Logger struct {
	z *zap.Logger
}

// New wraps z. A nil z falls back to a no-op logger, so every constructor
// taking a *Logger can be called with a zero value safely.
func New(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{z: z}
}

// Nop returns a Logger that discards everything, for tests and library
// callers that don't want logging.
func Nop() *Logger { return New(nil) }

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Debug(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Info(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	l.z.Warn(msg, fields...)
}

// Sync flushes any buffered log entries, following the teacher's shutdown
// discipline of calling this once at program exit.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.z.Sync()
}
