package log

import (
	"context"
	"io"
	"log"
	"os"
)

type CslLogger struct {
	out      *log.Logger
	minLevel Level
}

func NewCslLogger(level string) (*CslLogger, error) {
	return NewCslLoggerWriter(os.Stderr, level), nil
}

func NewCslLoggerWriter(w io.Writer, level string) *CslLogger {
	return &CslLogger{
		out:      log.New(w, "", log.LstdFlags),
		minLevel: ParseLevel(level),
	}
}

func (l *CslLogger) printf(level Level, format string, args ...interface{}) {
	if level > l.minLevel {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

func (l *CslLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelAlert, format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

func (l *CslLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

func (l *CslLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelEmergency, format, args...)
}

func (l *CslLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	l.printf(LevelNotice, format, args...)
}

// NopLogger bỏ qua mọi log, dùng trong test
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) Info(context.Context, string, ...interface{})      {}
func (NopLogger) Alert(context.Context, string, ...interface{})     {}
func (NopLogger) Error(context.Context, string, ...interface{})     {}
func (NopLogger) Warn(context.Context, string, ...interface{})      {}
func (NopLogger) Debug(context.Context, string, ...interface{})     {}
func (NopLogger) Critical(context.Context, string, ...interface{})  {}
func (NopLogger) Emergency(context.Context, string, ...interface{}) {}
func (NopLogger) Notice(context.Context, string, ...interface{})    {}
