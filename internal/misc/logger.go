package misc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface. The printf style methods match resty.Logger so the same
// value can be handed to the HTTP client.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	With(args ...any) Logger
}

// NewLogger create Logger instance with `prefix`. Records go to slog.Default()
// at the time they are emitted, so SetDefaultLog may run after package init.
//
//	Example:
//		log := NewLogger("App")
func NewLogger(prefix string) Logger {
	return &logPrefix{
		prefix: strings.ToTitle(prefix),
	}
}

type logPrefix struct {
	prefix string
	attrs  []any
}

func (l *logPrefix) With(args ...any) Logger {
	attrs := make([]any, 0, len(l.attrs)+len(args))
	attrs = append(attrs, l.attrs...)
	attrs = append(attrs, args...)
	return &logPrefix{
		prefix: l.prefix,
		attrs:  attrs,
	}
}

func (l *logPrefix) Debugf(format string, v ...interface{}) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *logPrefix) Infof(format string, v ...interface{}) {
	l.log(slog.LevelInfo, format, v...)
}

func (l *logPrefix) Warnf(format string, v ...interface{}) {
	l.log(slog.LevelWarn, format, v...)
}

func (l *logPrefix) Errorf(format string, v ...interface{}) {
	l.log(slog.LevelError, format, v...)
}

func (l *logPrefix) log(level slog.Level, format string, v ...interface{}) {
	logger := slog.Default()
	if !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, l.format(format, v...), l.attrs...)
}

func (l *logPrefix) format(format string, v ...interface{}) string {
	msg := strings.TrimRight(fmt.Sprintf(format, v...), "\n")
	if l.prefix == "" {
		return msg
	}
	return fmt.Sprintf("[%s] %s", l.prefix, msg)
}
