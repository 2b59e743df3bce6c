package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger adapts a logrus entry to Logger. Key–value args become fields;
// a dangling key is recorded under "!BADKEY" the way slog does it.
type LogrusLogger struct {
	e *logrus.Entry
}

func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{e: logrus.NewEntry(l)}
}

func newLogrusJSON(w io.Writer, level string) (*LogrusLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(lvl)
	return NewLogrusLogger(l), nil
}

func (g *LogrusLogger) Debug(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Debug(msg)
}

func (g *LogrusLogger) Info(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Info(msg)
}

func (g *LogrusLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Warn(msg)
}

func (g *LogrusLogger) Error(ctx context.Context, msg string, args ...any) {
	g.entry(ctx, args).Error(msg)
}

func (g *LogrusLogger) With(args ...any) Logger {
	return &LogrusLogger{e: g.e.WithFields(toFields(args))}
}

func (g *LogrusLogger) entry(ctx context.Context, args []any) *logrus.Entry {
	e := g.e
	if ctx != nil {
		e = e.WithContext(ctx)
	}
	if len(args) == 0 {
		return e
	}
	return e.WithFields(toFields(args))
}

func toFields(args []any) logrus.Fields {
	fields := make(logrus.Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields[key] = args[i+1]
	}
	return fields
}
