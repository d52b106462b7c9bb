package notify

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-inlinecreate/pkg/widget"
)

// Logger forwards notices to a slog logger: errors at warn, the rest at info.
type Logger struct {
	logger *slog.Logger
}

// NewLogger wraps logger, defaulting to slog.Default.
func NewLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return Logger{logger: logger}
}

func (l Logger) Notify(ctx context.Context, message string, severity widget.Severity) {
	level := slog.LevelInfo
	if severity == widget.SeverityError {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notice", slog.String("message", message), slog.String("severity", string(severity)))
}

// Multi delivers every notice to each notifier in order.
type Multi []widget.Notifier

func (m Multi) Notify(ctx context.Context, message string, severity widget.Severity) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, message, severity)
		}
	}
}
