package game

import (
	"context"
	"log/slog"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives player-facing messages. Implementations must not block
// and must not fail the caller.
type Notifier interface {
	Notify(message string, severity Severity)
}

type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(message string, severity Severity) {
	logger := n.Log
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, message, "severity", string(severity))
}

// Fanout delivers every message to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(message string, severity Severity) {
	for _, n := range f {
		if n != nil {
			n.Notify(message, severity)
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, Severity) {}

type notice struct {
	message  string
	severity Severity
}
