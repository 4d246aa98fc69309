// Package notify is the boundary for human-readable status messages.
package notify

import (
	"go.uber.org/zap"
)

// Notifier delivers a status message. Implementations must not block the
// caller for long and must not panic out of Notify.
type Notifier interface {
	Notify(title, text string)
}

type Func func(title, text string)

func (f Func) Notify(title, text string) { f(title, text) }

// Log writes notifications to a zap logger.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Notify(title, text string) {
	if l.Logger == nil {
		return
	}
	l.Logger.Info("notification", zap.String("title", title), zap.String("text", text))
}

// Multi fans out to every notifier. A panicking notifier is logged and
// skipped.
type Multi struct {
	Notifiers []Notifier
	Logger    *zap.Logger
}

func NewMulti(log *zap.Logger, notifiers ...Notifier) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{Notifiers: notifiers, Logger: log}
}

func (m *Multi) Notify(title, text string) {
	for _, n := range m.Notifiers {
		m.deliver(n, title, text)
	}
}

func (m *Multi) deliver(n Notifier, title, text string) {
	defer func() {
		if p := recover(); p != nil && m.Logger != nil {
			m.Logger.Error("notifier panicked", zap.Any("panic", p), zap.String("title", title))
		}
	}()
	n.Notify(title, text)
}

// Safe guards a single notifier the same way Multi does.
func Safe(n Notifier, log *zap.Logger) Notifier {
	if n == nil {
		return Func(func(string, string) {})
	}
	return NewMulti(log, n)
}
