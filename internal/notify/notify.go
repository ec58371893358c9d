// Package notify доставляет пользовательские уведомления об успехе и ошибках операций.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/popodpiske/checkout-gateway/internal/lib/sl"
	"github.com/popodpiske/checkout-gateway/internal/metrics"
)

// Level уровень уведомления.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification уведомление для сессии.
type Notification struct {
	SessionID string    `json:"sessionId"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Operation string    `json:"operation,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier отправляет уведомление. Ошибки доставки не возвращаются вызывающему:
// уведомление не должно ломать основную операцию.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Logger пишет уведомления в журнал.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	return &Logger{log: log}
}

func (l *Logger) Notify(_ context.Context, n Notification) {
	metrics.IncNotification(string(n.Level))
	attrs := []any{
		sl.Session(n.SessionID),
		slog.String("level", string(n.Level)),
		slog.String("operation", n.Operation),
		slog.String("message", n.Message),
	}
	if n.Level == LevelError {
		l.log.Warn("notification", attrs...)
		return
	}
	l.log.Info("notification", attrs...)
}

// Fanout рассылает уведомление всем получателям по очереди.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n Notification) {
	for _, nt := range f {
		nt.Notify(ctx, n)
	}
}

// Error собирает уведомление об ошибке.
func Error(sessionID, operation, message string) Notification {
	return Notification{
		SessionID: sessionID,
		Level:     LevelError,
		Operation: operation,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

// Success собирает уведомление об успехе.
func Success(sessionID, operation, message string) Notification {
	return Notification{
		SessionID: sessionID,
		Level:     LevelSuccess,
		Operation: operation,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}
