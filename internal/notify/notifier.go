// Package notify delivers reminder messages to users. Delivery transport
// is pluggable; failures are reported to the caller and never retried
// here — the sweep loop owns retry by leaving the reminder unsent.
package notify

import (
	"context"
	"log/slog"
)

// Message is a rendered notification for one user.
type Message struct {
	UserID string
	Text   string
}

// Notifier is the delivery sink for reminder messages.
type Notifier interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogNotifier writes notifications to the structured log. It is the
// fallback sink when no Telegram token is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Deliver(ctx context.Context, msg Message) error {
	slog.Info("reminder notification", "user_id", msg.UserID, "text", msg.Text)
	return nil
}
