package notifications

import (
	"context"
	"log/slog"
	"time"
)

// LogNotifier is the delivery channel of record until a real mail/push
// provider is wired in. It just writes a structured log line.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendReminder(ctx context.Context, r Reminder) error {
	n.log.InfoContext(ctx, "reminder",
		"event_id", r.EventID,
		"user_id", r.UserID,
		"celebrant_id", r.CelebrantID,
		"title", r.Title,
		"date", r.Date.Format(time.RFC3339),
	)
	return nil
}
