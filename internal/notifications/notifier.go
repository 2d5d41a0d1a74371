package notifications

import (
	"context"
	"time"
)

// Reminder is the payload handed to a notifier when an event's reminder
// window opens.
type Reminder struct {
	EventID     string
	UserID      string
	CelebrantID string
	Title       string
	Date        time.Time
}

type Notifier interface {
	SendReminder(ctx context.Context, r Reminder) error
}
