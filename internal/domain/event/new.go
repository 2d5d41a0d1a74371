package event

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateEventRequest) Event {
	now := time.Now().UTC()

	status := req.Status

	if status == "" {
		status = StatusUpcoming
	}

	return Event{
		ID:               uuid.NewString(),
		UserID:           userID,
		CelebrantID:      req.CelebrantID,
		Title:            req.Title,
		Date:             req.Date,
		Status:           status,
		RemindBeforeDays: req.RemindBeforeDays,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ReminderDueAt is the instant at which this event's reminder window opens.
func (e Event) ReminderDueAt() time.Time {
	return e.Date.AddDate(0, 0, -e.RemindBeforeDays)
}
