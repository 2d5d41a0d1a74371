package event

import (
	"errors"
	"time"
)

const (
	StatusUpcoming  = "upcoming"
	StatusPast      = "past"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CelebrantID string    `json:"celebrantId"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status"`
	// Days before Date at which the reminder becomes due. 0 means the day of.
	RemindBeforeDays int        `json:"remindBeforeDays"`
	RemindedAt       *time.Time `json:"remindedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

var ErrNotFound = errors.New("event not found")

type CreateEventRequest struct {
	CelebrantID      string    `json:"celebrantId" binding:"required,uuid4"`
	Title            string    `json:"title" binding:"required,min=2,max=120"`
	Date             time.Time `json:"date" binding:"required"`
	Status           string    `json:"status" binding:"omitempty,oneof=upcoming past cancelled"`
	RemindBeforeDays int       `json:"remindBeforeDays" binding:"omitempty,min=0,max=365"`
}

type UpdateEventRequest struct {
	Title            string    `json:"title" binding:"required,min=2,max=120"`
	Date             time.Time `json:"date" binding:"required"`
	Status           string    `json:"status" binding:"omitempty,oneof=upcoming past cancelled"`
	RemindBeforeDays int       `json:"remindBeforeDays" binding:"omitempty,min=0,max=365"`
}

type ListFilter struct {
	OwnerID     *string
	CelebrantID *string
	Status      *string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
