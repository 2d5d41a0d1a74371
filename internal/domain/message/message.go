package message

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Message is a short note attached to an event. Access is governed by
// ownership of the parent event, not of the message itself.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("message not found")

type CreateMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=500"`
}

type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=500"`
}

func New(userID, eventID, content string) Message {
	now := time.Now().UTC()

	return Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
