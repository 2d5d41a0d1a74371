package celebrant

import (
	"errors"
	"time"
)

type Celebrant struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Relationship  string    `json:"relationship"`
	PhotoURL      string    `json:"photoUrl,omitempty"`
	FavouriteTags []string  `json:"favouriteTags,omitempty"`
	KeyDates      []KeyDate `json:"keyDates,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// KeyDate is an occasion attached to a celebrant (birthday, anniversary, ...).
type KeyDate struct {
	Type      string    `json:"type" binding:"required,min=2,max=40"`
	Date      time.Time `json:"date" binding:"required"`
	Recurring bool      `json:"recurring"`
}

var (
	ErrNotFound  = errors.New("celebrant not found")
	ErrNameTaken = errors.New("celebrant name already exists for this user")
)

type CreateCelebrantRequest struct {
	Name          string    `json:"name" binding:"required,min=2,max=50"`
	Relationship  string    `json:"relationship" binding:"required,min=2,max=50"`
	PhotoURL      string    `json:"photoUrl" binding:"omitempty,url"`
	FavouriteTags []string  `json:"favouriteTags" binding:"omitempty,max=20,dive,min=1,max=40"`
	KeyDates      []KeyDate `json:"keyDates" binding:"omitempty,max=20,dive"`
	Notes         string    `json:"notes" binding:"omitempty,max=1000"`
}

// UpdateCelebrantRequest is a full replacement of the mutable fields.
type UpdateCelebrantRequest struct {
	Name          string    `json:"name" binding:"required,min=2,max=50"`
	Relationship  string    `json:"relationship" binding:"required,min=2,max=50"`
	PhotoURL      string    `json:"photoUrl" binding:"omitempty,url"`
	FavouriteTags []string  `json:"favouriteTags" binding:"omitempty,max=20,dive,min=1,max=40"`
	KeyDates      []KeyDate `json:"keyDates" binding:"omitempty,max=20,dive"`
	Notes         string    `json:"notes" binding:"omitempty,max=1000"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	OwnerID      *string
	Name         *string
	Relationship *string
	Limit        int
	Offset       int
}
