package celebrant

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateCelebrantRequest) Celebrant {
	now := time.Now().UTC()

	return Celebrant{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          req.Name,
		Relationship:  req.Relationship,
		PhotoURL:      req.PhotoURL,
		FavouriteTags: req.FavouriteTags,
		KeyDates:      req.KeyDates,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
