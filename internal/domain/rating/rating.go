package rating

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	StoreID   string    `json:"storeId"`
	Value     int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SubmitRatingRequest struct {
	StoreID string `json:"storeId" binding:"required,uuid"`
	Value   int    `json:"rating" binding:"required,min=1,max=5"`
}

// StoreReview is one ledger row joined with the reviewer's identity,
// as shown on the owner dashboard.
type StoreReview struct {
	ReviewerName  string    `json:"name"`
	ReviewerEmail string    `json:"email"`
	Value         int       `json:"rating"`
	SubmittedAt   time.Time `json:"date"`
}

// New builds a fresh ledger row for a first-time submission. Resubmissions
// never mint a new row; the repository upserts on (userId, storeId).
func New(userID, storeID string, value int) Rating {
	now := time.Now().UTC()

	return Rating{
		ID:        uuid.NewString(),
		UserID:    userID,
		StoreID:   storeID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
