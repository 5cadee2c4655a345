package store

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(req CreateStoreRequest) Store {
	now := time.Now().UTC()

	return Store{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		OwnerID:   req.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
