package store

import (
	"errors"
	"time"
)

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	OwnerID   *string   `json:"ownerId,omitempty"` // nil until claimed by an owner
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound      = errors.New("store not found")
	ErrEmailTaken    = errors.New("store email already in use")
	ErrOwnerHasStore = errors.New("owner already has a store")
	ErrOwnerNotFound = errors.New("store owner not found")
)

// One name rule for both creation paths. The client used to demand 20+
// characters on the owner form only; the server applies 3-60 everywhere.
type CreateStoreRequest struct {
	Name    string  `json:"name" binding:"required,min=3,max=60"`
	Email   string  `json:"email" binding:"required,email"`
	Address string  `json:"address" binding:"omitempty,max=400"`
	OwnerID *string `json:"ownerId" binding:"omitempty,uuid"`
}

type CreateOwnerStoreRequest struct {
	Name    string `json:"name" binding:"required,min=3,max=60"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"omitempty,max=400"`
}
