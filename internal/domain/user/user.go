package user

import (
	"errors"
	"time"
)

const (
	RoleAdmin      = "Admin"
	RoleUser       = "User"
	RoleStoreOwner = "StoreOwner"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Address      string    `json:"address,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

type SignUpRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=60"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=20"`
	Address  string `json:"address" binding:"omitempty,max=400"`
	// self-service signup may not claim the Admin role
	Role string `json:"role" binding:"omitempty,oneof=User StoreOwner"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=60"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=20"`
	Address  string `json:"address" binding:"omitempty,max=400"`
	Role     string `json:"role" binding:"required,oneof=Admin User StoreOwner"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=20"`
}

// Summary is the shape embedded in auth responses.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
