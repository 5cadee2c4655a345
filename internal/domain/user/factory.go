package user

import (
	"time"

	"github.com/google/uuid"
)

// New builds a persisted-shape User from validated signup fields.
// The password hash is computed by the caller; role defaults to User.
func New(name, email, passwordHash, address, role string) User {
	if role == "" {
		role = RoleUser
	}

	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Address:      address,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
