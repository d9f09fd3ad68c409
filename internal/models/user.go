package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a signed-in account.
// Receipts, groups and preferences are all keyed by User.ID.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	Email string

	// DisplayName is shown in the client header.
	DisplayName string

	// PasswordHash is the bcrypt hash for password sign-in. Empty for Google-only accounts.
	PasswordHash string

	// GoogleSubject is the stable Google account ID ("sub" claim). Empty for password accounts.
	GoogleSubject string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser builds a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
