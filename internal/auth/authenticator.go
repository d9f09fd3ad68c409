package auth

import (
	"context"

	"github.com/gana36/billbeam/internal/models"
)

// Authenticator defines the interface for credential-based sign-in.
// Google sign-in is handled separately by GoogleAuthenticator since it
// has a redirect step and no local credential.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}

// UserStorage defines the user persistence operations auth needs.
// This allows the authenticators to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error)
	LinkGoogleSubject(ctx context.Context, userID, subject string) error
}
