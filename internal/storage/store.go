// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/models"
)

// ErrNotFound is returned when a record does not exist or belongs to another user.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// ReceiptStore persists a user's receipt history.
type ReceiptStore interface {
	// CreateReceipt persists a new saved receipt.
	// ID, CreatedAt and an empty Title are filled in by the store.
	CreateReceipt(ctx context.Context, saved *models.SavedReceipt) error

	// UpdateReceipt replaces the receipt and roster of an existing record.
	// CreatedAt is preserved.
	UpdateReceipt(ctx context.Context, saved *models.SavedReceipt) error

	// ListReceipts returns the user's receipts, most recent first.
	ListReceipts(ctx context.Context, userID string) ([]*models.SavedReceipt, error)

	GetReceipt(ctx context.Context, userID, receiptID string) (*models.SavedReceipt, error)
	DeleteReceipt(ctx context.Context, userID, receiptID string) error
}

// GroupStore persists reusable rosters and the default group preference.
type GroupStore interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	UpdateGroup(ctx context.Context, group *models.Group) error
	ListGroups(ctx context.Context, userID string) ([]*models.Group, error)
	GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error)

	// DeleteGroup removes the group and clears it as the default if it was one.
	DeleteGroup(ctx context.Context, userID, groupID string) error

	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)

	// SetDefaultGroup sets the group preloaded into new sessions. An empty groupID clears it.
	SetDefaultGroup(ctx context.Context, userID, groupID string) error
}

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error)

	// LinkGoogleSubject attaches a Google account to an existing user.
	LinkGoogleSubject(ctx context.Context, userID, subject string) error
}

// Store defines the interface for all storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	ReceiptStore
	GroupStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// DefaultTitle names a receipt saved without a title.
func DefaultTitle(createdAt int64) string {
	return "Receipt " + time.Unix(createdAt, 0).Format("Jan 2, 2006")
}

// PrepareReceipt fills in the fields a new saved receipt gets from the store.
func PrepareReceipt(saved *models.SavedReceipt) {
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.CreatedAt == 0 {
		saved.CreatedAt = time.Now().Unix()
	}
	if saved.Receipt.Title == "" {
		saved.Receipt.Title = DefaultTitle(saved.CreatedAt)
	}
}

// PrepareGroup fills in the fields a new group gets from the store.
func PrepareGroup(group *models.Group) {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
}
