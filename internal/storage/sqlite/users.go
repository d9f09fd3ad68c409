package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

const userColumns = "id, email, display_name, password_hash, google_subject, created_at, updated_at"

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.PasswordHash,
		nullString(user.GoogleSubject),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByGoogleSubject retrieves the user linked to a Google account.
func (s *SQLiteStore) GetUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	return s.getUser(ctx, "google_subject", subject)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + column + " = ?"

	user := &models.User{}
	var subject sql.NullString
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&subject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	user.GoogleSubject = subject.String

	return user, nil
}

// LinkGoogleSubject attaches a Google account to an existing user.
func (s *SQLiteStore) LinkGoogleSubject(ctx context.Context, userID, subject string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET google_subject = ?, updated_at = strftime('%s', 'now') WHERE id = ?",
		subject, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
