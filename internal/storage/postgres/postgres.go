// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
// Receipts and rosters are stored as JSONB documents.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, checks the connection and creates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    google_subject TEXT UNIQUE,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    people JSONB NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS preferences (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    default_group_id TEXT REFERENCES groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    receipt JSONB NOT NULL,
    people JSONB NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_receipts_user_created ON receipts(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_groups_user_id ON groups(user_id);
`

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) CreateReceipt(ctx context.Context, saved *models.SavedReceipt) error {
	storage.PrepareReceipt(saved)

	receipt, people, err := marshalReceipt(saved)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO receipts (id, user_id, receipt, people, created_at) VALUES ($1, $2, $3, $4, $5)",
		saved.ID, saved.UserID, receipt, people, saved.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

func (s *Store) UpdateReceipt(ctx context.Context, saved *models.SavedReceipt) error {
	existing, err := s.GetReceipt(ctx, saved.UserID, saved.ID)
	if err != nil {
		return err
	}
	saved.CreatedAt = existing.CreatedAt
	if saved.Receipt.Title == "" {
		saved.Receipt.Title = storage.DefaultTitle(saved.CreatedAt)
	}

	receipt, people, err := marshalReceipt(saved)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		"UPDATE receipts SET receipt = $1, people = $2 WHERE id = $3 AND user_id = $4",
		receipt, people, saved.ID, saved.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetReceipt(ctx context.Context, userID, receiptID string) (*models.SavedReceipt, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, user_id, receipt, people, created_at FROM receipts WHERE id = $1 AND user_id = $2",
		receiptID, userID,
	)
	saved, err := scanReceipt(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return saved, nil
}

func (s *Store) ListReceipts(ctx context.Context, userID string) ([]*models.SavedReceipt, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, receipt, people, created_at FROM receipts WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []*models.SavedReceipt{}
	for rows.Next() {
		saved, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}

func (s *Store) DeleteReceipt(ctx context.Context, userID, receiptID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM receipts WHERE id = $1 AND user_id = $2", receiptID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func marshalReceipt(saved *models.SavedReceipt) ([]byte, []byte, error) {
	receipt, err := json.Marshal(saved.Receipt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	people, err := json.Marshal(saved.People)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode people: %w", err)
	}
	return receipt, people, nil
}

func scanReceipt(row pgx.Row) (*models.SavedReceipt, error) {
	saved := &models.SavedReceipt{}
	var receipt, people []byte
	if err := row.Scan(&saved.ID, &saved.UserID, &receipt, &people, &saved.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(receipt, &saved.Receipt); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	if err := json.Unmarshal(people, &saved.People); err != nil {
		return nil, fmt.Errorf("failed to decode people: %w", err)
	}
	return saved, nil
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	storage.PrepareGroup(group)

	people, err := json.Marshal(group.People)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		"INSERT INTO groups (id, user_id, name, people, created_at) VALUES ($1, $2, $3, $4, $5)",
		group.ID, group.UserID, group.Name, people, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	people, err := json.Marshal(group.People)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		"UPDATE groups SET name = $1, people = $2 WHERE id = $3 AND user_id = $4 RETURNING created_at",
		group.Name, people, group.ID, group.UserID,
	).Scan(&group.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

func (s *Store) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT id, user_id, name, people, created_at FROM groups WHERE id = $1 AND user_id = $2",
		groupID, userID,
	)
	group, err := scanGroup(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

func (s *Store) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, user_id, name, people, created_at FROM groups WHERE user_id = $1 ORDER BY lower(name), created_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	group := &models.Group{}
	var people []byte
	if err := row.Scan(&group.ID, &group.UserID, &group.Name, &people, &group.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(people, &group.People); err != nil {
		return nil, fmt.Errorf("failed to decode people: %w", err)
	}
	return group, nil
}

func (s *Store) DeleteGroup(ctx context.Context, userID, groupID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1 AND user_id = $2", groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs := &models.Preferences{UserID: userID}
	var groupID *string
	err := s.pool.QueryRow(ctx,
		"SELECT default_group_id FROM preferences WHERE user_id = $1", userID,
	).Scan(&groupID)
	if errors.Is(err, pgx.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if groupID != nil {
		prefs.DefaultGroupID = *groupID
	}
	return prefs, nil
}

func (s *Store) SetDefaultGroup(ctx context.Context, userID, groupID string) error {
	var value *string
	if groupID != "" {
		if _, err := s.GetGroup(ctx, userID, groupID); err != nil {
			return err
		}
		value = &groupID
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO preferences (user_id, default_group_id) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET default_group_id = EXCLUDED.default_group_id`,
		userID, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set default group: %w", err)
	}
	return nil
}

const userColumns = "id, email, display_name, password_hash, google_subject, created_at, updated_at"

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	var subject *string
	if user.GoogleSubject != "" {
		subject = &user.GoogleSubject
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
		user.ID, user.Email, user.DisplayName, user.PasswordHash, subject, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_email_key" {
			return storage.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) GetUserByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	return s.getUser(ctx, "google_subject", subject)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	var subject *string
	err := s.pool.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = $1", value,
	).Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash, &subject, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	if subject != nil {
		user.GoogleSubject = *subject
	}
	return user, nil
}

func (s *Store) LinkGoogleSubject(ctx context.Context, userID, subject string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET google_subject = $1, updated_at = $2 WHERE id = $3",
		subject, time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
