package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

// CreateGroup persists a new group with its roster.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	storage.PrepareGroup(group)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, user_id, name, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.UserID, group.Name, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	if err := insertGroupPeople(ctx, tx, group); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateGroup renames the group and replaces its roster.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE groups SET name = ? WHERE id = ? AND user_id = ?",
		group.Name, group.ID, group.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM group_people WHERE group_id = ?", group.ID); err != nil {
		return fmt.Errorf("failed to clear group people: %w", err)
	}
	if err := insertGroupPeople(ctx, tx, group); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM groups WHERE id = ?", group.ID,
	).Scan(&group.CreatedAt); err != nil {
		return fmt.Errorf("failed to read creation time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertGroupPeople(ctx context.Context, tx *sql.Tx, group *models.Group) error {
	for i, p := range group.People {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO group_people (group_id, position, person_id, name, color) VALUES (?, ?, ?, ?, ?)",
			group.ID, i, p.ID, p.Name, p.Color,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group person: %w", err)
		}
	}
	return nil
}

// GetGroup retrieves a group with its roster.
func (s *SQLiteStore) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, created_at FROM groups WHERE id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&group.ID, &group.UserID, &group.Name, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.People, err = loadPeople(ctx, s.db,
		"SELECT person_id, name, color FROM group_people WHERE group_id = ? ORDER BY position", groupID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroups returns the user's groups ordered by name.
func (s *SQLiteStore) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM groups WHERE user_id = ? ORDER BY name COLLATE NOCASE, created_at",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := s.GetGroup(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// DeleteGroup removes a group. A preference pointing at it is cleared by ON DELETE SET NULL.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, userID, groupID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM groups WHERE id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetPreferences returns the user's preferences. A user without a row gets the zero value.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs := &models.Preferences{UserID: userID}
	var groupID sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT default_group_id FROM preferences WHERE user_id = ?", userID,
	).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	prefs.DefaultGroupID = groupID.String
	return prefs, nil
}

// SetDefaultGroup records the group preloaded into new sessions.
func (s *SQLiteStore) SetDefaultGroup(ctx context.Context, userID, groupID string) error {
	if groupID != "" {
		if _, err := s.GetGroup(ctx, userID, groupID); err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, default_group_id) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET default_group_id = excluded.default_group_id`,
		userID, nullString(groupID),
	)
	if err != nil {
		return fmt.Errorf("failed to set default group: %w", err)
	}
	return nil
}
