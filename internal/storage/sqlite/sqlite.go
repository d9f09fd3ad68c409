// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are a per-connection setting, so they go in the DSN.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateReceipt persists a new saved receipt with its items, assignments and roster.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, saved *models.SavedReceipt) error {
	storage.PrepareReceipt(saved)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r := &saved.Receipt
	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (id, user_id, title, subtotal, tax, tip, miscellaneous, total, image_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.UserID, r.Title, r.Subtotal, r.Tax, r.Tip, r.Miscellaneous, r.Total, r.ImageKey, saved.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	if err := insertReceiptChildren(ctx, tx, saved); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateReceipt replaces the stored receipt, keeping its creation time.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, saved *models.SavedReceipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r := &saved.Receipt
	if r.Title == "" {
		var createdAt int64
		err := tx.QueryRowContext(ctx,
			"SELECT created_at FROM receipts WHERE id = ? AND user_id = ?", saved.ID, saved.UserID,
		).Scan(&createdAt)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}
		r.Title = storage.DefaultTitle(createdAt)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE receipts SET title = ?, subtotal = ?, tax = ?, tip = ?, miscellaneous = ?, total = ?, image_key = ?
		 WHERE id = ? AND user_id = ?`,
		r.Title, r.Subtotal, r.Tax, r.Tip, r.Miscellaneous, r.Total, r.ImageKey, saved.ID, saved.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	for _, table := range []string{"item_assignments", "items", "receipt_people"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE receipt_id = ?", saved.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertReceiptChildren(ctx, tx, saved); err != nil {
		return err
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT created_at FROM receipts WHERE id = ?", saved.ID,
	).Scan(&saved.CreatedAt); err != nil {
		return fmt.Errorf("failed to read creation time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertReceiptChildren(ctx context.Context, tx *sql.Tx, saved *models.SavedReceipt) error {
	for i, p := range saved.People {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO receipt_people (receipt_id, position, person_id, name, color) VALUES (?, ?, ?, ?, ?)",
			saved.ID, i, p.ID, p.Name, p.Color,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i, item := range saved.Receipt.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO items (receipt_id, id, position, description, price, original_price, discount)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			saved.ID, item.ID, i, item.Description, item.Price, nullFloat(item.OriginalPrice), nullFloat(item.Discount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for _, personID := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (receipt_id, item_id, person_id) VALUES (?, ?, ?)",
				saved.ID, item.ID, personID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

// GetReceipt retrieves a saved receipt by ID, including items, assignments and roster.
func (s *SQLiteStore) GetReceipt(ctx context.Context, userID, receiptID string) (*models.SavedReceipt, error) {
	return loadReceipt(ctx, s.db, userID, receiptID)
}

// ListReceipts returns the user's receipts, most recent first.
func (s *SQLiteStore) ListReceipts(ctx context.Context, userID string) ([]*models.SavedReceipt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM receipts WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan receipt id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}

	receipts := make([]*models.SavedReceipt, 0, len(ids))
	for _, id := range ids {
		saved, err := loadReceipt(ctx, s.db, userID, id)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, saved)
	}
	return receipts, nil
}

// DeleteReceipt removes a saved receipt. Children go with it via ON DELETE CASCADE.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, userID, receiptID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ? AND user_id = ?", receiptID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func loadReceipt(ctx context.Context, q queryer, userID, receiptID string) (*models.SavedReceipt, error) {
	saved := &models.SavedReceipt{}
	r := &saved.Receipt
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, title, subtotal, tax, tip, miscellaneous, total, image_key, created_at
		 FROM receipts WHERE id = ? AND user_id = ?`,
		receiptID, userID,
	).Scan(&saved.ID, &saved.UserID, &r.Title, &r.Subtotal, &r.Tax, &r.Tip, &r.Miscellaneous, &r.Total, &r.ImageKey, &saved.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	saved.People, err = loadPeople(ctx, q,
		"SELECT person_id, name, color FROM receipt_people WHERE receipt_id = ? ORDER BY position", receiptID)
	if err != nil {
		return nil, err
	}

	// Assignments first so the item rows can be filled in one pass.
	assigned, err := loadAssignments(ctx, q, receiptID)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT id, description, price, original_price, discount FROM items WHERE receipt_id = ? ORDER BY position",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	r.Items = []models.ReceiptItem{}
	for rows.Next() {
		var item models.ReceiptItem
		var original, discount sql.NullFloat64
		if err := rows.Scan(&item.ID, &item.Description, &item.Price, &original, &discount); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.OriginalPrice = floatPtr(original)
		item.Discount = floatPtr(discount)
		item.AssignedTo = assigned[item.ID]
		if item.AssignedTo == nil {
			item.AssignedTo = []string{}
		}
		r.Items = append(r.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return saved, nil
}

func loadAssignments(ctx context.Context, q queryer, receiptID string) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT item_id, person_id FROM item_assignments WHERE receipt_id = ? ORDER BY rowid",
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	assigned := make(map[string][]string)
	for rows.Next() {
		var itemID, personID string
		if err := rows.Scan(&itemID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assigned[itemID] = append(assigned[itemID], personID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	return assigned, nil
}

func loadPeople(ctx context.Context, q queryer, query, ownerID string) ([]models.Person, error) {
	rows, err := q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return people, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
