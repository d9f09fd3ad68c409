package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

// Runs only when TEST_DATABASE_URL points at a disposable database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := New(context.Background(), url)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser(uuid.NewString()+"@example.com", "Test", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := store.CreateUser(ctx, models.NewUser(user.Email, "Dup", "")); !errors.Is(err, storage.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}

	discount, original := 5.0, 30.0
	saved := &models.SavedReceipt{
		UserID: user.ID,
		Receipt: models.Receipt{
			Title: "Dinner",
			Items: []models.ReceiptItem{
				{ID: "i1", Description: "Steak", Price: 25, OriginalPrice: &original, Discount: &discount, AssignedTo: []string{"p1"}},
			},
			Subtotal: 25,
			Total:    25,
		},
		People: []models.Person{{ID: "p1", Name: "Alice", Color: models.ColorFor(0)}},
	}
	if err := store.CreateReceipt(ctx, saved); err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}
	got, err := store.GetReceipt(ctx, user.ID, saved.ID)
	if err != nil {
		t.Fatalf("GetReceipt failed: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("GetReceipt() mismatch (-want +got):\n%s", diff)
	}

	group := &models.Group{UserID: user.ID, Name: "Team", People: saved.People}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.SetDefaultGroup(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("SetDefaultGroup failed: %v", err)
	}
	if err := store.DeleteGroup(ctx, user.ID, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	prefs, err := store.GetPreferences(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs.DefaultGroupID != "" {
		t.Errorf("DefaultGroupID = %q, want empty", prefs.DefaultGroupID)
	}

	if err := store.DeleteReceipt(ctx, user.ID, saved.ID); err != nil {
		t.Fatalf("DeleteReceipt failed: %v", err)
	}
	if _, err := store.GetReceipt(ctx, user.ID, saved.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
