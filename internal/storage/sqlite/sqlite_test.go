package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gana36/billbeam/internal/models"
	"github.com/gana36/billbeam/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "billbeam-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "Test User", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func ptr(v float64) *float64 { return &v }

func TestReceipts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "alice@example.com")

	people := []models.Person{
		{ID: "p1", Name: "Alice", Color: models.ColorFor(0)},
		{ID: "p2", Name: "Bob", Color: models.ColorFor(1)},
	}

	t.Run("CreateReceipt generates ID and title", func(t *testing.T) {
		saved := &models.SavedReceipt{
			UserID: user.ID,
			Receipt: models.Receipt{
				Items: []models.ReceiptItem{{ID: "i1", Description: "Pizza", Price: 20, AssignedTo: []string{}}},
			},
			People: people,
		}
		if err := store.CreateReceipt(ctx, saved); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		if saved.ID == "" {
			t.Error("Expected receipt ID to be generated")
		}
		if saved.Receipt.Title != storage.DefaultTitle(saved.CreatedAt) {
			t.Errorf("Title = %q, want default title", saved.Receipt.Title)
		}
	})

	t.Run("GetReceipt round-trips discounts and assignments", func(t *testing.T) {
		original := &models.SavedReceipt{
			UserID: user.ID,
			Receipt: models.Receipt{
				Title: "Test Dinner",
				Items: []models.ReceiptItem{
					{ID: "i1", Description: "Steak", Price: 25, OriginalPrice: ptr(30), Discount: ptr(5), AssignedTo: []string{"p1"}},
					{ID: "i2", Description: "Wine", Price: 20, AssignedTo: []string{"p2", "p1"}},
					{ID: "i3", Description: "Bread", Price: 5, AssignedTo: []string{}},
				},
				Subtotal: 50,
				Tax:      4.5,
				Tip:      8,
				Total:    62.5,
			},
			People: people,
		}
		if err := store.CreateReceipt(ctx, original); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		got, err := store.GetReceipt(ctx, user.ID, original.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if diff := cmp.Diff(original, got); diff != "" {
			t.Errorf("GetReceipt() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetReceipt is scoped to the owner", func(t *testing.T) {
		other := createUser(t, store, "mallory@example.com")
		saved := &models.SavedReceipt{UserID: user.ID, Receipt: models.Receipt{Items: []models.ReceiptItem{}}}
		if err := store.CreateReceipt(ctx, saved); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
		if _, err := store.GetReceipt(ctx, other.ID, saved.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateReceipt keeps creation time", func(t *testing.T) {
		saved := &models.SavedReceipt{
			UserID:    user.ID,
			CreatedAt: 1000,
			Receipt: models.Receipt{
				Title: "Lunch",
				Items: []models.ReceiptItem{{ID: "i1", Description: "Soup", Price: 8, AssignedTo: []string{"p1"}}},
			},
			People: people,
		}
		if err := store.CreateReceipt(ctx, saved); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}

		update := &models.SavedReceipt{
			ID:     saved.ID,
			UserID: user.ID,
			Receipt: models.Receipt{
				Title: "Lunch (edited)",
				Items: []models.ReceiptItem{{ID: "i1", Description: "Soup", Price: 9, AssignedTo: []string{"p1", "p2"}}},
			},
			People: people,
		}
		if err := store.UpdateReceipt(ctx, update); err != nil {
			t.Fatalf("UpdateReceipt failed: %v", err)
		}
		if update.CreatedAt != 1000 {
			t.Errorf("CreatedAt = %d, want 1000", update.CreatedAt)
		}

		got, err := store.GetReceipt(ctx, user.ID, saved.ID)
		if err != nil {
			t.Fatalf("GetReceipt failed: %v", err)
		}
		if got.Receipt.Title != "Lunch (edited)" {
			t.Errorf("Title = %q", got.Receipt.Title)
		}
		if len(got.Receipt.Items[0].AssignedTo) != 2 {
			t.Errorf("AssignedTo = %v, want two people", got.Receipt.Items[0].AssignedTo)
		}
	})

	t.Run("UpdateReceipt returns ErrNotFound for unknown receipt", func(t *testing.T) {
		err := store.UpdateReceipt(ctx, &models.SavedReceipt{ID: "nope", UserID: user.ID, Receipt: models.Receipt{Title: "x"}})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestListReceiptsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "alice@example.com")

	for _, ts := range []int64{100, 300, 200} {
		saved := &models.SavedReceipt{UserID: user.ID, CreatedAt: ts, Receipt: models.Receipt{Items: []models.ReceiptItem{}}}
		if err := store.CreateReceipt(ctx, saved); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
	}

	list, err := store.ListReceipts(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListReceipts failed: %v", err)
	}
	var got []int64
	for _, r := range list {
		got = append(got, r.CreatedAt)
	}
	if diff := cmp.Diff([]int64{300, 200, 100}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	if err := store.DeleteReceipt(ctx, user.ID, list[0].ID); err != nil {
		t.Fatalf("DeleteReceipt failed: %v", err)
	}
	if err := store.DeleteReceipt(ctx, user.ID, list[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	list, _ = store.ListReceipts(ctx, user.ID)
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2", len(list))
	}
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "alice@example.com")

	group := &models.Group{
		UserID: user.ID,
		Name:   "Roommates",
		People: []models.Person{
			{ID: "p1", Name: "Alice", Color: models.ColorFor(0)},
			{ID: "p2", Name: "Bob", Color: models.ColorFor(1)},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, err := store.GetGroup(ctx, user.ID, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if diff := cmp.Diff(group, got); diff != "" {
		t.Errorf("GetGroup() mismatch (-want +got):\n%s", diff)
	}

	group.Name = "Flat"
	group.People = group.People[:1]
	if err := store.UpdateGroup(ctx, group); err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	groups, err := store.ListGroups(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].Name != "Flat" || len(groups[0].People) != 1 {
		t.Errorf("unexpected groups after update: %+v", groups)
	}

	t.Run("deleting the default group clears the preference", func(t *testing.T) {
		if err := store.SetDefaultGroup(ctx, user.ID, group.ID); err != nil {
			t.Fatalf("SetDefaultGroup failed: %v", err)
		}
		prefs, err := store.GetPreferences(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetPreferences failed: %v", err)
		}
		if prefs.DefaultGroupID != group.ID {
			t.Fatalf("DefaultGroupID = %q, want %q", prefs.DefaultGroupID, group.ID)
		}

		if err := store.DeleteGroup(ctx, user.ID, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		prefs, err = store.GetPreferences(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetPreferences failed: %v", err)
		}
		if prefs.DefaultGroupID != "" {
			t.Errorf("DefaultGroupID = %q, want empty", prefs.DefaultGroupID)
		}
	})

	t.Run("SetDefaultGroup rejects unknown group", func(t *testing.T) {
		if err := store.SetDefaultGroup(ctx, user.ID, "missing"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "alice@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrEmailTaken) {
			t.Errorf("Expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byEmail.ID != user.ID || byID.Email != user.Email {
			t.Errorf("lookups disagree: %+v %+v", byEmail, byID)
		}
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("link google subject", func(t *testing.T) {
		if err := store.LinkGoogleSubject(ctx, user.ID, "google-123"); err != nil {
			t.Fatalf("LinkGoogleSubject failed: %v", err)
		}
		got, err := store.GetUserByGoogleSubject(ctx, "google-123")
		if err != nil {
			t.Fatalf("GetUserByGoogleSubject failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("got user %s, want %s", got.ID, user.ID)
		}
	})
}
