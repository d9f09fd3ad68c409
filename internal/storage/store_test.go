package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/gana36/billbeam/internal/models"
)

func TestDefaultTitle(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.Local).Unix()
	if got, want := DefaultTitle(ts), "Receipt Mar 5, 2024"; got != want {
		t.Errorf("DefaultTitle() = %q, want %q", got, want)
	}
}

func TestPrepareReceipt(t *testing.T) {
	saved := &models.SavedReceipt{UserID: "u1"}
	PrepareReceipt(saved)

	if saved.ID == "" {
		t.Error("expected ID to be generated")
	}
	if saved.CreatedAt == 0 {
		t.Error("expected CreatedAt to be set")
	}
	if !strings.HasPrefix(saved.Receipt.Title, "Receipt ") {
		t.Errorf("unexpected title %q", saved.Receipt.Title)
	}

	kept := &models.SavedReceipt{ID: "r1", CreatedAt: 42, Receipt: models.Receipt{Title: "Dinner"}}
	PrepareReceipt(kept)
	if kept.ID != "r1" || kept.CreatedAt != 42 || kept.Receipt.Title != "Dinner" {
		t.Errorf("existing fields overwritten: %+v", kept)
	}
}
