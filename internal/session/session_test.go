package session

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gana36/billbeam/internal/models"
)

func ptr(v float64) *float64 { return &v }

func capturedSession(t *testing.T, names ...string) *Session {
	t.Helper()
	s := New("")
	for _, n := range names {
		if _, err := s.AddPerson(n); err != nil {
			t.Fatalf("AddPerson(%q) failed: %v", n, err)
		}
	}
	err := s.SetReceipt(&models.Receipt{
		Items: []models.ReceiptItem{
			{ID: "1", Description: "Salad", Price: 10},
			{ID: "2", Description: "Pizza", Price: 20},
			{ID: "3", Description: "Beer", Price: 6.5},
		},
		Tax: 3,
		Tip: 4,
	})
	if err != nil {
		t.Fatalf("SetReceipt failed: %v", err)
	}
	return s
}

func checkTotal(t *testing.T, r *models.Receipt) {
	t.Helper()
	want := r.Subtotal + r.Tax + r.Tip + r.Miscellaneous
	if math.Abs(r.Total-want) > 1e-9 {
		t.Errorf("total = %v, want subtotal+tax+tip+misc = %v", r.Total, want)
	}
}

func TestAddPerson(t *testing.T) {
	s := New("")

	if _, err := s.AddPerson("   "); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	var people []models.Person
	for i := 0; i < 12; i++ {
		p, err := s.AddPerson(" Diner ")
		if err != nil {
			t.Fatalf("AddPerson failed: %v", err)
		}
		people = append(people, p)
	}

	if people[0].Name != "Diner" {
		t.Errorf("name not trimmed: %q", people[0].Name)
	}
	if people[0].Color != models.Palette[0] || people[10].Color != models.Palette[0] || people[11].Color != models.Palette[1] {
		t.Errorf("palette not assigned round-robin: %s %s %s", people[0].Color, people[10].Color, people[11].Color)
	}
	if people[0].ID == people[1].ID {
		t.Error("expected unique person IDs")
	}
}

func TestAddPerson_ColorNotReusedAfterRemoval(t *testing.T) {
	s := New("")
	a, _ := s.AddPerson("Alice")
	b, _ := s.AddPerson("Bob")
	s.RemovePerson(a.ID)
	c, _ := s.AddPerson("Charlie")

	if b.Color != models.Palette[1] || c.Color != models.Palette[2] {
		t.Errorf("colours = %s, %s; want %s, %s", b.Color, c.Color, models.Palette[1], models.Palette[2])
	}
}

func TestToggleAssignment(t *testing.T) {
	s := capturedSession(t, "Alice", "Bob")
	alice, bob := s.People[0].ID, s.People[1].ID

	s.ToggleAssignment("2", alice)
	s.ToggleAssignment("2", bob)
	if diff := cmp.Diff([]string{alice, bob}, s.Receipt.Items[1].AssignedTo); diff != "" {
		t.Errorf("assignment mismatch (-want +got):\n%s", diff)
	}
	if len(s.Receipt.Items[0].AssignedTo) != 0 || len(s.Receipt.Items[2].AssignedTo) != 0 {
		t.Error("toggling one item changed another")
	}

	s.ToggleAssignment("2", alice)
	if diff := cmp.Diff([]string{bob}, s.Receipt.Items[1].AssignedTo); diff != "" {
		t.Errorf("assignment after untoggle mismatch (-want +got):\n%s", diff)
	}

	before := s.Snapshot()
	s.ToggleAssignment("nope", alice)
	s.ToggleAssignment("1", "stranger")
	if diff := cmp.Diff(before.Receipt, s.Receipt); diff != "" {
		t.Errorf("no-op toggles changed the receipt (-want +got):\n%s", diff)
	}
}

func TestAssignAllThenClear(t *testing.T) {
	s := capturedSession(t, "Alice", "Bob", "Charlie")
	s.ToggleAssignment("1", s.People[0].ID)

	s.AssignAllToAll()
	ids := models.PersonIDs(s.People)
	for _, item := range s.Receipt.Items {
		if diff := cmp.Diff(ids, item.AssignedTo); diff != "" {
			t.Errorf("item %s not assigned to everyone (-want +got):\n%s", item.ID, diff)
		}
	}

	s.ClearAllAssignments()
	for _, item := range s.Receipt.Items {
		if len(item.AssignedTo) != 0 {
			t.Errorf("item %s still assigned: %v", item.ID, item.AssignedTo)
		}
	}
	if len(s.People) != 3 {
		t.Errorf("roster changed: %d people", len(s.People))
	}
}

func TestSetSplitMode(t *testing.T) {
	s := capturedSession(t, "Alice", "Bob")

	if err := s.SetSplitMode(SplitModeEqual); err != nil {
		t.Fatalf("SetSplitMode(equal) failed: %v", err)
	}
	for _, item := range s.Receipt.Items {
		if len(item.AssignedTo) != 2 {
			t.Errorf("equal mode: item %s has %d assignees", item.ID, len(item.AssignedTo))
		}
	}

	if err := s.SetSplitMode(SplitModeManual); err != nil {
		t.Fatalf("SetSplitMode(manual) failed: %v", err)
	}
	for _, item := range s.Receipt.Items {
		if len(item.AssignedTo) != 0 {
			t.Errorf("manual mode: item %s still assigned", item.ID)
		}
	}

	if err := s.SetSplitMode("random"); !errors.Is(err, ErrUnknownSplitMode) {
		t.Errorf("expected ErrUnknownSplitMode, got %v", err)
	}
}

func TestRemovePerson(t *testing.T) {
	s := capturedSession(t, "Alice", "Bob")
	alice, bob := s.People[0].ID, s.People[1].ID
	s.AssignAllToAll()

	s.RemovePerson(alice)

	if s.HasPerson(alice) {
		t.Error("Alice still on roster")
	}
	for _, item := range s.Receipt.Items {
		if item.IsAssigned(alice) {
			t.Errorf("item %s still assigned to removed person", item.ID)
		}
		if !item.IsAssigned(bob) {
			t.Errorf("item %s lost Bob", item.ID)
		}
	}
}

func TestUpdateItem(t *testing.T) {
	s := capturedSession(t, "Alice")

	desc := "Margherita"
	s.UpdateItem("2", ItemPatch{Description: &desc, Price: ptr(24)})
	item := s.Receipt.FindItem("2")
	if item.Description != "Margherita" || item.Price != 24 {
		t.Errorf("item not merged: %+v", item)
	}
	if s.Receipt.Subtotal != 40.5 {
		t.Errorf("subtotal = %v, want 40.5", s.Receipt.Subtotal)
	}
	checkTotal(t, s.Receipt)

	before := s.Snapshot()
	s.UpdateItem("missing", ItemPatch{Price: ptr(100)})
	if diff := cmp.Diff(before.Receipt, s.Receipt); diff != "" {
		t.Errorf("unknown item changed receipt (-want +got):\n%s", diff)
	}
}

func TestUpdateItem_Discounts(t *testing.T) {
	s := capturedSession(t, "Alice")

	s.UpdateItem("1", ItemPatch{OriginalPrice: ptr(12), Discount: ptr(2)})
	item := s.Receipt.FindItem("1")
	if item.Price != 10 || *item.OriginalPrice != 12 || *item.Discount != 2 {
		t.Fatalf("discount not applied: price=%v %+v", item.Price, item)
	}

	s.UpdateItem("1", ItemPatch{OriginalPrice: ptr(15)})
	if item.Price != 13 {
		t.Errorf("price = %v, want 13 after original price change", item.Price)
	}

	s.UpdateItem("1", ItemPatch{Discount: ptr(0)})
	if item.Price != 15 || item.Discount != nil || item.OriginalPrice != nil {
		t.Errorf("zero discount should restore original price: price=%v %+v", item.Price, item)
	}

	s.UpdateItem("3", ItemPatch{Discount: ptr(1.5)})
	item3 := s.Receipt.FindItem("3")
	if item3.Price != 5 || *item3.OriginalPrice != 6.5 {
		t.Errorf("discount on plain item should come off its price: price=%v %+v", item3.Price, item3)
	}

	s.UpdateItem("2", ItemPatch{Price: ptr(18), Discount: ptr(2)})
	item2 := s.Receipt.FindItem("2")
	if item2.Price != 18 || *item2.OriginalPrice != 20 {
		t.Errorf("explicit price with discount should stay final: price=%v %+v", item2.Price, item2)
	}
	s.UpdateItem("2", ItemPatch{Price: ptr(20)})

	s.UpdateItem("3", ItemPatch{Price: ptr(5)})
	if item3.Price != 5 || item3.Discount != nil || item3.OriginalPrice != nil {
		t.Errorf("explicit price should drop discount: %+v", item3)
	}

	if s.Receipt.Subtotal != 15+20+5 {
		t.Errorf("subtotal = %v, want 40", s.Receipt.Subtotal)
	}
	checkTotal(t, s.Receipt)
}

func TestUpdateReceiptTotals(t *testing.T) {
	s := capturedSession(t, "Alice")
	subtotal := s.Receipt.Subtotal

	s.UpdateReceiptTotals(TotalsPatch{Tax: ptr(5)})
	if s.Receipt.Tax != 5 || s.Receipt.Tip != 4 || s.Receipt.Miscellaneous != 0 {
		t.Errorf("unexpected extras: %+v", s.Receipt)
	}
	checkTotal(t, s.Receipt)

	s.UpdateReceiptTotals(TotalsPatch{Tip: ptr(0), Miscellaneous: ptr(2.25)})
	if s.Receipt.Tip != 0 || s.Receipt.Miscellaneous != 2.25 {
		t.Errorf("unexpected extras: %+v", s.Receipt)
	}
	if s.Receipt.Subtotal != subtotal {
		t.Errorf("subtotal changed from %v to %v", subtotal, s.Receipt.Subtotal)
	}
	checkTotal(t, s.Receipt)
}

func TestSetReceipt(t *testing.T) {
	s := New("")
	err := s.SetReceipt(&models.Receipt{
		Items: []models.ReceiptItem{{ID: "1", Price: 10, AssignedTo: []string{"ghost"}}},
		Total: 999,
	})
	if err != nil {
		t.Fatalf("SetReceipt failed: %v", err)
	}
	if s.Phase != PhaseAssignment {
		t.Errorf("phase = %s, want assignment", s.Phase)
	}
	if len(s.Receipt.Items[0].AssignedTo) != 0 {
		t.Error("incoming assignments should be cleared")
	}
	if s.Receipt.Total != 10 {
		t.Errorf("total = %v, want 10", s.Receipt.Total)
	}

	if err := s.SetReceipt(&models.Receipt{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition outside capture, got %v", err)
	}
	if err := New("").SetReceipt(nil); !errors.Is(err, ErrNoReceipt) {
		t.Errorf("expected ErrNoReceipt, got %v", err)
	}
}

func TestSetReceipt_NormalizesItems(t *testing.T) {
	s := New("")
	err := s.SetReceipt(&models.Receipt{
		Items: []models.ReceiptItem{
			{ID: "x", Description: "Discounted", Price: 10, Discount: ptr(3)},
			{ID: "x", Description: "Same ID", Price: 4, Discount: ptr(3), OriginalPrice: ptr(50)},
			{Description: "No ID", Price: 6, Discount: ptr(0), OriginalPrice: ptr(8)},
			{ID: "y", Description: "Stray original", Price: 2, OriginalPrice: ptr(5)},
		},
	})
	if err != nil {
		t.Fatalf("SetReceipt failed: %v", err)
	}
	items := s.Receipt.Items

	seen := map[string]bool{}
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			t.Errorf("item IDs must be unique and non-empty, got %q", item.ID)
		}
		seen[item.ID] = true
		if item.Discount != nil && item.Price != *item.OriginalPrice-*item.Discount {
			t.Errorf("%s: price %v != original %v - discount %v", item.Description, item.Price, *item.OriginalPrice, *item.Discount)
		}
	}
	if items[0].ID != "x" {
		t.Errorf("first item should keep its ID, got %q", items[0].ID)
	}

	if items[0].Price != 10 || items[0].OriginalPrice == nil || *items[0].OriginalPrice != 13 {
		t.Errorf("positive discount should derive original price: %+v", items[0])
	}
	if *items[1].OriginalPrice != 7 {
		t.Errorf("original price should follow the final price, got %v", *items[1].OriginalPrice)
	}
	if items[2].Price != 6 || items[2].Discount != nil || items[2].OriginalPrice != nil {
		t.Errorf("zero discount should clear both fields: %+v", items[2])
	}
	if items[3].OriginalPrice != nil {
		t.Errorf("original price without a discount should be dropped: %+v", items[3])
	}
	if s.Receipt.Subtotal != 22 {
		t.Errorf("subtotal = %v, want 22", s.Receipt.Subtotal)
	}

	s.AddPerson("Alice")
	alice := s.People[0].ID
	s.ToggleAssignment(items[1].ID, alice)
	if items[0].IsAssigned(alice) || !items[1].IsAssigned(alice) {
		t.Error("toggle reached the wrong item after ID repair")
	}
}

func TestLoadGroup_DuplicateIDs(t *testing.T) {
	s := New("")
	if err := s.SetReceipt(&models.Receipt{Items: []models.ReceiptItem{{ID: "i", Price: 10}}}); err != nil {
		t.Fatalf("SetReceipt failed: %v", err)
	}
	s.LoadGroup(&models.Group{People: []models.Person{
		{ID: "p", Name: "A"},
		{ID: "p", Name: "B"},
	}})
	if len(s.People) != 1 || s.People[0].Name != "A" {
		t.Fatalf("roster = %+v, want only the first person with ID p", s.People)
	}
}

func TestPhaseTransitions(t *testing.T) {
	s := New("")
	if err := s.SetPhase(PhaseSettlement); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("capture -> settlement: expected ErrInvalidTransition, got %v", err)
	}
	if err := s.SetPhase(PhaseAssignment); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("capture -> assignment without receipt: expected ErrInvalidTransition, got %v", err)
	}

	s = capturedSession(t)
	if err := s.SetPhase(PhaseSettlement); !errors.Is(err, ErrNoPeople) {
		t.Errorf("expected ErrNoPeople, got %v", err)
	}

	s.AddPerson("Alice")
	if err := s.SetPhase(PhaseSettlement); err != nil {
		t.Fatalf("assignment -> settlement failed: %v", err)
	}
	if err := s.SetPhase(PhaseAssignment); err != nil {
		t.Fatalf("settlement -> assignment failed: %v", err)
	}
	if err := s.SetPhase(PhaseCapture); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("assignment -> capture: expected ErrInvalidTransition, got %v", err)
	}

	s.Reset()
	if s.Phase != PhaseCapture || s.Receipt != nil || len(s.People) != 0 {
		t.Errorf("reset left state behind: %+v", s)
	}
	p, _ := s.AddPerson("Zoe")
	if p.Color != models.Palette[0] {
		t.Errorf("palette should restart after reset, got %s", p.Color)
	}
}

func TestLoadReceiptAndGroup(t *testing.T) {
	s := New("user-1")
	saved := &models.SavedReceipt{
		ID: "saved-1",
		Receipt: models.Receipt{
			Items: []models.ReceiptItem{
				{ID: "1", Price: 10, AssignedTo: []string{"p1", "gone"}},
				{ID: "2", Price: 5, AssignedTo: []string{"p2"}},
			},
			Tax: 1.5,
		},
		People: []models.Person{
			{ID: "p1", Name: "Alice", Color: models.Palette[0]},
			{ID: "p2", Name: "Bob", Color: models.Palette[1]},
		},
	}

	s.LoadReceipt(saved)
	if s.Phase != PhaseAssignment || s.SavedID != "saved-1" {
		t.Errorf("unexpected phase/saved id: %s %s", s.Phase, s.SavedID)
	}
	if diff := cmp.Diff([]string{"p1"}, s.Receipt.Items[0].AssignedTo); diff != "" {
		t.Errorf("dangling ids not pruned (-want +got):\n%s", diff)
	}
	if s.Receipt.Subtotal != 15 || s.Receipt.Total != 16.5 {
		t.Errorf("totals not recomputed: %+v", s.Receipt)
	}

	// The loaded copy must not alias the saved record.
	s.ToggleAssignment("2", "p1")
	if len(saved.Receipt.Items[1].AssignedTo) != 1 {
		t.Error("mutating the session changed the saved receipt")
	}

	s.LoadGroup(&models.Group{People: []models.Person{{ID: "p2", Name: "Bob"}}})
	if s.HasPerson("p1") {
		t.Error("group load kept old roster")
	}
	if len(s.Receipt.Items[0].AssignedTo) != 0 {
		t.Errorf("assignments to people outside the group not pruned: %v", s.Receipt.Items[0].AssignedTo)
	}
	p, _ := s.AddPerson("Carol")
	if p.Color != models.Palette[1] {
		t.Errorf("palette should continue after loaded roster, got %s", p.Color)
	}
}
