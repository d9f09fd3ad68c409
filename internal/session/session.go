// Package session holds the in-memory state of one bill being split: the captured
// receipt, the roster and the current phase, plus the operations that mutate them.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/models"
)

// Phase is a step of the capture, assignment, settlement flow.
type Phase string

const (
	PhaseCapture    Phase = "capture"
	PhaseAssignment Phase = "assignment"
	PhaseSettlement Phase = "settlement"
)

// SplitMode selects how items are assigned.
type SplitMode string

const (
	// SplitModeManual leaves assignment to the user.
	SplitModeManual SplitMode = "manual"
	// SplitModeEqual assigns every item to everyone.
	SplitModeEqual SplitMode = "equal"
)

var (
	ErrInvalidTransition = errors.New("invalid phase transition")
	ErrNoReceipt         = errors.New("no receipt captured")
	ErrNoPeople          = errors.New("add at least one person")
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrUnknownSplitMode  = errors.New("unknown split mode")
)

// Session is the mutable state of one bill being split on one device.
// It is not safe for concurrent use; Manager serialises access.
type Session struct {
	ID        string
	UserID    string // empty for anonymous sessions
	Phase     Phase
	SplitMode SplitMode
	Receipt   *models.Receipt
	People    []models.Person

	// SavedID is the ID of the saved receipt this session was loaded from or last saved to.
	SavedID string

	// added counts every person ever added and picks the next palette colour.
	// It is not decremented on removal.
	added int

	lastUsed time.Time
}

// New creates an empty session in the capture phase.
func New(userID string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Phase:     PhaseCapture,
		SplitMode: SplitModeManual,
		lastUsed:  time.Now(),
	}
}

// AddPerson appends a person with the next palette colour.
func (s *Session) AddPerson(name string) (models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Person{}, ErrEmptyName
	}
	p := models.Person{
		ID:    uuid.New().String(),
		Name:  name,
		Color: models.ColorFor(s.added),
	}
	s.added++
	s.People = append(s.People, p)
	return p, nil
}

// HasPerson reports whether personID is on the roster.
func (s *Session) HasPerson(personID string) bool {
	for _, p := range s.People {
		if p.ID == personID {
			return true
		}
	}
	return false
}

// SetReceipt accepts a validated receipt from capture and moves to assignment.
// Assignments are cleared so only roster IDs can ever be present. Missing or
// repeated item IDs are replaced, and each price is taken as final.
func (s *Session) SetReceipt(receipt *models.Receipt) error {
	if receipt == nil {
		return ErrNoReceipt
	}
	if s.Phase != PhaseCapture {
		return fmt.Errorf("%w: receipt can only be set during %s", ErrInvalidTransition, PhaseCapture)
	}
	r := receipt.Clone()
	seen := make(map[string]bool, len(r.Items))
	for i := range r.Items {
		item := &r.Items[i]
		if item.ID == "" || seen[item.ID] {
			item.ID = uuid.New().String()
		}
		seen[item.ID] = true
		item.AssignedTo = []string{}
		normalizeDiscount(item)
	}
	r.Recalculate()
	s.Receipt = r
	s.SavedID = ""
	s.Phase = PhaseAssignment
	if s.SplitMode == SplitModeEqual {
		s.AssignAllToAll()
	}
	return nil
}

// SetPhase moves between assignment and settlement.
// Capture is only reachable through Reset.
func (s *Session) SetPhase(next Phase) error {
	switch {
	case s.Phase == next:
		return nil
	case s.Phase == PhaseAssignment && next == PhaseSettlement:
		if s.Receipt == nil {
			return ErrNoReceipt
		}
		if len(s.People) == 0 {
			return ErrNoPeople
		}
	case s.Phase == PhaseSettlement && next == PhaseAssignment:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Phase, next)
	}
	s.Phase = next
	return nil
}

// Reset clears the receipt and roster and returns to capture.
func (s *Session) Reset() {
	s.Phase = PhaseCapture
	s.SplitMode = SplitModeManual
	s.Receipt = nil
	s.People = nil
	s.SavedID = ""
	s.added = 0
}

// LoadReceipt replaces the receipt and roster with a saved one and enters assignment.
func (s *Session) LoadReceipt(saved *models.SavedReceipt) {
	s.Receipt = saved.Receipt.Clone()
	s.People = uniquePeople(saved.People)
	s.added = len(s.People)
	s.pruneAssignments()
	s.Receipt.Recalculate()
	s.SavedID = saved.ID
	s.SplitMode = SplitModeManual
	s.Phase = PhaseAssignment
}

// LoadGroup replaces the roster with a group's people.
// Assignments to people not in the group are dropped.
func (s *Session) LoadGroup(group *models.Group) {
	s.People = uniquePeople(group.People)
	s.added = len(s.People)
	s.pruneAssignments()
	if s.SplitMode == SplitModeEqual {
		s.AssignAllToAll()
	}
}

// Snapshot returns a deep copy safe to hand outside the Manager lock.
func (s *Session) Snapshot() *Session {
	c := *s
	c.Receipt = s.Receipt.Clone()
	c.People = append([]models.Person{}, s.People...)
	return &c
}

// normalizeDiscount keeps price final: a positive discount derives the
// original price, anything else drops both discount fields.
func normalizeDiscount(item *models.ReceiptItem) {
	if item.Discount == nil || *item.Discount <= 0 {
		item.Discount = nil
		item.OriginalPrice = nil
		return
	}
	original := item.Price + *item.Discount
	item.OriginalPrice = &original
}

// uniquePeople copies a roster, keeping the first person for each ID.
func uniquePeople(people []models.Person) []models.Person {
	out := make([]models.Person, 0, len(people))
	seen := make(map[string]bool, len(people))
	for _, p := range people {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

func (s *Session) pruneAssignments() {
	if s.Receipt == nil {
		return
	}
	for i := range s.Receipt.Items {
		item := &s.Receipt.Items[i]
		kept := item.AssignedTo[:0]
		for _, id := range item.AssignedTo {
			if s.HasPerson(id) {
				kept = append(kept, id)
			}
		}
		item.AssignedTo = kept
	}
}
