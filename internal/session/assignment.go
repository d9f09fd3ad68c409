package session

import (
	"slices"

	"github.com/gana36/billbeam/internal/models"
)

// ItemPatch carries the fields to merge into an item. Nil fields are left alone.
type ItemPatch struct {
	Description   *string
	Price         *float64
	OriginalPrice *float64
	Discount      *float64
}

// TotalsPatch carries the receipt extras to replace. Nil fields are left alone.
type TotalsPatch struct {
	Tax           *float64
	Tip           *float64
	Miscellaneous *float64
}

// ToggleAssignment adds personID to the item if absent, otherwise removes it.
// Unknown items are ignored, and so are additions of people not on the roster.
func (s *Session) ToggleAssignment(itemID, personID string) {
	if s.Receipt == nil {
		return
	}
	item := s.Receipt.FindItem(itemID)
	if item == nil {
		return
	}
	if i := slices.Index(item.AssignedTo, personID); i >= 0 {
		item.AssignedTo = slices.Delete(item.AssignedTo, i, i+1)
		return
	}
	if !s.HasPerson(personID) {
		return
	}
	item.AssignedTo = append(item.AssignedTo, personID)
}

// AssignAllToAll assigns every item to the whole roster, overwriting partial assignments.
func (s *Session) AssignAllToAll() {
	if s.Receipt == nil {
		return
	}
	ids := models.PersonIDs(s.People)
	for i := range s.Receipt.Items {
		s.Receipt.Items[i].AssignedTo = append([]string{}, ids...)
	}
}

// ClearAllAssignments empties every item's assignment.
func (s *Session) ClearAllAssignments() {
	if s.Receipt == nil {
		return
	}
	for i := range s.Receipt.Items {
		s.Receipt.Items[i].AssignedTo = []string{}
	}
}

// SetSplitMode switches between equal and manual splitting.
func (s *Session) SetSplitMode(mode SplitMode) error {
	switch mode {
	case SplitModeEqual:
		s.AssignAllToAll()
	case SplitModeManual:
		s.ClearAllAssignments()
	default:
		return ErrUnknownSplitMode
	}
	s.SplitMode = mode
	return nil
}

// RemovePerson drops a person from the roster and from every item.
func (s *Session) RemovePerson(personID string) {
	s.People = slices.DeleteFunc(s.People, func(p models.Person) bool {
		return p.ID == personID
	})
	if s.Receipt == nil {
		return
	}
	for i := range s.Receipt.Items {
		item := &s.Receipt.Items[i]
		item.AssignedTo = slices.DeleteFunc(item.AssignedTo, func(id string) bool {
			return id == personID
		})
	}
}

// UpdateItem merges patch into the item and recomputes subtotal and total.
//
// Setting OriginalPrice recomputes Price as OriginalPrice - Discount. Setting Price alone
// on a discounted item drops the discount; Price with Discount keeps Price final and derives
// OriginalPrice. A Discount <= 0 clears both discount fields.
func (s *Session) UpdateItem(itemID string, patch ItemPatch) {
	if s.Receipt == nil {
		return
	}
	item := s.Receipt.FindItem(itemID)
	if item == nil {
		return
	}

	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Price != nil {
		// an explicit final price replaces the stored original price
		item.Price = *patch.Price
		item.OriginalPrice = nil
		if patch.Discount == nil {
			item.Discount = nil
		}
	}
	if patch.OriginalPrice != nil {
		v := *patch.OriginalPrice
		item.OriginalPrice = &v
	}
	if patch.Discount != nil {
		v := *patch.Discount
		item.Discount = &v
	}

	if item.Discount != nil && *item.Discount <= 0 {
		if item.OriginalPrice != nil && patch.Price == nil {
			item.Price = *item.OriginalPrice
		}
		item.Discount = nil
		item.OriginalPrice = nil
	}
	if item.Discount != nil {
		if item.OriginalPrice == nil {
			// an explicit price is final; otherwise the discount comes off the current price
			v := item.Price
			if patch.Price != nil {
				v += *item.Discount
			}
			item.OriginalPrice = &v
		}
		item.Price = *item.OriginalPrice - *item.Discount
	} else {
		item.OriginalPrice = nil
	}

	s.Receipt.Recalculate()
}

// UpdateReceiptTotals replaces the provided extras and recomputes the total.
// The subtotal is never touched.
func (s *Session) UpdateReceiptTotals(patch TotalsPatch) {
	if s.Receipt == nil {
		return
	}
	if patch.Tax != nil {
		s.Receipt.Tax = *patch.Tax
	}
	if patch.Tip != nil {
		s.Receipt.Tip = *patch.Tip
	}
	if patch.Miscellaneous != nil {
		s.Receipt.Miscellaneous = *patch.Miscellaneous
	}
	s.Receipt.RecalculateTotal()
}
