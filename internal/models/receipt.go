package models

import "slices"

// Receipt represents a captured bill.
// It stores the line items and the amounts added on top of them.
type Receipt struct {
	// Title is the human-readable name for the receipt.
	// Auto-generated from the creation date when saved without one.
	Title string `json:"title,omitempty"`

	// Items are the individual line items on the receipt, in receipt order.
	Items []ReceiptItem `json:"items"`

	// Subtotal is the sum of all item prices (final, post-discount).
	Subtotal float64 `json:"subtotal"`

	// Tax is editable after capture.
	Tax float64 `json:"tax"`

	// Tip is editable after capture.
	Tip float64 `json:"tip"`

	// Miscellaneous covers service fees and other extras. Defaults to 0.
	Miscellaneous float64 `json:"miscellaneous"`

	// Total is Subtotal + Tax + Tip + Miscellaneous.
	Total float64 `json:"total"`

	// ImageKey is the object key of the archived receipt photo, if any.
	ImageKey string `json:"imageKey,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
// Items can be shared among multiple people.
type ReceiptItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Description is the name of the item (e.g., "Burger with Cheese").
	Description string `json:"description"`

	// Price is the final price after any discount.
	Price float64 `json:"price"`

	// OriginalPrice is the listed price before discount.
	// Only set when Discount is set.
	OriginalPrice *float64 `json:"originalPrice,omitempty"`

	// Discount is the positive amount taken off OriginalPrice.
	Discount *float64 `json:"discount,omitempty"`

	// AssignedTo is the set of person IDs sharing this item.
	// If multiple people are assigned, the item is split equally among them.
	AssignedTo []string `json:"assignedTo"`
}

// IsAssigned reports whether personID shares this item.
func (i *ReceiptItem) IsAssigned(personID string) bool {
	return slices.Contains(i.AssignedTo, personID)
}

// Recalculate recomputes Subtotal from the items and Total from the parts.
func (r *Receipt) Recalculate() {
	subtotal := 0.0
	for _, item := range r.Items {
		subtotal += item.Price
	}
	r.Subtotal = subtotal
	r.RecalculateTotal()
}

// RecalculateTotal recomputes Total without touching Subtotal.
func (r *Receipt) RecalculateTotal() {
	r.Total = r.Subtotal + r.Tax + r.Tip + r.Miscellaneous
}

// FindItem returns the item with the given ID, or nil.
func (r *Receipt) FindItem(itemID string) *ReceiptItem {
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			return &r.Items[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the receipt.
func (r *Receipt) Clone() *Receipt {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = make([]ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		c.Items[i] = item.Clone()
	}
	return &c
}

// Clone returns a deep copy of the item.
func (i ReceiptItem) Clone() ReceiptItem {
	c := i
	if i.OriginalPrice != nil {
		v := *i.OriginalPrice
		c.OriginalPrice = &v
	}
	if i.Discount != nil {
		v := *i.Discount
		c.Discount = &v
	}
	c.AssignedTo = append([]string{}, i.AssignedTo...)
	return c
}
