package models

// SavedReceipt is a receipt and its roster stored in a user's history.
type SavedReceipt struct {
	// ID is the unique identifier for the saved receipt (UUID format).
	ID string `json:"id"`

	// UserID is the owner of the saved receipt.
	UserID string `json:"userId"`

	Receipt Receipt  `json:"receipt"`
	People  []Person `json:"people"`

	// CreatedAt is the Unix timestamp when the receipt was first saved.
	// Updates never change it.
	CreatedAt int64 `json:"createdAt"`
}
