package models

// Group represents a reusable roster.
// Loading a group replaces the people on the current bill.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// UserID is the owner of the group.
	UserID string `json:"userId"`

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string `json:"name"`

	// People is the saved roster, colours included.
	People []Person `json:"people"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// Preferences holds per-user settings.
type Preferences struct {
	UserID string `json:"userId"`

	// DefaultGroupID is the group preloaded into new sessions. Empty when unset.
	DefaultGroupID string `json:"defaultGroupId,omitempty"`
}
