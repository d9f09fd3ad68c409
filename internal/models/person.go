package models

// Palette is the fixed set of display colours handed out to people in insertion order.
var Palette = [...]string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEEAD",
	"#D4A5A5", "#9B59B6", "#3498DB", "#E67E22", "#2ECC71",
}

// ColorFor returns the palette colour for the n-th person ever added (0-based).
func ColorFor(n int) string {
	if n < 0 {
		n = 0
	}
	return Palette[n%len(Palette)]
}

// Person represents one diner on the roster.
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string `json:"id"`

	// Name is the display name as entered.
	Name string `json:"name"`

	// Color is a hex colour used by the client only.
	Color string `json:"color"`
}

// PersonIDs returns the IDs of people in roster order.
func PersonIDs(people []Person) []string {
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}
	return ids
}
