package api

// Person is one diner on a roster.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ReceiptItem is one line of a receipt.
type ReceiptItem struct {
	ID            string   `json:"id"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
	AssignedTo    []string `json:"assignedTo"`
}

// Receipt is a captured bill.
type Receipt struct {
	Title         string        `json:"title,omitempty"`
	Items         []ReceiptItem `json:"items"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"tax"`
	Tip           float64       `json:"tip"`
	Miscellaneous float64       `json:"miscellaneous"`
	Total         float64       `json:"total"`
	ImageKey      string        `json:"imageKey,omitempty"`
}

// Session is the client's view of a bill being split.
type Session struct {
	ID        string   `json:"id"`
	Phase     string   `json:"phase"`
	SplitMode string   `json:"splitMode"`
	Receipt   *Receipt `json:"receipt,omitempty"`
	People    []Person `json:"people"`
	SavedID   string   `json:"savedId,omitempty"`
}

// ItemShare is one person's part of an item.
type ItemShare struct {
	ItemID      string  `json:"itemId"`
	Description string  `json:"description"`
	SharePrice  float64 `json:"sharePrice"`
}

// SettlementLine is what one person owes.
type SettlementLine struct {
	Person    Person      `json:"person"`
	Items     []ItemShare `json:"items"`
	Subtotal  float64     `json:"subtotal"`
	ExtraCost float64     `json:"extraCost"`
	Total     float64     `json:"total"`
}

// SettlementSummary reports how much of the bill the lines cover.
type SettlementSummary struct {
	AssignedItems int     `json:"assignedItems"`
	TotalItems    int     `json:"totalItems"`
	SettledTotal  float64 `json:"settledTotal"`
	BillTotal     float64 `json:"billTotal"`
	Drift         float64 `json:"drift"`
}

// SavedReceipt is an entry in a user's history.
type SavedReceipt struct {
	ID        string   `json:"id"`
	Receipt   Receipt  `json:"receipt"`
	People    []Person `json:"people"`
	CreatedAt int64    `json:"createdAt"`
}

// Group is a saved roster.
type Group struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	People    []Person `json:"people"`
	CreatedAt int64    `json:"createdAt"`
}

// User is the public part of an account.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	GoogleLinked bool   `json:"googleLinked"`
	CreatedAt    int64  `json:"createdAt"`
}
