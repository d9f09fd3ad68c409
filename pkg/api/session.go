package api

// SessionResponse is returned by every session call that changes or reads state.
type SessionResponse struct {
	Session *Session `json:"session"`
}

type StartSessionRequest struct{}

type GetSessionRequest struct {
	SessionID string `json:"sessionId"`
}

// CaptureRequest carries a receipt photo. Image is base64 in JSON.
type CaptureRequest struct {
	SessionID string `json:"sessionId"`
	Image     []byte `json:"image"`
	MimeType  string `json:"mimeType,omitempty"`
}

// CaptureResponse returns the session in assignment with the extracted receipt.
type CaptureResponse struct {
	Session *Session `json:"session"`
}

// SetReceiptRequest accepts a receipt entered or corrected by hand.
type SetReceiptRequest struct {
	SessionID string   `json:"sessionId"`
	Receipt   *Receipt `json:"receipt"`
}

type AddPersonRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type AddPersonResponse struct {
	Session *Session `json:"session"`
	Person  Person   `json:"person"`
}

type RemovePersonRequest struct {
	SessionID string `json:"sessionId"`
	PersonID  string `json:"personId"`
}

type ToggleAssignmentRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    string `json:"itemId"`
	PersonID  string `json:"personId"`
}

// SetSplitModeRequest switches between "manual" and "equal".
type SetSplitModeRequest struct {
	SessionID string `json:"sessionId"`
	Mode      string `json:"mode"`
}

// UpdateItemRequest merges the non-null fields into the item.
type UpdateItemRequest struct {
	SessionID     string   `json:"sessionId"`
	ItemID        string   `json:"itemId"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
}

// UpdateTotalsRequest replaces the non-null extras.
type UpdateTotalsRequest struct {
	SessionID     string   `json:"sessionId"`
	Tax           *float64 `json:"tax,omitempty"`
	Tip           *float64 `json:"tip,omitempty"`
	Miscellaneous *float64 `json:"miscellaneous,omitempty"`
}

type SetPhaseRequest struct {
	SessionID string `json:"sessionId"`
	Phase     string `json:"phase"`
}

type ResetRequest struct {
	SessionID string `json:"sessionId"`
}

type SettleRequest struct {
	SessionID     string `json:"sessionId"`
	RoundToDollar bool   `json:"roundToDollar"`
}

type SettleResponse struct {
	Lines   []SettlementLine  `json:"lines"`
	Summary SettlementSummary `json:"summary"`
}

type ShareRequest struct {
	SessionID     string `json:"sessionId"`
	RoundToDollar bool   `json:"roundToDollar"`
}

// ShareResponse carries the texts for clipboard, share sheet and WhatsApp.
type ShareResponse struct {
	Title        string `json:"title"`
	Text         string `json:"text"`
	WhatsAppText string `json:"whatsAppText"`
	WhatsAppURL  string `json:"whatsAppUrl"`
}

type LoadGroupRequest struct {
	SessionID string `json:"sessionId"`
	GroupID   string `json:"groupId"`
}

type LoadReceiptRequest struct {
	SessionID string `json:"sessionId"`
	ReceiptID string `json:"receiptId"`
}

// SaveRequest stores the session's receipt and roster in the user's history,
// updating the entry it was loaded from or last saved to.
type SaveRequest struct {
	SessionID string `json:"sessionId"`
	Title     string `json:"title,omitempty"`
}

type SaveResponse struct {
	Session *Session      `json:"session"`
	Saved   *SavedReceipt `json:"saved"`
}
