package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gana36/billbeam/internal/models"
)

type rawItem struct {
	Description   string          `json:"description"`
	Price         json.RawMessage `json:"price"`
	OriginalPrice json.RawMessage `json:"originalPrice"`
	Discount      json.RawMessage `json:"discount"`
}

type rawReceipt struct {
	Items    []rawItem       `json:"items"`
	Subtotal json.RawMessage `json:"subtotal"`
	Tax      json.RawMessage `json:"tax"`
	Tip      json.RawMessage `json:"tip"`
	Total    json.RawMessage `json:"total"`
}

// Reported holds the totals printed on the receipt, kept only for comparison:
// the accepted receipt always recomputes them from its items.
type Reported struct {
	Subtotal float64
	Total    float64
}

// ParseResponse decodes model output into a receipt.
// Every item gets a fresh ID and an empty assignment; subtotal and total are
// recomputed from the items with miscellaneous set to 0.
func ParseResponse(text string) (*models.Receipt, Reported, error) {
	var raw rawReceipt
	dec := json.NewDecoder(strings.NewReader(stripFences(text)))
	if err := dec.Decode(&raw); err != nil {
		return nil, Reported{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if dec.More() {
		return nil, Reported{}, fmt.Errorf("%w: trailing data after receipt", ErrMalformedResponse)
	}
	if len(raw.Items) == 0 {
		return nil, Reported{}, ErrNoItems
	}

	receipt := &models.Receipt{Items: make([]models.ReceiptItem, 0, len(raw.Items))}
	for i, ri := range raw.Items {
		price, ok, err := number(ri.Price)
		if err != nil || !ok {
			return nil, Reported{}, fmt.Errorf("%w: item %d (%q)", ErrNonNumericPrice, i+1, ri.Description)
		}
		item := models.ReceiptItem{
			ID:          uuid.New().String(),
			Description: strings.TrimSpace(ri.Description),
			Price:       price,
			AssignedTo:  []string{},
		}
		if item.Description == "" {
			item.Description = fmt.Sprintf("Item %d", i+1)
		}

		discount, hasDiscount, err := number(ri.Discount)
		if err != nil {
			return nil, Reported{}, fmt.Errorf("%w: item %d discount", ErrNonNumericPrice, i+1)
		}
		if hasDiscount && discount > 0 {
			// price is final; the original price is derived so the pair always agrees
			original := price + discount
			item.Discount = &discount
			item.OriginalPrice = &original
		}

		receipt.Items = append(receipt.Items, item)
	}

	var err error
	if receipt.Tax, err = optionalNumber(raw.Tax, "tax"); err != nil {
		return nil, Reported{}, err
	}
	if receipt.Tip, err = optionalNumber(raw.Tip, "tip"); err != nil {
		return nil, Reported{}, err
	}
	var reported Reported
	if reported.Subtotal, err = optionalNumber(raw.Subtotal, "subtotal"); err != nil {
		return nil, Reported{}, err
	}
	if reported.Total, err = optionalNumber(raw.Total, "total"); err != nil {
		return nil, Reported{}, err
	}

	receipt.Recalculate()
	return receipt, reported, nil
}

// stripFences removes Markdown code fences the model sometimes wraps JSON in.
func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// number decodes a JSON number. Absent or null values report ok=false;
// anything other than a number is an error.
func number(raw json.RawMessage) (v float64, ok bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false, nil
	}
	if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
		return 0, false, fmt.Errorf("not a number: %s", raw)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false, err
	}
	return v, true, nil
}

func optionalNumber(raw json.RawMessage, field string) (float64, error) {
	v, _, err := number(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrNonNumericPrice, field)
	}
	return v, nil
}
