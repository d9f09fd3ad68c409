package extract

import (
	"errors"
	"math"
	"testing"
)

func TestParseResponse(t *testing.T) {
	text := "```json\n" + `{
		"items": [
			{"description": " Burger with Cheese ", "price": 12.5},
			{"description": "Fries", "price": 8.99, "originalPrice": 10.99, "discount": 2.00},
			{"description": "Soda", "price": 3, "discount": 0}
		],
		"subtotal": 24.49,
		"tax": 2.1,
		"tip": null,
		"total": 26.59
	}` + "\n```"

	receipt, reported, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("ParseResponse failed: %v", err)
	}

	if len(receipt.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(receipt.Items))
	}
	if receipt.Items[0].Description != "Burger with Cheese" {
		t.Errorf("description not trimmed: %q", receipt.Items[0].Description)
	}
	seen := map[string]bool{}
	for _, item := range receipt.Items {
		if item.ID == "" || seen[item.ID] {
			t.Errorf("item IDs must be fresh and unique, got %q", item.ID)
		}
		seen[item.ID] = true
		if item.AssignedTo == nil || len(item.AssignedTo) != 0 {
			t.Errorf("item %s should start unassigned, got %v", item.Description, item.AssignedTo)
		}
	}

	fries := receipt.Items[1]
	if fries.Discount == nil || fries.OriginalPrice == nil {
		t.Fatalf("discount not kept: %+v", fries)
	}
	if math.Abs(*fries.OriginalPrice-*fries.Discount-fries.Price) > 1e-9 {
		t.Errorf("price %v != original %v - discount %v", fries.Price, *fries.OriginalPrice, *fries.Discount)
	}
	if soda := receipt.Items[2]; soda.Discount != nil || soda.OriginalPrice != nil {
		t.Errorf("zero discount should be dropped: %+v", soda)
	}

	if math.Abs(receipt.Subtotal-24.49) > 1e-9 {
		t.Errorf("subtotal = %v, want 24.49", receipt.Subtotal)
	}
	if receipt.Tip != 0 || receipt.Miscellaneous != 0 {
		t.Errorf("tip/misc = %v/%v, want 0/0", receipt.Tip, receipt.Miscellaneous)
	}
	if math.Abs(receipt.Total-(receipt.Subtotal+receipt.Tax)) > 1e-9 {
		t.Errorf("total = %v, want %v", receipt.Total, receipt.Subtotal+receipt.Tax)
	}
	if reported.Total != 26.59 {
		t.Errorf("reported total = %v, want 26.59", reported.Total)
	}
}

func TestParseResponse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"not json", "Sorry, I can't read that receipt.", ErrMalformedResponse},
		{"truncated", `{"items": [{"description": "A", "price": 1}`, ErrMalformedResponse},
		{"trailing text", `{"items": [{"description": "A", "price": 1}]} Let me know if you need anything else.`, ErrMalformedResponse},
		{"two objects", `{"items": [{"description": "A", "price": 1}]} {"items": []}`, ErrMalformedResponse},
		{"no items", `{"items": [], "tax": 0}`, ErrNoItems},
		{"missing items", `{"subtotal": 10}`, ErrNoItems},
		{"string price", `{"items": [{"description": "A", "price": "$10.50"}]}`, ErrNonNumericPrice},
		{"missing price", `{"items": [{"description": "A"}]}`, ErrNonNumericPrice},
		{"one bad price among good", `{"items": [{"description": "A", "price": 1}, {"description": "B", "price": "n/a"}]}`, ErrNonNumericPrice},
		{"string tax", `{"items": [{"description": "A", "price": 1}], "tax": "1.00"}`, ErrNonNumericPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipt, _, err := ParseResponse(tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrExtraction) {
				t.Errorf("error %v does not wrap ErrExtraction", err)
			}
			if receipt != nil {
				t.Errorf("expected no receipt on failure, got %+v", receipt)
			}
		})
	}
}

func TestImageValidate(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	img := Image{Data: png}
	if err := img.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if img.MIMEType != "image/png" || img.Extension() != ".png" {
		t.Errorf("sniffed type = %q (%q), want image/png", img.MIMEType, img.Extension())
	}

	img = Image{Data: png, MIMEType: "IMAGE/JPEG; charset=binary"}
	if err := img.Validate(); err != nil || img.MIMEType != "image/jpeg" {
		t.Errorf("declared type not normalised: %q, %v", img.MIMEType, err)
	}

	if err := (&Image{}).Validate(); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("expected ErrEmptyImage, got %v", err)
	}
	if err := (&Image{Data: []byte("%PDF-1.4"), MIMEType: "application/pdf"}).Validate(); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("expected ErrUnsupportedImage, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(ErrNoItems); got != "No items found in receipt. Please try again." {
		t.Errorf("UserMessage(ErrNoItems) = %q", got)
	}
	if got := UserMessage(errors.New("network down")); got != "Failed to process receipt. Please try again." {
		t.Errorf("UserMessage(other) = %q", got)
	}
}
