package calculator

import (
	"math"

	"github.com/gana36/billbeam/internal/models"
)

// ItemShare is one person's part of a single item.
type ItemShare struct {
	Item       models.ReceiptItem
	SharePrice float64 // item price divided by the number of assignees
}

// SettlementLine is the calculated amount owed by one person.
// It is derived on demand and never persisted.
type SettlementLine struct {
	Person     models.Person
	ItemShares []ItemShare

	// Subtotal is the sum of item shares. When rounding is on it is back-derived
	// from the rounded total and is only suitable for display.
	Subtotal float64

	// ExtraCost is this person's portion of tax, tip and miscellaneous.
	ExtraCost float64

	// Total is the final amount this person owes.
	Total float64
}

// Ratio returns the multiplier applied to each person's item subtotal to include
// tax, tip and miscellaneous.
//
// The ratio is taken against the full bill subtotal, not the assigned subtotal, so the
// extras belonging to unassigned items are spread over the assigned ones.
func Ratio(receipt *models.Receipt) float64 {
	totalAssigned := 0.0
	for _, item := range receipt.Items {
		if len(item.AssignedTo) > 0 {
			totalAssigned += item.Price
		}
	}
	if totalAssigned <= 0 || receipt.Subtotal == 0 {
		return 1
	}
	extraPool := receipt.Tax + receipt.Tip + receipt.Miscellaneous
	return 1 + extraPool/receipt.Subtotal
}

// Settle computes how much each person owes.
// Based on the algorithm: person_total = person_subtotal × (1 + (tax + tip + misc) / bill_subtotal)
//
// Items with nobody assigned are skipped. Shared items are split equally among their
// assignees. With roundToDollar each total is rounded on its own, so the sum of totals
// may drift from the bill total by up to half a unit per person. People owing nothing
// are left out. Lines follow roster order.
func Settle(receipt *models.Receipt, people []models.Person, roundToDollar bool) []SettlementLine {
	if receipt == nil {
		return nil
	}

	ratio := Ratio(receipt)

	var lines []SettlementLine
	for _, person := range people {
		line := SettlementLine{Person: person}

		for _, item := range receipt.Items {
			if len(item.AssignedTo) == 0 || !item.IsAssigned(person.ID) {
				continue
			}
			share := item.Price / float64(len(item.AssignedTo))
			line.ItemShares = append(line.ItemShares, ItemShare{Item: item, SharePrice: share})
			line.Subtotal += share
		}

		line.Total = line.Subtotal * ratio
		if roundToDollar {
			line.Total = math.Round(line.Total)
			line.Subtotal = line.Total / ratio
		}
		line.ExtraCost = line.Total - line.Subtotal

		if line.Total == 0 {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// Summary aggregates settlement lines for display.
type Summary struct {
	AssignedItems int     // items with at least one assignee
	TotalItems    int     // all items on the receipt
	SettledTotal  float64 // sum of line totals
	Drift         float64 // SettledTotal minus the bill total
}

// Summarize reports how much of the bill the settlement lines cover.
func Summarize(receipt *models.Receipt, lines []SettlementLine) Summary {
	var s Summary
	if receipt == nil {
		return s
	}
	s.TotalItems = len(receipt.Items)
	for _, item := range receipt.Items {
		if len(item.AssignedTo) > 0 {
			s.AssignedItems++
		}
	}
	for _, line := range lines {
		s.SettledTotal += line.Total
	}
	s.Drift = s.SettledTotal - receipt.Total
	return s
}
