// Package share renders a settlement as text for the clipboard, the native share
// sheet and WhatsApp. The output is for people, not machines.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gana36/billbeam/internal/calculator"
	"github.com/gana36/billbeam/internal/models"
)

// Title heads every shared message.
const Title = "BillBeam Receipt"

const whatsAppEndpoint = "https://api.whatsapp.com/send?text="

// Money formats an amount with two decimals and a dollar sign.
func Money(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// PlainText lists each person's total followed by the bill total.
func PlainText(receipt *models.Receipt, lines []calculator.SettlementLine) string {
	var b strings.Builder
	b.WriteString("Here is the split:\n\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", line.Person.Name, Money(line.Total))
	}
	fmt.Fprintf(&b, "\n\nTotal: %s", Money(receiptTotal(receipt)))
	return b.String()
}

// WhatsAppMessage renders the itemized breakdown with WhatsApp bold markup.
func WhatsAppMessage(receipt *models.Receipt, lines []calculator.SettlementLine) string {
	blocks := make([]string, 0, len(lines))
	for _, line := range lines {
		var b strings.Builder
		fmt.Fprintf(&b, "\U0001F464 *%s*\n", line.Person.Name)
		for _, share := range line.ItemShares {
			fmt.Fprintf(&b, "• %s: %s\n", share.Item.Description, Money(share.SharePrice))
		}
		fmt.Fprintf(&b, "Total: %s", Money(line.Total))
		blocks = append(blocks, b.String())
	}

	var details strings.Builder
	details.WriteString("\U0001F4B0 *Bill Details*\n")
	if receipt != nil {
		fmt.Fprintf(&details, "Subtotal: %s\n", Money(receipt.Subtotal))
		fmt.Fprintf(&details, "Tax: %s\n", Money(receipt.Tax))
		fmt.Fprintf(&details, "Tip: %s\n", Money(receipt.Tip))
		if receipt.Miscellaneous != 0 {
			fmt.Fprintf(&details, "Misc: %s\n", Money(receipt.Miscellaneous))
		}
	}
	fmt.Fprintf(&details, "Total: %s", Money(receiptTotal(receipt)))

	return fmt.Sprintf("\U0001F9FE *%s*\n\n%s\n\n%s", Title, strings.Join(blocks, "\n\n"), details.String())
}

// WhatsAppURL returns a deep link that opens WhatsApp with the breakdown prefilled.
func WhatsAppURL(receipt *models.Receipt, lines []calculator.SettlementLine) string {
	return whatsAppEndpoint + encodeComponent(WhatsAppMessage(receipt, lines))
}

// encodeComponent percent-encodes text for a query value, with spaces as %20.
func encodeComponent(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

func receiptTotal(receipt *models.Receipt) float64 {
	if receipt == nil {
		return 0
	}
	return receipt.Total
}
