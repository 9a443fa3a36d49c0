package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/models"
)

// TaxRate is the flat sales tax applied to every bill.
var TaxRate = decimal.RequireFromString("0.10")

// Totals is the monetary summary of a bill.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute sums price × quantity over non-voided lines and applies TaxRate.
// Based on: total = subtotal + subtotal × TaxRate.
// Nothing is rounded here; use Round2 for display.
func Compute(lines []models.LineItem) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	tax := subtotal.Mul(TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Change is what a cash customer gets back: max(0, tendered - total).
func Change(tendered, total decimal.Decimal) decimal.Decimal {
	diff := tendered.Sub(total)
	if diff.IsNegative() {
		return decimal.Zero
	}
	return diff
}

// Round2 formats an amount with two decimals for display.
func Round2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
