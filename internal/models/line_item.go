package models

import "github.com/shopspring/decimal"

// LineItem represents a single line of a bill.
// A line with quantity zero never exists; a voided line is kept with its last
// quantity but is excluded from monetary totals.
type LineItem struct {
	// ID is the canonical item code (see package identity).
	ID string `json:"id"`

	// Name is the display name of the item.
	Name string `json:"name"`

	// Price is the non-negative unit price.
	Price decimal.Decimal `json:"price"`

	// Quantity is at least 1 while the line is present.
	Quantity int64 `json:"quantity"`

	// Voided marks the line inactive without removing it.
	Voided bool `json:"voided"`

	// Category is the catalog category code.
	Category string `json:"category,omitempty"`

	// ManufacturerID is the barcode printed on the product, if any.
	ManufacturerID string `json:"manufacturerId,omitempty"`

	// UOM is the base unit of measure, display only.
	UOM string `json:"uom,omitempty"`
}

// Amount returns price × quantity, or zero for a voided line.
func (l LineItem) Amount() decimal.Decimal {
	if l.Voided {
		return decimal.Zero
	}
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// CloneLines returns a copy of lines that shares no backing array with the input.
func CloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(lines))
	copy(out, lines)
	return out
}
