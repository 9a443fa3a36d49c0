package models

import "github.com/shopspring/decimal"

// Product is a catalog item after ingestion.
type Product struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	Category       string
	LocationCode   string
	ManufacturerID string
	AlternateCodes []string
	UOM            string
}

// LineItem converts the product into a fresh cart line with quantity 1.
func (p Product) LineItem() LineItem {
	return LineItem{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Quantity:       1,
		Category:       p.Category,
		ManufacturerID: p.ManufacturerID,
		UOM:            p.UOM,
	}
}
