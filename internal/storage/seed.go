package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/models"
)

// DemoProducts is the catalog loaded into an empty store.
func DemoProducts() []models.Product {
	price := decimal.RequireFromString
	return []models.Product{
		{ID: "1001", Name: "Green Tea 100g", Price: price("10.00"), Category: "BEV", LocationCode: "LOC001", ManufacturerID: "8901000100011", UOM: "PCS"},
		{ID: "1002", Name: "Coffee Beans 250g", Price: price("18.50"), Category: "BEV", LocationCode: "LOC001", ManufacturerID: "8901000100028", UOM: "PCS"},
		{ID: "1003", Name: "Ceramic Mug", Price: price("5.00"), Category: "HOME", LocationCode: "LOC001", AlternateCodes: []string{"MUG", "MUG-W"}, UOM: "PCS"},
		{ID: "1004", Name: "Sugar 1kg", Price: price("2.35"), Category: "GROC", LocationCode: "LOC001", ManufacturerID: "8901000100042", UOM: "KG"},
		{ID: "1005", Name: "Milk 1L", Price: price("1.20"), Category: "DAIRY", LocationCode: "LOC001", AlternateCodes: []string{"MILK"}, UOM: "LTR"},
		{ID: "1006", Name: "Butter Cookies", Price: price("3.75"), Category: "SNACK", LocationCode: "LOC001", ManufacturerID: "8901000100066", UOM: "PCS"},
	}
}

// DemoCustomers is the customer list loaded into an empty store. C003 is locked.
func DemoCustomers() []models.Customer {
	return []models.Customer{
		{Code: "C001", Name: "Asha", FullName: "Asha Raman", Category: "GOLD", LocationCode: "LOC001", LockFlag: "N", LoyaltyPoints: 500},
		{Code: "C002", Name: "Ben", Category: "SILVER", LocationCode: "LOC001", LockFlag: "N", LoyaltyPoints: 40},
		{Code: "C003", Name: "Chen", FullName: "Chen Li", Category: "GOLD", LocationCode: "LOC001", LockFlag: "Y", LoyaltyPoints: 900},
	}
}

// SeedCatalog loads the demo catalog and customers when the store has none.
func SeedCatalog(ctx context.Context, s Store) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalog: %w", err)
	}
	if len(products) == 0 {
		for _, p := range DemoProducts() {
			if err := s.UpsertProduct(ctx, p); err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
			}
		}
	}

	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("failed to check customers: %w", err)
	}
	if len(customers) == 0 {
		for _, c := range DemoCustomers() {
			if err := s.UpsertCustomer(ctx, c); err != nil {
				return fmt.Errorf("failed to seed customer %s: %w", c.Code, err)
			}
		}
	}
	return nil
}
