package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mmynk/tillpoint/internal/models"
)

const productColumns = "item_code, name, retail_price, category_code, location_code, manufacturer_id, alt_codes, uom"

// UpsertProduct inserts or replaces a catalog item.
func (s *SQLiteStore) UpsertProduct(ctx context.Context, p models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_code) DO UPDATE SET
			name = excluded.name,
			retail_price = excluded.retail_price,
			category_code = excluded.category_code,
			location_code = excluded.location_code,
			manufacturer_id = excluded.manufacturer_id,
			alt_codes = excluded.alt_codes,
			uom = excluded.uom
	`,
		p.ID, p.Name, p.Price.String(), p.Category, p.LocationCode,
		p.ManufacturerID, strings.Join(p.AlternateCodes, ","), p.UOM,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// ListProducts returns the catalog ordered by item code.
func (s *SQLiteStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY item_code")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// FindProduct matches code against item code, manufacturer code and the
// comma-separated alternate codes.
func (s *SQLiteStore) FindProduct(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE item_code = ?1
		   OR (manufacturer_id <> '' AND manufacturer_id = ?1)
		   OR (',' || alt_codes || ',') LIKE '%,' || ?1 || ',%'
		ORDER BY CASE WHEN item_code = ?1 THEN 0 ELSE 1 END
		LIMIT 1
	`, code)
	p, err := scanProduct(row)
	if err != nil {
		return nil, notFound(err, "product "+code)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(sc scanner) (*models.Product, error) {
	var (
		p    models.Product
		alts string
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.LocationCode, &p.ManufacturerID, &alts, &p.UOM); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if alts != "" {
		p.AlternateCodes = strings.Split(alts, ",")
	}
	return &p, nil
}

const customerColumns = "code, name, full_name, category, location_code, lock_flag, loyalty_points"

// UpsertCustomer inserts or replaces a customer.
func (s *SQLiteStore) UpsertCustomer(ctx context.Context, c models.Customer) error {
	lock := "N"
	if c.Locked() {
		lock = "Y"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			full_name = excluded.full_name,
			category = excluded.category,
			location_code = excluded.location_code,
			lock_flag = excluded.lock_flag,
			loyalty_points = excluded.loyalty_points
	`, c.Code, c.Name, c.FullName, c.Category, c.LocationCode, lock, c.LoyaltyPoints)
	if err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

// ListCustomers returns all customers ordered by code.
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.Code, &c.Name, &c.FullName, &c.Category, &c.LocationCode, &c.LockFlag, &c.LoyaltyPoints); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

// GetCustomer returns one customer.
func (s *SQLiteStore) GetCustomer(ctx context.Context, code string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE code = ?", code,
	).Scan(&c.Code, &c.Name, &c.FullName, &c.Category, &c.LocationCode, &c.LockFlag, &c.LoyaltyPoints)
	if err != nil {
		return nil, notFound(err, "customer "+code)
	}
	return &c, nil
}
