package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/tillpoint/internal/models"
)

// HoldBill stores a held bill, replacing an earlier hold of the same bill.
func (s *SQLiteStore) HoldBill(ctx context.Context, bill models.HeldBill) error {
	items, err := json.Marshal(models.CloneLines(bill.Items))
	if err != nil {
		return fmt.Errorf("failed to encode held items: %w", err)
	}
	heldAt := bill.HeldDate
	if heldAt.IsZero() {
		heldAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO held_bills (bill_no, location_code, counter_code, customer_code, held_at, items)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(bill_no, location_code) DO UPDATE SET
			counter_code = excluded.counter_code,
			customer_code = excluded.customer_code,
			held_at = excluded.held_at,
			items = excluded.items
	`, bill.BillNo, bill.LocationCode, bill.CounterCode, bill.CustomerCode, heldAt.UnixMilli(), string(items))
	if err != nil {
		return fmt.Errorf("failed to hold bill: %w", err)
	}
	return nil
}

// ListHeldBills returns the held bills of a location, newest first, without items.
func (s *SQLiteStore) ListHeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bill_no, location_code, counter_code, customer_code, held_at
		FROM held_bills
		WHERE location_code = ?
		ORDER BY held_at DESC, bill_no DESC
	`, locationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list held bills: %w", err)
	}
	defer rows.Close()

	var bills []models.HeldBill
	for rows.Next() {
		var (
			b      models.HeldBill
			heldAt int64
		)
		if err := rows.Scan(&b.BillNo, &b.LocationCode, &b.CounterCode, &b.CustomerCode, &heldAt); err != nil {
			return nil, fmt.Errorf("failed to scan held bill: %w", err)
		}
		b.HeldDate = time.UnixMilli(heldAt).UTC()
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate held bills: %w", err)
	}
	return bills, nil
}

// GetHeldBill returns one held bill with its items.
func (s *SQLiteStore) GetHeldBill(ctx context.Context, billNo int64, locationCode string) (*models.HeldBill, error) {
	var (
		b      models.HeldBill
		heldAt int64
		items  string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT bill_no, location_code, counter_code, customer_code, held_at, items
		FROM held_bills
		WHERE bill_no = ? AND location_code = ?
	`, billNo, locationCode).Scan(&b.BillNo, &b.LocationCode, &b.CounterCode, &b.CustomerCode, &heldAt, &items)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("held bill %d", billNo))
	}
	b.HeldDate = time.UnixMilli(heldAt).UTC()
	if err := json.Unmarshal([]byte(items), &b.Items); err != nil {
		return nil, fmt.Errorf("failed to decode held items: %w", err)
	}
	return &b, nil
}

// DeleteHeldBill removes a held bill.
func (s *SQLiteStore) DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM held_bills WHERE bill_no = ? AND location_code = ?",
		billNo, locationCode,
	)
	if err != nil {
		return fmt.Errorf("failed to delete held bill: %w", err)
	}
	return nil
}
