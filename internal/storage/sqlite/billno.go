package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/tillpoint/internal/storage"
)

// NextBillNo inserts MAX(bill_no)+1 and returns it.
func (s *SQLiteStore) NextBillNo(ctx context.Context, alloc storage.BillNoAllocation) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var last int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(bill_no), 0) FROM bill_numbers").Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read last bill number: %w", err)
	}
	next := last + 1

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bill_numbers (bill_no, flag, counter_code, location_code, bill_date) VALUES (?, ?, ?, ?, ?)",
		next, alloc.Flag, alloc.CounterCode, alloc.LocationCode, time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bill number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}

// LastBillNo returns the highest issued bill number, or 0.
func (s *SQLiteStore) LastBillNo(ctx context.Context) (int64, error) {
	var last int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(bill_no), 0) FROM bill_numbers").Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read last bill number: %w", err)
	}
	return last, nil
}

// MarkBillPaid flags a bill number as paid.
func (s *SQLiteStore) MarkBillPaid(ctx context.Context, billNo int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE bill_numbers SET flag = 'y', paid_at = ? WHERE bill_no = ?",
		time.Now().Unix(), billNo,
	)
	if err != nil {
		return fmt.Errorf("failed to mark bill paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %d: %w", billNo, storage.ErrNotFound)
	}
	return nil
}
