package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

// InsertSettlement stores the settlement header and its lines and deducts
// redeemed loyalty points in a single transaction.
func (s *SQLiteStore) InsertSettlement(ctx context.Context, st *models.BillSettlement) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	if st.CreatedAt == 0 {
		st.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bill_settlements (
			id, bill_no, location_code, counter_code, customer_code, method, points_used,
			subtotal, tax, total, tendered, change_amount, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		st.ID, st.BillNo, st.LocationCode, st.CounterCode, st.CustomerCode, string(st.Method), st.PointsUsed,
		st.Subtotal.String(), st.Tax.String(), st.Total.String(), st.Tendered.String(), st.Change.String(), st.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("settlement for bill %d: %w", st.BillNo, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for i, line := range st.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO bill_details (settlement_id, line_no, item_code, quantity, rate) VALUES (?, ?, ?, ?, ?)",
			st.ID, i+1, line.ItemCode, line.Quantity, line.Rate.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill detail: %w", err)
		}
	}

	if st.PointsUsed > 0 && st.CustomerCode != "" {
		res, err := tx.ExecContext(ctx,
			"UPDATE customers SET loyalty_points = loyalty_points - ? WHERE code = ? AND loyalty_points >= ?",
			st.PointsUsed, st.CustomerCode, st.PointsUsed,
		)
		if err != nil {
			return fmt.Errorf("failed to deduct loyalty points: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		} else if n == 0 {
			return fmt.Errorf("customer %s: %w", st.CustomerCode, storage.ErrInsufficientPoints)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement returns the settlement of a bill with its lines.
func (s *SQLiteStore) GetSettlement(ctx context.Context, billNo int64, locationCode string) (*models.BillSettlement, error) {
	st := &models.BillSettlement{}
	var method string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, bill_no, location_code, counter_code, customer_code, method, points_used,
		       subtotal, tax, total, tendered, change_amount, created_at
		FROM bill_settlements
		WHERE bill_no = ? AND location_code = ?
	`, billNo, locationCode).Scan(
		&st.ID, &st.BillNo, &st.LocationCode, &st.CounterCode, &st.CustomerCode, &method, &st.PointsUsed,
		&st.Subtotal, &st.Tax, &st.Total, &st.Tendered, &st.Change, &st.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("settlement for bill %d", billNo))
	}
	st.Method = models.PaymentMethod(method)

	rows, err := s.db.QueryContext(ctx,
		"SELECT item_code, quantity, rate FROM bill_details WHERE settlement_id = ? ORDER BY line_no",
		st.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.BillDetailLine
		if err := rows.Scan(&line.ItemCode, &line.Quantity, &line.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan bill detail: %w", err)
		}
		st.Items = append(st.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill details: %w", err)
	}
	return st, nil
}
