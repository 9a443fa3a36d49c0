package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmynk/tillpoint/internal/models"
)

// SaveCartSnapshot upserts the lines of a bill. An existing row is only
// replaced by a snapshot from another session, an unsequenced snapshot, or a
// snapshot with a higher sequence number than the stored one.
func (s *SQLiteStore) SaveCartSnapshot(ctx context.Context, snap models.CartSnapshot) (bool, error) {
	items, err := json.Marshal(models.CloneLines(snap.Items))
	if err != nil {
		return false, fmt.Errorf("failed to encode cart items: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (bill_no, location_code, session_id, seq, items, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(bill_no, location_code) DO UPDATE SET
			session_id = excluded.session_id,
			seq = excluded.seq,
			items = excluded.items,
			updated_at = excluded.updated_at
		WHERE excluded.session_id = ''
		   OR cart_snapshots.session_id <> excluded.session_id
		   OR excluded.seq > cart_snapshots.seq
	`, snap.BillNo, snap.LocationCode, snap.SessionID, snap.Seq, string(items), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("failed to save cart snapshot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// GetCartSnapshot returns the stored lines of a bill.
func (s *SQLiteStore) GetCartSnapshot(ctx context.Context, billNo int64, locationCode string) (*models.CartSnapshot, error) {
	snap := &models.CartSnapshot{BillNo: billNo, LocationCode: locationCode}
	var items string
	err := s.db.QueryRowContext(ctx,
		"SELECT session_id, seq, items FROM cart_snapshots WHERE bill_no = ? AND location_code = ?",
		billNo, locationCode,
	).Scan(&snap.SessionID, &snap.Seq, &items)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("cart for bill %d", billNo))
	}
	if err := json.Unmarshal([]byte(items), &snap.Items); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}
	return snap, nil
}
