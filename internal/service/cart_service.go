package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

// CartService stores live cart snapshots and held bills.
type CartService struct {
	store   storage.Store
	metrics *metrics.Server
	logger  *slog.Logger
}

// NewCartService creates a cart service. m may be nil.
func NewCartService(store storage.Store, m *metrics.Server, logger *slog.Logger) *CartService {
	return &CartService{store: store, metrics: m, logger: logger}
}

// SyncCart stores the snapshot unless a newer one from the same terminal
// session is already stored. applied is false for such stale snapshots.
func (s *CartService) SyncCart(ctx context.Context, snap models.CartSnapshot) (bool, error) {
	if snap.BillNo <= 0 {
		return false, invalid("billNo is required")
	}
	snap.Items = models.CloneLines(snap.Items)

	applied, err := s.store.SaveCartSnapshot(ctx, snap)
	if err != nil {
		return false, fmt.Errorf("failed to save cart: %w", err)
	}
	if !applied {
		s.logger.Debug("Stale cart snapshot discarded", "bill_no", snap.BillNo, "session_id", snap.SessionID, "seq", snap.Seq)
		if s.metrics != nil {
			s.metrics.StaleSnapshots.Inc()
		}
	}
	return applied, nil
}

// CartByBill returns the last stored snapshot of a bill. A bill that was
// never synced has an empty snapshot.
func (s *CartService) CartByBill(ctx context.Context, billNo int64, locationCode string) (*models.CartSnapshot, error) {
	if billNo <= 0 {
		return nil, invalid("billNo is required")
	}
	snap, err := s.store.GetCartSnapshot(ctx, billNo, locationCode)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.CartSnapshot{BillNo: billNo, LocationCode: locationCode, Items: []models.LineItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return snap, nil
}

// HoldBill parks a bill. A bill without lines cannot be held.
func (s *CartService) HoldBill(ctx context.Context, bill models.HeldBill) error {
	if bill.BillNo <= 0 {
		return invalid("billNo is required")
	}
	if len(bill.Items) == 0 {
		return invalid("items are required")
	}
	if err := s.store.HoldBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to hold bill: %w", err)
	}
	s.logger.Info("Bill held", "bill_no", bill.BillNo, "location", bill.LocationCode, "lines", len(bill.Items))
	return nil
}

// HeldBills lists the held bills of a location, newest first.
func (s *CartService) HeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error) {
	bills, err := s.store.ListHeldBills(ctx, locationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list held bills: %w", err)
	}
	return bills, nil
}

// HeldBill returns one held bill with its items.
func (s *CartService) HeldBill(ctx context.Context, billNo int64, locationCode string) (*models.HeldBill, error) {
	if billNo <= 0 {
		return nil, invalid("billNo is required")
	}
	return s.store.GetHeldBill(ctx, billNo, locationCode)
}

// DeleteHeldBill removes a held bill once it has been retrieved.
func (s *CartService) DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error {
	if billNo <= 0 {
		return invalid("billNo is required")
	}
	if err := s.store.DeleteHeldBill(ctx, billNo, locationCode); err != nil {
		return fmt.Errorf("failed to delete held bill: %w", err)
	}
	s.logger.Info("Held bill released", "bill_no", billNo, "location", locationCode)
	return nil
}
