package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

// BillingService allocates bill numbers and records settlements.
type BillingService struct {
	store   storage.Store
	metrics *metrics.Server
	logger  *slog.Logger
}

// NewBillingService creates a billing service. m may be nil.
func NewBillingService(store storage.Store, m *metrics.Server, logger *slog.Logger) *BillingService {
	return &BillingService{store: store, metrics: m, logger: logger}
}

// NormalizeFlag maps the allocation flag onto "y" (pre-paid) or "n".
func NormalizeFlag(flag string) string {
	if strings.EqualFold(strings.TrimSpace(flag), "y") {
		return "y"
	}
	return "n"
}

// NextBillNo issues the next bill number.
func (s *BillingService) NextBillNo(ctx context.Context, flag, counterCode, locationCode string) (int64, error) {
	alloc := storage.BillNoAllocation{
		Flag:         NormalizeFlag(flag),
		CounterCode:  strings.TrimSpace(counterCode),
		LocationCode: strings.TrimSpace(locationCode),
	}
	n, err := s.store.NextBillNo(ctx, alloc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate bill number: %w", err)
	}
	s.logger.Info("Bill number issued", "bill_no", n, "counter", alloc.CounterCode, "flag", alloc.Flag)
	return n, nil
}

// CheckBillNo reports the last issued and the next bill number without
// issuing one.
func (s *BillingService) CheckBillNo(ctx context.Context) (last, next int64, err error) {
	last, err = s.store.LastBillNo(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read bill numbers: %w", err)
	}
	return last, last + 1, nil
}

// MarkBillPaid flags an issued bill number as paid.
func (s *BillingService) MarkBillPaid(ctx context.Context, billNo int64) error {
	if billNo <= 0 {
		return invalid("billNo is required")
	}
	return s.store.MarkBillPaid(ctx, billNo)
}

// InsertBillDetail records a settled bill and deducts redeemed points.
func (s *BillingService) InsertBillDetail(ctx context.Context, st *models.BillSettlement) error {
	if st.BillNo <= 0 {
		return invalid("billNo is required")
	}
	if !st.Method.Valid() {
		return invalid("unknown payment method %q", st.Method)
	}
	if st.PointsUsed < 0 {
		return invalid("pointsUsed must not be negative")
	}
	if st.PointsUsed > 0 && st.CustomerCode == "" {
		return invalid("customerCode is required when redeeming points")
	}
	for _, line := range st.Items {
		if line.ItemCode == "" || line.Quantity < 1 {
			return invalid("bill lines need an item code and a positive quantity")
		}
	}

	if err := s.store.InsertSettlement(ctx, st); err != nil {
		s.logger.Error("Failed to record settlement", "bill_no", st.BillNo, "error", err)
		return err
	}
	if s.metrics != nil {
		s.metrics.Settlements.WithLabelValues(string(st.Method)).Inc()
	}
	s.logger.Info("Bill settled",
		"bill_no", st.BillNo,
		"method", st.Method,
		"total", st.Total.StringFixed(2),
		"points_used", st.PointsUsed,
	)
	return nil
}

// Settlement returns the recorded settlement of a bill.
func (s *BillingService) Settlement(ctx context.Context, billNo int64, locationCode string) (*models.BillSettlement, error) {
	return s.store.GetSettlement(ctx, billNo, locationCode)
}
