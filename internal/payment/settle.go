package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/tillpoint/internal/calculator"
	"github.com/mmynk/tillpoint/internal/cart"
	"github.com/mmynk/tillpoint/internal/models"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidState = errors.New("bill is not in a state that allows this action")
	ErrNotEligible  = errors.New("payment cannot be completed")
)

// Ledger records settled bills in the backend.
type Ledger interface {
	InsertBillDetail(ctx context.Context, settlement models.BillSettlement) error
	MarkBillPaid(ctx context.Context, billNo int64) error
}

// Allocator issues the next bill number.
type Allocator interface {
	Next(ctx context.Context, locationCode, counterCode string) int64
}

// Receipt summarises a completed payment.
type Receipt struct {
	BillNo       int64
	CustomerCode string
	Quote
	Items      []models.BillDetailLine
	NextBillNo int64
	PaidAt     time.Time

	// DetailSaved and MarkedPaid report whether the backend calls succeeded.
	DetailSaved bool
	MarkedPaid  bool
}

// Settler drives a bill through checkout and payment.
type Settler struct {
	ledger Ledger
	engine *cart.Engine
	alloc  Allocator
}

// NewSettler creates a Settler.
func NewSettler(ledger Ledger, engine *cart.Engine, alloc Allocator) *Settler {
	return &Settler{ledger: ledger, engine: engine, alloc: alloc}
}

// Checkout moves a non-empty draft bill to awaiting payment.
func (st *Settler) Checkout(s *models.BillSession) error {
	if s.Status != models.StatusDraft {
		return ErrInvalidState
	}
	if s.IsEmpty() {
		return ErrEmptyCart
	}
	s.Status = models.StatusAwaitingPayment
	return nil
}

// Back returns a bill awaiting payment to the cart.
func (st *Settler) Back(s *models.BillSession) error {
	if s.Status != models.StatusAwaitingPayment {
		return ErrInvalidState
	}
	s.Status = models.StatusDraft
	return nil
}

// Complete settles the bill with tender.
//
// Recording the bill detail and marking the bill number paid are best effort:
// failures are logged and reported on the receipt, but the cart is still
// cleared and the next bill number allocated. A bill can therefore end up
// paid without a recorded detail.
func (st *Settler) Complete(ctx context.Context, s *models.BillSession, t Tender) (*Receipt, error) {
	if s.Status != models.StatusAwaitingPayment {
		return nil, ErrInvalidState
	}
	q := Evaluate(s, t)
	if !q.CanComplete {
		return nil, fmt.Errorf("%w: %s", ErrNotEligible, q.Reason)
	}

	receipt := &Receipt{
		BillNo:       s.BillNo,
		CustomerCode: s.CustomerCode,
		Quote:        q,
		Items:        DetailLines(s.Lines),
		PaidAt:       time.Now().UTC(),
	}

	settlement := models.BillSettlement{
		BillNo:       s.BillNo,
		LocationCode: s.LocationCode,
		CounterCode:  s.CounterCode,
		CustomerCode: s.CustomerCode,
		Method:       q.Method,
		PointsUsed:   q.PointsUsed,
		Subtotal:     q.Subtotal,
		Tax:          q.Tax,
		Total:        q.Total,
		Tendered:     q.Tendered,
		Change:       q.Change,
		Items:        receipt.Items,
	}
	if err := st.ledger.InsertBillDetail(ctx, settlement); err != nil {
		slog.Error("Failed to record bill detail", "bill_no", s.BillNo, "error", err)
	} else {
		receipt.DetailSaved = true
	}
	if err := st.ledger.MarkBillPaid(ctx, s.BillNo); err != nil {
		slog.Error("Failed to mark bill paid", "bill_no", s.BillNo, "error", err)
	} else {
		receipt.MarkedPaid = true
	}

	s.Status = models.StatusPaid
	slog.Info("Bill paid",
		"bill_no", s.BillNo,
		"method", q.Method,
		"total", calculator.Round2(q.Total),
		"change", calculator.Round2(q.Change),
	)

	st.engine.Clear(s)
	s.SetCustomer(nil)
	s.BillNo = st.alloc.Next(ctx, s.LocationCode, s.CounterCode)
	s.Status = models.StatusDraft
	receipt.NextBillNo = s.BillNo
	return receipt, nil
}

// DetailLines lists the non-void lines of a bill for the bill-detail record.
func DetailLines(lines []models.LineItem) []models.BillDetailLine {
	out := make([]models.BillDetailLine, 0, len(lines))
	for _, l := range lines {
		if l.Voided {
			continue
		}
		out = append(out, models.BillDetailLine{
			ItemCode: l.ID,
			Quantity: l.Quantity,
			Rate:     l.Price,
		})
	}
	return out
}

