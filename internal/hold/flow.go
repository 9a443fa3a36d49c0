// Package hold parks the active bill in the backend and brings parked bills
// back.
package hold

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/mmynk/tillpoint/internal/cart"
	"github.com/mmynk/tillpoint/internal/models"
)

// ErrEmptyCart is returned when holding a bill without lines.
var ErrEmptyCart = errors.New("cannot hold an empty bill")

// ErrNotHoldable is returned for bills that are already settled or in payment.
var ErrNotHoldable = errors.New("only draft bills can be held")

// ErrNotRetrievable is returned when the active bill is not a draft, so
// replacing it would drop a bill in payment.
var ErrNotRetrievable = errors.New("held bills can only replace a draft bill")

// Store is the backend's held-bill store.
type Store interface {
	HoldBill(ctx context.Context, bill models.HeldBill) error
	HeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error)
	HeldBill(ctx context.Context, billNo int64, locationCode string) (models.HeldBill, error)
	DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error
}

// Allocator issues and adopts bill numbers.
type Allocator interface {
	Next(ctx context.Context, locationCode, counterCode string) int64
	Adopt(billNo int64, locationCode, counterCode string)
}

// Flow moves bills between the terminal and the held-bill store.
type Flow struct {
	store  Store
	engine *cart.Engine
	alloc  Allocator
}

// New creates a Flow.
func New(store Store, engine *cart.Engine, alloc Allocator) *Flow {
	return &Flow{store: store, engine: engine, alloc: alloc}
}

// Hold submits the session's bill to the store. On success the cart is
// cleared, the customer detached and a new bill number adopted; the held bill
// number is returned. On failure the session is left untouched.
func (f *Flow) Hold(ctx context.Context, s *models.BillSession) (int64, error) {
	if s.Status != models.StatusDraft {
		return 0, ErrNotHoldable
	}
	if s.IsEmpty() {
		return 0, ErrEmptyCart
	}

	held := models.HeldBill{
		BillNo:       s.BillNo,
		LocationCode: s.LocationCode,
		CounterCode:  s.CounterCode,
		CustomerCode: s.CustomerCode,
		HeldDate:     time.Now().UTC(),
		Items:        models.CloneLines(s.Lines),
	}
	if err := f.store.HoldBill(ctx, held); err != nil {
		return 0, fmt.Errorf("failed to hold bill %d: %w", s.BillNo, err)
	}
	slog.Info("Bill held", "bill_no", held.BillNo, "location", held.LocationCode, "items", len(held.Items))

	f.engine.Clear(s)
	s.SetCustomer(nil)
	s.BillNo = f.alloc.Next(ctx, s.LocationCode, s.CounterCode)
	s.Status = models.StatusDraft
	return held.BillNo, nil
}

// List returns the held bills of a location, newest first.
func (f *Flow) List(ctx context.Context, locationCode string) ([]models.HeldBill, error) {
	bills, err := f.store.HeldBills(ctx, locationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list held bills: %w", err)
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].HeldDate.After(bills[j].HeldDate)
	})
	return bills, nil
}

// Retrieve loads a held bill and returns a new session that supersedes
// current. The held record is then deleted on a best-effort basis: a failed
// delete is logged and the retrieval still succeeds.
//
// The read and the delete are not atomic, so two terminals retrieving the
// same bill at once can both succeed.
func (f *Flow) Retrieve(ctx context.Context, current *models.BillSession, billNo int64) (*models.BillSession, error) {
	if current.Status != models.StatusDraft {
		return nil, ErrNotRetrievable
	}
	held, err := f.store.HeldBill(ctx, billNo, current.LocationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve held bill %d: %w", billNo, err)
	}

	next := models.NewBillSession(held.BillNo, current.LocationCode, current.CounterCode)
	next.Lines = models.CloneLines(held.Items)
	next.CustomerCode = held.CustomerCode

	if err := f.store.DeleteHeldBill(ctx, held.BillNo, current.LocationCode); err != nil {
		slog.Warn("Failed to delete retrieved held bill", "bill_no", held.BillNo, "error", err)
	}

	f.alloc.Adopt(next.BillNo, next.LocationCode, next.CounterCode)
	f.engine.Sync(next)
	slog.Info("Held bill retrieved", "bill_no", next.BillNo, "items", len(next.Lines))
	return next, nil
}
