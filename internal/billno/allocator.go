// Package billno allocates bill numbers for a terminal.
//
// The backend sequence is authoritative. When it cannot be reached the
// allocator falls back to the last known local number plus one. Every adopted
// number is persisted so a restarted terminal resumes the same bill.
package billno

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/tillpoint/internal/metrics"
)

// Sequencer issues the next bill number for a location and counter.
type Sequencer interface {
	NextBillNo(ctx context.Context, locationCode, counterCode string) (int64, error)
}

// Allocator hands out bill numbers and remembers the current one.
type Allocator struct {
	seq     Sequencer
	state   StateStore
	metrics *metrics.Terminal

	mu      sync.Mutex
	current int64
}

// New creates an Allocator seeded from the persisted state. A state that
// cannot be read is logged and treated as empty.
func New(seq Sequencer, state StateStore, m *metrics.Terminal) *Allocator {
	a := &Allocator{seq: seq, state: state, metrics: m}
	if state != nil {
		st, err := state.Load()
		if err != nil {
			slog.Warn("Failed to load bill number state", "error", err)
		}
		a.current = st.BillNo
	}
	return a
}

// Current returns the bill number in use, or 0 before the first allocation.
func (a *Allocator) Current() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Next obtains a new bill number. It never fails: without a usable backend
// answer the previous number is incremented.
func (a *Allocator) Next(ctx context.Context, locationCode, counterCode string) int64 {
	n, err := a.seq.NextBillNo(ctx, locationCode, counterCode)

	a.mu.Lock()
	defer a.mu.Unlock()

	source := metrics.AllocRemote
	if err != nil || n <= 0 {
		source = metrics.AllocLocal
		slog.Warn("Bill number service unavailable, using local sequence",
			"location", locationCode,
			"counter", counterCode,
			"previous", a.current,
			"error", err,
		)
		n = a.current + 1
	}
	if a.metrics != nil {
		a.metrics.BillAllocations.WithLabelValues(source).Inc()
	}

	a.adoptLocked(n, locationCode, counterCode)
	slog.Info("Bill number allocated", "bill_no", n, "source", source)
	return n
}

// Adopt makes billNo current, e.g. after a held bill is retrieved.
func (a *Allocator) Adopt(billNo int64, locationCode, counterCode string) {
	if billNo <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.adoptLocked(billNo, locationCode, counterCode)
}

func (a *Allocator) adoptLocked(billNo int64, locationCode, counterCode string) {
	a.current = billNo
	if a.state == nil {
		return
	}
	err := a.state.Save(State{
		BillNo:       billNo,
		LocationCode: locationCode,
		CounterCode:  counterCode,
		UpdatedAt:    time.Now(),
	})
	if err != nil {
		slog.Error("Failed to persist bill number", "bill_no", billNo, "error", err)
	}
}
