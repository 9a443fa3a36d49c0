package syncer

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
)

type fakePusher struct {
	mu       sync.Mutex
	received []models.CartSnapshot
	err      error
	applied  bool
	block    chan struct{}
}

func (f *fakePusher) SyncCart(ctx context.Context, s models.CartSnapshot) (bool, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, s)
	return f.applied, f.err
}

func TestPush_StampsSessionAndSequence(t *testing.T) {
	p := &fakePusher{applied: true}
	c := New(p, WithSessionID("terminal-1"))

	for i := 0; i < 10; i++ {
		c.Push(models.CartSnapshot{BillNo: 7, LocationCode: "LOC001"})
	}
	c.Wait()

	if len(p.received) != 10 {
		t.Fatalf("received %d snapshots, want 10", len(p.received))
	}
	seqs := make([]int, 0, len(p.received))
	for _, s := range p.received {
		if s.SessionID != "terminal-1" {
			t.Errorf("session id = %q", s.SessionID)
		}
		seqs = append(seqs, int(s.Seq))
	}
	sort.Ints(seqs)
	for i, seq := range seqs {
		if seq != i+1 {
			t.Fatalf("sequence numbers = %v, want 1..10", seqs)
		}
	}
}

func TestPush_GeneratesSessionID(t *testing.T) {
	a := New(&fakePusher{})
	b := New(&fakePusher{})
	if a.SessionID() == "" || a.SessionID() == b.SessionID() {
		t.Errorf("session ids %q and %q should be distinct and non-empty", a.SessionID(), b.SessionID())
	}
}

func TestPush_DoesNotBlockCaller(t *testing.T) {
	p := &fakePusher{applied: true, block: make(chan struct{})}
	c := New(p)

	done := make(chan struct{})
	go func() {
		c.Push(models.CartSnapshot{BillNo: 1})
		c.Push(models.CartSnapshot{BillNo: 1})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked on an in-flight request")
	}
	close(p.block)
	c.Wait()
}

func TestPush_RecordsOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		pusher  *fakePusher
		timeout time.Duration
		result  string
	}{
		{name: "applied", pusher: &fakePusher{applied: true}, result: metrics.SyncOK},
		{name: "stale", pusher: &fakePusher{applied: false}, result: metrics.SyncStale},
		{name: "error", pusher: &fakePusher{err: errors.New("connection refused")}, result: metrics.SyncFailed},
		{name: "timeout", pusher: &fakePusher{block: make(chan struct{})}, timeout: 10 * time.Millisecond, result: metrics.SyncFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewTerminal(prometheus.NewRegistry())
			c := New(tt.pusher, WithMetrics(m), WithTimeout(tt.timeout))

			c.Push(models.CartSnapshot{BillNo: 3})
			c.Wait()

			if got := testutil.ToFloat64(m.CartSync.WithLabelValues(tt.result)); got != 1 {
				t.Errorf("%s count = %v, want 1", tt.result, got)
			}
		})
	}
}
