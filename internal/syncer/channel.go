// Package syncer propagates cart snapshots to the backend in the background.
//
// Every snapshot carries the terminal's session id and a per-session sequence
// number so the backend can discard writes that arrive out of order. Pushes are
// fire-and-forget: failures are logged and counted, never retried and never
// reported to the caller.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
)

// DefaultTimeout bounds a single push.
const DefaultTimeout = 5 * time.Second

// Pusher delivers one snapshot. applied is false when the backend kept a newer
// snapshot instead.
type Pusher interface {
	SyncCart(ctx context.Context, snapshot models.CartSnapshot) (applied bool, err error)
}

// Channel dispatches each pushed snapshot on its own goroutine.
type Channel struct {
	pusher    Pusher
	sessionID string
	timeout   time.Duration
	metrics   *metrics.Terminal

	seq atomic.Int64
	wg  sync.WaitGroup
}

// Option configures a Channel.
type Option func(*Channel)

// WithTimeout sets the per-push timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records push outcomes on m.
func WithMetrics(m *metrics.Terminal) Option {
	return func(c *Channel) { c.metrics = m }
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(c *Channel) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// New creates a Channel with a fresh session id.
func New(p Pusher, opts ...Option) *Channel {
	c := &Channel{
		pusher:    p,
		sessionID: uuid.NewString(),
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID identifies this channel's snapshots to the backend.
func (c *Channel) SessionID() string {
	return c.sessionID
}

// Push stamps snapshot and sends it asynchronously. It never blocks on I/O.
func (c *Channel) Push(snapshot models.CartSnapshot) {
	snapshot.SessionID = c.sessionID
	snapshot.Seq = c.seq.Add(1)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.send(snapshot)
	}()
}

func (c *Channel) send(snapshot models.CartSnapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	applied, err := c.pusher.SyncCart(ctx, snapshot)
	switch {
	case err != nil:
		slog.Warn("Cart sync failed",
			"bill_no", snapshot.BillNo,
			"location", snapshot.LocationCode,
			"seq", snapshot.Seq,
			"error", err,
		)
		c.count(metrics.SyncFailed)
	case !applied:
		slog.Debug("Cart sync superseded", "bill_no", snapshot.BillNo, "seq", snapshot.Seq)
		c.count(metrics.SyncStale)
	default:
		slog.Debug("Cart synced", "bill_no", snapshot.BillNo, "seq", snapshot.Seq, "items", len(snapshot.Items))
		c.count(metrics.SyncOK)
	}
}

func (c *Channel) count(result string) {
	if c.metrics == nil {
		return
	}
	c.metrics.CartSync.WithLabelValues(result).Inc()
}

// Wait blocks until every push issued so far has finished.
func (c *Channel) Wait() {
	c.wg.Wait()
}
