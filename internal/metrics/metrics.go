// Package metrics defines the Prometheus collectors shared by the terminal and
// the backend server. Collectors are registered on the Registerer passed in so
// tests can use a private registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

// Sync results recorded by the terminal's cart sync channel.
const (
	SyncOK      = "ok"
	SyncStale   = "stale"
	SyncFailed  = "failed"
	AllocRemote = "remote"
	AllocLocal  = "local"
)

// Terminal holds the collectors updated by the POS terminal.
type Terminal struct {
	CartSync        *prometheus.CounterVec
	BillAllocations *prometheus.CounterVec
}

// NewTerminal registers the terminal collectors on reg.
func NewTerminal(reg prometheus.Registerer) *Terminal {
	f := promauto.With(reg)
	return &Terminal{
		CartSync: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_sync_total",
			Help:      "Cart snapshots pushed to the backend, by result.",
		}, []string{"result"}),
		BillAllocations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bill_allocations_total",
			Help:      "Bill numbers allocated, by source.",
		}, []string{"source"}),
	}
}

// Server holds the collectors updated by the backend.
type Server struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	Settlements    *prometheus.CounterVec
	StaleSnapshots prometheus.Counter
}

// NewServer registers the server collectors on reg.
func NewServer(reg prometheus.Registerer) *Server {
	f := promauto.With(reg)
	return &Server{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"method", "route", "code"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Settlements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Bills settled, by payment method.",
		}, []string{"method"}),
		StaleSnapshots: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_snapshots_stale_total",
			Help:      "Cart snapshots discarded because a newer one was already stored.",
		}),
	}
}
