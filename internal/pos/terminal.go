// Package pos is the terminal-side façade over the bill lifecycle.
//
// A Terminal owns exactly one active bill session. Presentation code calls its
// methods; the Terminal routes them to the cart engine, the hold flow and the
// settler, and keeps the session consistent with the bill-number allocator.
package pos

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/tillpoint/internal/backend"
	"github.com/mmynk/tillpoint/internal/billno"
	"github.com/mmynk/tillpoint/internal/cart"
	"github.com/mmynk/tillpoint/internal/hold"
	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/payment"
	"github.com/mmynk/tillpoint/internal/syncer"
)

var (
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrNoSession         = errors.New("no active bill")
	ErrSessionExpired    = errors.New("session expired, please log in again")
	ErrBillInPayment     = errors.New("bill is awaiting payment")
	ErrProductNotFound   = errors.New("product not found")
	ErrLineNotFound      = errors.New("line not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCustomerLocked    = errors.New("customer is locked")
	ErrInvalidBillNumber = errors.New("bill number must be positive")
)

// Backend is everything the terminal needs from the store of record.
type Backend interface {
	syncer.Pusher
	billno.Sequencer
	hold.Store
	payment.Ledger

	Login(ctx context.Context, username, password string) (*backend.LoginResult, error)
	Me(ctx context.Context) (*models.User, error)
	SetToken(token string)
	Products(ctx context.Context) ([]models.Product, error)
	Customers(ctx context.Context) ([]models.Customer, error)
	Lookup(ctx context.Context, code string) (models.Product, bool, error)
	CartByBill(ctx context.Context, billNo int64, locationCode string) ([]models.LineItem, error)
}

// Config identifies the terminal.
type Config struct {
	LocationCode string
	CounterCode  string

	// SyncTimeout bounds each background cart push. Zero uses the syncer default.
	SyncTimeout time.Duration

	// State persists the current bill number. Nil keeps it in memory.
	State billno.StateStore

	// Metrics is optional.
	Metrics *metrics.Terminal
}

// Terminal is the POS terminal's bill lifecycle.
type Terminal struct {
	cfg     Config
	api     Backend
	channel *syncer.Channel
	engine  *cart.Engine
	alloc   *billno.Allocator
	holds   *hold.Flow
	settler *payment.Settler

	mu        sync.Mutex
	user      *models.User
	session   *models.BillSession
	products  []models.Product
	customers []models.Customer
}

// New wires a Terminal against api.
func New(api Backend, cfg Config) *Terminal {
	state := cfg.State
	if state == nil {
		state = &billno.MemoryState{}
	}
	channel := syncer.New(api, syncer.WithTimeout(cfg.SyncTimeout), syncer.WithMetrics(cfg.Metrics))
	engine := cart.New(channel)
	alloc := billno.New(api, state, cfg.Metrics)
	return &Terminal{
		cfg:     cfg,
		api:     api,
		channel: channel,
		engine:  engine,
		alloc:   alloc,
		holds:   hold.New(api, engine, alloc),
		settler: payment.NewSettler(api, engine, alloc),
	}
}

// Login authenticates the operator.
func (t *Terminal) Login(ctx context.Context, username, password string) (*models.User, error) {
	res, err := t.api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.user = &res.User
	slog.Info("Operator logged in", "username", res.User.Code, "role", res.User.Role)
	return &res.User, nil
}

// User returns the logged-in operator, or nil.
func (t *Terminal) User() *models.User {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.user
}

// Start loads the catalog and opens a new bill.
func (t *Terminal) Start(ctx context.Context) error {
	if t.User() == nil {
		return ErrNotLoggedIn
	}
	t.loadCatalog(ctx)

	billNo := t.alloc.Next(ctx, t.cfg.LocationCode, t.cfg.CounterCode)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = models.NewBillSession(billNo, t.cfg.LocationCode, t.cfg.CounterCode)
	return nil
}

// Resume reopens the persisted bill and restores its last synced cart. Without
// a persisted bill it behaves like Start. It reports whether a bill was resumed.
func (t *Terminal) Resume(ctx context.Context) (bool, error) {
	if t.User() == nil {
		return false, ErrNotLoggedIn
	}
	billNo := t.alloc.Current()
	if billNo <= 0 {
		return false, t.Start(ctx)
	}
	t.loadCatalog(ctx)

	lines, err := t.api.CartByBill(ctx, billNo, t.cfg.LocationCode)
	if err != nil {
		slog.Warn("Failed to restore cart, starting empty", "bill_no", billNo, "error", err)
		lines = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s := models.NewBillSession(billNo, t.cfg.LocationCode, t.cfg.CounterCode)
	s.Lines = models.CloneLines(lines)
	t.session = s
	slog.Info("Bill resumed", "bill_no", billNo, "items", len(s.Lines))
	return true, nil
}

// loadCatalog refreshes products and customers. Failures degrade to empty lists.
func (t *Terminal) loadCatalog(ctx context.Context) {
	products, err := t.api.Products(ctx)
	if err != nil {
		slog.Warn("Failed to load products", "error", err)
		products = nil
	}
	customers, err := t.api.Customers(ctx)
	if err != nil {
		slog.Warn("Failed to load customers", "error", err)
		customers = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.products = products
	t.customers = customers
	slog.Info("Catalog loaded", "products", len(products), "customers", len(customers))
}

// CheckSession verifies the token. An unauthorized answer logs the operator
// out and resets the cart.
func (t *Terminal) CheckSession(ctx context.Context) error {
	_, err := t.api.Me(ctx)
	if errors.Is(err, backend.ErrUnauthorized) {
		slog.Warn("Session expired, logging out")
		t.Logout()
		return ErrSessionExpired
	}
	return err
}

// Logout forgets the operator and the active bill. The persisted bill number is
// kept so the next login resumes it.
func (t *Terminal) Logout() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.api.SetToken("")
	t.user = nil
	t.session = nil
	t.products = nil
	t.customers = nil
}

// Close waits for in-flight cart syncs.
func (t *Terminal) Close() {
	t.channel.Wait()
}

// Bill returns a copy of the active bill.
func (t *Terminal) Bill() (models.BillSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return models.BillSession{}, ErrNoSession
	}
	s := *t.session
	s.Lines = models.CloneLines(t.session.Lines)
	return s, nil
}

// Products returns the loaded catalog.
func (t *Terminal) Products() []models.Product {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Product(nil), t.products...)
}

// Customers returns the loaded customer list.
func (t *Terminal) Customers() []models.Customer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Customer(nil), t.customers...)
}

// active returns the session if it exists. Callers hold t.mu.
func (t *Terminal) active() (*models.BillSession, error) {
	if t.session == nil {
		return nil, ErrNoSession
	}
	return t.session, nil
}

// editable returns the session if its cart may be edited. Callers hold t.mu.
func (t *Terminal) editable() (*models.BillSession, error) {
	s, err := t.active()
	if err != nil {
		return nil, err
	}
	if s.Status == models.StatusAwaitingPayment {
		return nil, ErrBillInPayment
	}
	return s, nil
}
