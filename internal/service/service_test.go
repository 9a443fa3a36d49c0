package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/metrics"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
	"github.com/mmynk/tillpoint/internal/storage/sqlite"
)

func setupStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "pos.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := storage.SeedCatalog(context.Background(), store); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	svc := NewAuthService(auth.NewPasswordAuthenticator(store), auth.NewJWTManager("k", time.Hour), store, discardLogger())

	if err := svc.SeedOperators(ctx, "demo123"); err != nil {
		t.Fatalf("SeedOperators: %v", err)
	}
	if err := svc.SeedOperators(ctx, "demo123"); err != nil {
		t.Fatalf("second SeedOperators: %v", err)
	}

	res, err := svc.Login(ctx, "cashier", "demo123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.User.Role != models.RoleCashier {
		t.Errorf("login result = %+v", res)
	}

	me, err := svc.Me(ctx, res.User.ID)
	if err != nil || me.Code != "cashier" {
		t.Errorf("Me = %+v, %v", me, err)
	}

	if _, err := svc.Login(ctx, "cashier", "nope"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, "", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty login: %v", err)
	}
}

func TestCatalogLookup(t *testing.T) {
	ctx := context.Background()
	svc := NewCatalogService(setupStore(t), discardLogger())

	tests := []struct {
		code   string
		wantID string
		err    error
	}{
		{"1001", "1001", nil},
		{"8901000100042", "1004", nil},
		{" MUG-W ", "1003", nil},
		{"9999", "", storage.ErrNotFound},
		{"  ", "", ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			p, err := svc.Lookup(ctx, tt.code)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("err = %v, want %v", err, tt.err)
				}
				return
			}
			if err != nil || p.ID != tt.wantID {
				t.Errorf("Lookup = %+v, %v", p, err)
			}
		})
	}

	customers, err := svc.Customers(ctx)
	if err != nil || len(customers) != 3 {
		t.Errorf("Customers = %d, %v", len(customers), err)
	}
}

func TestCartSync(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewServer(prometheus.NewRegistry())
	svc := NewCartService(setupStore(t), m, discardLogger())

	line := models.LineItem{ID: "1001", Name: "Green Tea 100g", Price: decimal.RequireFromString("10"), Quantity: 1}
	snap := func(seq, qty int64) models.CartSnapshot {
		l := line
		l.Quantity = qty
		return models.CartSnapshot{BillNo: 42, LocationCode: "LOC001", SessionID: "s1", Seq: seq, Items: []models.LineItem{l}}
	}

	if applied, err := svc.SyncCart(ctx, snap(2, 2)); err != nil || !applied {
		t.Fatalf("first sync = %v, %v", applied, err)
	}
	if applied, err := svc.SyncCart(ctx, snap(1, 1)); err != nil || applied {
		t.Fatalf("stale sync = %v, %v", applied, err)
	}
	if got := testutil.ToFloat64(m.StaleSnapshots); got != 1 {
		t.Errorf("stale counter = %v", got)
	}

	got, err := svc.CartByBill(ctx, 42, "LOC001")
	if err != nil || len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Errorf("CartByBill = %+v, %v", got, err)
	}

	empty, err := svc.CartByBill(ctx, 43, "LOC001")
	if err != nil || empty.Items == nil || len(empty.Items) != 0 {
		t.Errorf("unsynced bill = %+v, %v", empty, err)
	}

	if _, err := svc.SyncCart(ctx, models.CartSnapshot{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing billNo: %v", err)
	}
}

func TestHoldLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(setupStore(t), nil, discardLogger())
	items := []models.LineItem{{ID: "1003", Name: "Ceramic Mug", Price: decimal.RequireFromString("5"), Quantity: 3}}

	if err := svc.HoldBill(ctx, models.HeldBill{BillNo: 7, LocationCode: "LOC001"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty items: %v", err)
	}
	if err := svc.HoldBill(ctx, models.HeldBill{LocationCode: "LOC001", Items: items}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing bill no: %v", err)
	}

	older := time.Now().Add(-time.Hour)
	if err := svc.HoldBill(ctx, models.HeldBill{BillNo: 7, LocationCode: "LOC001", HeldDate: older, Items: items}); err != nil {
		t.Fatal(err)
	}
	if err := svc.HoldBill(ctx, models.HeldBill{BillNo: 8, LocationCode: "LOC001", CustomerCode: "C001", Items: items}); err != nil {
		t.Fatal(err)
	}

	list, err := svc.HeldBills(ctx, "LOC001")
	if err != nil || len(list) != 2 || list[0].BillNo != 8 {
		t.Fatalf("HeldBills = %+v, %v", list, err)
	}

	held, err := svc.HeldBill(ctx, 7, "LOC001")
	if err != nil || len(held.Items) != 1 || held.Items[0].Quantity != 3 {
		t.Fatalf("HeldBill = %+v, %v", held, err)
	}

	if err := svc.DeleteHeldBill(ctx, 7, "LOC001"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.HeldBill(ctx, 7, "LOC001"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("after delete: %v", err)
	}
}

func TestBillingService(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)
	m := metrics.NewServer(prometheus.NewRegistry())
	svc := NewBillingService(store, m, discardLogger())

	first, err := svc.NextBillNo(ctx, "N", "CNT01", "LOC001")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.NextBillNo(ctx, "whatever", "CNT02", "LOC001")
	if err != nil || second != first+1 {
		t.Fatalf("second = %d, %v", second, err)
	}
	last, next, err := svc.CheckBillNo(ctx)
	if err != nil || last != second || next != second+1 {
		t.Errorf("CheckBillNo = %d %d %v", last, next, err)
	}

	if err := svc.MarkBillPaid(ctx, first); err != nil {
		t.Errorf("MarkBillPaid: %v", err)
	}
	if err := svc.MarkBillPaid(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown bill: %v", err)
	}

	st := &models.BillSettlement{
		BillNo: first, LocationCode: "LOC001", CounterCode: "CNT01", CustomerCode: "C001",
		Method: models.MethodPoints, PointsUsed: 100,
		Subtotal: decimal.RequireFromString("10"), Tax: decimal.RequireFromString("1"), Total: decimal.RequireFromString("11"),
		Items: []models.BillDetailLine{{ItemCode: "1001", Quantity: 1, Rate: decimal.RequireFromString("10")}},
	}
	if err := svc.InsertBillDetail(ctx, st); err != nil {
		t.Fatalf("InsertBillDetail: %v", err)
	}
	c, err := store.GetCustomer(ctx, "C001")
	if err != nil || c.LoyaltyPoints != 400 {
		t.Errorf("points after redeem = %+v, %v", c, err)
	}
	if got := testutil.ToFloat64(m.Settlements.WithLabelValues("points")); got != 1 {
		t.Errorf("settlements counter = %v", got)
	}
	if _, err := svc.Settlement(ctx, first, "LOC001"); err != nil {
		t.Errorf("Settlement: %v", err)
	}

	bad := []struct {
		name string
		st   models.BillSettlement
	}{
		{"no bill", models.BillSettlement{Method: models.MethodCash}},
		{"bad method", models.BillSettlement{BillNo: 5, Method: "cheque"}},
		{"points without customer", models.BillSettlement{BillNo: 5, Method: models.MethodPoints, PointsUsed: 5}},
		{"bad line", models.BillSettlement{BillNo: 5, Method: models.MethodCash, Items: []models.BillDetailLine{{ItemCode: "1001"}}}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			st := tt.st
			if err := svc.InsertBillDetail(ctx, &st); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v", err)
			}
		})
	}

	over := *st
	over.ID = ""
	over.BillNo = second
	over.PointsUsed = 10000
	if err := svc.InsertBillDetail(ctx, &over); !errors.Is(err, storage.ErrInsufficientPoints) {
		t.Errorf("over-redeem: %v", err)
	}
}

func TestNormalizeFlag(t *testing.T) {
	for in, want := range map[string]string{"": "n", "N": "n", " y ": "y", "Y": "y", "x": "n"} {
		if got := NormalizeFlag(in); got != want {
			t.Errorf("NormalizeFlag(%q) = %q, want %q", in, got, want)
		}
	}
}
