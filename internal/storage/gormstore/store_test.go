package gormstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "postgres://pos:pw@db:5432/pos", want: "postgres://pos:pw@db:5432/pos"},
		{in: "  'host=db   user=pos dbname=pos'  ", want: "host=db user=pos dbname=pos sslmode=disable"},
		{in: "host=db user=pos sslmode=require", want: "host=db user=pos sslmode=require"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := NormalizeDSN(tt.in); got != tt.want {
			t.Errorf("NormalizeDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := storage.SeedCatalog(ctx, s); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := s.FindProduct(ctx, "MUG")
	if err != nil || p.ID != "1003" {
		t.Fatalf("FindProduct(MUG) = %+v, %v", p, err)
	}
	p, err = s.FindProduct(ctx, "8901000100011")
	if err != nil || p.ID != "1001" || !p.Price.Equal(decimal.RequireFromString("10")) {
		t.Fatalf("FindProduct(barcode) = %+v, %v", p, err)
	}
	if _, err := s.FindProduct(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing product: %v", err)
	}

	customers, err := s.ListCustomers(ctx)
	if err != nil || len(customers) != 3 {
		t.Fatalf("ListCustomers = %d, %v", len(customers), err)
	}
	if c, _ := s.GetCustomer(ctx, "C003"); !c.Locked() {
		t.Error("C003 should be locked")
	}
}

func TestCartSnapshotGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	save := func(session string, seq int64, n int) bool {
		t.Helper()
		items := make([]models.LineItem, n)
		for i := range items {
			items[i] = models.LineItem{ID: string(rune('A' + i)), Quantity: 1, Price: decimal.NewFromInt(1)}
		}
		applied, err := s.SaveCartSnapshot(ctx, models.CartSnapshot{BillNo: 1, LocationCode: "LOC001", SessionID: session, Seq: seq, Items: items})
		if err != nil {
			t.Fatalf("SaveCartSnapshot: %v", err)
		}
		return applied
	}

	if !save("s1", 2, 2) {
		t.Error("first write should apply")
	}
	if save("s1", 1, 1) {
		t.Error("stale write should be discarded")
	}
	if !save("s1", 5, 3) {
		t.Error("newer write should apply")
	}
	if !save("s2", 1, 4) {
		t.Error("write from another session should apply")
	}

	snap, err := s.GetCartSnapshot(ctx, 1, "LOC001")
	if err != nil || len(snap.Items) != 4 || snap.SessionID != "s2" {
		t.Errorf("snapshot = %+v, %v", snap, err)
	}
}

func TestCartSnapshotConcurrentFirstPushes(t *testing.T) {
	s := newTestStore(t)
	sqlDB, err := s.db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	ctx := context.Background()

	const pushes = 20
	var wg sync.WaitGroup
	errs := make(chan error, pushes)
	for seq := int64(pushes); seq >= 1; seq-- {
		wg.Add(1)
		go func(seq int64) {
			defer wg.Done()
			items := make([]models.LineItem, seq)
			for i := range items {
				items[i] = models.LineItem{ID: string(rune('A' + i)), Quantity: 1, Price: decimal.NewFromInt(1)}
			}
			_, err := s.SaveCartSnapshot(ctx, models.CartSnapshot{BillNo: 7, LocationCode: "LOC001", SessionID: "s1", Seq: seq, Items: items})
			errs <- err
		}(seq)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("SaveCartSnapshot: %v", err)
		}
	}

	snap, err := s.GetCartSnapshot(ctx, 7, "LOC001")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Seq != pushes || len(snap.Items) != pushes {
		t.Errorf("stored seq %d with %d items, want %d", snap.Seq, len(snap.Items), pushes)
	}
}

func TestHeldBills(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	for i, no := range []int64{3, 4} {
		err := s.HoldBill(ctx, models.HeldBill{
			BillNo:       no,
			LocationCode: "LOC001",
			HeldDate:     now.Add(time.Duration(i) * time.Second),
			Items:        []models.LineItem{{ID: "1001", Quantity: 2, Price: decimal.NewFromInt(10)}},
		})
		if err != nil {
			t.Fatalf("HoldBill: %v", err)
		}
	}

	list, err := s.ListHeldBills(ctx, "LOC001")
	if err != nil || len(list) != 2 || list[0].BillNo != 4 {
		t.Fatalf("ListHeldBills = %+v, %v", list, err)
	}

	b, err := s.GetHeldBill(ctx, 3, "LOC001")
	if err != nil || len(b.Items) != 1 || b.Items[0].Quantity != 2 || !b.HeldDate.Equal(now) {
		t.Fatalf("GetHeldBill = %+v, %v", b, err)
	}

	if err := s.DeleteHeldBill(ctx, 3, "LOC001"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetHeldBill(ctx, 3, "LOC001"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted bill: %v", err)
	}
}

func TestBillNumbersAndSettlement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	storage.SeedCatalog(ctx, s)

	for want := int64(1); want <= 2; want++ {
		got, err := s.NextBillNo(ctx, storage.BillNoAllocation{Flag: "n", CounterCode: "CNT01"})
		if err != nil || got != want {
			t.Fatalf("NextBillNo = %d, %v; want %d", got, err, want)
		}
	}
	if last, _ := s.LastBillNo(ctx); last != 2 {
		t.Errorf("LastBillNo = %d", last)
	}
	if err := s.MarkBillPaid(ctx, 1); err != nil {
		t.Errorf("MarkBillPaid: %v", err)
	}
	if err := s.MarkBillPaid(ctx, 9); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("MarkBillPaid missing: %v", err)
	}

	st := &models.BillSettlement{
		BillNo:       1,
		LocationCode: "LOC001",
		CustomerCode: "C001",
		Method:       models.MethodLoyalty,
		PointsUsed:   100,
		Subtotal:     decimal.RequireFromString("18.5"),
		Tax:          decimal.RequireFromString("1.85"),
		Total:        decimal.RequireFromString("20.35"),
		Tendered:     decimal.RequireFromString("20.35"),
		Items:        []models.BillDetailLine{{ItemCode: "1002", Quantity: 1, Rate: decimal.RequireFromString("18.5")}},
	}
	if err := s.InsertSettlement(ctx, st); err != nil {
		t.Fatalf("InsertSettlement: %v", err)
	}
	got, err := s.GetSettlement(ctx, 1, "LOC001")
	if err != nil || len(got.Items) != 1 || !got.Total.Equal(st.Total) {
		t.Fatalf("GetSettlement = %+v, %v", got, err)
	}
	if c, _ := s.GetCustomer(ctx, "C001"); c.LoyaltyPoints != 400 {
		t.Errorf("points = %d, want 400", c.LoyaltyPoints)
	}

	over := &models.BillSettlement{BillNo: 2, LocationCode: "LOC001", CustomerCode: "C002", Method: models.MethodPoints, PointsUsed: 41}
	if err := s.InsertSettlement(ctx, over); !errors.Is(err, storage.ErrInsufficientPoints) {
		t.Errorf("over-redeem: %v", err)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := models.NewUser("Manager", "Store Manager", models.RoleManager, "hash")
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUserByCode(ctx, "MANAGER")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByCode = %+v, %v", got, err)
	}
	if err := s.CreateUser(ctx, models.NewUser("manager", "x", models.RoleCashier, "h")); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate: %v", err)
	}
}
