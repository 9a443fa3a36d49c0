package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "tillpoint-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func lines(ids ...string) []models.LineItem {
	out := make([]models.LineItem, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.LineItem{ID: id, Name: "item " + id, Price: decimal.NewFromFloat(1.25), Quantity: int64(i + 1)})
	}
	return out
}

func TestCatalog(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := storage.SeedCatalog(ctx, store); err != nil {
		t.Fatalf("SeedCatalog failed: %v", err)
	}
	// Seeding twice must not duplicate anything.
	if err := storage.SeedCatalog(ctx, store); err != nil {
		t.Fatalf("second SeedCatalog failed: %v", err)
	}

	products, err := store.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(products) != len(storage.DemoProducts()) {
		t.Errorf("Expected %d products, got %d", len(storage.DemoProducts()), len(products))
	}

	tests := []struct {
		code string
		want string
	}{
		{code: "1001", want: "1001"},
		{code: "8901000100028", want: "1002"},
		{code: "MUG-W", want: "1003"},
		{code: "MUG", want: "1003"},
		{code: " MILK ", want: "1005"},
	}
	for _, tt := range tests {
		t.Run("FindProduct "+tt.code, func(t *testing.T) {
			p, err := store.FindProduct(ctx, tt.code)
			if err != nil {
				t.Fatalf("FindProduct failed: %v", err)
			}
			if p.ID != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, p.ID)
			}
		})
	}

	if _, err := store.FindProduct(ctx, "MU"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for partial code, got %v", err)
	}

	p, _ := store.FindProduct(ctx, "1004")
	if !p.Price.Equal(decimal.RequireFromString("2.35")) {
		t.Errorf("Expected price 2.35, got %s", p.Price)
	}

	c, err := store.GetCustomer(ctx, "C003")
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if !c.Locked() {
		t.Error("Expected C003 to be locked")
	}
}

func TestCartSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	save := func(session string, seq int64, items []models.LineItem) bool {
		t.Helper()
		applied, err := store.SaveCartSnapshot(ctx, models.CartSnapshot{
			BillNo: 10, LocationCode: "LOC001", SessionID: session, Seq: seq, Items: items,
		})
		if err != nil {
			t.Fatalf("SaveCartSnapshot failed: %v", err)
		}
		return applied
	}

	if !save("s1", 1, lines("A")) {
		t.Fatal("first snapshot should apply")
	}
	if !save("s1", 3, lines("A", "B", "C")) {
		t.Fatal("newer snapshot should apply")
	}
	if save("s1", 2, lines("A", "B")) {
		t.Error("older snapshot from the same session should be discarded")
	}
	if save("s1", 3, lines("Z")) {
		t.Error("replayed sequence number should be discarded")
	}

	snap, err := store.GetCartSnapshot(ctx, 10, "LOC001")
	if err != nil {
		t.Fatalf("GetCartSnapshot failed: %v", err)
	}
	if len(snap.Items) != 3 || snap.Seq != 3 {
		t.Errorf("Expected seq 3 with 3 items, got seq %d with %d", snap.Seq, len(snap.Items))
	}
	if !snap.Items[0].Price.Equal(decimal.NewFromFloat(1.25)) {
		t.Errorf("Price not preserved: %s", snap.Items[0].Price)
	}

	if !save("s2", 1, lines("X")) {
		t.Error("snapshot from a new session should apply")
	}
	if !save("", 0, nil) {
		t.Error("unsequenced snapshot should apply")
	}

	if _, err := store.GetCartSnapshot(ctx, 99, "LOC001"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHeldBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, no := range []int64{5, 6, 7} {
		err := store.HoldBill(ctx, models.HeldBill{
			BillNo:       no,
			LocationCode: "LOC001",
			CounterCode:  "CNT01",
			CustomerCode: "C001",
			HeldDate:     base.Add(time.Duration(i) * time.Minute),
			Items:        lines("A", "B"),
		})
		if err != nil {
			t.Fatalf("HoldBill failed: %v", err)
		}
	}
	store.HoldBill(ctx, models.HeldBill{BillNo: 8, LocationCode: "LOC002", Items: lines("A")})

	list, err := store.ListHeldBills(ctx, "LOC001")
	if err != nil {
		t.Fatalf("ListHeldBills failed: %v", err)
	}
	if len(list) != 3 || list[0].BillNo != 7 || list[2].BillNo != 5 {
		t.Fatalf("Expected bills 7,6,5, got %+v", list)
	}
	if !list[0].HeldDate.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Held date not preserved: %v", list[0].HeldDate)
	}

	held, err := store.GetHeldBill(ctx, 5, "LOC001")
	if err != nil {
		t.Fatalf("GetHeldBill failed: %v", err)
	}
	if len(held.Items) != 2 || held.Items[1].Quantity != 2 || held.CustomerCode != "C001" {
		t.Errorf("Unexpected held bill: %+v", held)
	}

	if _, err := store.GetHeldBill(ctx, 5, "LOC002"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other location, got %v", err)
	}

	if err := store.DeleteHeldBill(ctx, 5, "LOC001"); err != nil {
		t.Fatalf("DeleteHeldBill failed: %v", err)
	}
	if err := store.DeleteHeldBill(ctx, 5, "LOC001"); err != nil {
		t.Errorf("Deleting a missing bill should not fail: %v", err)
	}
	list, _ = store.ListHeldBills(ctx, "LOC001")
	if len(list) != 2 {
		t.Errorf("Expected 2 held bills after delete, got %d", len(list))
	}
}

func TestBillNumbers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	last, err := store.LastBillNo(ctx)
	if err != nil || last != 0 {
		t.Fatalf("Expected empty sequence, got %d, %v", last, err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := store.NextBillNo(ctx, storage.BillNoAllocation{Flag: "n", CounterCode: "CNT01"})
		if err != nil {
			t.Fatalf("NextBillNo failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected bill %d, got %d", want, got)
		}
	}

	if err := store.MarkBillPaid(ctx, 2); err != nil {
		t.Errorf("MarkBillPaid failed: %v", err)
	}
	if err := store.MarkBillPaid(ctx, 42); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := storage.SeedCatalog(ctx, store); err != nil {
		t.Fatalf("SeedCatalog failed: %v", err)
	}

	st := &models.BillSettlement{
		BillNo:       3,
		LocationCode: "LOC001",
		CounterCode:  "CNT01",
		CustomerCode: "C002",
		Method:       models.MethodPoints,
		PointsUsed:   30,
		Subtotal:     decimal.RequireFromString("20"),
		Tax:          decimal.RequireFromString("2"),
		Total:        decimal.RequireFromString("22"),
		Tendered:     decimal.RequireFromString("22"),
		Change:       decimal.Zero,
		Items: []models.BillDetailLine{
			{ItemCode: "1001", Quantity: 2, Rate: decimal.RequireFromString("10")},
		},
	}
	if err := store.InsertSettlement(ctx, st); err != nil {
		t.Fatalf("InsertSettlement failed: %v", err)
	}
	if st.ID == "" || st.CreatedAt == 0 {
		t.Error("Expected ID and CreatedAt to be set")
	}

	c, _ := store.GetCustomer(ctx, "C002")
	if c.LoyaltyPoints != 10 {
		t.Errorf("Expected 10 points left, got %d", c.LoyaltyPoints)
	}

	got, err := store.GetSettlement(ctx, 3, "LOC001")
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if got.Method != models.MethodPoints || !got.Total.Equal(st.Total) || len(got.Items) != 1 {
		t.Errorf("Unexpected settlement: %+v", got)
	}

	t.Run("duplicate bill conflicts", func(t *testing.T) {
		dup := *st
		dup.ID = ""
		dup.PointsUsed = 0
		if err := store.InsertSettlement(ctx, &dup); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("insufficient points rolls back", func(t *testing.T) {
		over := *st
		over.ID = ""
		over.BillNo = 4
		over.PointsUsed = 11
		if err := store.InsertSettlement(ctx, &over); !errors.Is(err, storage.ErrInsufficientPoints) {
			t.Fatalf("Expected ErrInsufficientPoints, got %v", err)
		}
		if _, err := store.GetSettlement(ctx, 4, "LOC001"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Settlement should have been rolled back, got %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := models.NewUser("Cashier1", "Cashier One", models.RoleCashier, "hash")
	if err := store.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := store.GetUserByCode(ctx, "CASHIER1")
	if err != nil {
		t.Fatalf("GetUserByCode failed: %v", err)
	}
	if got.ID != u.ID || got.Role != models.RoleCashier {
		t.Errorf("Unexpected user: %+v", got)
	}

	if err := store.CreateUser(ctx, models.NewUser("cashier1", "Dup", models.RoleCashier, "hash")); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if _, err := store.GetUserByID(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
