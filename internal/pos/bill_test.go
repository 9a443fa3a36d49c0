package pos

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/tillpoint/internal/models"
)

func startMemTerminal(t *testing.T, api Backend) *Terminal {
	t.Helper()
	term := New(api, Config{LocationCode: "LOC001", CounterCode: "CNT01"})
	t.Cleanup(term.Close)
	ctx := context.Background()
	if _, err := term.Login(ctx, "cashier", "demo123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := term.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return term
}

func TestRetrieveDuringPaymentKeepsBill(t *testing.T) {
	api := newMemBackend()
	term := startMemTerminal(t, api)
	ctx := context.Background()

	if _, err := term.Scan(ctx, "1001"); err != nil {
		t.Fatal(err)
	}
	held, err := term.Hold(ctx)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if _, err := term.Scan(ctx, "1002"); err != nil {
		t.Fatal(err)
	}
	if err := term.Checkout(); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	before := mustBill(t, term)

	if err := term.Retrieve(ctx, held); !errors.Is(err, ErrBillInPayment) {
		t.Fatalf("Retrieve = %v, want ErrBillInPayment", err)
	}
	after := mustBill(t, term)
	if after.BillNo != before.BillNo || after.Status != models.StatusAwaitingPayment {
		t.Errorf("bill after retrieve = %d %s", after.BillNo, after.Status)
	}
	if len(after.Lines) != 1 || after.Lines[0].ID != "1002" {
		t.Errorf("lines after retrieve = %+v", after.Lines)
	}
	if list, _ := term.HeldBills(ctx); len(list) != 1 || list[0].BillNo != held {
		t.Errorf("held list = %+v", list)
	}

	if err := term.BackToCart(); err != nil {
		t.Fatal(err)
	}
	if _, err := term.Hold(ctx); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if err := term.Retrieve(ctx, held); err != nil {
		t.Fatalf("Retrieve from draft: %v", err)
	}
	if got := mustBill(t, term); got.BillNo != held {
		t.Errorf("retrieved bill = %d, want %d", got.BillNo, held)
	}
}

// gatedHold blocks HoldBill until release is closed.
type gatedHold struct {
	*memBackend
	entered chan struct{}
	release chan struct{}
}

func (g *gatedHold) HoldBill(ctx context.Context, bill models.HeldBill) error {
	close(g.entered)
	<-g.release
	return g.memBackend.HoldBill(ctx, bill)
}

func TestEditDuringHoldLandsOnNextBill(t *testing.T) {
	api := &gatedHold{memBackend: newMemBackend(), entered: make(chan struct{}), release: make(chan struct{})}
	term := startMemTerminal(t, api)
	ctx := context.Background()

	if _, err := term.Scan(ctx, "1001"); err != nil {
		t.Fatal(err)
	}

	holdDone := make(chan int64)
	go func() {
		n, err := term.Hold(ctx)
		if err != nil {
			t.Errorf("Hold: %v", err)
		}
		holdDone <- n
	}()
	<-api.entered

	addDone := make(chan error)
	go func() {
		addDone <- term.AddToCart(models.LineItem{ID: "1002", Name: "1002", Quantity: 1})
	}()
	close(api.release)

	held := <-holdDone
	if err := <-addDone; err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	bill := mustBill(t, term)
	if bill.BillNo == held {
		t.Fatalf("bill number did not advance past %d", held)
	}
	if len(bill.Lines) != 1 || bill.Lines[0].ID != "1002" {
		t.Errorf("next bill lines = %+v", bill.Lines)
	}
	stored, err := api.HeldBill(ctx, held, "LOC001")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Items) != 1 || stored.Items[0].ID != "1001" {
		t.Errorf("held items = %+v", stored.Items)
	}
}
