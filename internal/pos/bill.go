package pos

import (
	"context"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/payment"
)

// Hold parks the active bill and opens the next one. It returns the held
// bill number.
func (t *Terminal) Hold(ctx context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.active()
	if err != nil {
		return 0, err
	}
	return t.holds.Hold(ctx, s)
}

// HeldBills lists the bills held at this location, newest first.
func (t *Terminal) HeldBills(ctx context.Context) ([]models.HeldBill, error) {
	return t.holds.List(ctx, t.cfg.LocationCode)
}

// Retrieve replaces the active bill with a held one. The held customer is
// re-attached when it is in the loaded list.
func (t *Terminal) Retrieve(ctx context.Context, billNo int64) error {
	if billNo <= 0 {
		return ErrInvalidBillNumber
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	next, err := t.holds.Retrieve(ctx, s, billNo)
	if err != nil {
		return err
	}
	if next.CustomerCode != "" {
		if c := t.findCustomer(next.CustomerCode); c != nil {
			next.Customer = c
		}
	}
	t.session = next
	return nil
}

// Checkout moves the bill to the payment screen.
func (t *Terminal) Checkout() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.active()
	if err != nil {
		return err
	}
	return t.settler.Checkout(s)
}

// BackToCart leaves the payment screen.
func (t *Terminal) BackToCart() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.active()
	if err != nil {
		return err
	}
	return t.settler.Back(s)
}

// Quote evaluates tender against the active bill without settling it.
func (t *Terminal) Quote(tender payment.Tender) (payment.Quote, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.active()
	if err != nil {
		return payment.Quote{}, err
	}
	return payment.Evaluate(s, tender), nil
}

// CompletePayment settles the bill and opens the next one.
func (t *Terminal) CompletePayment(ctx context.Context, tender payment.Tender) (*payment.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.active()
	if err != nil {
		return nil, err
	}
	receipt, err := t.settler.Complete(ctx, s, tender)
	if err != nil {
		return nil, err
	}
	if tender.Method.UsesPoints() && receipt.CustomerCode != "" {
		t.deductPoints(receipt.CustomerCode, receipt.PointsUsed)
	}
	return receipt, nil
}

// deductPoints mirrors the backend's loyalty deduction in the loaded list.
// Callers hold t.mu.
func (t *Terminal) deductPoints(code string, points int64) {
	for i := range t.customers {
		if t.customers[i].Code == code {
			t.customers[i].LoyaltyPoints -= points
			if t.customers[i].LoyaltyPoints < 0 {
				t.customers[i].LoyaltyPoints = 0
			}
			return
		}
	}
}
