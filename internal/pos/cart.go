package pos

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/tillpoint/internal/identity"
	"github.com/mmynk/tillpoint/internal/models"
)

// AddToCart adds one unit of item to the active bill.
func (t *Terminal) AddToCart(item models.LineItem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	t.engine.Add(s, item)
	return nil
}

// Scan resolves code through the backend, falling back to the loaded catalog
// when the backend misses or is unreachable, and adds the product.
func (t *Terminal) Scan(ctx context.Context, code string) (models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Product{}, ErrProductNotFound
	}

	p, found, err := t.api.Lookup(ctx, code)
	if err != nil {
		slog.Warn("Product lookup failed, using local catalog", "code", code, "error", err)
	}
	if !found {
		var ok bool
		if p, ok = identity.FindProduct(t.Products(), code); !ok {
			return models.Product{}, ErrProductNotFound
		}
	}

	if err := t.AddToCart(p.LineItem()); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// RemoveFromCart deletes a line.
func (t *Terminal) RemoveFromCart(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	t.engine.Remove(s, id)
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (t *Terminal) UpdateQuantity(id string, qty int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	t.engine.SetQuantity(s, id, qty)
	return nil
}

// SelectLine highlights a line for voiding.
func (t *Terminal) SelectLine(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	if !t.engine.Select(s, id) {
		return ErrLineNotFound
	}
	return nil
}

// VoidSelectedLine voids the highlighted line. Without a selection nothing happens.
func (t *Terminal) VoidSelectedLine() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	t.engine.VoidSelected(s)
	return nil
}

// ClearCart empties the active bill.
func (t *Terminal) ClearCart() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	t.engine.Clear(s)
	return nil
}

// SelectCustomer attaches a customer from the loaded list. Locked customers
// are rejected.
func (t *Terminal) SelectCustomer(code string) (*models.Customer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return nil, err
	}
	c := t.findCustomer(code)
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	if c.Locked() {
		return nil, ErrCustomerLocked
	}
	s.SetCustomer(c)
	return c, nil
}

// ClearCustomer detaches the customer.
func (t *Terminal) ClearCustomer() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, err := t.editable()
	if err != nil {
		return err
	}
	s.SetCustomer(nil)
	return nil
}

// findCustomer looks code up in the loaded list. Callers hold t.mu.
func (t *Terminal) findCustomer(code string) *models.Customer {
	for i := range t.customers {
		if identity.Same(t.customers[i].Code, code) {
			c := t.customers[i]
			return &c
		}
	}
	return nil
}
