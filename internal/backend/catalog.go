package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/tillpoint/internal/identity"
	"github.com/mmynk/tillpoint/internal/models"
)

// Products loads the catalog. Records without an item code are dropped.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var recs []identity.Record
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		if p := identity.ProductFromRecord(rec); p.ID != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// Customers loads the customer list. Records without a code are dropped.
func (c *Client) Customers(ctx context.Context) ([]models.Customer, error) {
	var recs []identity.Record
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]models.Customer, 0, len(recs))
	for _, rec := range recs {
		if cu := identity.CustomerFromRecord(rec); cu.Code != "" {
			out = append(out, cu)
		}
	}
	return out, nil
}

// Lookup resolves a scanned or typed code. found is false when the backend
// reports a miss or answers without an item code.
func (c *Client) Lookup(ctx context.Context, code string) (p models.Product, found bool, err error) {
	var rec identity.Record
	q := url.Values{"code": {code}}
	if err := c.do(ctx, http.MethodGet, "/api/products/lookup", q, nil, &rec); err != nil {
		return models.Product{}, false, err
	}
	if ok, present := rec["found"].(bool); present && !ok {
		return models.Product{}, false, nil
	}
	p = identity.ProductFromRecord(rec)
	return p, p.ID != "", nil
}
