package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmynk/tillpoint/internal/identity"
	"github.com/mmynk/tillpoint/internal/models"
)

// SyncCart pushes a full cart snapshot. applied is false when the backend
// already holds a newer snapshot of the same bill.
func (c *Client) SyncCart(ctx context.Context, snapshot models.CartSnapshot) (bool, error) {
	var res struct {
		OK      bool `json:"ok"`
		Applied bool `json:"applied"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/cart/sync", nil, snapshot, &res); err != nil {
		return false, err
	}
	return res.Applied, nil
}

// CartByBill returns the last synced lines of a bill.
func (c *Client) CartByBill(ctx context.Context, billNo int64, locationCode string) ([]models.LineItem, error) {
	var rec identity.Record
	q := billQuery(billNo, locationCode)
	if err := c.do(ctx, http.MethodGet, "/api/cart/by-bill", q, nil, &rec); err != nil {
		return nil, err
	}
	return identity.LineItems(identity.Records(rec["items"])), nil
}

// HoldBill parks a bill in the held-bill store.
func (c *Client) HoldBill(ctx context.Context, bill models.HeldBill) error {
	return c.do(ctx, http.MethodPost, "/api/hold", nil, bill, nil)
}

// HeldBills lists the held bills of a location. Entries carry no items.
func (c *Client) HeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error) {
	var recs []identity.Record
	q := url.Values{"locationCode": {locationCode}}
	if err := c.do(ctx, http.MethodGet, "/api/hold", q, nil, &recs); err != nil {
		return nil, err
	}
	out := make([]models.HeldBill, 0, len(recs))
	for _, rec := range recs {
		if b := identity.HeldBillFromRecord(rec); b.BillNo > 0 {
			out = append(out, b)
		}
	}
	return out, nil
}

// HeldBill fetches one held bill with its items.
func (c *Client) HeldBill(ctx context.Context, billNo int64, locationCode string) (models.HeldBill, error) {
	var rec identity.Record
	q := url.Values{"locationCode": {locationCode}}
	if err := c.do(ctx, http.MethodGet, heldPath(billNo), q, nil, &rec); err != nil {
		return models.HeldBill{}, err
	}
	b := identity.HeldBillFromRecord(rec)
	if b.BillNo == 0 {
		b.BillNo = billNo
	}
	if b.LocationCode == "" {
		b.LocationCode = locationCode
	}
	return b, nil
}

// DeleteHeldBill removes a held bill.
func (c *Client) DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error {
	q := url.Values{"locationCode": {locationCode}}
	return c.do(ctx, http.MethodDelete, heldPath(billNo), q, nil, nil)
}

// NextBillNo asks the backend sequence for a new bill number.
func (c *Client) NextBillNo(ctx context.Context, locationCode, counterCode string) (int64, error) {
	var rec identity.Record
	in := map[string]string{"flag": "n", "counterCode": counterCode, "locationCode": locationCode}
	if err := c.do(ctx, http.MethodPost, "/api/billno/next", nil, in, &rec); err != nil {
		return 0, err
	}
	n := identity.Int(rec["billNo"], 0)
	if n <= 0 {
		return 0, fmt.Errorf("billno/next returned no bill number")
	}
	return n, nil
}

// CheckBillNo reports the last issued and the next bill number without
// allocating.
func (c *Client) CheckBillNo(ctx context.Context) (last, next int64, err error) {
	var rec identity.Record
	if err := c.do(ctx, http.MethodGet, "/api/billno/check", nil, nil, &rec); err != nil {
		return 0, 0, err
	}
	return identity.Int(rec["lastBillNo"], 0), identity.Int(rec["nextBillNo"], 0), nil
}

// MarkBillPaid flags a bill number as settled.
func (c *Client) MarkBillPaid(ctx context.Context, billNo int64) error {
	in := map[string]int64{"billNo": billNo}
	return c.do(ctx, http.MethodPost, "/api/billno/paid", nil, in, nil)
}

// InsertBillDetail records a settled bill.
func (c *Client) InsertBillDetail(ctx context.Context, settlement models.BillSettlement) error {
	return c.do(ctx, http.MethodPost, "/api/billdtl/insert", nil, settlement, nil)
}

func billQuery(billNo int64, locationCode string) url.Values {
	return url.Values{
		"billNo":       {strconv.FormatInt(billNo, 10)},
		"locationCode": {locationCode},
	}
}

func heldPath(billNo int64) string {
	return "/api/hold/" + strconv.FormatInt(billNo, 10)
}
