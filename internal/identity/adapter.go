package identity

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/models"
)

// field returns the first present key of rec as a trimmed string.
func field(rec Record, keys ...string) string {
	return Resolve(rec, keys...)
}

// Decimal parses a JSON number or numeric string; anything else is zero.
func Decimal(v any) decimal.Decimal {
	s := Coerce(v)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Int parses a JSON number or numeric string, truncating fractions; anything
// else is def.
func Int(v any, def int64) int64 {
	s := Coerce(v)
	if s == "" {
		return def
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return def
}

func firstValue(rec Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := Coerce(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ProductFromRecord maps a catalog or lookup record onto a Product.
func ProductFromRecord(rec Record) models.Product {
	return models.Product{
		ID:             ItemID(rec),
		Name:           field(rec, "name", "ITEMNAME", "itemname"),
		Price:          price(rec),
		Category:       field(rec, "category", "CATEGORYCODE", "categorycode"),
		LocationCode:   field(rec, "locationCode", "LOCATIONCODE", "locationcode"),
		ManufacturerID: field(rec, "manufacturerId", "MANUFACTUREID", "manufactureid", "MANUFACTURERID", "manufacturerid"),
		AlternateCodes: stringList(firstValue(rec, "alternateCodes", "ALTCODES", "altcodes")),
		UOM:            field(rec, "uom", "BASEUOM", "baseuom"),
	}
}

// price reads the unit price of rec; negative prices become zero.
func price(rec Record) decimal.Decimal {
	d := Decimal(firstValue(rec, "price", "RETAILPRICE", "retailprice"))
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CustomerFromRecord maps a customer record onto a Customer.
func CustomerFromRecord(rec Record) models.Customer {
	lock := strings.ToUpper(field(rec, "lockFlag", "LOCKFLAG", "lockflag"))
	if lock != "Y" {
		lock = "N"
	}
	points := Int(firstValue(rec, "loyaltyPoints", "POINTS", "points", "LOYALTY_POINTS", "loyalty_points"), 0)
	if points < 0 {
		points = 0
	}
	return models.Customer{
		Code:          CustomerCode(rec),
		Name:          field(rec, "name", "CUSTOMERNAME", "customername"),
		FullName:      field(rec, "fullName", "CUST_FULL_NAME", "cust_full_name"),
		Category:      field(rec, "category", "CATEGORYNAME", "categoryname"),
		LocationCode:  field(rec, "locationCode", "LOCATIONCODE", "locationcode"),
		LockFlag:      lock,
		LoyaltyPoints: points,
	}
}

// LineItemFromRecord maps a cart or held-bill line onto a LineItem.
// Quantities below 1 are raised to 1 because a present line always has one.
func LineItemFromRecord(rec Record) models.LineItem {
	qty := Int(firstValue(rec, "quantity", "qty", "QUANTITY"), 1)
	if qty < 1 {
		qty = 1
	}
	voided := false
	if b, ok := rec["voided"].(bool); ok {
		voided = b
	}
	return models.LineItem{
		ID:             ItemID(rec),
		Name:           field(rec, "name", "ITEMNAME", "itemname"),
		Price:          price(rec),
		Quantity:       qty,
		Voided:         voided,
		Category:       field(rec, "category", "CATEGORYCODE", "categorycode"),
		ManufacturerID: field(rec, "manufacturerId", "MANUFACTUREID", "manufactureid"),
		UOM:            field(rec, "uom", "BASEUOM", "baseuom"),
	}
}

// LineItems maps every record, dropping records without an identity.
func LineItems(recs []Record) []models.LineItem {
	out := make([]models.LineItem, 0, len(recs))
	for _, rec := range recs {
		item := LineItemFromRecord(rec)
		if item.ID == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Matches reports whether a scanned or typed code denotes product p: it
// compares against the item id, the manufacturer code and every alternate code.
func Matches(p models.Product, code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	if p.ID == code || p.ManufacturerID == code {
		return true
	}
	for _, alt := range p.AlternateCodes {
		if alt == code {
			return true
		}
	}
	return false
}

// FindProduct returns the first product in catalog matching code.
func FindProduct(catalog []models.Product, code string) (models.Product, bool) {
	for _, p := range catalog {
		if Matches(p, code) {
			return p, true
		}
	}
	return models.Product{}, false
}

var heldDateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	for _, layout := range heldDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Records converts a decoded JSON array into records, skipping non-objects.
func Records(v any) []Record {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Record, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}

// HeldBillFromRecord maps a held-bill list entry or detail onto a HeldBill.
// Items are only present in the detail form.
func HeldBillFromRecord(rec Record) models.HeldBill {
	return models.HeldBill{
		BillNo:       Int(firstValue(rec, "billNo", "BILLNO", "billno"), 0),
		LocationCode: field(rec, "locationCode", "LOCATIONCODE", "locationcode"),
		CounterCode:  field(rec, "counterCode", "COUNTERCODE", "countercode"),
		CustomerCode: Resolve(rec, "customerCode", "CUSTOMERCODE", "customercode"),
		HeldDate:     parseTime(firstValue(rec, "heldDate", "HELDDATE", "helddate")),
		Items:        LineItems(Records(firstValue(rec, "items", "ITEMS"))),
	}
}
