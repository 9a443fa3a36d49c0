package server

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mmynk/tillpoint/internal/models"
)

// The catalog endpoints keep the upper-case column names of the legacy
// store so older terminals keep working.

func productRecord(p models.Product) map[string]any {
	return map[string]any{
		"ITEMCODE":      p.ID,
		"ITEMNAME":      p.Name,
		"RETAILPRICE":   json.Number(p.Price.String()),
		"CATEGORYCODE":  p.Category,
		"LOCATIONCODE":  p.LocationCode,
		"MANUFACTUREID": p.ManufacturerID,
		"ALTCODES":      strings.Join(p.AlternateCodes, ","),
		"BASEUOM":       p.UOM,
	}
}

func customerRecord(c models.Customer) map[string]any {
	return map[string]any{
		"CUSTOMERCODE":   c.Code,
		"CUSTOMERNAME":   c.Name,
		"CUST_FULL_NAME": c.FullName,
		"CATEGORYNAME":   c.Category,
		"LOCATIONCODE":   c.LocationCode,
		"LOCKFLAG":       c.LockFlag,
		"POINTS":         c.LoyaltyPoints,
	}
}

func heldRecord(b models.HeldBill) map[string]any {
	return map[string]any{
		"BILLNO":       b.BillNo,
		"LOCATIONCODE": b.LocationCode,
		"COUNTERCODE":  b.CounterCode,
		"CUSTOMERCODE": b.CustomerCode,
		"HELDDATE":     b.HeldDate.UTC().Format(time.RFC3339Nano),
	}
}
