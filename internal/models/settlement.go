package models

import "github.com/shopspring/decimal"

// PaymentMethod is how a bill is settled.
type PaymentMethod string

const (
	MethodCash    PaymentMethod = "cash"
	MethodCard    PaymentMethod = "card"
	MethodLoyalty PaymentMethod = "loyalty"
	MethodPoints  PaymentMethod = "points"
)

// Valid reports whether m is a known method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodLoyalty, MethodPoints:
		return true
	}
	return false
}

// UsesPoints reports whether the method redeems loyalty points.
func (m PaymentMethod) UsesPoints() bool {
	return m == MethodLoyalty || m == MethodPoints
}

// BillDetailLine is one finalized, non-void line of a paid bill.
type BillDetailLine struct {
	ItemCode string          `json:"itemCode"`
	Quantity int64           `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

// BillSettlement is the finalized record of a paid bill.
type BillSettlement struct {
	ID           string           `json:"id,omitempty"`
	BillNo       int64            `json:"billNo"`
	LocationCode string           `json:"locationCode"`
	CounterCode  string           `json:"counterCode"`
	CustomerCode string           `json:"customerCode,omitempty"`
	Method       PaymentMethod    `json:"method"`
	PointsUsed   int64            `json:"pointsUsed,omitempty"`
	Subtotal     decimal.Decimal  `json:"subtotal"`
	Tax          decimal.Decimal  `json:"tax"`
	Total        decimal.Decimal  `json:"total"`
	Tendered     decimal.Decimal  `json:"tendered"`
	Change       decimal.Decimal  `json:"change"`
	Items        []BillDetailLine `json:"items"`
	CreatedAt    int64            `json:"createdAt,omitempty"`
}
