// Package payment evaluates tenders against a bill and settles it.
package payment

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tillpoint/internal/calculator"
	"github.com/mmynk/tillpoint/internal/models"
)

// Tender is what the operator entered on the payment screen.
type Tender struct {
	Method models.PaymentMethod

	// AmountTendered is the raw cash amount; only read for cash.
	// Text that is not a number counts as zero.
	AmountTendered string

	// PointsUsed is only read for loyalty and points payments.
	PointsUsed int64
}

// Quote is the evaluated state of a tender against a bill.
type Quote struct {
	calculator.Totals

	Method      models.PaymentMethod
	Tendered    decimal.Decimal
	Change      decimal.Decimal
	PointsUsed  int64
	CanComplete bool

	// Reason explains why CanComplete is false.
	Reason string
}

// ParseAmount reads a tendered amount; blanks, garbage and negatives are zero.
func ParseAmount(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Evaluate computes the bill totals and whether tender settles them.
func Evaluate(s *models.BillSession, t Tender) Quote {
	q := Quote{
		Totals: calculator.Compute(s.Lines),
		Method: t.Method,
		Change: decimal.Zero,
	}

	switch t.Method {
	case models.MethodCash:
		q.Tendered = ParseAmount(t.AmountTendered)
		q.Change = calculator.Change(q.Tendered, q.Total)
		q.CanComplete = q.Tendered.GreaterThanOrEqual(q.Total)
		if !q.CanComplete {
			q.Reason = "amount tendered is less than the total"
		}
	case models.MethodCard:
		q.Tendered = q.Total
		q.CanComplete = true
	case models.MethodLoyalty, models.MethodPoints:
		q.Tendered = q.Total
		q.PointsUsed = t.PointsUsed
		var available int64
		if s.Customer != nil {
			available = s.Customer.LoyaltyPoints
		}
		switch {
		case s.Customer == nil:
			q.Reason = "select a customer to pay with points"
		case t.PointsUsed <= 0:
			q.Reason = "points used must be positive"
		case t.PointsUsed > available:
			q.Reason = "customer does not have enough points"
		default:
			q.CanComplete = true
		}
	default:
		q.Reason = "unknown payment method"
	}
	return q
}
