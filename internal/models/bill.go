package models

// BillStatus is the lifecycle state of a bill.
type BillStatus string

const (
	StatusDraft           BillStatus = "draft"
	StatusAwaitingPayment BillStatus = "awaiting_payment"
	StatusHeld            BillStatus = "held"
	StatusPaid            BillStatus = "paid"
)

// BillSession is the aggregate the terminal edits: one bill number and its cart.
// A session is owned by exactly one terminal. Retrieving a different bill
// replaces the session rather than mutating it.
type BillSession struct {
	// BillNo is the positive bill number allocated for this bill.
	BillNo int64

	// LocationCode and CounterCode scope the bill-number sequence.
	LocationCode string
	CounterCode  string

	// CustomerCode is set when a customer is attached; Customer carries the
	// full record when the terminal could resolve it.
	CustomerCode string
	Customer     *Customer

	// Lines are ordered by insertion.
	Lines []LineItem

	// Selected is the id of the line the operator highlighted, or "".
	Selected string

	Status BillStatus
}

// NewBillSession creates an empty draft session for billNo.
func NewBillSession(billNo int64, locationCode, counterCode string) *BillSession {
	return &BillSession{
		BillNo:       billNo,
		LocationCode: locationCode,
		CounterCode:  counterCode,
		Lines:        []LineItem{},
		Status:       StatusDraft,
	}
}

// Find returns the index of the line with the given canonical id, or -1.
func (s *BillSession) Find(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.Lines {
		if s.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the session has no lines.
func (s *BillSession) IsEmpty() bool {
	return len(s.Lines) == 0
}

// SetCustomer attaches c, or detaches the customer when c is nil.
func (s *BillSession) SetCustomer(c *Customer) {
	s.Customer = c
	if c == nil {
		s.CustomerCode = ""
		return
	}
	s.CustomerCode = c.Code
}

// CartSnapshot is the full line list of one bill, as pushed to the backend.
type CartSnapshot struct {
	BillNo       int64      `json:"billNo"`
	LocationCode string     `json:"locationCode"`
	SessionID    string     `json:"sessionId,omitempty"`
	Seq          int64      `json:"seq,omitempty"`
	Items        []LineItem `json:"items"`
}

// Snapshot captures the session's current lines.
func (s *BillSession) Snapshot() CartSnapshot {
	return CartSnapshot{
		BillNo:       s.BillNo,
		LocationCode: s.LocationCode,
		Items:        CloneLines(s.Lines),
	}
}
