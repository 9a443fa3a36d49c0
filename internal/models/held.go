package models

import "time"

// HeldBill is a suspended bill parked in the backend.
// It is created on hold and removed once the bill is retrieved.
type HeldBill struct {
	BillNo       int64      `json:"billNo"`
	LocationCode string     `json:"locationCode"`
	CounterCode  string     `json:"counterCode,omitempty"`
	CustomerCode string     `json:"customerCode,omitempty"`
	HeldDate     time.Time  `json:"heldDate"`
	Items        []LineItem `json:"items,omitempty"`
}
