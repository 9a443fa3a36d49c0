package models

import "strings"

// Customer is a loyalty customer after ingestion.
type Customer struct {
	Code         string `json:"code"`
	Name         string `json:"name,omitempty"`
	FullName     string `json:"fullName,omitempty"`
	Category     string `json:"category,omitempty"`
	LocationCode string `json:"locationCode,omitempty"`

	// LockFlag is "Y" for customers that must not be attached to a bill.
	LockFlag string `json:"lockFlag"`

	LoyaltyPoints int64 `json:"loyaltyPoints"`
}

// DisplayName is the full name when present, otherwise code and name.
func (c Customer) DisplayName() string {
	if full := strings.TrimSpace(c.FullName); full != "" {
		return full
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{c.Code, c.Name} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Locked reports whether the customer may not be selected.
func (c Customer) Locked() bool {
	return strings.EqualFold(strings.TrimSpace(c.LockFlag), "Y")
}
