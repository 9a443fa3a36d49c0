package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles an operator can hold.
const (
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User represents an operator account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Code is the employee code used to log in (stored lower-case, unique).
	Code string `json:"username"`

	// DisplayName is the operator's name shown on the terminal.
	DisplayName string `json:"name"`

	// Role is manager or cashier.
	Role string `json:"role"`

	// PasswordHash is the bcrypt hash of the password; never serialized.
	PasswordHash string `json:"-"`

	CreatedAt int64 `json:"createdAt,omitempty"`
	UpdatedAt int64 `json:"-"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(code, displayName, role, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Code:         code,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
