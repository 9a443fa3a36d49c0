// Package storage provides abstractions for the POS store of record.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tillpoint/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record with the same key already exists.
	ErrConflict = errors.New("record already exists")

	// ErrInsufficientPoints is returned when a settlement redeems more loyalty
	// points than the customer holds.
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
)

// Store defines the persistence operations of the backend.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore

	// UpsertProduct inserts or replaces a catalog item.
	UpsertProduct(ctx context.Context, p models.Product) error

	// ListProducts returns the catalog ordered by item code.
	ListProducts(ctx context.Context) ([]models.Product, error)

	// FindProduct returns the product whose item code, manufacturer code or
	// alternate code equals code.
	FindProduct(ctx context.Context, code string) (*models.Product, error)

	// UpsertCustomer inserts or replaces a customer.
	UpsertCustomer(ctx context.Context, c models.Customer) error

	// ListCustomers returns all customers ordered by code.
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	// GetCustomer returns one customer.
	GetCustomer(ctx context.Context, code string) (*models.Customer, error)

	// SaveCartSnapshot stores the lines of a bill unless a newer snapshot from
	// the same terminal session is already stored. applied reports whether
	// the snapshot was written.
	SaveCartSnapshot(ctx context.Context, snap models.CartSnapshot) (applied bool, err error)

	// GetCartSnapshot returns the stored lines of a bill.
	GetCartSnapshot(ctx context.Context, billNo int64, locationCode string) (*models.CartSnapshot, error)

	// HoldBill stores a held bill, replacing an earlier hold of the same bill.
	HoldBill(ctx context.Context, bill models.HeldBill) error

	// ListHeldBills returns the held bills of a location, newest first.
	ListHeldBills(ctx context.Context, locationCode string) ([]models.HeldBill, error)

	// GetHeldBill returns one held bill with its items.
	GetHeldBill(ctx context.Context, billNo int64, locationCode string) (*models.HeldBill, error)

	// DeleteHeldBill removes a held bill. Deleting a missing bill is not an error.
	DeleteHeldBill(ctx context.Context, billNo int64, locationCode string) error

	// NextBillNo records and returns MAX(bill_no)+1 in one transaction.
	NextBillNo(ctx context.Context, alloc BillNoAllocation) (int64, error)

	// LastBillNo returns the highest issued bill number, or 0.
	LastBillNo(ctx context.Context) (int64, error)

	// MarkBillPaid flags an issued bill number as paid.
	MarkBillPaid(ctx context.Context, billNo int64) error

	// InsertSettlement stores a settlement header with its lines and deducts
	// redeemed loyalty points, atomically. ID and CreatedAt are filled in.
	InsertSettlement(ctx context.Context, s *models.BillSettlement) error

	// GetSettlement returns the settlement of a bill.
	GetSettlement(ctx context.Context, billNo int64, locationCode string) (*models.BillSettlement, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore is the operator account subset of Store.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByCode(ctx context.Context, code string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// BillNoAllocation describes who asked for a bill number.
type BillNoAllocation struct {
	// Flag is "n" for a regular bill and "y" for a pre-paid one.
	Flag         string
	CounterCode  string
	LocationCode string
}
