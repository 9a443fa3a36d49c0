package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

// CatalogService serves products and customers.
type CatalogService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(store storage.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// Products returns the whole catalog.
func (s *CatalogService) Products(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Customers returns every customer, locked ones included.
func (s *CatalogService) Customers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Lookup resolves an item code, manufacturer barcode or alternate code.
// A miss is storage.ErrNotFound.
func (s *CatalogService) Lookup(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("code is required")
	}
	p, err := s.store.FindProduct(ctx, code)
	if err != nil {
		s.logger.Debug("Lookup miss", "code", code, "error", err)
		return nil, err
	}
	return p, nil
}
