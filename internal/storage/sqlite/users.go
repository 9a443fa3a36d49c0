package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

const userColumns = "id, code, display_name, role, password_hash, created_at, updated_at"

// CreateUser inserts a new operator. Codes are stored lower-case.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Code = strings.ToLower(strings.TrimSpace(user.Code))
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		user.ID,
		user.Code,
		user.DisplayName,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s: %w", user.Code, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByCode retrieves an operator by login code, case-insensitively.
func (s *SQLiteStore) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	return s.getUser(ctx, "code", strings.ToLower(strings.TrimSpace(code)))
}

// GetUserByID retrieves an operator by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?",
		value,
	).Scan(
		&user.ID,
		&user.Code,
		&user.DisplayName,
		&user.Role,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}
