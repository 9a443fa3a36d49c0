package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tillpoint/internal/auth"
	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// AuthService logs operators in and resolves tokens to operators.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Login authenticates an operator and returns a signed token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	s.logger.Info("Login request", "username", username)

	if username == "" || password == "" {
		return nil, invalid("username and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Warn("Login failed", "username", username, "error", err)
		return nil, auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Operator logged in", "user_id", user.ID, "username", user.Code, "role", user.Role)
	return &LoginResult{Token: token, User: user}, nil
}

// Me returns the operator with the given id.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}
	return user, nil
}

// DemoOperators are the accounts created by SeedOperators.
var DemoOperators = []struct {
	Code, Name, Role string
}{
	{"manager", "Store Manager", models.RoleManager},
	{"cashier", "Front Cashier", models.RoleCashier},
}

// SeedOperators creates the demo operators with password. Existing accounts
// are left untouched.
func (s *AuthService) SeedOperators(ctx context.Context, password string) error {
	for _, op := range DemoOperators {
		_, err := s.authenticator.Register(ctx, op.Code, op.Name, op.Role, password)
		if errors.Is(err, auth.ErrUserExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed operator %s: %w", op.Code, err)
		}
		s.logger.Info("Seeded operator", "username", op.Code, "role", op.Role)
	}
	return nil
}
