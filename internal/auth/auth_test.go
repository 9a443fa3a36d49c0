package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmynk/tillpoint/internal/models"
	"github.com/mmynk/tillpoint/internal/storage"
)

type memoryUsers struct {
	byCode map[string]*models.User
}

func (m *memoryUsers) CreateUser(ctx context.Context, u *models.User) error {
	if _, ok := m.byCode[u.Code]; ok {
		return storage.ErrConflict
	}
	m.byCode[u.Code] = u
	return nil
}

func (m *memoryUsers) GetUserByCode(ctx context.Context, code string) (*models.User, error) {
	if u, ok := m.byCode[strings.ToLower(code)]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.byCode {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func TestPasswordAuthenticator(t *testing.T) {
	a := NewPasswordAuthenticator(&memoryUsers{byCode: map[string]*models.User{}})
	ctx := context.Background()

	u, err := a.Register(ctx, " Cashier1 ", "Cashier One", models.RoleCashier, "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Code != "cashier1" || u.PasswordHash == "secret1" {
		t.Errorf("user = %+v", u)
	}

	tests := []struct {
		name string
		err  error
		call func() error
	}{
		{"duplicate", ErrUserExists, func() error {
			_, err := a.Register(ctx, "cashier1", "x", models.RoleCashier, "secret1")
			return err
		}},
		{"weak password", ErrWeakPassword, func() error {
			_, err := a.Register(ctx, "new", "x", models.RoleCashier, "123")
			return err
		}},
		{"bad role", ErrInvalidRole, func() error {
			_, err := a.Register(ctx, "new", "x", "owner", "secret1")
			return err
		}},
		{"wrong password", ErrInvalidCredentials, func() error {
			_, err := a.Authenticate(ctx, "cashier1", "wrong")
			return err
		}},
		{"unknown user", ErrInvalidCredentials, func() error {
			_, err := a.Authenticate(ctx, "ghost", "secret1")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}

	got, err := a.Authenticate(ctx, "CASHIER1", "secret1")
	if err != nil || got.ID != u.ID {
		t.Errorf("Authenticate = %+v, %v", got, err)
	}
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	user := models.NewUser("manager", "Manager", models.RoleManager, "")

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "manager" || claims.Role != models.RoleManager {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewJWTManager("other-secret", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret: %v", err)
	}
	expired, _ := NewJWTManager("test-secret", -time.Minute).Generate(user)
	if _, err := m.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: %v", err)
	}
}
