package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/repository/sqlite"
	"github.com/msomdec/maallem/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

// eventLog is an EventPublisher that records what it receives.
type eventLog struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (l *eventLog) Publish(evt domain.SessionEvent) {
	l.mu.Lock()
	l.events = append(l.events, evt)
	l.mu.Unlock()
}

func (l *eventLog) kinds() []domain.SessionEventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]domain.SessionEventKind, len(l.events))
	for i, e := range l.events {
		kinds[i] = e.Kind
	}
	return kinds
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB, *eventLog) {
	t.Helper()
	db := newTestDB(t)
	events := &eventLog{}
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), events, testJWTSecret, 4), db, events
}

func validRegistration(email string) service.Registration {
	return service.Registration{
		Name:            "Karim Benali",
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            domain.RoleProvider,
		City:            "Casablanca",
		Phone:           "0612345678",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _, events := newTestAuthService(t)

	user, err := auth.Register(context.Background(), validRegistration("New@Example.com "))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "password123" {
		t.Fatal("password must be hashed")
	}
	if got := events.kinds(); len(got) != 1 || got[0] != domain.SessionSignedUp {
		t.Fatalf("expected one signed_up event, got %v", got)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, validRegistration("dup@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := auth.Register(ctx, validRegistration("dup@example.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

// countingUsers fails the test if the store is reached.
type countingUsers struct {
	domain.UserRepository
	calls int
}

func (c *countingUsers) Create(ctx context.Context, user *domain.User) error {
	c.calls++
	return nil
}

func TestAuthService_Register_PasswordMismatch_NoStoreCall(t *testing.T) {
	users := &countingUsers{}
	auth := service.NewAuthService(users, nil, testJWTSecret, 4)

	reg := validRegistration("mismatch@example.com")
	reg.Password = "abc123"
	reg.ConfirmPassword = "xyz"

	_, err := auth.Register(context.Background(), reg)
	if !errors.Is(err, service.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if users.calls != 0 {
		t.Fatalf("expected no store call, got %d", users.calls)
	}
}

func TestAuthService_Register_InvalidInput(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	tests := []struct {
		name   string
		mutate func(*service.Registration)
	}{
		{"empty name", func(r *service.Registration) { r.Name = " " }},
		{"empty email", func(r *service.Registration) { r.Email = "" }},
		{"empty password", func(r *service.Registration) { r.Password, r.ConfirmPassword = "", "" }},
		{"short password", func(r *service.Registration) { r.Password, r.ConfirmPassword = "abc", "abc" }},
		{"bad email", func(r *service.Registration) { r.Email = "not-an-email" }},
		{"bad role", func(r *service.Registration) { r.Role = "admin" }},
		{"unknown city", func(r *service.Registration) { r.City = "Paris" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := validRegistration("x@example.com")
			tc.mutate(&reg)
			_, err := auth.Register(context.Background(), reg)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_PhoneOptional(t *testing.T) {
	auth, _, _ := newTestAuthService(t)

	reg := validRegistration("nophone@example.com")
	reg.Phone = ""
	reg.Role = domain.RoleClient
	if _, err := auth.Register(context.Background(), reg); err != nil {
		t.Fatalf("Register without phone: %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	auth, _, events := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, validRegistration("login@example.com"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := auth.Login(ctx, "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	current, err := auth.CurrentUser(ctx, token)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current.ID != user.ID || current.Role != domain.RoleProvider {
		t.Fatalf("unexpected current user %+v", current)
	}

	auth.Logout(token)
	want := []domain.SessionEventKind{domain.SessionSignedUp, domain.SessionSignedIn, domain.SessionSignedOut}
	got := events.kinds()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, got)
		}
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, validRegistration("wrongpw@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := auth.Login(ctx, "wrongpw@example.com", "wrongpassword"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", err)
	}
	if _, err := auth.Login(ctx, "nobody@example.com", "password123"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	auth, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, validRegistration("tamper@example.com")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "tamper@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := service.NewAuthService(nil, nil, "a-completely-different-secret-value!", 4)

	tests := []struct {
		name  string
		auth  *service.AuthService
		token string
	}{
		{"garbage", auth, "not-a-valid-jwt"},
		{"tampered", auth, token[:len(token)-5] + "XXXXX"},
		{"wrong secret", other, token},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.auth.ValidateToken(tc.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
