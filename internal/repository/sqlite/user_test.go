package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/repository/sqlite"
)

func createUser(t *testing.T, repo *sqlite.UserRepository, email string, role domain.Role, city string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "User " + email,
		Email:        email,
		Role:         role,
		City:         city,
		PasswordHash: "hash",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create %s: %v", email, err)
	}
	return user
}

func TestUserRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()

	user := &domain.User{
		Name:         "Youssef",
		Email:        "youssef@example.com",
		Role:         domain.RoleProvider,
		City:         "Casablanca",
		Phone:        "0612345678",
		About:        "Plombier depuis 10 ans",
		PasswordHash: "hashedpw",
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set after create")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	createUser(t, repo, "dup@example.com", domain.RoleClient, "Rabat")

	err := repo.Create(context.Background(), &domain.User{
		Name: "Other", Email: "dup@example.com", Role: domain.RoleClient, City: "Rabat", PasswordHash: "h",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	user := createUser(t, repo, "byid@example.com", domain.RoleProvider, "Agadir")

	found, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.Email != user.Email {
		t.Fatalf("expected email %q, got %q", user.Email, found.Email)
	}
	if found.Role != domain.RoleProvider {
		t.Fatalf("expected role provider, got %q", found.Role)
	}
	if found.City != "Agadir" {
		t.Fatalf("expected city Agadir, got %q", found.City)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "does-not-exist")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	user := createUser(t, repo, "byemail@example.com", domain.RoleClient, "Safi")

	found, err := repo.GetByEmail(context.Background(), "byemail@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected id %s, got %s", user.ID, found.ID)
	}

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ListByRole(t *testing.T) {
	db := newTestDB(t)
	repo := db.Users()
	ctx := context.Background()

	createUser(t, repo, "p1@example.com", domain.RoleProvider, "Casablanca")
	createUser(t, repo, "p2@example.com", domain.RoleProvider, "Rabat")
	createUser(t, repo, "p3@example.com", domain.RoleProvider, "Casablanca")
	createUser(t, repo, "c1@example.com", domain.RoleClient, "Casablanca")

	tests := []struct {
		name  string
		role  domain.Role
		city  string
		limit int
		want  int
	}{
		{"all providers", domain.RoleProvider, "", 0, 3},
		{"providers in Casablanca", domain.RoleProvider, "Casablanca", 0, 2},
		{"providers in Fès", domain.RoleProvider, "Fès", 0, 0},
		{"capped", domain.RoleProvider, "", 2, 2},
		{"clients", domain.RoleClient, "", 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			users, err := repo.ListByRole(ctx, tc.role, tc.city, tc.limit)
			if err != nil {
				t.Fatalf("ListByRole: %v", err)
			}
			if len(users) != tc.want {
				t.Fatalf("expected %d users, got %d", tc.want, len(users))
			}
			for _, u := range users {
				if u.Role != tc.role {
					t.Fatalf("unexpected role %q", u.Role)
				}
				if tc.city != "" && u.City != tc.city {
					t.Fatalf("unexpected city %q", u.City)
				}
			}
		})
	}
}
