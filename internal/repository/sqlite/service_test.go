package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/maallem/internal/domain"
)

func TestServiceRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	provider := createUser(t, db.Users(), "p@example.com", domain.RoleProvider, "Casablanca")
	repo := db.Services()

	svc := &domain.Service{
		ProviderID:  provider.ID,
		Title:       "Débouchage",
		Description: "Canalisations et éviers",
		Trade:       "Plombier",
	}
	if err := repo.Create(ctx, svc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if svc.ID == "" || svc.CreatedAt.IsZero() {
		t.Fatal("expected ID and CreatedAt to be set")
	}

	list, err := repo.ListByProvider(ctx, provider.ID)
	if err != nil {
		t.Fatalf("ListByProvider: %v", err)
	}
	if len(list) != 1 || list[0].ID != svc.ID {
		t.Fatalf("expected the created service, got %+v", list)
	}
}

func TestServiceRepository_Create_UnknownProvider(t *testing.T) {
	db := newTestDB(t)

	err := db.Services().Create(context.Background(), &domain.Service{
		ProviderID: "ghost", Title: "x", Trade: "Peintre",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestServiceRepository_ListByTrade(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	provider := createUser(t, db.Users(), "p@example.com", domain.RoleProvider, "Rabat")
	repo := db.Services()

	for _, trade := range []string{"Plombier", "Peintre", "Plombier"} {
		if err := repo.Create(ctx, &domain.Service{ProviderID: provider.ID, Title: trade, Trade: trade}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.ListByTrade(ctx, "")
	if err != nil {
		t.Fatalf("ListByTrade all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 services, got %d", len(all))
	}

	plumbers, err := repo.ListByTrade(ctx, "Plombier")
	if err != nil {
		t.Fatalf("ListByTrade: %v", err)
	}
	if len(plumbers) != 2 {
		t.Fatalf("expected 2 Plombier services, got %d", len(plumbers))
	}
}

func TestServiceRepository_UpdateDetails_KeepsImmutableFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	provider := createUser(t, db.Users(), "p@example.com", domain.RoleProvider, "Rabat")
	repo := db.Services()

	svc := &domain.Service{ProviderID: provider.ID, Title: "Old", Description: "old", Trade: "Peintre"}
	if err := repo.Create(ctx, svc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateDetails(ctx, svc.ID, "New", "new", "Maçon"); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	got, err := repo.GetByID(ctx, svc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "New" || got.Description != "new" || got.Trade != "Maçon" {
		t.Fatalf("fields not updated: %+v", got)
	}
	if got.ProviderID != svc.ProviderID {
		t.Fatalf("providerId changed: %s", got.ProviderID)
	}
	if !got.CreatedAt.Equal(svc.CreatedAt) {
		t.Fatalf("createdAt changed: %v != %v", got.CreatedAt, svc.CreatedAt)
	}

	if err := repo.UpdateDetails(ctx, "missing", "a", "b", "Peintre"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestServiceRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	provider := createUser(t, db.Users(), "p@example.com", domain.RoleProvider, "Rabat")
	repo := db.Services()

	svc := &domain.Service{ProviderID: provider.ID, Title: "t", Trade: "Vitrier"}
	if err := repo.Create(ctx, svc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, svc.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, svc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, svc.ID); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
}
