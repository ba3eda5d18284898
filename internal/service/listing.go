package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/maallem/internal/domain"
)

// ListingService is the data access layer over users and services. Each
// method maps to a single-field equality query or a single mutation; store
// errors are wrapped and returned unclassified.
type ListingService struct {
	users    domain.UserRepository
	services domain.ServiceRepository
}

// NewListingService creates a new ListingService.
func NewListingService(users domain.UserRepository, services domain.ServiceRepository) *ListingService {
	return &ListingService{users: users, services: services}
}

// ListServicesByProvider returns the provider's services in no particular order.
func (s *ListingService) ListServicesByProvider(ctx context.Context, providerID string) ([]domain.Service, error) {
	services, err := s.services.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("list services by provider: %w", err)
	}
	return services, nil
}

// CreateService inserts a listing for providerID and returns its id.
// The provider must exist and have the provider role.
func (s *ListingService) CreateService(ctx context.Context, providerID, title, description, trade string) (string, error) {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if err := validateServiceFields(title, trade); err != nil {
		return "", err
	}

	provider, err := s.users.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, providerID)
		}
		return "", fmt.Errorf("get provider: %w", err)
	}
	if !provider.IsProvider() {
		return "", fmt.Errorf("%w: user %q is not a provider", domain.ErrInvalidInput, providerID)
	}

	svc := &domain.Service{
		ProviderID:  providerID,
		Title:       title,
		Description: description,
		Trade:       trade,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return "", fmt.Errorf("create service: %w", err)
	}
	return svc.ID, nil
}

// UpdateService overwrites title, description and trade. ProviderID and
// CreatedAt are left untouched.
func (s *ListingService) UpdateService(ctx context.Context, id, title, description, trade string) error {
	title, description = strings.TrimSpace(title), strings.TrimSpace(description)
	if err := validateServiceFields(title, trade); err != nil {
		return err
	}
	if err := s.services.UpdateDetails(ctx, id, title, description, trade); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// DeleteService removes the service unconditionally. Ownership is the
// caller's concern; see DeleteOwnedService.
func (s *ListingService) DeleteService(ctx context.Context, id string) error {
	if err := s.services.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	return nil
}

// GetService returns a single service by id.
func (s *ListingService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return svc, nil
}

// GetProviderByID returns the provider or domain.ErrNotFound. Users that are
// not providers are reported as not found.
func (s *ListingService) GetProviderByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if !user.IsProvider() {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

// ListServicesByTrade returns every service when trade is empty.
func (s *ListingService) ListServicesByTrade(ctx context.Context, trade string) ([]domain.Service, error) {
	services, err := s.services.ListByTrade(ctx, trade)
	if err != nil {
		return nil, fmt.Errorf("list services by trade: %w", err)
	}
	return services, nil
}

// ListProvidersByCity returns every provider when city is empty.
func (s *ListingService) ListProvidersByCity(ctx context.Context, city string) ([]domain.User, error) {
	providers, err := s.users.ListByRole(ctx, domain.RoleProvider, city, 0)
	if err != nil {
		return nil, fmt.Errorf("list providers by city: %w", err)
	}
	return providers, nil
}

// ListFeaturedProviders returns at most limit providers, most recently
// registered first.
func (s *ListingService) ListFeaturedProviders(ctx context.Context, limit int) ([]domain.User, error) {
	if limit <= 0 {
		return nil, nil
	}
	providers, err := s.users.ListByRole(ctx, domain.RoleProvider, "", limit)
	if err != nil {
		return nil, fmt.Errorf("list featured providers: %w", err)
	}
	return providers, nil
}

// UpdateOwnedService updates the service after confirming providerID owns it.
func (s *ListingService) UpdateOwnedService(ctx context.Context, providerID, id, title, description, trade string) error {
	if err := s.checkOwner(ctx, providerID, id); err != nil {
		return err
	}
	return s.UpdateService(ctx, id, title, description, trade)
}

// DeleteOwnedService deletes the service after confirming providerID owns it.
func (s *ListingService) DeleteOwnedService(ctx context.Context, providerID, id string) error {
	if err := s.checkOwner(ctx, providerID, id); err != nil {
		return err
	}
	return s.DeleteService(ctx, id)
}

func (s *ListingService) checkOwner(ctx context.Context, providerID, id string) error {
	existing, err := s.services.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.ProviderID != providerID {
		return domain.ErrUnauthorized
	}
	return nil
}

func validateServiceFields(title, trade string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if !domain.IsKnownTrade(trade) {
		return fmt.Errorf("%w: unknown trade %q", domain.ErrInvalidInput, trade)
	}
	return nil
}
