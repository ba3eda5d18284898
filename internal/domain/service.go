package domain

import (
	"context"
	"time"
)

// Service is a single listing a provider publishes.
// ProviderID and CreatedAt never change after creation.
type Service struct {
	ID          string
	ProviderID  string
	Title       string
	Description string
	Trade       string
	CreatedAt   time.Time
}

// ServiceRepository handles listing persistence.
type ServiceRepository interface {
	Create(ctx context.Context, service *Service) error
	GetByID(ctx context.Context, id string) (*Service, error)
	ListByProvider(ctx context.Context, providerID string) ([]Service, error)
	// ListByTrade returns every service when trade is empty.
	ListByTrade(ctx context.Context, trade string) ([]Service, error)
	// UpdateDetails overwrites title, description and trade only.
	UpdateDetails(ctx context.Context, id, title, description, trade string) error
	Delete(ctx context.Context, id string) error
}
