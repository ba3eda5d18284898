package service

import (
	"context"
	"fmt"

	"github.com/msomdec/maallem/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ProviderMatch is a search hit: a provider and those of its services that
// were fetched for the query.
type ProviderMatch struct {
	Provider domain.User
	Services []domain.Service
}

// SearchResult is the outcome of a provider search.
type SearchResult struct {
	Trade     string
	City      string
	Providers []ProviderMatch
}

// Search finds providers by trade and city. An empty trade or city leaves
// that axis unfiltered; when both are set they are ANDed.
//
// The store only filters one record kind on one field at a time, so the
// search runs in two phases: services by trade and providers by city are
// fetched concurrently, then joined in memory on providerId. The cost is
// O(services + providers) per call with no pagination.
func (s *ListingService) Search(ctx context.Context, trade, city string) (*SearchResult, error) {
	var (
		services  []domain.Service
		providers []domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		services, err = s.ListServicesByTrade(gctx, trade)
		return err
	})
	g.Go(func() error {
		var err error
		providers, err = s.ListProvidersByCity(gctx, city)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	byProvider := make(map[string][]domain.Service, len(services))
	for _, svc := range services {
		byProvider[svc.ProviderID] = append(byProvider[svc.ProviderID], svc)
	}

	result := &SearchResult{Trade: trade, City: city, Providers: []ProviderMatch{}}
	for _, p := range providers {
		matching, ok := byProvider[p.ID]
		if trade != "" && !ok {
			continue
		}
		result.Providers = append(result.Providers, ProviderMatch{Provider: p, Services: matching})
	}
	return result, nil
}
