package handler

import (
	"net/http"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, listings *service.ListingService, limiter *service.TokenBucket, cookieSecure bool, featuredLimit int) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	homeHandler := NewHomeHandler(listings, featuredLimit)
	searchHandler := NewSearchHandler(listings)
	providerHandler := NewProviderHandler(listings)
	dashboardHandler := NewDashboardHandler(listings)

	optional := func(h http.HandlerFunc) http.Handler { return OptionalAuth(auth, h) }
	provider := func(h http.HandlerFunc) http.Handler { return RequireRole(auth, domain.RoleProvider, h) }
	limited := func(h http.HandlerFunc) http.Handler { return RateLimit(limiter, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Public pages.
	mux.Handle("GET /", optional(homeHandler.HandleHome))
	mux.Handle("GET /search", optional(searchHandler.HandleSearchPage))
	mux.HandleFunc("GET /search/results", searchHandler.HandleSearchResults)
	mux.Handle("GET /providers/{id}", optional(providerHandler.HandleProfile))
	mux.HandleFunc("GET /providers/{id}/phone", providerHandler.HandlePhone)

	// Authentication.
	mux.Handle("GET /signup", optional(authHandler.HandleSignupPage))
	mux.Handle("POST /signup", limited(authHandler.HandleSignup))
	mux.Handle("GET /signin", optional(authHandler.HandleSigninPage))
	mux.Handle("POST /signin", limited(authHandler.HandleSignin))
	mux.HandleFunc("POST /signout", authHandler.HandleSignout)

	// Provider dashboard.
	mux.Handle("GET /dashboard", provider(dashboardHandler.HandleDashboard))
	mux.Handle("GET /dashboard/services/new", provider(dashboardHandler.HandleNewDialog))
	mux.Handle("GET /dashboard/services/{id}/edit", provider(dashboardHandler.HandleEditDialog))
	mux.Handle("POST /dashboard/services", provider(dashboardHandler.HandleCreateService))
	mux.Handle("POST /dashboard/services/{id}", provider(dashboardHandler.HandleUpdateService))
	mux.Handle("POST /dashboard/services/{id}/delete", provider(dashboardHandler.HandleDeleteService))

	// JSON API.
	mux.HandleFunc("GET /api/search", searchHandler.HandleAPISearch)
	mux.HandleFunc("GET /api/providers/{id}", providerHandler.HandleAPIProvider)
	mux.Handle("GET /api/auth/me", optional(authHandler.HandleMe))
}
