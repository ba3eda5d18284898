package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// ProviderHandler serves public provider profiles.
type ProviderHandler struct {
	listings *service.ListingService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(listings *service.ListingService) *ProviderHandler {
	return &ProviderHandler{listings: listings}
}

// HandleProfile renders GET /providers/{id}.
func (h *ProviderHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	provider, ok := h.loadProvider(r)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		view.NotFoundPage(user).Render(r.Context(), w)
		return
	}

	services, err := h.listings.ListServicesByProvider(r.Context(), provider.ID)
	if err != nil {
		slog.Error("list provider services", "error", err, "provider", provider.ID)
		services = nil
	}
	view.ProviderPage(user, provider, services).Render(r.Context(), w)
}

// HandlePhone toggles the phone number fragment.
// GET /providers/{id}/phone?show=1|0
func (h *ProviderHandler) HandlePhone(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.loadProvider(r)
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.PhoneReveal(provider, r.URL.Query().Get("show") == "1"))
}

// HandleAPIProvider returns a provider and their services as JSON.
// GET /api/providers/{id}
// Response: {"provider": {...}, "services": [...]}
func (h *ProviderHandler) HandleAPIProvider(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.loadProvider(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Provider not found.")
		return
	}

	services, err := h.listings.ListServicesByProvider(r.Context(), provider.ID)
	if err != nil {
		slog.Error("list provider services", "error", err, "provider", provider.ID)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"provider": toUserDTO(provider),
		"services": toServiceDTOs(services),
	})
}

// loadProvider resolves the {id} path value. Store failures are logged and
// reported like a missing provider.
func (h *ProviderHandler) loadProvider(r *http.Request) (*domain.User, bool) {
	provider, err := h.listings.GetProviderByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("get provider", "error", err)
		}
		return nil, false
	}
	return provider, true
}
