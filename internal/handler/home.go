package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	listings      *service.ListingService
	featuredLimit int
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(listings *service.ListingService, featuredLimit int) *HomeHandler {
	return &HomeHandler{listings: listings, featuredLimit: featuredLimit}
}

// HandleHome renders the home page. It also catches every unmatched path.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		view.ErrorPage(http.StatusNotFound, "Page introuvable", "La page demandée n'existe pas.").Render(r.Context(), w)
		return
	}

	featured, err := h.listings.ListFeaturedProviders(r.Context(), h.featuredLimit)
	if err != nil {
		slog.Error("list featured providers", "error", err)
		featured = nil
	}
	view.HomePage(user, featured).Render(r.Context(), w)
}
