package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// SearchHandler serves the search page, its live results fragment and the
// JSON search endpoint.
type SearchHandler struct {
	listings *service.ListingService
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(listings *service.ListingService) *SearchHandler {
	return &SearchHandler{listings: listings}
}

// HandleSearchPage renders GET /search?trade=&city=.
func (h *SearchHandler) HandleSearchPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := h.search(r, q.Get("trade"), q.Get("city"))
	view.SearchPage(UserFromContext(r.Context()), result).Render(r.Context(), w)
}

// HandleSearchResults re-renders the results fragment from the search bar
// signals without a page load.
func (h *SearchHandler) HandleSearchResults(w http.ResponseWriter, r *http.Request) {
	var signals view.SearchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result := h.search(r, signals.Trade, signals.City)

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.SearchResults(result))
}

// HandleAPISearch returns the search result as JSON.
// GET /api/search?trade=&city=
// Response: {"trade":"...","city":"...","providers":[...]}
func (h *SearchHandler) HandleAPISearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trade, city := q.Get("trade"), q.Get("city")

	result, err := h.listings.Search(r.Context(), trade, city)
	if err != nil {
		slog.Error("search", "error", err, "trade", trade, "city", city)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, toSearchResultDTO(result))
}

// search runs the query and degrades to an empty result on failure.
func (h *SearchHandler) search(r *http.Request, trade, city string) *service.SearchResult {
	result, err := h.listings.Search(r.Context(), trade, city)
	if err != nil {
		slog.Error("search", "error", err, "trade", trade, "city", city)
		return &service.SearchResult{Trade: trade, City: city, Providers: []service.ProviderMatch{}}
	}
	return result
}
