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

const msgServiceInvalid = "Veuillez saisir un titre et choisir un métier de la liste."

// DashboardHandler serves the provider dashboard. Every route sits behind
// RequireRole(provider), so the context always carries a provider.
type DashboardHandler struct {
	listings *service.ListingService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(listings *service.ListingService) *DashboardHandler {
	return &DashboardHandler{listings: listings}
}

// HandleDashboard renders GET /dashboard. ?new=1 and ?edit={id} open the
// service dialog without JavaScript.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var form view.ServiceForm
	q := r.URL.Query()
	switch {
	case q.Get("edit") != "":
		if f, ok := h.editForm(r, user, q.Get("edit")); ok {
			form = f
		}
	case q.Get("new") == "1":
		form.Open = true
	}

	h.renderDashboard(w, r, user, form)
}

// HandleNewDialog opens an empty service dialog.
func (h *DashboardHandler) HandleNewDialog(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.ServiceDialog(view.ServiceForm{Open: true}))
}

// HandleEditDialog opens the service dialog pre-filled with an owned service.
func (h *DashboardHandler) HandleEditDialog(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	form, ok := h.editForm(r, user, r.PathValue("id"))
	if !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.ServiceDialog(form))
}

// HandleCreateService processes POST /dashboard/services.
func (h *DashboardHandler) HandleCreateService(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := serviceFormFromRequest(r, "")

	if _, err := h.listings.CreateService(r.Context(), user.ID, form.Title, form.Description, form.Trade); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			form.Open, form.Error = true, msgServiceInvalid
			w.WriteHeader(http.StatusUnprocessableEntity)
			h.renderDashboard(w, r, user, form)
			return
		}
		slog.Error("create service", "error", err, "provider", user.ID)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleUpdateService processes POST /dashboard/services/{id}.
func (h *DashboardHandler) HandleUpdateService(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := serviceFormFromRequest(r, r.PathValue("id"))

	err := h.listings.UpdateOwnedService(r.Context(), user.ID, form.ID, form.Title, form.Description, form.Trade)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnauthorized):
		h.renderNotFound(w, r)
		return
	case errors.Is(err, domain.ErrInvalidInput):
		form.Open, form.Error = true, msgServiceInvalid
		w.WriteHeader(http.StatusUnprocessableEntity)
		h.renderDashboard(w, r, user, form)
		return
	default:
		slog.Error("update service", "error", err, "service", form.ID)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleDeleteService processes POST /dashboard/services/{id}/delete.
func (h *DashboardHandler) HandleDeleteService(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	id := r.PathValue("id")

	err := h.listings.DeleteOwnedService(r.Context(), user.ID, id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUnauthorized):
		h.renderNotFound(w, r)
		return
	default:
		slog.Error("delete service", "error", err, "service", id)
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// editForm loads an owned service into a dialog form. Another provider's
// service is reported like a missing one.
func (h *DashboardHandler) editForm(r *http.Request, user *domain.User, id string) (view.ServiceForm, bool) {
	svc, err := h.listings.GetService(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Error("get service", "error", err, "service", id)
		}
		return view.ServiceForm{}, false
	}
	if svc.ProviderID != user.ID {
		return view.ServiceForm{}, false
	}
	return view.ServiceForm{
		ID:          svc.ID,
		Title:       svc.Title,
		Description: svc.Description,
		Trade:       svc.Trade,
		Open:        true,
	}, true
}

func (h *DashboardHandler) renderDashboard(w http.ResponseWriter, r *http.Request, user *domain.User, form view.ServiceForm) {
	services, err := h.listings.ListServicesByProvider(r.Context(), user.ID)
	if err != nil {
		slog.Error("list services", "error", err, "provider", user.ID)
		services = nil
	}
	view.DashboardPage(user, services, form).Render(r.Context(), w)
}

func (h *DashboardHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	view.ErrorPage(http.StatusNotFound, "Service introuvable", "Ce service n'existe pas ou ne vous appartient pas.").Render(r.Context(), w)
}

func serviceFormFromRequest(r *http.Request, id string) view.ServiceForm {
	return view.ServiceForm{
		ID:          id,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Trade:       r.FormValue("trade"),
	}
}
