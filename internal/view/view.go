// Package view holds the templ components for the HTML pages and the
// Datastar fragments patched into them.
package view

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/msomdec/maallem/internal/domain"
)

// SearchSignals are the Datastar signals bound by the search bar.
type SearchSignals struct {
	Trade string `json:"trade"`
	City  string `json:"city"`
}

// SearchHeading describes the active filters.
func SearchHeading(trade, city string) string {
	switch {
	case trade != "" && city != "":
		return trade + " à " + city
	case trade != "":
		return trade
	case city != "":
		return "Artisans à " + city
	default:
		return "Tous les artisans"
	}
}

// SignupForm carries the values echoed back into the sign-up form.
// Passwords are never echoed.
type SignupForm struct {
	Name  string
	Email string
	Role  domain.Role
	City  string
	Phone string
}

func (f SignupForm) role() domain.Role {
	if f.Role == "" {
		return domain.RoleClient
	}
	return f.Role
}

// ServiceForm is the state of the create/edit dialog. An empty ID means the
// dialog creates a new service.
type ServiceForm struct {
	ID          string
	Title       string
	Description string
	Trade       string
	Open        bool
	Error       string
}

func (f ServiceForm) editing() bool {
	return f.ID != ""
}

func (f ServiceForm) action() templ.SafeURL {
	if f.editing() {
		return templ.URL("/dashboard/services/" + f.ID)
	}
	return "/dashboard/services"
}

func (f ServiceForm) heading() string {
	if f.editing() {
		return "Modifier le service"
	}
	return "Ajouter un service"
}

func (f ServiceForm) submitLabel() string {
	if f.editing() {
		return "Enregistrer"
	}
	return "Ajouter"
}

func providerPath(id string) templ.SafeURL {
	return templ.URL("/providers/" + id)
}

// phoneToggle is the Datastar action that swaps the #provider-phone fragment.
func phoneToggle(providerID string, show bool) string {
	flag := "0"
	if show {
		flag = "1"
	}
	return "@get('/providers/" + providerID + "/phone?show=" + flag + "')"
}

func editServiceAction(serviceID string) string {
	return "@get('/dashboard/services/" + serviceID + "/edit')"
}

// initials returns up to two upper-case initials for an avatar fallback.
func initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		for _, r := range f {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func distinctTrades(services []domain.Service) []string {
	seen := make(map[string]bool, len(services))
	var trades []string
	for _, s := range services {
		if !seen[s.Trade] {
			seen[s.Trade] = true
			trades = append(trades, s.Trade)
		}
	}
	return trades
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
