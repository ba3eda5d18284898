package view_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestSearchHeading(t *testing.T) {
	tests := []struct {
		trade, city, want string
	}{
		{"Plombier", "Rabat", "Plombier à Rabat"},
		{"Plombier", "", "Plombier"},
		{"", "Rabat", "Artisans à Rabat"},
		{"", "", "Tous les artisans"},
	}
	for _, tc := range tests {
		if got := view.SearchHeading(tc.trade, tc.city); got != tc.want {
			t.Errorf("SearchHeading(%q, %q) = %q, want %q", tc.trade, tc.city, got, tc.want)
		}
	}
}

func TestProviderCard_EscapesUserContent(t *testing.T) {
	provider := domain.User{ID: "p1", Name: `<script>alert("x")</script>`, City: "Rabat", Role: domain.RoleProvider}
	out := renderString(t, view.ProviderCard(provider, nil))

	if strings.Contains(out, "<script>alert") {
		t.Fatal("provider name was not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped name in output, got %s", out)
	}
}

func TestSearchResults_EmptyState(t *testing.T) {
	out := renderString(t, view.SearchResults(&service.SearchResult{Trade: "Soudeur"}))

	if !strings.Contains(out, `id="search-results"`) {
		t.Fatal("fragment must carry the search-results id")
	}
	if !strings.Contains(out, "Aucun artisan trouvé") {
		t.Fatal("expected empty-state message")
	}
}

func TestPhoneReveal(t *testing.T) {
	provider := &domain.User{ID: "p1", Phone: "0612345678"}

	hidden := renderString(t, view.PhoneReveal(provider, false))
	if strings.Contains(hidden, "0612345678") {
		t.Fatal("hidden state must not leak the number")
	}
	if !strings.Contains(hidden, "Voir le téléphone") {
		t.Fatal("expected reveal button")
	}

	shown := renderString(t, view.PhoneReveal(provider, true))
	if !strings.Contains(shown, "0612345678") {
		t.Fatal("revealed state must show the number")
	}
}

func TestServiceDialog_EditMode(t *testing.T) {
	out := renderString(t, view.ServiceDialog(view.ServiceForm{ID: "s1", Title: "Peinture", Trade: "Peintre", Open: true}))

	if !strings.Contains(out, `action="/dashboard/services/s1"`) {
		t.Fatal("edit form should post to the service URL")
	}
	if !strings.Contains(out, `<option value="Peintre" selected>`) {
		t.Fatal("current trade should be selected")
	}
	if !strings.Contains(out, `<dialog id="service-dialog" open>`) {
		t.Fatal("dialog should be open")
	}
}

func TestLayout_NavDependsOnSession(t *testing.T) {
	anon := renderString(t, view.HomePage(nil, nil))
	if !strings.Contains(anon, `href="/signin"`) || strings.Contains(anon, `href="/dashboard"`) {
		t.Fatal("anonymous nav should offer sign-in and hide the dashboard")
	}

	provider := &domain.User{ID: "p1", Name: "Amine", Role: domain.RoleProvider}
	out := renderString(t, view.HomePage(provider, nil))
	if !strings.Contains(out, `href="/dashboard"`) || !strings.Contains(out, "Amine") {
		t.Fatal("provider nav should link to the dashboard")
	}

	client := &domain.User{ID: "c1", Name: "Sara", Role: domain.RoleClient}
	out = renderString(t, view.HomePage(client, nil))
	if strings.Contains(out, `href="/dashboard"`) {
		t.Fatal("client nav must not link to the dashboard")
	}
}

func TestAvatar_SanitisesProfilePictureURL(t *testing.T) {
	provider := domain.User{ID: "p1", Name: "Amine", ProfilePicture: "javascript:alert(1)"}
	out := renderString(t, view.ProviderCard(provider, nil))

	if strings.Contains(out, "javascript:") {
		t.Fatalf("unsafe picture URL leaked into output: %s", out)
	}
	if !strings.Contains(out, `src="about:invalid#TemplFailedSanitizationURL"`) {
		t.Fatalf("expected sanitised src, got %s", out)
	}
}

func TestProviderPage_ContactLinks(t *testing.T) {
	provider := &domain.User{ID: "p1", Name: "Amine", Email: "amine@example.com", Phone: "0612345678", Role: domain.RoleProvider}
	out := renderString(t, view.ProviderPage(nil, provider, nil))

	if !strings.Contains(out, `href="mailto:amine@example.com"`) {
		t.Fatal("expected a mailto link")
	}
	if strings.Contains(out, "tel:") {
		t.Fatal("phone link must stay hidden until revealed")
	}

	shown := renderString(t, view.PhoneReveal(provider, true))
	if !strings.Contains(shown, `href="tel:0612345678"`) {
		t.Fatalf("expected a tel link, got %s", shown)
	}
}

func TestSearchBar_SignalsAreJSON(t *testing.T) {
	out := renderString(t, view.SearchBar("Plombier", "Rabat"))
	want := `data-signals="{&#34;trade&#34;:&#34;Plombier&#34;,&#34;city&#34;:&#34;Rabat&#34;}"`
	if !strings.Contains(out, want) {
		t.Fatalf("expected JSON signals %s in %s", want, out)
	}

	out = renderString(t, view.SearchBar(`x'}"`, ""))
	if strings.Contains(out, `x'}`) {
		t.Fatalf("filter value escaped the signals attribute: %s", out)
	}
	if !strings.Contains(out, `&#34;trade&#34;:&#34;x&#39;}\&#34;&#34;`) {
		t.Fatalf("expected the filter value JSON-encoded, got %s", out)
	}
}
