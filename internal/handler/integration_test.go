package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/msomdec/maallem/internal/domain"
)

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, err error, step, location string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", step, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("%s: expected 303, got %d", step, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != location {
		t.Fatalf("%s: expected redirect to %s, got %s", step, location, loc)
	}
}

func signupValues(email, role, password, confirm string) url.Values {
	return url.Values{
		"role":            {role},
		"name":            {"Hassan Menuiserie"},
		"email":           {email},
		"city":            {"Marrakech"},
		"phone":           {"0611223344"},
		"password":        {password},
		"confirmPassword": {confirm},
	}
}

func TestIntegration_SignupPasswordMismatch(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	client := newClient(t)
	resp, err := client.PostForm(srv.URL+"/signup", signupValues("hassan@example.com", "provider", "abc123", "xyz"))
	if err != nil {
		t.Fatalf("POST /signup: %v", err)
	}
	body := readBody(t, resp)

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Les mots de passe ne correspondent pas") {
		t.Fatal("expected mismatch message in page")
	}
	if !strings.Contains(body, `value="hassan@example.com"`) {
		t.Fatal("expected email to be echoed back")
	}

	if _, err := env.db.Users().GetByEmail(context.Background(), "hassan@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no account to be created, got %v", err)
	}
}

func TestIntegration_SignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Existing", "taken@example.com", domain.RoleClient, "Rabat")
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := newClient(t).PostForm(srv.URL+"/signup", signupValues("taken@example.com", "client", "password123", "password123"))
	if err != nil {
		t.Fatalf("POST /signup: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Un compte existe déjà") {
		t.Fatal("expected duplicate email message")
	}
}

func TestIntegration_SigninBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Amina", "amina@example.com", domain.RoleClient, "Rabat")
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := newClient(t).PostForm(srv.URL+"/signin", url.Values{
		"email":    {"amina@example.com"},
		"password": {"wrong-password"},
	})
	if err != nil {
		t.Fatalf("POST /signin: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Email ou mot de passe incorrect.") {
		t.Fatal("expected credentials message")
	}
}

func TestIntegration_ProviderDashboardFlow(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()
	client := newClient(t)
	ctx := context.Background()

	// 1. Sign up as a provider; the new session is opened immediately.
	resp, err := client.PostForm(srv.URL+"/signup", signupValues("hassan@example.com", "provider", "password123", "password123"))
	expectRedirect(t, resp, err, "signup", "/")

	srvURL, _ := url.Parse(srv.URL)
	var hasAuthToken bool
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == "auth_token" {
			hasAuthToken = true
		}
	}
	if !hasAuthToken {
		t.Fatal("expected auth_token cookie to be set after signup")
	}

	provider, err := env.db.Users().GetByEmail(ctx, "hassan@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}

	// 2. Dashboard is reachable.
	resp, err = client.Get(srv.URL + "/dashboard")
	if err != nil {
		t.Fatalf("GET /dashboard: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Ajoutez votre premier service") {
		t.Fatal("expected empty service list")
	}

	// 3. Create a service.
	resp, err = client.PostForm(srv.URL+"/dashboard/services", url.Values{
		"title":       {"Cuisine sur mesure"},
		"description": {"Fabrication et pose"},
		"trade":       {"Menuisier"},
	})
	expectRedirect(t, resp, err, "create service", "/dashboard")

	services, err := env.listings.ListServicesByProvider(ctx, provider.ID)
	if err != nil {
		t.Fatalf("ListServicesByProvider: %v", err)
	}
	if len(services) != 1 || services[0].Title != "Cuisine sur mesure" {
		t.Fatalf("expected one created service, got %+v", services)
	}
	id := services[0].ID

	// 4. Invalid create re-renders the dialog with an error.
	resp, err = client.PostForm(srv.URL+"/dashboard/services", url.Values{
		"title": {""},
		"trade": {"Astronaute"},
	})
	if err != nil {
		t.Fatalf("POST invalid service: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid create: expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `<dialog id="service-dialog" open>`) {
		t.Fatal("expected the dialog to stay open")
	}

	// 5. The edit dialog is pre-filled over SSE.
	resp, err = client.Get(srv.URL + "/dashboard/services/" + id + "/edit")
	if err != nil {
		t.Fatalf("GET edit dialog: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit dialog: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("edit dialog: expected event stream, got %s", ct)
	}
	if !strings.Contains(body, "service-dialog") || !strings.Contains(body, "Cuisine sur mesure") {
		t.Fatal("expected pre-filled dialog in stream")
	}

	// 6. Update only the mutable fields.
	resp, err = client.PostForm(srv.URL+"/dashboard/services/"+id, url.Values{
		"title":       {"Dressing sur mesure"},
		"description": {"Placards"},
		"trade":       {"Menuisier"},
	})
	expectRedirect(t, resp, err, "update service", "/dashboard")

	updated, err := env.listings.GetService(ctx, id)
	if err != nil {
		t.Fatalf("GetService: %v", err)
	}
	if updated.Title != "Dressing sur mesure" || updated.ProviderID != provider.ID {
		t.Fatalf("unexpected service after update: %+v", updated)
	}

	// 7. Delete it.
	resp, err = client.Post(srv.URL+"/dashboard/services/"+id+"/delete", "application/x-www-form-urlencoded", nil)
	expectRedirect(t, resp, err, "delete service", "/dashboard")

	services, err = env.listings.ListServicesByProvider(ctx, provider.ID)
	if err != nil {
		t.Fatalf("ListServicesByProvider: %v", err)
	}
	if len(services) != 0 {
		t.Fatalf("expected no services after delete, got %d", len(services))
	}

	// 8. Sign out closes the dashboard again.
	resp, err = client.Post(srv.URL+"/signout", "application/x-www-form-urlencoded", nil)
	expectRedirect(t, resp, err, "signout", "/")

	resp, err = client.Get(srv.URL + "/dashboard")
	expectRedirect(t, resp, err, "dashboard after signout", "/signin")
}

func TestIntegration_ClientDeniedDashboard(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()
	client := newClient(t)

	resp, err := client.PostForm(srv.URL+"/signup", signupValues("client@example.com", "client", "password123", "password123"))
	expectRedirect(t, resp, err, "signup", "/")

	resp, err = client.Get(srv.URL + "/dashboard")
	expectRedirect(t, resp, err, "dashboard as client", "/signin")

	resp, err = client.PostForm(srv.URL+"/dashboard/services", url.Values{
		"title": {"Intrusion"},
		"trade": {"Plombier"},
	})
	expectRedirect(t, resp, err, "create as client", "/signin")
}

func TestIntegration_OtherProviderCannotModify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, _ := env.register(t, "Owner", "owner@example.com", domain.RoleProvider, "Rabat")
	_, intruderToken := env.register(t, "Intruder", "intruder@example.com", domain.RoleProvider, "Rabat")

	id, err := env.listings.CreateService(ctx, owner.ID, "Fuite", "", "Plombier")
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	do := func(method, path string, form url.Values) int {
		t.Helper()
		req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(form.Encode()))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: intruderToken})
		resp, err := newClient(t).Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if code := do(http.MethodGet, "/dashboard/services/"+id+"/edit", nil); code != http.StatusNotFound {
		t.Fatalf("edit dialog: expected 404, got %d", code)
	}
	if code := do(http.MethodPost, "/dashboard/services/"+id, url.Values{"title": {"Pirate"}, "trade": {"Plombier"}}); code != http.StatusNotFound {
		t.Fatalf("update: expected 404, got %d", code)
	}
	if code := do(http.MethodPost, "/dashboard/services/"+id+"/delete", nil); code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", code)
	}

	svc, err := env.listings.GetService(ctx, id)
	if err != nil {
		t.Fatalf("service should survive: %v", err)
	}
	if svc.Title != "Fuite" {
		t.Fatalf("service should be unchanged, got %q", svc.Title)
	}
}

// searchFixture: A (Casablanca, Plombier), B (Casablanca, Électricien),
// C (Rabat, Plombier).
func searchFixture(t *testing.T, env *testEnv) (a, b, c *domain.User) {
	t.Helper()
	ctx := context.Background()
	a, _ = env.register(t, "Provider A", "a@example.com", domain.RoleProvider, "Casablanca")
	b, _ = env.register(t, "Provider B", "b@example.com", domain.RoleProvider, "Casablanca")
	c, _ = env.register(t, "Provider C", "c@example.com", domain.RoleProvider, "Rabat")
	for _, s := range []struct{ provider, trade string }{
		{a.ID, "Plombier"},
		{b.ID, "Électricien"},
		{c.ID, "Plombier"},
	} {
		if _, err := env.listings.CreateService(ctx, s.provider, "Service "+s.trade, "", s.trade); err != nil {
			t.Fatalf("CreateService: %v", err)
		}
	}
	return a, b, c
}

func TestIntegration_APISearch(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := searchFixture(t, env)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/search?" + url.Values{"trade": {"Plombier"}, "city": {"Casablanca"}}.Encode())
	if err != nil {
		t.Fatalf("GET /api/search: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Providers []struct {
			Provider struct {
				ID           string `json:"id"`
				PasswordHash string `json:"passwordHash"`
			} `json:"provider"`
			Services []struct {
				Trade string `json:"trade"`
			} `json:"services"`
		} `json:"providers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Providers) != 1 || result.Providers[0].Provider.ID != a.ID {
		t.Fatalf("expected only provider A, got %+v", result.Providers)
	}
	if len(result.Providers[0].Services) != 1 || result.Providers[0].Services[0].Trade != "Plombier" {
		t.Fatalf("expected A's Plombier service, got %+v", result.Providers[0].Services)
	}
	if result.Providers[0].Provider.PasswordHash != "" {
		t.Fatal("password hash must not be exposed")
	}
}

func TestIntegration_SearchPageAndResultsStream(t *testing.T) {
	env := newTestEnv(t)
	searchFixture(t, env)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/search?" + url.Values{"trade": {"Plombier"}, "city": {"Casablanca"}}.Encode())
	if err != nil {
		t.Fatalf("GET /search: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Plombier à Casablanca") {
		t.Fatal("expected search heading")
	}
	if !strings.Contains(body, "Provider A") || strings.Contains(body, "Provider B") || strings.Contains(body, "Provider C") {
		t.Fatal("expected only provider A on the page")
	}

	signals := url.Values{"datastar": {`{"trade":"Menuisier","city":""}`}}
	resp, err = http.Get(srv.URL + "/search/results?" + signals.Encode())
	if err != nil {
		t.Fatalf("GET /search/results: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("results stream: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "search-results") {
		t.Fatal("expected the results fragment")
	}
	if !strings.Contains(body, "Aucun artisan trouvé pour ces critères de recherche.") {
		t.Fatal("expected empty state for a trade nobody offers")
	}
}

func TestIntegration_StoreFailureDegradesPages(t *testing.T) {
	env := newTestEnv(t)
	searchFixture(t, env)
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	env.db.Close()

	resp, err := http.Get(srv.URL + "/search?" + url.Values{"trade": {"Plombier"}}.Encode())
	if err != nil {
		t.Fatalf("GET /search: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search page: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Aucun artisan trouvé pour ces critères de recherche.") {
		t.Fatal("search page: expected the empty state when the store fails")
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("home page: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Trouvez le bon artisan") {
		t.Fatal("home page: expected the hero to render")
	}
	if strings.Contains(body, `class="provider-card"`) {
		t.Fatal("home page: expected no featured providers when the store fails")
	}

	resp, err = http.Get(srv.URL + "/api/search?trade=Plombier")
	if err != nil {
		t.Fatalf("GET /api/search: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("api search: expected 500, got %d", resp.StatusCode)
	}
}

func TestIntegration_ProviderProfile(t *testing.T) {
	env := newTestEnv(t)
	a, _, _ := searchFixture(t, env)
	client, _ := env.register(t, "Amina", "amina@example.com", domain.RoleClient, "Rabat")
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/providers/" + a.ID)
	if err != nil {
		t.Fatalf("GET provider: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Provider A") || !strings.Contains(body, "mailto:a@example.com") {
		t.Fatal("expected provider details and mail link")
	}
	if strings.Contains(body, "0600000000") {
		t.Fatal("phone must stay hidden until revealed")
	}

	resp, err = http.Get(srv.URL + "/providers/" + a.ID + "/phone?show=1")
	if err != nil {
		t.Fatalf("GET phone: %v", err)
	}
	body = readBody(t, resp)
	if !strings.Contains(body, "0600000000") {
		t.Fatal("expected revealed phone in stream")
	}

	for _, id := range []string{"does-not-exist", client.ID} {
		resp, err = http.Get(srv.URL + "/providers/" + id)
		if err != nil {
			t.Fatalf("GET provider %s: %v", id, err)
		}
		body = readBody(t, resp)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("provider %s: expected 404, got %d", id, resp.StatusCode)
		}
		if !strings.Contains(body, "Artisan non trouvé") {
			t.Fatalf("provider %s: expected not found view", id)
		}
	}

	resp, err = http.Get(srv.URL + "/api/providers/" + a.ID)
	if err != nil {
		t.Fatalf("GET /api/providers: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api provider: expected 200, got %d", resp.StatusCode)
	}
}

func TestIntegration_AuthMe(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "Amina", "amina@example.com", domain.RoleClient, "Rabat")
	srv := httptest.NewServer(env.mux(t, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/auth/me")
	if err != nil {
		t.Fatalf("GET /api/auth/me: %v", err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/auth/me: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.Email != "amina@example.com" || body.User.Role != "client" {
		t.Fatalf("unexpected user: %+v", body.User)
	}
}
