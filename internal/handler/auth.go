package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
)

const (
	msgPasswordMismatch = "Les mots de passe ne correspondent pas"
	msgDuplicateEmail   = "Un compte existe déjà avec cet email."
	msgBadCredentials   = "Email ou mot de passe incorrect."
	msgUnexpected       = "Une erreur inattendue s'est produite. Veuillez réessayer."
)

// AuthHandler serves the sign-up, sign-in and sign-out pages.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleSignupPage renders the registration form.
func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	view.SignupPage(view.SignupForm{}, "").Render(r.Context(), w)
}

// HandleSignup creates the account, signs the new user in and redirects home.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	reg := service.Registration{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		Role:            domain.Role(r.FormValue("role")),
		City:            r.FormValue("city"),
		Phone:           r.FormValue("phone"),
	}
	form := view.SignupForm{
		Name:  reg.Name,
		Email: reg.Email,
		Role:  reg.Role,
		City:  reg.City,
		Phone: reg.Phone,
	}

	if _, err := h.auth.Register(r.Context(), reg); err != nil {
		w.WriteHeader(signupStatus(err))
		view.SignupPage(form, signupMessage(err)).Render(r.Context(), w)
		return
	}

	token, err := h.auth.Login(r.Context(), reg.Email, reg.Password)
	if err != nil {
		slog.Error("login after signup", "error", err)
		http.Redirect(w, r, "/signin", http.StatusSeeOther)
		return
	}

	h.setAuthCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func signupStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		slog.Error("register user", "error", err)
		return http.StatusInternalServerError
	}
}

func signupMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return msgPasswordMismatch
	case errors.Is(err, domain.ErrDuplicateEmail):
		return msgDuplicateEmail
	case errors.Is(err, domain.ErrInvalidInput):
		return invalidInputMessage(err)
	default:
		return msgUnexpected
	}
}

// invalidInputMessage strips the sentinel prefix from a validation error.
func invalidInputMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

// HandleSigninPage renders the sign-in form.
func (h *AuthHandler) HandleSigninPage(w http.ResponseWriter, r *http.Request) {
	if UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	view.SigninPage("", "").Render(r.Context(), w)
}

// HandleSignin verifies the credentials and sets the session cookie.
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")

	token, err := h.auth.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			w.WriteHeader(http.StatusUnauthorized)
			view.SigninPage(email, msgBadCredentials).Render(r.Context(), w)
			return
		}
		slog.Error("login user", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		view.SigninPage(email, msgUnexpected).Render(r.Context(), w)
		return
	}

	h.setAuthCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignout clears the session cookie and returns to the home page.
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(authCookieName); err == nil {
		h.auth.Logout(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
	})
}
