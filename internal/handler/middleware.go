package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/view"
)

type contextKey string

const userContextKey contextKey = "user"

const (
	authCookieName    = "auth_token"
	sessionRetryAfter = 2 // seconds
)

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// Access is the outcome of the session gate for a protected page.
type Access int

const (
	// AccessLoading: the session could not be resolved yet. Nothing is fetched.
	AccessLoading Access = iota
	// AccessDenied: no session, or the role does not match. Redirect to sign-in.
	AccessDenied
	// AccessAuthorized: the role matches and the page may load its data.
	AccessAuthorized
)

func (a Access) String() string {
	switch a {
	case AccessLoading:
		return "loading"
	case AccessDenied:
		return "denied"
	case AccessAuthorized:
		return "authorized"
	}
	return "unknown(" + strconv.Itoa(int(a)) + ")"
}

// EvaluateAccess decides the gate state. resolved is false while the
// session status is unknown; user is nil for anonymous visitors.
func EvaluateAccess(user *domain.User, resolved bool, required domain.Role) Access {
	switch {
	case !resolved:
		return AccessLoading
	case user == nil || user.Role != required:
		return AccessDenied
	default:
		return AccessAuthorized
	}
}

// OptionalAuth attempts to authenticate but never blocks. If a valid token
// is present, the user is injected into context.
func OptionalAuth(auth *service.AuthService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, resolved := resolveSession(r, auth); resolved && user != nil {
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole gates next behind a session whose user has role. Denied
// requests are redirected to the sign-in page; requests whose session cannot
// be resolved get a self-refreshing loading page.
func RequireRole(auth *service.AuthService, role domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, resolved := resolveSession(r, auth)

		switch EvaluateAccess(user, resolved, role) {
		case AccessLoading:
			w.Header().Set("Retry-After", strconv.Itoa(sessionRetryAfter))
			w.WriteHeader(http.StatusServiceUnavailable)
			view.LoadingPage(sessionRetryAfter).Render(r.Context(), w)
		case AccessDenied:
			http.Redirect(w, r, "/signin", http.StatusSeeOther)
		case AccessAuthorized:
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// resolveSession reads the auth cookie. It reports resolved=false only when
// the token is valid but the profile lookup failed for a reason other than
// a missing user.
func resolveSession(r *http.Request, auth *service.AuthService) (*domain.User, bool) {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return nil, true
	}

	user, err := auth.CurrentUser(r.Context(), cookie.Value)
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, domain.ErrUnauthorized):
		return nil, true
	default:
		slog.Error("resolve session", "error", err)
		return nil, false
	}
}

// RateLimit rejects requests from a client address once limiter runs dry.
func RateLimit(limiter *service.TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			view.ErrorPage(http.StatusTooManyRequests, "Trop de tentatives", "Veuillez patienter avant de réessayer.").Render(r.Context(), w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets conservative response headers on every request.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
