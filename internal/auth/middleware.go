package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/glitchlobby/lobby-be/internal/models"
	"github.com/glitchlobby/lobby-be/internal/services"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// SessionKey is the context key for the resolved session.
type contextKey string

const SessionKey = contextKey("session")

// Auth resolves session cookies and guards routes that need a logged-in user.
type Auth struct {
	sessions services.SessionServiceProvider
	secret   []byte
}

// New creates an Auth using the given session store and signing secret.
func New(sessions services.SessionServiceProvider, secret []byte) *Auth {
	return &Auth{sessions: sessions, secret: secret}
}

// Middleware resolves the session cookie into the request context. It never
// rejects a request; a missing, forged, or expired cookie just means the
// request proceeds anonymous.
func (a *Auth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(CookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := Verify(cookie.Value, a.secret)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			session, err := a.sessions.Get(token)
			if err != nil {
				if !errors.Is(err, services.ErrSessionNotFound) {
					log.Error().Err(err).Msg("session lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth gates a route on an authenticated session. Anonymous requests
// are sent to the login page rather than given an error status.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFrom(r.Context())
		if !ok || !session.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFrom extracts the session placed in the context by Middleware.
func SessionFrom(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(SessionKey).(models.Session)
	return session, ok
}

// IssueCookie sets the signed session cookie on the response.
func (a *Auth) IssueCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    Sign(token, a.secret),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearCookie expires the session cookie.
func (a *Auth) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}
