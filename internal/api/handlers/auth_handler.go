package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/glitchlobby/lobby-be/internal/auth"
	"github.com/glitchlobby/lobby-be/internal/services"
)

// Retry snippets shown inline on expected failures. The login message is
// identical for an unknown username and a wrong password on purpose.
const (
	duplicateUsernameMessage = "Username already taken. <a href='/register'>Try again</a>"
	invalidLoginMessage      = "Invalid login. <a href='/login'>Try again</a>"
)

// AuthHandler handles registration, login, logout, and account deletion.
type AuthHandler struct {
	users    services.UserServiceProvider
	sessions services.SessionServiceProvider
	gate     *auth.Auth
	ttl      time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, sessions services.SessionServiceProvider, gate *auth.Auth, ttl time.Duration) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, gate: gate, ttl: ttl}
}

// credentials is the body shape shared by register and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// readCredentials accepts either a JSON body or a form-encoded one.
func readCredentials(r *http.Request) (credentials, error) {
	var creds credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return credentials{}, err
		}
		return creds, nil
	}
	if err := r.ParseForm(); err != nil {
		return credentials{}, err
	}
	creds.Username = r.PostFormValue("username")
	creds.Password = r.PostFormValue("password")
	return creds, nil
}

// Register handles new user registration and logs the user straight in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil || creds.Username == "" || creds.Password == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.Create(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateUsername) {
			serveSnippet(w, duplicateUsernameMessage)
			return
		}
		log.Error().Err(err).Str("username", creds.Username).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user.ID)
}

// Login handles user authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(r)
	if err != nil || creds.Username == "" {
		http.Error(w, "username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", creds.Username).Msg("Failed authentication attempt")
			serveSnippet(w, invalidLoginMessage)
			return
		}
		log.Error().Err(err).Msg("Login failed")
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user.ID)
}

// Logout destroys the current session, if any, and sends the user home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.SessionFrom(r.Context()); ok {
		if err := h.sessions.Destroy(session.Token); err != nil {
			log.Error().Err(err).Msg("Failed to destroy session")
			http.Error(w, "Failed to log out", http.StatusInternalServerError)
			return
		}
	}
	h.gate.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Delete removes the caller's account. The session rows cascade with the
// user, so no authenticated session can outlive its owner.
func (h *AuthHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := h.users.Delete(session.UserID); err != nil {
		log.Error().Err(err).Int64("user_id", session.UserID).Msg("Failed to delete user")
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	h.gate.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// startSession persists a fresh session for the user and redirects to the lobby.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) {
	token, err := h.sessions.Create()
	if err == nil {
		err = h.sessions.SetUser(token, userID)
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create session")
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.gate.IssueCookie(w, token, h.ttl)
	http.Redirect(w, r, "/lobby", http.StatusFound)
}

// serveSnippet writes an inline HTML retry message, mirroring the landing
// flow of the registration and login forms.
func serveSnippet(w http.ResponseWriter, snippet string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(snippet))
}
