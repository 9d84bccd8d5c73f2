package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/glitchlobby/lobby-be/internal/auth"
	"github.com/glitchlobby/lobby-be/internal/services"
)

// LobbyHandler serves the HTML pages and the lobby user listing.
type LobbyHandler struct {
	users     services.UserServiceProvider
	publicDir string
}

// NewLobbyHandler creates a new LobbyHandler serving pages from publicDir.
func NewLobbyHandler(users services.UserServiceProvider, publicDir string) *LobbyHandler {
	return &LobbyHandler{users: users, publicDir: publicDir}
}

// userInfo is the public view of a user row.
type userInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Landing serves the landing page, or the lobby for a logged-in user.
func (h *LobbyHandler) Landing(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.SessionFrom(r.Context()); ok && session.Authenticated() {
		http.Redirect(w, r, "/lobby", http.StatusFound)
		return
	}
	h.servePage(w, r, "index.html")
}

// RegisterPage serves the registration form.
func (h *LobbyHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "register.html")
}

// LoginPage serves the login form.
func (h *LobbyHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "login.html")
}

// LobbyPage serves the lobby. The route is gated, so the session is
// authenticated by the time this runs.
func (h *LobbyHandler) LobbyPage(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, "lobby.html")
}

// ListUsers returns every registered user, split into the caller and
// everyone else.
func (h *LobbyHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFrom(r.Context())

	users, err := h.users.List()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	var current *userInfo
	others := []userInfo{}
	for _, u := range users {
		info := userInfo{ID: u.ID, Username: u.Username}
		if u.ID == session.UserID {
			current = &info
			continue
		}
		others = append(others, info)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"current": current,
		"others":  others,
	})
}

func (h *LobbyHandler) servePage(w http.ResponseWriter, r *http.Request, name string) {
	http.ServeFile(w, r, filepath.Join(h.publicDir, name))
}
