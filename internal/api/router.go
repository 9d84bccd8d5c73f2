package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glitchlobby/lobby-be/internal/api/handlers"
	"github.com/glitchlobby/lobby-be/internal/auth"
	"github.com/glitchlobby/lobby-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(gate *auth.Auth, users services.UserServiceProvider, sessions services.SessionServiceProvider, publicDir string, sessionTTL time.Duration, corsOrigin string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every route sees the resolved session, gated routes additionally
	// require it to be authenticated.
	r.Use(gate.Middleware())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(users, sessions, gate, sessionTTL)
	lobbyHandler := handlers.NewLobbyHandler(users, publicDir)

	r.Get("/", lobbyHandler.Landing)
	r.Get("/register", lobbyHandler.RegisterPage)
	r.Post("/register", authHandler.Register)
	r.Get("/login", lobbyHandler.LoginPage)
	r.Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuth)
		r.Get("/lobby", lobbyHandler.LobbyPage)
		r.Get("/api/users", lobbyHandler.ListUsers)
		r.Post("/delete", authHandler.Delete)
	})

	return r
}
