// Package server assembles the HTTP routes, middleware stack and CORS policy.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vigilance-driver/vigilance-go/internal/handler"
	"github.com/vigilance-driver/vigilance-go/internal/metrics"
	"github.com/vigilance-driver/vigilance-go/internal/middleware"
	"github.com/vigilance-driver/vigilance-go/internal/service"
)

const banner = "Vigilance Driver Backend Running"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	Auth            *service.AuthService
	Sessions        *service.SessionService
	Tokens          middleware.TokenVerifier
	AllowedOrigin   string
	SessionMaxBytes int64
}

// NewRouter builds the API handler.
func NewRouter(d Deps) http.Handler {
	authHandler := handler.NewAuthHandler(d.Auth)
	sessionHandler := handler.NewSessionHandler(d.Sessions)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(d.Metrics.Middleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(banner))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{d.AllowedOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))

		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)

		// The body is validated before the bearer token on save.
		r.With(
			middleware.DecodeJSONObject(d.SessionMaxBytes),
			middleware.JWTAuth(d.Tokens),
		).Post("/session", sessionHandler.HandleSave)

		r.With(middleware.JWTAuth(d.Tokens)).Get("/sessions", sessionHandler.HandleList)
	})

	return r
}
