package routes

import (
	"net/http"
	"time"

	"github.com/fintrack/finance-tracker/app"
	appmiddleware "github.com/fintrack/finance-tracker/middleware"
	"github.com/fintrack/finance-tracker/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all application routes and middleware.
// Authentication runs for every route; the route policy decides which
// ones are public.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(appmiddleware.SecurityHeaders)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           deps.Config.CORS.MaxAge,
	}))

	r.Use(deps.AuthMiddleware.Authenticate)

	// Health check endpoints
	r.HandleFunc("/healthz", deps.HealthHandler.HandleHealth)
	r.HandleFunc("/readyz", deps.HealthHandler.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", deps.AuthHandler.HandleRegister)
		r.Post("/login", deps.AuthHandler.HandleLogin)
		r.Get("/validate", deps.AuthHandler.HandleValidate)
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/profile", deps.UserHandler.HandleGetProfile)
		r.Put("/profile", deps.UserHandler.HandleUpdateProfile)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
