package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://dashboard.hpgroup.my", "http://localhost:3000", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Shop (commerce) metrics
		r.Route("/shop", func(r chi.Router) {
			r.Get("/gmv", h.GetShopGMV)
			r.Get("/gmv/gross", h.GetShopGMVGross)
		})

		// Ads metrics
		r.Route("/ads", func(r chi.Router) {
			r.Get("/gmv-max", h.GetGMVMax)
			r.Get("/gmv-max/rooms", h.GetLiveRooms)
			r.Get("/manual-spend", h.GetManualSpend)
		})

		// Composed ROAS view
		r.Get("/roas", h.GetROAS)

		// Credential maintenance
		r.Post("/tokens/refresh", h.RefreshTokens)
	})

	return r
}
