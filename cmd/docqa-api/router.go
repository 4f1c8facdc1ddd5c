package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical/docqa/cmd/docqa-api/handlers"
	"github.com/spherical/docqa/cmd/docqa-api/middleware"
	"github.com/spherical/docqa/internal/app"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(a *app.App) http.Handler {
	cfg := a.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(a.Logger.WithComponent("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))

	r.Get("/health", a.Health.LiveHandler())
	r.Get("/ready", a.Health.ReadyHandler())
	r.Handle("/metrics", a.Metrics.Handler())

	uploadHandler := handlers.NewUploadHandler(a.Logger, a.Graph, cfg.Ingestion.MaxUploadBytes, cfg.Ingestion.PreviewChars)
	askHandler := handlers.NewAskHandler(a.Logger, a.Graph)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))

		r.Post("/upload", uploadHandler.Upload)
		r.Post("/chat", askHandler.Ask)
		r.Post("/ask", askHandler.Ask)
		r.Get("/formats", handlers.Formats(cfg.Ingestion.MaxUploadBytes, a.Converter))
	})

	return r
}
