package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/roblucci9302/Lucide-3/internal/api"
	"github.com/roblucci9302/Lucide-3/internal/api/handlers"
	"github.com/roblucci9302/Lucide-3/internal/api/middleware"
)

type RouterConfig struct {
	TokenValidator   middleware.TokenValidator
	DocumentHandler  *handlers.DocumentHandler
	RetrievalHandler *handlers.RetrievalHandler
	DatabaseHandler  *handlers.DatabaseHandler
	SyncHandler      *handlers.SyncHandler
	MaxBodyBytes     int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 25 * 1024 * 1024
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.TokenValidator))

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", cfg.DocumentHandler.Upload)
			r.Post("/analyze", cfg.DocumentHandler.Analyze)
			r.Get("/", cfg.DocumentHandler.List)
			r.Get("/search", cfg.DocumentHandler.Search)
			r.Get("/stats", cfg.DocumentHandler.Stats)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
			r.Post("/{id}/index", cfg.DocumentHandler.Index)
		})

		r.Post("/retrieve", cfg.RetrievalHandler.Retrieve)
		r.Get("/sessions/{id}/citations", cfg.RetrievalHandler.Citations)

		r.Route("/databases", func(r chi.Router) {
			r.Post("/", cfg.DatabaseHandler.Add)
			r.Get("/", cfg.DatabaseHandler.List)
			r.Post("/test", cfg.DatabaseHandler.TestConfig)
			r.Get("/{id}", cfg.DatabaseHandler.Get)
			r.Delete("/{id}", cfg.DatabaseHandler.Delete)
			r.Post("/{id}/activate", cfg.DatabaseHandler.Activate)
			r.Post("/{id}/test", cfg.DatabaseHandler.Test)
		})

		r.Get("/knowledge/status", cfg.DatabaseHandler.Status)
		r.Post("/sync", cfg.SyncHandler.Sync)
	})

	return r
}
