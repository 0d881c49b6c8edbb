package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MarroquinRiv/jarvis/internal/api/handlers"
	middleware "github.com/MarroquinRiv/jarvis/internal/api/middlewares"
	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/core"
	"github.com/MarroquinRiv/jarvis/internal/core/ingest"
	"github.com/MarroquinRiv/jarvis/internal/logger"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, pipeline *ingest.Pipeline, emb core.EmbeddingProvider, llm core.LLMProvider) *Server {
	authHandler := handlers.NewAuthHandler(db, cfg.JWTSecret)
	projectHandler := handlers.NewProjectHandler(db, obj, cfg)
	fileHandler := handlers.NewFileHandler(db, obj, pipeline, cfg)
	chatHandler := handlers.NewChatHandler(db, emb, llm)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(middleware.Auth(cfg.JWTSecret))

			protected.Get("/projects", projectHandler.ListProjects)
			protected.Post("/projects", projectHandler.CreateProject)
			protected.Get("/projects/{id}", projectHandler.GetProject)
			protected.Patch("/projects/{id}", projectHandler.UpdateProject)
			protected.Delete("/projects/{id}", projectHandler.DeleteProject)
			protected.Get("/projects/{id}/files", projectHandler.ListProjectFiles)

			protected.Post("/upload", fileHandler.Upload)
			protected.Put("/files/{id}/replace", fileHandler.Replace)
			protected.Delete("/files/{id}", fileHandler.Delete)
			protected.Get("/files/{id}/download", fileHandler.Download)

			protected.Post("/chat/query", chatHandler.Query)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
