// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and routes.
// It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config.Config → server.Config
//	generator.Generator (Gemini, or Unconfigured without an API key)
//
// server.New creates:
//
//	sqlite.DB → OwnerCache → StoryService, SnippetService, AuthService → handlers
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/story-cards/internal/auth"
	"github.com/sakif/story-cards/internal/config"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/handler"
	"github.com/sakif/story-cards/internal/middleware"
	sqliteRepo "github.com/sakif/story-cards/internal/repository/sqlite"
	"github.com/sakif/story-cards/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DBPath         string // path to the SQLite database file, or ":memory:"
	JWTSecret      string
	TokenTTL       time.Duration
	SecureCookies  bool
	OwnerCacheSize int
	GitHub         config.GitHubConfig // GitHub routes are mounted only when Enabled()
	ModelSource    string              // where the Gemini model list came from, for /api/model-status
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it during graceful
// shutdown; callers that never Start (tests) call Close themselves.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	db        *sqliteRepo.DB
	generator generator.Generator
}

// New opens the database and wires every layer.
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, gen generator.Generator, logger *slog.Logger) (*Server, error) {
	if gen == nil {
		gen = generator.Unconfigured{}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		generator: gen,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /health
//	POST   /auth/register | /auth/login | /auth/logout
//	GET    /auth/me                                   (auth)
//	GET    /auth/github/login | /auth/github/callback (only when configured)
//	GET    /api/stories                 POST /api/stories
//	GET    /api/stories/{storyID}       PUT, DELETE
//	GET    /api/stories/{storyID}/messages            POST
//	GET    /api/stories/{storyID}/snippets            → gallery
//	POST   /api/stories/{storyID}/snippets/generate   → regenerate
//	PUT    /api/snippets/{id}                         → sparse edit
//	POST   /api/snippets/{id}/lock                    → toggle lock
//	DELETE /api/snippets/{id}                         → archive
//	POST   /api/snippets/{id}/restore
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (the logger prints it)
// 2. RealIP: extracts real client IP from proxy headers
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger: logs each request with timing info
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	owners, err := service.NewOwnerCache(s.db, s.config.OwnerCacheSize)
	if err != nil {
		return fmt.Errorf("creating owner cache: %w", err)
	}

	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) implements every repository interface
	//   services receive the interfaces, handlers receive the services
	// The handler never touches the database; the service never touches HTTP.
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	storyService := service.NewStoryService(s.db, owners, s.logger)
	snippetService := service.NewSnippetService(s.db, s.db, owners, s.generator, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHub.Enabled() {
		github = auth.NewGitHubProvider(s.config.GitHub.ClientID, s.config.GitHub.ClientSecret, s.config.GitHub.CallbackURL)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.config.SecureCookies, s.logger)
	storyHandler := handler.NewStoryHandler(storyService, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, modelName(s.generator), s.logger)
	modelStatusHandler := handler.NewModelStatusHandler(modelNames(s.generator), s.config.ModelSource)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		} else {
			s.logger.Info("GitHub sign-in disabled (GITHUB_CLIENT_ID/SECRET not set)")
		}
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/model-status", modelStatusHandler.HandleModelStatus)

		r.Route("/stories", func(r chi.Router) {
			r.Get("/", storyHandler.HandleList)
			r.Post("/", storyHandler.HandleCreate)

			r.Route("/{storyID}", func(r chi.Router) {
				r.Get("/", storyHandler.HandleGet)
				r.Put("/", storyHandler.HandleUpdate)
				r.Delete("/", storyHandler.HandleDelete)

				r.Get("/messages", storyHandler.HandleMessages)
				r.Post("/messages", storyHandler.HandleAddMessage)

				r.Get("/snippets", snippetHandler.HandleGallery)
				r.Post("/snippets/generate", snippetHandler.HandleRegenerate)
			})
		})

		r.Route("/snippets/{id}", func(r chi.Router) {
			r.Put("/", snippetHandler.HandleUpdate)
			r.Delete("/", snippetHandler.HandleArchive)
			r.Post("/lock", snippetHandler.HandleToggleLock)
			r.Post("/restore", snippetHandler.HandleRestore)
		})
	})

	return nil
}

// modelName returns the generator's model for /health, or "" when the
// generator doesn't report one (Unconfigured).
func modelName(gen generator.Generator) string {
	if m, ok := gen.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// modelNames returns the fallback chain for /api/model-status. A generator
// with a single model reports just that one.
func modelNames(gen generator.Generator) []string {
	if m, ok := gen.(interface{ Models() []string }); ok {
		return m.Models()
	}
	if name := modelName(gen); name != "" {
		return []string{name}
	}
	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// WriteTimeout is generous because POST .../generate waits on the model.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
