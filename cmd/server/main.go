// Package main is the entry point for the story-cards API server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
//  1. Read configuration (internal/config: .env, optional YAML, env vars)
//  2. Create dependencies (logger, card generator)
//  3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points. This
// project has two: cmd/server (this API) and cmd/storycards (the terminal client).
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/story-cards/internal/config"
	"github.com/sakif/story-cards/internal/generator"
	"github.com/sakif/story-cards/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// A missing .env is fine; a missing JWT_SECRET is not.
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Validate already checked the level, so the error is impossible here.
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll is `mkdir -p`. ":memory:" has no directory to create.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CARD GENERATOR ===
	// Gemini is optional: without GEMINI_API_KEY the server still starts and
	// regeneration reports "not configured" in its response body. With a key,
	// each configured model is tried in order until one answers.
	var gen generator.Generator
	gemini, err := generator.NewGeminiCascade(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Models, logger)
	switch {
	case errors.Is(err, generator.ErrUnavailable):
		logger.Warn("GEMINI_API_KEY not set, card generation is disabled")
		gen = generator.Unconfigured{}
	case err != nil:
		logger.Error("failed to create generator", slog.String("error", err.Error()))
		os.Exit(1)
	default:
		logger.Info("card generator ready",
			slog.Any("models", gemini.Models()),
			slog.String("source", cfg.Gemini.ModelSource),
		)
		gen = gemini
	}

	if !cfg.GitHub.Enabled() {
		logger.Info("GitHub OAuth not configured, /auth/github routes are disabled")
	}

	// === 5. CREATE AND START THE SERVER ===
	ttl, _ := cfg.TokenTTL()
	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		DBPath:         cfg.DBPath,
		JWTSecret:      cfg.JWTSecret,
		TokenTTL:       ttl,
		SecureCookies:  cfg.SecureCookies,
		OwnerCacheSize: cfg.OwnerCacheSize,
		GitHub:         cfg.GitHub,
		ModelSource:    cfg.Gemini.ModelSource,
	}, gen, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM),
	// then closes the database.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
