// Copyright (c) 2025-2026 PageCraft Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command pagecraft runs the showcase site builder API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pagecraft/pagecraft/internal/analytics"
	"github.com/pagecraft/pagecraft/internal/cache"
	"github.com/pagecraft/pagecraft/internal/config"
	"github.com/pagecraft/pagecraft/internal/handler"
	"github.com/pagecraft/pagecraft/internal/logging"
	"github.com/pagecraft/pagecraft/internal/middleware"
	"github.com/pagecraft/pagecraft/internal/session"
	"github.com/pagecraft/pagecraft/internal/site"
	"github.com/pagecraft/pagecraft/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "PageCraft - product showcase site builder\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_DB_PATH            SQLite database path (default: ./data/pagecraft.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_BASE_DOMAIN        Apex domain for site subdomains (default: pagecraft.site)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_ANALYTICS_URL      Umami-compatible analytics server (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PAGECRAFT_REDIS_URL          Redis URL for distributed caching (optional)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("pagecraft %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also mirror WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionManager := session.New(db, cfg.IsDevelopment())

	resultCache, err := cache.New(ctx, cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: analytics.ResultTTL,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := resultCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	var provider analytics.Provider = analytics.Disabled{}
	if cfg.AnalyticsEnabled() {
		provider = analytics.NewClient(analytics.ClientOptions{
			BaseURL:           cfg.AnalyticsURL,
			Username:          cfg.AnalyticsUsername,
			Password:          cfg.AnalyticsPassword,
			RequestsPerSecond: cfg.AnalyticsRPS,
		})
		slog.Info("analytics provider configured", "url", cfg.AnalyticsURL)
	} else {
		slog.Info("analytics provider not configured, reports will be zero-valued")
	}

	queries := store.New(db)
	aggregator := analytics.NewAggregator(provider, resultCache, logger)
	reports := analytics.NewReportBuilder(queries, aggregator, logger)
	siteService := site.NewService(db, provider, cfg.BaseDomain, logger)

	// Warm the analytics cache on a schedule so dashboards stay fast
	if cfg.AnalyticsEnabled() {
		warmer := analytics.NewWarmer(queries, aggregator, logger)
		if err := warmer.Start(); err != nil {
			return fmt.Errorf("starting cache warmer: %w", err)
		}
		defer warmer.Stop()
	}

	authHandler := handler.NewAuthHandler(db, sessionManager, logger)
	siteHandler := handler.NewSiteHandler(siteService, cfg.BaseDomain, logger)
	dashboardHandler := handler.NewDashboardHandler(reports, logger)
	editorHandler := handler.NewEditorHandler(siteService, sessionManager, logger)
	publicHandler := handler.NewPublicHandler(siteService, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(cfg.IsDevelopment()))
	r.Use(sessionManager.LoadAndSave)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			r.Get("/sites", siteHandler.List)
			r.Post("/sites", siteHandler.Create)
			r.Get("/sites/{id}", siteHandler.Get)
			r.Put("/sites/{id}", siteHandler.Update)
			r.Delete("/sites/{id}", siteHandler.Delete)
			r.Post("/sites/{id}/publish", siteHandler.Publish)
			r.Post("/sites/{id}/unpublish", siteHandler.Unpublish)

			r.Get("/dashboard", dashboardHandler.Get)

			r.Get("/editor", editorHandler.State)
			r.Post("/editor/actions", editorHandler.Dispatch)
			r.Post("/editor/save", editorHandler.Save)
		})
	})

	r.Get("/s/{slug}", publicHandler.Site)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
