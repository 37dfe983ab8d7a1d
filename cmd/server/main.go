package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/DukeRupert/rcadmin/internal"
	"github.com/DukeRupert/rcadmin/internal/apiclient"
	"github.com/DukeRupert/rcadmin/internal/auth"
	"github.com/DukeRupert/rcadmin/internal/handler"
	"github.com/DukeRupert/rcadmin/internal/metrics"
	"github.com/DukeRupert/rcadmin/internal/middleware"
	"github.com/DukeRupert/rcadmin/internal/service"
	"github.com/DukeRupert/rcadmin/internal/session"
	"github.com/DukeRupert/rcadmin/internal/worker"
	"github.com/DukeRupert/rcadmin/web"
)

const (
	// sessionSweepInterval is how often expired session records are purged.
	sessionSweepInterval = 15 * time.Minute
	// sessionGaugeInterval is how often the active session gauge is refreshed.
	sessionGaugeInterval = time.Minute
)

// openSessionStore builds the configured session store. The returned
// closer releases its connections; pinger is nil for the memory store.
func openSessionStore(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (session.Store, handler.Pinger, func() error, error) {
	switch cfg.SessionStore {
	case "postgres":
		db, err := sql.Open("pgx", cfg.DatabaseUrl)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("database ping failed: %w", err)
		}
		if err := internal.RunMigrations(ctx, db, logger); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Session database ready")
		store := session.NewPostgresStore(db)
		return store, store, db.Close, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := session.NewRedisStore(rdb, "")
		if err := store.Ping(ctx); err != nil {
			rdb.Close()
			return nil, nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		logger.Info("Session redis ready", "addr", cfg.RedisAddr)
		return store, store, rdb.Close, nil

	default:
		store := session.NewMemoryStore(logger, 0)
		logger.Warn("Using in-memory session store; sessions will not survive a restart")
		return store, nil, store.Close, nil
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	isSecure := cfg.IsSecure()

	// ==========================================================================
	// Sessions
	// ==========================================================================

	store, pinger, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions := session.NewManager(store, session.Config{TTL: cfg.SessionTTL, Secure: isSecure}, logger)
	if _, err := sessions.Restore(ctx); err != nil {
		logger.Error("Session restore failed", "error", err)
	}

	// Background tasks
	bg, err := worker.New(worker.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	if err := bg.Register(session.SweepTask(store, sessionSweepInterval, logger)); err != nil {
		return err
	}
	if err := bg.Register(session.GaugeTask(store, sessionGaugeInterval)); err != nil {
		return err
	}
	bg.Start(ctx)
	defer bg.Stop()

	// ==========================================================================
	// Remote APIs and services
	// ==========================================================================

	api, err := apiclient.New(apiclient.Config{
		BaseURL:         cfg.APIBaseURL,
		AuthURL:         cfg.AuthAPIURL,
		BidsURL:         cfg.BidsAPIURL,
		ChatDealURL:     cfg.ChatDealAPIURL,
		ProfileAgingURL: cfg.ProfileAgingAPIURL,
		CountsURL:       cfg.CountsAPIURL,
		PriceSummaryURL: cfg.PriceSummaryAPIURL,
		CandidatesURL:   cfg.CandidatesAPIURL,
		TransactionsURL: cfg.TransactionsAPIURL,
		Timeout:         cfg.APITimeout,
		Tokens:          auth.Token,
	}, logger)
	if err != nil {
		return fmt.Errorf("api client initialization failed: %w", err)
	}

	authService := service.NewAuthService(api, cfg.LoginRole, logger)
	adminService := service.NewAdminService(api, logger)
	dashboardService := service.NewDashboardService(api, logger)
	catalogService := service.NewCatalogService(api, logger)

	// Initialize template renderer
	rendererCfg := handler.RendererConfig{
		FS:     web.Templates(),
		Logger: logger,
		IsDev:  cfg.Env == "development",
	}
	if rendererCfg.IsDev {
		if _, err := os.Stat("web/templates"); err == nil {
			rendererCfg.TemplatesDir = "web/templates"
		}
	}
	renderer, err := handler.NewRenderer(rendererCfg)
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// ==========================================================================
	// Middleware
	// ==========================================================================

	authMw := middleware.NewAuthMiddleware(sessions, logger)
	csrfMw := middleware.NewCSRFMiddleware(isSecure, logger)
	loginLimiter := middleware.NewLoginRateLimiter(logger)
	defer loginLimiter.Close()

	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	if !metricsAuth.Enabled() {
		logger.Warn("METRICS_USERNAME and METRICS_PASSWORD are not set; /metrics is unprotected")
	}

	// Every page route sees the session and a CSRF token. The guard is
	// applied per route by RegisterRoutes.
	requireSession := middleware.Stack(authMw.RequireSession)
	redirectIfAuthenticated := authMw.RedirectIfAuthenticated

	// ==========================================================================
	// Handlers
	// ==========================================================================

	authHandler := handler.NewAuthHandler(authService, sessions, loginLimiter, renderer, logger, cfg.LoginRole, isSecure)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, renderer, logger)
	adminHandler := handler.NewAdminHandler(adminService, renderer, logger, isSecure)
	listingsHandler := handler.NewListingsHandler(catalogService, renderer, logger)
	preferencesHandler := handler.NewPreferencesHandler(isSecure)
	healthHandler := handler.NewHealthHandler(pinger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	pages := http.NewServeMux()

	pages.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, middleware.HomePath, http.StatusSeeOther)
	})

	authHandler.RegisterRoutes(pages, redirectIfAuthenticated, loginLimiter.LimitLogin)
	dashboardHandler.RegisterRoutes(pages, requireSession)
	adminHandler.RegisterRoutes(pages, requireSession)
	listingsHandler.RegisterRoutes(pages, requireSession)
	preferencesHandler.RegisterRoutes(pages, requireSession)

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	// Operational endpoints stay outside the session and CSRF layers
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	mux.Handle("/", middleware.Stack(authMw.WithSession, csrfMw.Handler)(pages))

	root := middleware.Stack(
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
	)(mux)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.APITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "session_store", cfg.SessionStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal or a failed listener
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, initiating graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
