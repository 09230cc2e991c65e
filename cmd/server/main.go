// Command server runs the store backend HTTP API.
//
// Startup sequence:
//  1. Load .env (best effort) and environment configuration.
//  2. Configure global zerolog output and level.
//  3. Open the SQLite database and run schema migrations.
//  4. Initialize OpenTelemetry tracing (no-op unless enabled).
//  5. Wire the upstream catalog client and application services.
//  6. Start the periodic catalog sync scheduler.
//  7. Serve the Gin router with graceful shutdown on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uzplatform/go-store-backend/internal/config"
	httpapi "github.com/uzplatform/go-store-backend/internal/http"
	"github.com/uzplatform/go-store-backend/internal/kinguin"
	"github.com/uzplatform/go-store-backend/internal/observability"
	"github.com/uzplatform/go-store-backend/internal/repo"
	"github.com/uzplatform/go-store-backend/internal/services"
	"github.com/uzplatform/go-store-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup opentelemetry")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("opentelemetry shutdown")
		}
	}()

	var clientOpts []kinguin.Option
	if cfg.Kinguin.BaseURL != "" {
		clientOpts = append(clientOpts, kinguin.WithBaseURL(cfg.Kinguin.BaseURL))
	}
	catalog := kinguin.NewClient(cfg.Kinguin.APIKey, clientOpts...)

	syncSvc := services.NewSyncService(db, catalog, log.Logger)
	syncSvc.PageLimit = cfg.Sync.PageLimit
	syncSvc.MaxPages = cfg.Sync.MaxPages
	syncSvc.PageDelay = cfg.Sync.PageDelay

	procSvc := services.NewProcessService(syncSvc, log.Logger)
	webhookSvc := services.NewWebhookService(db, log.Logger)
	querySvc := services.NewQueryService(db)
	storeCfgSvc := services.NewStoreConfigService(db)
	statsSvc := services.NewAnalyticsService(db)

	scheduler := services.NewPeriodicSync(syncSvc, log.Logger, cfg.Sync.Interval)
	go scheduler.Run(ctx)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Services{
		Products: querySvc,
		Sync:     procSvc,
		Webhooks: webhookSvc,
		Config:   storeCfgSvc,
		Stats:    statsSvc,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.APIBasePath).
			Str("version", version).
			Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		_ = srv.Close()
	}
	log.Info().Msg("server stopped")
}
