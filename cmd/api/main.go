// Command api runs the journaling backend HTTP server.
//
// Startup order: env file, config, logger, OpenTelemetry, SQLite + schema,
// blob store, reminder scheduler, router, then the HTTP listener with
// graceful shutdown on SIGINT/SIGTERM.
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
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flyawayapp/go-journal-backend/internal/auth"
	"github.com/flyawayapp/go-journal-backend/internal/blob"
	"github.com/flyawayapp/go-journal-backend/internal/config"
	httpapi "github.com/flyawayapp/go-journal-backend/internal/http"
	"github.com/flyawayapp/go-journal-backend/internal/notify"
	"github.com/flyawayapp/go-journal-backend/internal/observability"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
	"github.com/flyawayapp/go-journal-backend/internal/sysutil"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.GinMode == "debug" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	blobs, err := blob.NewStore(ctx, blob.Config{
		Driver:   blob.Driver(cfg.Blob.Driver),
		Dir:      cfg.Blob.Dir,
		Bucket:   cfg.Blob.Bucket,
		Region:   cfg.Blob.Region,
		Endpoint: cfg.Blob.Endpoint,
		Prefix:   cfg.Blob.Prefix,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Blob.Driver).Msg("blob store init")
	}

	// Reminders are delivered as structured log events. A push gateway can
	// replace this sink without touching the scheduler.
	sched := notify.NewScheduler(notify.SinkFunc(func(r notify.Reminder) {
		log.Info().
			Str("thought_id", r.ThoughtID).
			Str("title", r.Title).
			Str("body", r.Body).
			Time("fire_at", r.FireAt).
			Msg("expiry reminder")
	}))
	defer sched.CancelAll()

	jwtSecret := cfg.JWT.Secret
	if jwtSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, using an ephemeral key; sessions will not survive restarts")
		jwtSecret = uuid.NewString()
	}
	jwtMgr := auth.NewJWTManager(jwtSecret, cfg.JWT.TTL)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, blobs, sched, jwtMgr, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exit")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
