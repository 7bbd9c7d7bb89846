// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/flyawayapp/go-journal-backend/internal/auth"
	"github.com/flyawayapp/go-journal-backend/internal/blob"
	"github.com/flyawayapp/go-journal-backend/internal/config"
	"github.com/flyawayapp/go-journal-backend/internal/domain"
	"github.com/flyawayapp/go-journal-backend/internal/http/handlers"
	"github.com/flyawayapp/go-journal-backend/internal/http/middleware"
	"github.com/flyawayapp/go-journal-backend/internal/notify"
	"github.com/flyawayapp/go-journal-backend/internal/repo"
	"github.com/flyawayapp/go-journal-backend/internal/services"
)

// thoughtRepoShim adapts the repository free functions to the
// services.ThoughtRepo interface expected by the ThoughtService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type thoughtRepoShim struct{}

// CreateThought proxies repo.CreateThought.
func (thoughtRepoShim) CreateThought(ctx context.Context, db *gorm.DB, t *domain.Thought) (*domain.Thought, error) {
	return repo.CreateThought(ctx, db, t)
}

// ListPublicThoughts proxies repo.ListPublicThoughts.
func (thoughtRepoShim) ListPublicThoughts(ctx context.Context, db *gorm.DB) ([]domain.Thought, error) {
	return repo.ListPublicThoughts(ctx, db)
}

// ListUserThoughts proxies repo.ListUserThoughts.
func (thoughtRepoShim) ListUserThoughts(ctx context.Context, db *gorm.DB, userID string) ([]domain.Thought, error) {
	return repo.ListUserThoughts(ctx, db, userID)
}

// GetUserThought proxies repo.GetUserThought.
func (thoughtRepoShim) GetUserThought(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Thought, error) {
	return repo.GetUserThought(ctx, db, id, userID)
}

// DeleteThought proxies repo.DeleteThought.
func (thoughtRepoShim) DeleteThought(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteThought(ctx, db, id, userID)
}

// CreateActivity proxies repo.CreateActivity.
func (thoughtRepoShim) CreateActivity(ctx context.Context, db *gorm.DB, a *domain.ThoughtActivity) error {
	return repo.CreateActivity(ctx, db, a)
}

// ListActivities proxies repo.ListActivities.
func (thoughtRepoShim) ListActivities(ctx context.Context, db *gorm.DB, userID string) ([]domain.ThoughtActivity, error) {
	return repo.ListActivities(ctx, db, userID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Identity resolution (Bearer session tokens)
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
// 10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, blobs blob.Store, sched *notify.Scheduler, jwtMgr *auth.JWTManager, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (32 MiB; voice uploads need headroom)
	r.Use(limitBody(32 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Resolve identity from Bearer session tokens
	r.Use(auth.Middleware(jwtMgr))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scopeID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scopeID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Name", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Name", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/blobs/scheduler
	thoughtSvc := services.NewThoughtService(db, thoughtRepoShim{}, sched)
	reactionSvc := &services.ReactionService{DB: db}
	moodSvc := &services.MoodService{DB: db, Loc: cfg.Location()}
	msgSvc := &services.MessageService{DB: db, Blobs: blobs, NameLocale: language.English}
	milestoneSvc := &services.MilestoneService{DB: db}
	reportSvc := &services.ReportService{DB: db}
	accountSvc := &services.AccountService{DB: db, Blobs: blobs, Scheduler: sched}

	h := handlers.New(thoughtSvc, reactionSvc, moodSvc, msgSvc, milestoneSvc, reportSvc, accountSvc, jwtMgr)

	// Public API (gzip only on API responses, not /metrics)
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		// Session
		api.POST("/auth/session", h.NewSession)

		// Thoughts
		api.POST("/thoughts", h.CreateThought)
		api.GET("/thoughts", h.ListThoughts)
		api.GET("/thoughts/:id", h.GetThought)
		api.DELETE("/thoughts/:id", h.DeleteThought)
		api.GET("/feed", h.PublicFeed)
		api.GET("/journey", h.Journey)

		// Saves and reactions
		api.POST("/thoughts/:id/save", h.SaveThought)
		api.DELETE("/thoughts/:id/save", h.UnsaveThought)
		api.GET("/saved", h.ListSaved)
		api.POST("/thoughts/:id/reactions", h.React)
		api.DELETE("/thoughts/:id/reactions/:kind", h.Unreact)
		api.GET("/thoughts/:id/reactions", h.ListReactions)

		// Mood check-ins
		api.POST("/mood", h.SaveMood)
		api.GET("/mood/today", h.TodayMood)
		api.GET("/mood/history", h.MoodHistory)

		// Unsent messages
		api.POST("/messages", h.SendMessage)
		api.POST("/messages/voice", h.SendVoiceMessage)
		api.GET("/messages/threads", h.ListThreads)
		api.GET("/messages/threads/:name", h.GetThread)
		api.DELETE("/messages/threads/:name", h.DeleteThread)
		api.DELETE("/messages/:id", h.DeleteMessage)

		// Milestones
		api.POST("/milestones", h.CreateMilestone)
		api.GET("/milestones", h.ListMilestones)
		api.PUT("/milestones/:id", h.UpdateMilestone)
		api.DELETE("/milestones/:id", h.DeleteMilestone)

		// Reports and mindfulness
		api.POST("/reports", h.SubmitReport)
		api.GET("/mindfulness", h.ListMindfulness)

		// Account
		api.DELETE("/account", h.DeleteAccount)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
