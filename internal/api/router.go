package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log          *logrus.Logger
	Dashboards   DashboardRepository
	Logs         LogRepository
	Export       ExportRepository
	Readiness    []ReadinessCheck
	CORSOrigins  []string
	Version      string
	ExposeErrors bool
}

// Router-level limits.
const (
	maxBodySize     = 1 << 20 // 1 MB; every route is a GET
	rateLimit       = 100     // requests per second per IP
	rateBurst       = 200     // token bucket burst size
	exportRateLimit = 0.2     // exports per second per actor
	exportBurst     = 3
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(ctx context.Context, r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Actor())
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins: deps.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{
			"Content-Type", middleware.RequestIDHeader,
			middleware.ActorIDHeader, middleware.ActorNameHeader, middleware.ActorRoleHeader,
		},
		ExposeHeaders:    []string{"Content-Disposition", headerRecordCount, headerTruncated, middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.NewRateLimiter(ctx, rateLimit, rateBurst).Handler())
	r.Use(middleware.PrometheusMiddleware())

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(log, deps.Version, deps.Readiness...)
	dashboards := NewDashboardHandler(deps.Dashboards, log, deps.ExposeErrors)
	logs := NewLogHandler(deps.Logs, deps.Export, log, deps.ExposeErrors)

	// Health and readiness.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Dashboards.
	api.GET("/dashboards/security", dashboards.Security)
	api.GET("/dashboards/performance", dashboards.Performance)
	api.GET("/dashboards/analytics", dashboards.Analytics)
	api.GET("/dashboards/health", dashboards.Health)

	// Log search and export. Exports are additionally limited per actor.
	exportLimiter := middleware.NewKeyedRateLimiter(ctx, exportRateLimit, exportBurst, middleware.ActorKeyFunc)
	api.GET("/logs", logs.Search)
	api.GET("/logs/export", exportLimiter.Handler(), logs.Export)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
// Prometheus metrics are served separately; see cmd/auditlens.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(ctx, r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
