// Command auditlens serves the activity log dashboards, search and export API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/api"
	"github.com/persistorai/auditlens/internal/config"
	"github.com/persistorai/auditlens/internal/db"
	"github.com/persistorai/auditlens/internal/db/migrations"
	"github.com/persistorai/auditlens/internal/dbpool"
	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/metrics"
	"github.com/persistorai/auditlens/internal/service"
	"github.com/persistorai/auditlens/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("auditlens stopped")
	}
}

func run(log *logrus.Logger) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns)) //nolint:gosec // bounded by config validation.
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}
	metrics.RegisterPoolStats(pool.Stat)

	base := store.Base{Pool: pool, Log: log}
	activity := store.NewActivityStore(base)

	users, redisClient, err := openUserDirectory(ctx, cfg, base, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := service.NewAuditWorker(activity, log, cfg.AuditQueueSize)

	var workerDone sync.WaitGroup
	workerDone.Add(1)
	go func() {
		defer workerDone.Done()
		worker.Run(workerCtx)
	}()

	probes := []service.Probe{
		{Name: "database", Ping: activity.Ping},
		{Name: "users_" + users.Name(), Ping: users.Ping},
	}

	dashboards := service.NewDashboardService(
		service.NewSecurityAggregator(activity, users, cfg.DashboardConcurrency, log),
		service.NewPerformanceAggregator(activity, cfg.DashboardConcurrency, log),
		service.NewAnalyticsAggregator(activity, users, cfg.DashboardConcurrency, log),
		service.NewHealthAggregator(activity, probes, store.MonitoredTables, time.Now(), cfg.DashboardConcurrency, log),
		cfg.RequestTimeout, log,
	)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:        log,
		Dashboards: dashboards,
		Logs:       service.NewLogQueryService(activity, users, cfg.RequestTimeout, log),
		Export:     service.NewExportService(activity, users, worker, cfg.ExportMaxRecords, db.SchemaVersion(), cfg.RequestTimeout, log),
		Readiness: []api.ReadinessCheck{
			{Name: "database", Check: pool.HealthCheck},
			{Name: "schema", Check: activity.CheckSchema},
			{Name: "users", Check: users.Ping},
		},
		CORSOrigins:  cfg.CORSOrigins,
		Version:      config.Version,
		ExposeErrors: !cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	serve := func(name string, s *http.Server) {
		log.WithFields(logrus.Fields{"server": name, "addr": s.Addr}).Info("listening")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}
	go serve("api", srv)
	go serve("metrics", metricsSrv)

	log.WithFields(logrus.Fields{
		"version":    config.Version,
		"env":        cfg.Environment,
		"user_store": users.Name(),
	}).Info("auditlens started")

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case serveErr = <-errCh:
		log.WithError(serveErr).Error("server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("api server shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("metrics server shutdown")
	}

	stopWorker()
	workerDone.Wait()

	return serveErr
}

// openUserDirectory returns the configured user directory. The Redis client
// is returned so the caller can close it; it is nil for the Postgres backend.
func openUserDirectory(
	ctx context.Context, cfg *config.Config, base store.Base, log *logrus.Logger,
) (domain.UserDirectory, *redis.Client, error) {
	if cfg.UserStore != config.UserStoreRedis {
		return store.NewUserStore(base), nil, nil
	}

	client, err := store.NewRedisClient(ctx, cfg.RedisURL.Value())
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return store.NewRedisUserStore(client, log), client, nil
}
