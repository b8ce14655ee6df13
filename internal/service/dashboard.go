// Package service holds the dashboard aggregators, log search, and export
// logic between the HTTP handlers and the stores.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/metrics"
	"github.com/persistorai/auditlens/internal/models"
)

// Compile-time check: *DashboardService must satisfy domain.DashboardService.
var _ domain.DashboardService = (*DashboardService)(nil)

// Dashboard names used in metrics and logs.
const (
	DashboardSecurity    = "security"
	DashboardPerformance = "performance"
	DashboardAnalytics   = "analytics"
	DashboardHealth      = "health"
)

// healthWindowHours is the fixed look-back of the health dashboard.
const healthWindowHours = "24"

// DashboardService resolves the time window for each dashboard, runs its
// aggregator under the request timeout, and reports timings.
type DashboardService struct {
	security    *SecurityAggregator
	performance *PerformanceAggregator
	analytics   *AnalyticsAggregator
	health      *HealthAggregator
	timeout     time.Duration
	now         func() time.Time
	log         *logrus.Logger
}

// NewDashboardService creates a DashboardService. A zero timeout leaves the
// caller's deadline in charge.
func NewDashboardService(
	security *SecurityAggregator, performance *PerformanceAggregator,
	analytics *AnalyticsAggregator, health *HealthAggregator,
	timeout time.Duration, log *logrus.Logger,
) *DashboardService {
	return &DashboardService{
		security:    security,
		performance: performance,
		analytics:   analytics,
		health:      health,
		timeout:     timeout,
		now:         time.Now,
		log:         log,
	}
}

// Security builds the security dashboard over windowSize hours.
func (s *DashboardService) Security(ctx context.Context, windowSize string) (*models.SecurityDashboard, error) {
	w, err := WindowSince(s.now(), windowSize, Hours)
	if err != nil {
		return nil, err
	}

	return assemble(ctx, s, DashboardSecurity, w, s.security.Build)
}

// Performance builds the performance dashboard over windowSize hours.
func (s *DashboardService) Performance(ctx context.Context, windowSize string) (*models.PerformanceDashboard, error) {
	w, err := WindowSince(s.now(), windowSize, Hours)
	if err != nil {
		return nil, err
	}

	return assemble(ctx, s, DashboardPerformance, w, s.performance.Build)
}

// Analytics builds the usage analytics dashboard over windowSize days.
func (s *DashboardService) Analytics(ctx context.Context, windowSize string) (*models.AnalyticsDashboard, error) {
	w, err := WindowSince(s.now(), windowSize, Days)
	if err != nil {
		return nil, err
	}

	return assemble(ctx, s, DashboardAnalytics, w, s.analytics.Build)
}

// Health builds the system health dashboard over the last 24 hours.
func (s *DashboardService) Health(ctx context.Context) (*models.HealthDashboard, error) {
	w, err := WindowSince(s.now(), healthWindowHours, Hours)
	if err != nil {
		return nil, err
	}

	return assemble(ctx, s, DashboardHealth, w, s.health.Build)
}

// assemble runs build under the request timeout. Either every section is
// returned or none is.
func assemble[T any](
	ctx context.Context, s *DashboardService, name string, w models.Window,
	build func(context.Context, models.Window) (*T, error),
) (*T, error) {
	ctx, cancel := withRequestTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := build(ctx, w)
	elapsed := time.Since(start)

	metrics.DashboardDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		metrics.DashboardFailures.WithLabelValues(name).Inc()

		return nil, fmt.Errorf("building %s dashboard: %w", name, deadlineErr(ctx, err))
	}

	s.log.WithFields(logrus.Fields{
		"dashboard":   name,
		"window_size": w.Size,
		"elapsed_ms":  elapsed.Milliseconds(),
	}).Debug("dashboard assembled")

	return out, nil
}

// withRequestTimeout bounds ctx by timeout. A zero timeout leaves the
// caller's deadline in charge.
func withRequestTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}

// deadlineErr marks err as a deadline failure when ctx expired, even if the
// store surfaced a different error while being cancelled.
func deadlineErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}

	return err
}
