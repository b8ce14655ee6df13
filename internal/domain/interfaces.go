// Package domain defines the canonical interfaces shared between the stores,
// services, and HTTP layer. Consumers should depend on these interfaces
// rather than re-declaring equivalent ones.
package domain

import (
	"context"
	"time"

	"github.com/persistorai/auditlens/internal/models"
)

// EventReader lists and counts raw activity log events.
type EventReader interface {
	ListEvents(ctx context.Context, q models.EventQuery) ([]models.ActivityLog, error)
	CountEvents(ctx context.Context, q models.EventQuery) (int64, error)
}

// EventAppender appends events to the activity log.
type EventAppender interface {
	AppendEvent(ctx context.Context, e *models.ActivityLog) error
}

// LogSearcher runs filtered, paginated log searches.
type LogSearcher interface {
	SearchLogs(ctx context.Context, f models.LogFilter, limit, offset int) ([]models.ActivityLog, error)
	CountLogs(ctx context.Context, f models.LogFilter) (int64, error)
}

// SecurityEvents is the event access needed by the security dashboard.
type SecurityEvents interface {
	EventReader
	FailedLoginsByIP(ctx context.Context, since time.Time) ([]models.IPFailureGroup, error)
}

// PerformanceEvents is the event access needed by the performance dashboard.
type PerformanceEvents interface {
	HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error)
	ActionStats(ctx context.Context, since time.Time) ([]models.ActionStat, error)
	FailingPaths(ctx context.Context, since time.Time, samples int) ([]models.PathFailure, error)
	ResponseTimeSummary(ctx context.Context, since time.Time) (models.ResponseTimeSummary, error)
	RoleActivity(ctx context.Context, since time.Time) ([]models.RoleActivity, error)
}

// AnalyticsEvents is the event access needed by the analytics dashboard.
type AnalyticsEvents interface {
	LoginsByActorDay(ctx context.Context, since time.Time) ([]models.ActorDayLogins, error)
	ContentActivityByActor(ctx context.Context, since time.Time, actions []string) ([]models.ActorActionCount, error)
	PeakUsage(ctx context.Context, since time.Time) ([]models.PeakUsageSlot, error)
}

// HealthEvents is the event access needed by the system health dashboard.
type HealthEvents interface {
	EventReader
	Ping(ctx context.Context) error
	HourlyFailureSeries(ctx context.Context, since time.Time) ([]models.HourlyFailureCount, error)
	ErrorGroups(ctx context.Context, since time.Time) ([]models.ErrorGroup, error)
	TableStats(ctx context.Context, table string) (models.TableStats, error)
}

// UserDirectory is the read-only user snapshot store.
type UserDirectory interface {
	Name() string
	Ping(ctx context.Context) error
	ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserSnapshot, error)
	GetUsers(ctx context.Context, ids []string) (map[string]*models.UserSnapshot, error)
}

// DashboardService builds the four dashboards. Raw window sizes come
// straight from the query string; empty means the default.
type DashboardService interface {
	Security(ctx context.Context, windowSize string) (*models.SecurityDashboard, error)
	Performance(ctx context.Context, windowSize string) (*models.PerformanceDashboard, error)
	Analytics(ctx context.Context, windowSize string) (*models.AnalyticsDashboard, error)
	Health(ctx context.Context) (*models.HealthDashboard, error)
}

// LogService answers paginated log searches.
type LogService interface {
	Search(ctx context.Context, params models.LogFilterParams, page, limit string) (*models.LogPage, error)
}

// ExportService renders filtered logs to a downloadable file.
type ExportService interface {
	Export(ctx context.Context, params models.LogFilterParams, format string, actor models.Actor) (*models.ExportResult, error)
}
