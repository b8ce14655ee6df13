package api_test

import (
	"context"

	"github.com/persistorai/auditlens/internal/models"
)

type mockDashboards struct {
	security    func(ctx context.Context, windowSize string) (*models.SecurityDashboard, error)
	performance func(ctx context.Context, windowSize string) (*models.PerformanceDashboard, error)
	analytics   func(ctx context.Context, windowSize string) (*models.AnalyticsDashboard, error)
	health      func(ctx context.Context) (*models.HealthDashboard, error)
}

func (m *mockDashboards) Security(ctx context.Context, windowSize string) (*models.SecurityDashboard, error) {
	return m.security(ctx, windowSize)
}

func (m *mockDashboards) Performance(ctx context.Context, windowSize string) (*models.PerformanceDashboard, error) {
	return m.performance(ctx, windowSize)
}

func (m *mockDashboards) Analytics(ctx context.Context, windowSize string) (*models.AnalyticsDashboard, error) {
	return m.analytics(ctx, windowSize)
}

func (m *mockDashboards) Health(ctx context.Context) (*models.HealthDashboard, error) {
	return m.health(ctx)
}

type mockLogs struct {
	search func(ctx context.Context, params models.LogFilterParams, page, limit string) (*models.LogPage, error)
}

func (m *mockLogs) Search(ctx context.Context, params models.LogFilterParams, page, limit string) (*models.LogPage, error) {
	return m.search(ctx, params, page, limit)
}

type mockExport struct {
	export func(ctx context.Context, params models.LogFilterParams, format string, actor models.Actor) (*models.ExportResult, error)
}

func (m *mockExport) Export(ctx context.Context, params models.LogFilterParams, format string, actor models.Actor) (*models.ExportResult, error) {
	return m.export(ctx, params, format, actor)
}
