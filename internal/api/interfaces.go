package api

import "github.com/persistorai/auditlens/internal/domain"

// DashboardRepository builds the dashboards served by DashboardHandler.
type DashboardRepository = domain.DashboardService

// LogRepository answers log searches for LogHandler.
type LogRepository = domain.LogService

// ExportRepository renders log exports for LogHandler.
type ExportRepository = domain.ExportService
