package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/metrics"
	"github.com/persistorai/auditlens/internal/models"
)

// Compile-time check: *ExportService must satisfy domain.ExportService.
var _ domain.ExportService = (*ExportService)(nil)

// MaxExportRecords is the hard ceiling on records in one export.
const MaxExportRecords = 10000

const (
	exportResource  = "activity_logs"
	exportSeverity  = 2
	filenameStamp   = "20060102T150405Z"
	exportTimestamp = time.RFC3339Nano
)

// csvColumns is the CSV header, in column order.
var csvColumns = []string{
	"timestamp", "actorId", "actorName", "actorRole", "actorEmail", "action",
	"resource", "status", "severity", "ipAddress", "userAgent", "details",
}

// ExportService renders filtered logs as JSON or CSV and records a
// data_export event for every completed export.
type ExportService struct {
	events        domain.LogSearcher
	users         domain.UserDirectory
	audit         AuditEnqueuer
	maxRecords    int
	schemaVersion int
	timeout       time.Duration
	now           func() time.Time
	log           *logrus.Logger
}

// NewExportService creates an ExportService. maxRecords is capped at
// MaxExportRecords; schemaVersion is stamped on JSON exports. Each export
// runs under timeout unless it is zero.
func NewExportService(
	events domain.LogSearcher, users domain.UserDirectory, audit AuditEnqueuer,
	maxRecords, schemaVersion int, timeout time.Duration, log *logrus.Logger,
) *ExportService {
	if maxRecords <= 0 || maxRecords > MaxExportRecords {
		maxRecords = MaxExportRecords
	}

	return &ExportService{
		events:        events,
		users:         users,
		audit:         audit,
		maxRecords:    maxRecords,
		schemaVersion: schemaVersion,
		timeout:       timeout,
		now:           time.Now,
		log:           log,
	}
}

// Export renders every log matching params, newest first, up to the record
// ceiling. The data_export self-log is queued once the body is rendered;
// failing to record it never fails the export.
func (s *ExportService) Export(
	ctx context.Context, params models.LogFilterParams, format string, actor models.Actor,
) (*models.ExportResult, error) {
	ef, err := models.ParseExportFormat(format)
	if err != nil {
		return nil, err
	}

	f, err := params.Build()
	if err != nil {
		return nil, err
	}

	ctx, cancel := withRequestTimeout(ctx, s.timeout)
	defer cancel()

	var (
		logs  []models.ActivityLog
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		logs, err = s.events.SearchLogs(gctx, f, s.maxRecords, 0)
		return err
	})

	g.Go(func() error {
		var err error
		total, err = s.events.CountLogs(gctx, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, deadlineErr(ctx, err)
	}

	if len(logs) > s.maxRecords {
		logs = logs[:s.maxRecords]
	}

	enriched, err := enrichLogs(ctx, s.users, s.log, logs)
	if err != nil {
		return nil, deadlineErr(ctx, err)
	}

	now := s.now().UTC()

	var body []byte
	switch ef {
	case models.ExportCSV:
		body, err = renderCSV(enriched)
	default:
		body, err = json.Marshal(models.ExportEnvelope{
			RecordCount:   len(enriched),
			ExportedAt:    now,
			SchemaVersion: s.schemaVersion,
			Filter:        f,
			Data:          enriched,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", ef, err)
	}

	res := &models.ExportResult{
		Format:      ef,
		Filename:    fmt.Sprintf("activity-logs-%s.%s", now.Format(filenameStamp), ef),
		RecordCount: len(enriched),
		Truncated:   total > int64(len(enriched)),
		Body:        body,
	}

	metrics.ExportsTotal.WithLabelValues(string(ef)).Inc()
	metrics.ExportedRecords.Add(float64(res.RecordCount))

	s.recordExport(f, res, actor, now)

	return res, nil
}

func (s *ExportService) recordExport(f models.LogFilter, res *models.ExportResult, actor models.Actor, now time.Time) {
	if s.audit == nil {
		return
	}

	s.audit.Enqueue(&models.ActivityLog{
		Timestamp: now,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Action:    models.ActionDataExport,
		Resource:  exportResource,
		Status:    models.StatusSuccess,
		Severity:  exportSeverity,
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
		Details: models.Details{
			"filter":      f,
			"recordCount": res.RecordCount,
			"format":      string(res.Format),
			"truncated":   res.Truncated,
		},
	})
}

// renderCSV writes a header and one line per record. Every field is quoted
// and embedded quotes are doubled.
func renderCSV(logs []models.EnrichedLog) ([]byte, error) {
	var buf bytes.Buffer

	writeCSVRow(&buf, csvColumns)

	row := make([]string, len(csvColumns))
	for i := range logs {
		l := &logs[i]

		details := []byte("{}")
		if len(l.Details) > 0 {
			var err error
			if details, err = json.Marshal(l.Details); err != nil {
				return nil, fmt.Errorf("encoding details of %s: %w", l.ID, err)
			}
		}

		email := ""
		if l.Actor != nil {
			email = l.Actor.Email
		}

		row[0] = l.Timestamp.UTC().Format(exportTimestamp)
		row[1] = l.ActorID
		row[2] = l.ActorName
		row[3] = l.ActorRole
		row[4] = email
		row[5] = l.Action
		row[6] = l.Resource
		row[7] = string(l.Status)
		row[8] = strconv.Itoa(l.Severity)
		row[9] = l.IPAddress
		row[10] = l.UserAgent
		row[11] = string(details)

		writeCSVRow(&buf, row)
	}

	return buf.Bytes(), nil
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(field, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}
