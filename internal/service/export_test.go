package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/persistorai/auditlens/internal/models"
)

func exportFixture(n int) []models.ActivityLog {
	logs := make([]models.ActivityLog, n)
	for i := range logs {
		logs[i] = models.ActivityLog{
			ID:        fmt.Sprintf("e%d", i),
			Timestamp: testNow.Add(-time.Duration(i) * time.Minute),
			ActorID:   "u1",
			ActorName: "alice",
			Action:    "content_updated",
			Resource:  "blog",
			Status:    models.StatusFailure,
			Severity:  3,
			Details:   models.Details{models.DetailErrorMessage: `upstream said "no"`},
		}
	}
	return logs
}

func newTestExport(events *mockEventStore, audit AuditEnqueuer) *ExportService {
	users := &mockUserDirectory{users: []models.UserSnapshot{{ID: "u1", Username: "alice", Email: "a@example.com"}}}
	s := NewExportService(events, users, audit, MaxExportRecords, 2, 0, testLogger())
	s.now = func() time.Time { return testNow }
	return s
}

func TestExport_ScenarioC_CSV(t *testing.T) {
	events := &mockEventStore{
		searchLogs: func(context.Context, models.LogFilter, int, int) ([]models.ActivityLog, error) {
			return exportFixture(10), nil
		},
		countLogs: func(context.Context, models.LogFilter) (int64, error) { return 10, nil },
	}
	audit := &mockEnqueuer{}

	res, err := newTestExport(events, audit).Export(context.Background(), models.LogFilterParams{}, "csv", models.Actor{ID: "u9"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(string(res.Body), "\n"), "\n")
	if len(lines) != 11 {
		t.Fatalf("lines = %d, want 11", len(lines))
	}
	for i, line := range lines {
		if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			t.Errorf("line %d not fully quoted: %s", i, line)
		}
		if got := strings.Count(line, `","`); got != len(csvColumns)-1 {
			t.Errorf("line %d has %d quoted separators, want %d", i, got, len(csvColumns)-1)
		}
	}

	if res.Filename != "activity-logs-20260315T123000Z.csv" {
		t.Errorf("filename = %q", res.Filename)
	}
	if res.RecordCount != 10 || res.Truncated {
		t.Errorf("result = %+v", res)
	}
}

func TestExport_CSVRoundTripsQuotes(t *testing.T) {
	events := &mockEventStore{
		searchLogs: func(context.Context, models.LogFilter, int, int) ([]models.ActivityLog, error) {
			logs := exportFixture(1)
			logs[0].UserAgent = `agent "quoted", with comma`
			return logs, nil
		},
		countLogs: func(context.Context, models.LogFilter) (int64, error) { return 1, nil },
	}

	res, err := newTestExport(events, nil).Export(context.Background(), models.LogFilterParams{}, "csv", models.Actor{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if !bytes.Contains(res.Body, []byte(`""no\""`)) {
		t.Errorf("details quotes not doubled: %s", res.Body)
	}

	records, err := csv.NewReader(bytes.NewReader(res.Body)).ReadAll()
	if err != nil {
		t.Fatalf("csv parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	header, row := records[0], records[1]
	if header[len(header)-1] != "details" || header[4] != "actorEmail" {
		t.Errorf("header = %v", header)
	}
	if row[4] != "a@example.com" {
		t.Errorf("actorEmail = %q", row[4])
	}
	if row[10] != `agent "quoted", with comma` {
		t.Errorf("userAgent = %q", row[10])
	}

	var details map[string]string
	if err := json.Unmarshal([]byte(row[11]), &details); err != nil {
		t.Fatalf("details not JSON: %v (%q)", err, row[11])
	}
	if details["errorMessage"] != `upstream said "no"` {
		t.Errorf("errorMessage = %q", details["errorMessage"])
	}
}

func TestExport_JSONEnvelopeAndSelfLog(t *testing.T) {
	var gotLimit, gotOffset int

	events := &mockEventStore{
		searchLogs: func(_ context.Context, _ models.LogFilter, limit, offset int) ([]models.ActivityLog, error) {
			gotLimit, gotOffset = limit, offset
			return exportFixture(3), nil
		},
		countLogs: func(context.Context, models.LogFilter) (int64, error) { return 12000, nil },
	}
	audit := &mockEnqueuer{}
	actor := models.Actor{ID: "u9", Name: "auditor", Role: "admin", IPAddress: "192.0.2.1"}

	res, err := newTestExport(events, audit).Export(context.Background(), models.LogFilterParams{Action: "content_updated"}, "", actor)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if gotLimit != MaxExportRecords || gotOffset != 0 {
		t.Errorf("limit/offset = %d/%d", gotLimit, gotOffset)
	}
	if res.Format != models.ExportJSON || !strings.HasSuffix(res.Filename, ".json") {
		t.Errorf("result = %+v", res)
	}
	if !res.Truncated {
		t.Error("expected truncated when more rows match than were exported")
	}

	var env models.ExportEnvelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.RecordCount != 3 || len(env.Data) != 3 || env.SchemaVersion != 2 || !env.ExportedAt.Equal(testNow) {
		t.Errorf("envelope = %+v", env)
	}
	if env.Filter.Action != "content_updated" {
		t.Errorf("filter = %+v", env.Filter)
	}

	logged := audit.getEvents()
	if len(logged) != 1 {
		t.Fatalf("self-log events = %d, want 1", len(logged))
	}
	e := logged[0]
	if e.Action != models.ActionDataExport || e.ActorID != "u9" || e.IPAddress != "192.0.2.1" {
		t.Errorf("self-log = %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Errorf("self-log invalid: %v", err)
	}
	if e.Details["recordCount"] != 3 || e.Details["format"] != "json" {
		t.Errorf("self-log details = %v", e.Details)
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	events := &mockEventStore{}
	audit := &mockEnqueuer{}

	_, err := newTestExport(events, audit).Export(context.Background(), models.LogFilterParams{}, "xml", models.Actor{})

	var fe *models.FilterError
	if !errors.As(err, &fe) || fe.Field != "format" {
		t.Fatalf("err = %v, want FilterError on format", err)
	}
	if len(events.calls) != 0 || len(audit.getEvents()) != 0 {
		t.Error("failed export should not query or self-log")
	}
}

func TestExport_StoreFailureSkipsSelfLog(t *testing.T) {
	events := &mockEventStore{
		searchLogs: func(context.Context, models.LogFilter, int, int) ([]models.ActivityLog, error) {
			return nil, models.Unavailable("searching logs", errors.New("down"))
		},
	}
	audit := &mockEnqueuer{}

	_, err := newTestExport(events, audit).Export(context.Background(), models.LogFilterParams{}, "csv", models.Actor{})
	if !errors.Is(err, models.ErrDataSourceUnavailable) {
		t.Errorf("err = %v", err)
	}
	if len(audit.getEvents()) != 0 {
		t.Error("failed export should not self-log")
	}
}

func TestNewExportService_CapsRecords(t *testing.T) {
	s := NewExportService(&mockEventStore{}, &mockUserDirectory{}, nil, 50000, 1, 0, testLogger())
	if s.maxRecords != MaxExportRecords {
		t.Errorf("maxRecords = %d, want %d", s.maxRecords, MaxExportRecords)
	}
}

func TestExport_RequestTimeout(t *testing.T) {
	events := &mockEventStore{
		searchLogs: func(ctx context.Context, _ models.LogFilter, _, _ int) ([]models.ActivityLog, error) {
			<-ctx.Done()
			return nil, models.Unavailable("searching logs", errors.New("canceling statement"))
		},
	}
	audit := &mockEnqueuer{}

	s := NewExportService(events, &mockUserDirectory{}, audit, MaxExportRecords, 2, 20*time.Millisecond, testLogger())

	start := time.Now()
	_, err := s.Export(context.Background(), models.LogFilterParams{}, "json", models.Actor{ID: "u9"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("export outlived the request timeout")
	}
	if got := audit.getEvents(); len(got) != 0 {
		t.Errorf("timed out export was recorded: %d events", len(got))
	}
}
