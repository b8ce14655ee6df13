package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

// mockEventStore records calls and returns configured responses. Unset
// functions return empty results.
type mockEventStore struct {
	mu    sync.Mutex
	calls []string

	listEvents          func(ctx context.Context, q models.EventQuery) ([]models.ActivityLog, error)
	countEvents         func(ctx context.Context, q models.EventQuery) (int64, error)
	failedLoginsByIP    func(ctx context.Context, since time.Time) ([]models.IPFailureGroup, error)
	hourlyActivity      func(ctx context.Context, since time.Time) ([]models.HourlyActivity, error)
	actionStats         func(ctx context.Context, since time.Time) ([]models.ActionStat, error)
	failingPaths        func(ctx context.Context, since time.Time, samples int) ([]models.PathFailure, error)
	responseTimeSummary func(ctx context.Context, since time.Time) (models.ResponseTimeSummary, error)
	roleActivity        func(ctx context.Context, since time.Time) ([]models.RoleActivity, error)
	loginsByActorDay    func(ctx context.Context, since time.Time) ([]models.ActorDayLogins, error)
	contentByActor      func(ctx context.Context, since time.Time, actions []string) ([]models.ActorActionCount, error)
	peakUsage           func(ctx context.Context, since time.Time) ([]models.PeakUsageSlot, error)
	hourlyFailureSeries func(ctx context.Context, since time.Time) ([]models.HourlyFailureCount, error)
	errorGroups         func(ctx context.Context, since time.Time) ([]models.ErrorGroup, error)
	tableStats          func(ctx context.Context, table string) (models.TableStats, error)
	ping                func(ctx context.Context) error
	searchLogs          func(ctx context.Context, f models.LogFilter, limit, offset int) ([]models.ActivityLog, error)
	countLogs           func(ctx context.Context, f models.LogFilter) (int64, error)
}

func (m *mockEventStore) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *mockEventStore) called(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (m *mockEventStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.ActivityLog, error) {
	m.record("ListEvents")
	if m.listEvents == nil {
		return nil, nil
	}
	return m.listEvents(ctx, q)
}

func (m *mockEventStore) CountEvents(ctx context.Context, q models.EventQuery) (int64, error) {
	m.record("CountEvents")
	if m.countEvents == nil {
		return 0, nil
	}
	return m.countEvents(ctx, q)
}

func (m *mockEventStore) FailedLoginsByIP(ctx context.Context, since time.Time) ([]models.IPFailureGroup, error) {
	m.record("FailedLoginsByIP")
	if m.failedLoginsByIP == nil {
		return nil, nil
	}
	return m.failedLoginsByIP(ctx, since)
}

func (m *mockEventStore) HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error) {
	m.record("HourlyActivity")
	if m.hourlyActivity == nil {
		return nil, nil
	}
	return m.hourlyActivity(ctx, since)
}

func (m *mockEventStore) ActionStats(ctx context.Context, since time.Time) ([]models.ActionStat, error) {
	m.record("ActionStats")
	if m.actionStats == nil {
		return nil, nil
	}
	return m.actionStats(ctx, since)
}

func (m *mockEventStore) FailingPaths(ctx context.Context, since time.Time, samples int) ([]models.PathFailure, error) {
	m.record("FailingPaths")
	if m.failingPaths == nil {
		return nil, nil
	}
	return m.failingPaths(ctx, since, samples)
}

func (m *mockEventStore) ResponseTimeSummary(ctx context.Context, since time.Time) (models.ResponseTimeSummary, error) {
	m.record("ResponseTimeSummary")
	if m.responseTimeSummary == nil {
		return models.ResponseTimeSummary{}, nil
	}
	return m.responseTimeSummary(ctx, since)
}

func (m *mockEventStore) RoleActivity(ctx context.Context, since time.Time) ([]models.RoleActivity, error) {
	m.record("RoleActivity")
	if m.roleActivity == nil {
		return nil, nil
	}
	return m.roleActivity(ctx, since)
}

func (m *mockEventStore) LoginsByActorDay(ctx context.Context, since time.Time) ([]models.ActorDayLogins, error) {
	m.record("LoginsByActorDay")
	if m.loginsByActorDay == nil {
		return nil, nil
	}
	return m.loginsByActorDay(ctx, since)
}

func (m *mockEventStore) ContentActivityByActor(ctx context.Context, since time.Time, actions []string) ([]models.ActorActionCount, error) {
	m.record("ContentActivityByActor")
	if m.contentByActor == nil {
		return nil, nil
	}
	return m.contentByActor(ctx, since, actions)
}

func (m *mockEventStore) PeakUsage(ctx context.Context, since time.Time) ([]models.PeakUsageSlot, error) {
	m.record("PeakUsage")
	if m.peakUsage == nil {
		return nil, nil
	}
	return m.peakUsage(ctx, since)
}

func (m *mockEventStore) HourlyFailureSeries(ctx context.Context, since time.Time) ([]models.HourlyFailureCount, error) {
	m.record("HourlyFailureSeries")
	if m.hourlyFailureSeries == nil {
		return nil, nil
	}
	return m.hourlyFailureSeries(ctx, since)
}

func (m *mockEventStore) ErrorGroups(ctx context.Context, since time.Time) ([]models.ErrorGroup, error) {
	m.record("ErrorGroups")
	if m.errorGroups == nil {
		return nil, nil
	}
	return m.errorGroups(ctx, since)
}

func (m *mockEventStore) TableStats(ctx context.Context, table string) (models.TableStats, error) {
	m.record("TableStats")
	if m.tableStats == nil {
		return models.TableStats{Table: table}, nil
	}
	return m.tableStats(ctx, table)
}

func (m *mockEventStore) Ping(ctx context.Context) error {
	m.record("Ping")
	if m.ping == nil {
		return nil
	}
	return m.ping(ctx)
}

func (m *mockEventStore) SearchLogs(ctx context.Context, f models.LogFilter, limit, offset int) ([]models.ActivityLog, error) {
	m.record("SearchLogs")
	if m.searchLogs == nil {
		return nil, nil
	}
	return m.searchLogs(ctx, f, limit, offset)
}

func (m *mockEventStore) CountLogs(ctx context.Context, f models.LogFilter) (int64, error) {
	m.record("CountLogs")
	if m.countLogs == nil {
		return 0, nil
	}
	return m.countLogs(ctx, f)
}

// mockUserDirectory serves users from a fixed slice.
type mockUserDirectory struct {
	users   []models.UserSnapshot
	listErr error
	getErr  error
}

func (m *mockUserDirectory) Name() string { return "mock" }

func (m *mockUserDirectory) Ping(context.Context) error { return nil }

func (m *mockUserDirectory) ListUsers(_ context.Context, q models.UserQuery) ([]models.UserSnapshot, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []models.UserSnapshot
	for _, u := range m.users {
		if q.CreatedSince != nil && u.CreatedAt.Before(*q.CreatedSince) {
			continue
		}
		if q.FailedAttemptsOnly && u.FailedLoginAttempts <= 0 {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserDirectory) GetUsers(_ context.Context, ids []string) (map[string]*models.UserSnapshot, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}

	out := make(map[string]*models.UserSnapshot)
	for _, id := range ids {
		for i := range m.users {
			if m.users[i].ID == id {
				u := m.users[i]
				out[id] = &u
			}
		}
	}
	return out, nil
}

// mockAppender records appended events.
type mockAppender struct {
	mu     sync.Mutex
	events []models.ActivityLog
	err    error
}

func (m *mockAppender) AppendEvent(_ context.Context, e *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return m.err
}

func (m *mockAppender) getEvents() []models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActivityLog, len(m.events))
	copy(out, m.events)
	return out
}

// mockEnqueuer captures queued self-log events without a worker.
type mockEnqueuer struct {
	mu     sync.Mutex
	events []*models.ActivityLog
}

func (m *mockEnqueuer) Enqueue(e *models.ActivityLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *mockEnqueuer) getEvents() []*models.ActivityLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ActivityLog(nil), m.events...)
}
