package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// Compile-time checks: *ActivityStore serves every event-side interface.
var (
	_ domain.SecurityEvents    = (*ActivityStore)(nil)
	_ domain.PerformanceEvents = (*ActivityStore)(nil)
	_ domain.AnalyticsEvents   = (*ActivityStore)(nil)
	_ domain.HealthEvents      = (*ActivityStore)(nil)
	_ domain.LogSearcher       = (*ActivityStore)(nil)
	_ domain.EventAppender     = (*ActivityStore)(nil)
)

// ActivityStore provides data access for the activity_logs table.
type ActivityStore struct {
	Base
}

// NewActivityStore creates an ActivityStore.
func NewActivityStore(base Base) *ActivityStore {
	return &ActivityStore{Base: base}
}

// ListEvents returns events matching q, newest first.
func (s *ActivityStore) ListEvents(ctx context.Context, q models.EventQuery) ([]models.ActivityLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args, argIdx := buildEventFilter(q)

	query := fmt.Sprintf(
		"SELECT %s FROM activity_logs %s ORDER BY timestamp DESC, id LIMIT $%d",
		activityColumns, where, argIdx,
	)
	args = append(args, clampLimit(q.Limit))

	entries, err := scanActivityRows(ctx, s.Pool, query, args, s.Log)
	if err != nil {
		return nil, models.Unavailable("listing events", err)
	}

	return entries, nil
}

// CountEvents returns the number of events matching q, ignoring q.Limit.
func (s *ActivityStore) CountEvents(ctx context.Context, q models.EventQuery) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args, _ := buildEventFilter(q)

	var count int64
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM activity_logs "+where, args...).Scan(&count); err != nil {
		return 0, models.Unavailable("counting events", err)
	}

	return count, nil
}

// SearchLogs returns one page of events matching f, newest first.
func (s *ActivityStore) SearchLogs(ctx context.Context, f models.LogFilter, limit, offset int) ([]models.ActivityLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args, argIdx := buildLogFilter(f)

	query := fmt.Sprintf(
		"SELECT %s FROM activity_logs %s ORDER BY timestamp DESC, id LIMIT $%d OFFSET $%d",
		activityColumns, where, argIdx, argIdx+1,
	)
	args = append(args, clampLimit(limit), max(offset, 0))

	entries, err := scanActivityRows(ctx, s.Pool, query, args, s.Log)
	if err != nil {
		return nil, models.Unavailable("searching logs", err)
	}

	return entries, nil
}

// CountLogs returns the total number of events matching f.
func (s *ActivityStore) CountLogs(ctx context.Context, f models.LogFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	where, args, _ := buildLogFilter(f)

	var count int64
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM activity_logs "+where, args...).Scan(&count); err != nil {
		return 0, models.Unavailable("counting logs", err)
	}

	return count, nil
}

// AppendEvent inserts e. Missing ID and timestamp are filled in.
func (s *ActivityStore) AppendEvent(ctx context.Context, e *models.ActivityLog) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("validating event: %w", err)
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	details := e.Details
	if details == nil {
		details = models.Details{}
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshaling event details: %w", err)
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.beginTx(ctx)
	if err != nil {
		return models.Unavailable("appending event", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // best-effort rollback on early return.

	_, err = tx.Exec(ctx, `
		INSERT INTO activity_logs (id, timestamp, actor_id, actor_name, actor_role, action,
			resource, status, severity, ip_address, user_agent, details)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.Timestamp, e.ActorID, e.ActorName, e.ActorRole, e.Action,
		e.Resource, string(e.Status), e.Severity, e.IPAddress, e.UserAgent, detailsJSON,
	)
	if err != nil {
		return models.Unavailable("inserting event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Unavailable("committing event", err)
	}

	return nil
}
