package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/models"
)

// activityColumns lists the columns selected for activity log queries.
const activityColumns = `id::text, timestamp, actor_id, actor_name, actor_role, action,
	resource, status, severity, ip_address, user_agent, details`

// queryer is satisfied by both *dbpool.Pool and pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// scanActivityLog scans a single row into a models.ActivityLog.
func scanActivityLog(scan func(dest ...any) error, log *logrus.Logger) (models.ActivityLog, error) {
	var e models.ActivityLog
	var actorID, actorName, actorRole *string
	var status string
	var details []byte

	err := scan(
		&e.ID,
		&e.Timestamp,
		&actorID,
		&actorName,
		&actorRole,
		&e.Action,
		&e.Resource,
		&status,
		&e.Severity,
		&e.IPAddress,
		&e.UserAgent,
		&details,
	)
	if err != nil {
		return models.ActivityLog{}, err
	}

	e.Timestamp = e.Timestamp.UTC()
	e.Status = models.Status(status)
	if actorID != nil {
		e.ActorID = *actorID
	}
	if actorName != nil {
		e.ActorName = *actorName
	}
	if actorRole != nil {
		e.ActorRole = *actorRole
	}

	if len(details) > 0 {
		dec := json.NewDecoder(bytes.NewReader(details))
		dec.UseNumber()
		if err := dec.Decode(&e.Details); err != nil {
			log.WithError(err).WithField("id", e.ID).Warn("failed to unmarshal activity details")
		}
	}

	return e, nil
}

// scanActivityRows executes a query and scans activity logs from the result.
func scanActivityRows(ctx context.Context, q queryer, query string, args []any, log *logrus.Logger) ([]models.ActivityLog, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity logs: %w", err)
	}
	defer rows.Close()

	entries := []models.ActivityLog{}
	for rows.Next() {
		e, err := scanActivityLog(rows.Scan, log)
		if err != nil {
			return nil, fmt.Errorf("scanning activity log: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity logs: %w", err)
	}

	return entries, nil
}
