package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/auditlens/internal/models"
)

// numericDuration selects details.duration only when it is a JSON number.
const numericDuration = `CASE WHEN jsonb_typeof(details->'duration') = 'number'
	THEN (details->>'duration')::float8 END`

// FailedLoginsByIP groups login_failed events since since by source IP.
// Every group is returned with its attempts newest first; ranking is left to the caller.
func (s *ActivityStore) FailedLoginsByIP(ctx context.Context, since time.Time) ([]models.IPFailureGroup, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT ip_address, COUNT(*), MIN(timestamp), MAX(timestamp),
			array_agg(timestamp ORDER BY timestamp DESC),
			array_agg(COALESCE(actor_name, '') ORDER BY timestamp DESC)
		FROM activity_logs
		WHERE action = $1 AND timestamp >= $2 AND ip_address <> ''
		GROUP BY ip_address`,
		models.ActionLoginFailed, since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping failed logins by ip", err)
	}

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.IPFailureGroup, error) {
		var g models.IPFailureGroup
		var stamps []time.Time
		var names []string

		if err := row.Scan(&g.IPAddress, &g.Count, &g.FirstSeen, &g.LastSeen, &stamps, &names); err != nil {
			return g, err
		}

		g.Attempts = make([]models.LoginAttempt, len(stamps))
		for i, ts := range stamps {
			g.Attempts[i] = models.LoginAttempt{Timestamp: ts.UTC()}
			if i < len(names) {
				g.Attempts[i].ActorName = names[i]
			}
		}

		return g, nil
	})
	if err != nil {
		return nil, models.Unavailable("scanning failed login groups", err)
	}

	return groups, nil
}

// HourlyActivity returns event volume per UTC hour of day since since, ascending by hour.
func (s *ActivityStore) HourlyActivity(ctx context.Context, since time.Time) ([]models.HourlyActivity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM timestamp AT TIME ZONE 'UTC')::int AS hour,
			COUNT(*), AVG(`+numericDuration+`)
		FROM activity_logs
		WHERE timestamp >= $1
		GROUP BY hour
		ORDER BY hour`,
		since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping activity by hour", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HourlyActivity, error) {
		var h models.HourlyActivity
		err := row.Scan(&h.Hour, &h.Count, &h.AvgDuration)
		return h, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning hourly activity", err)
	}

	return out, nil
}

// ActionStats returns per-action counts, success counts, and average duration since since.
func (s *ActivityStore) ActionStats(ctx context.Context, since time.Time) ([]models.ActionStat, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT action, COUNT(*),
			COUNT(*) FILTER (WHERE status = $2),
			AVG(`+numericDuration+`),
			MIN(timestamp)
		FROM activity_logs
		WHERE timestamp >= $1
		GROUP BY action`,
		since, string(models.StatusSuccess),
	)
	if err != nil {
		return nil, models.Unavailable("grouping actions", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActionStat, error) {
		var a models.ActionStat
		err := row.Scan(&a.Action, &a.Count, &a.SuccessCount, &a.AvgDuration, &a.FirstSeen)
		a.FirstSeen = a.FirstSeen.UTC()
		return a, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning action stats", err)
	}

	return out, nil
}

// FailingPaths groups failures since since by details.path, falling back to
// the resource. Each group carries at most samples newest {timestamp, errorMessage} pairs.
func (s *ActivityStore) FailingPaths(ctx context.Context, since time.Time, samples int) ([]models.PathFailure, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT COALESCE(NULLIF(details->>'path', ''), resource) AS path,
			COUNT(*), MIN(timestamp), MAX(timestamp),
			(array_agg(timestamp ORDER BY timestamp DESC))[1:$3],
			(array_agg(COALESCE(details->>'errorMessage', '') ORDER BY timestamp DESC))[1:$3]
		FROM activity_logs
		WHERE status = $2 AND timestamp >= $1
		GROUP BY path`,
		since, string(models.StatusFailure), samples,
	)
	if err != nil {
		return nil, models.Unavailable("grouping failing paths", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PathFailure, error) {
		var p models.PathFailure
		var stamps []time.Time
		var messages []string

		if err := row.Scan(&p.Path, &p.Failures, &p.FirstSeen, &p.LastSeen, &stamps, &messages); err != nil {
			return p, err
		}

		p.Samples = make([]models.FailureSample, len(stamps))
		for i, ts := range stamps {
			p.Samples[i] = models.FailureSample{Timestamp: ts.UTC()}
			if i < len(messages) {
				p.Samples[i].ErrorMessage = messages[i]
			}
		}

		return p, nil
	})
	if err != nil {
		return nil, models.Unavailable("scanning failing paths", err)
	}

	return out, nil
}

// ResponseTimeSummary aggregates numeric durations since since. Count is 0
// and the other fields zero when no event carries one.
func (s *ActivityStore) ResponseTimeSummary(ctx context.Context, since time.Time) (models.ResponseTimeSummary, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var r models.ResponseTimeSummary
	err := s.Pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(d), 0), COALESCE(MIN(d), 0), COALESCE(MAX(d), 0), COUNT(d)
		FROM (
			SELECT `+numericDuration+` AS d
			FROM activity_logs
			WHERE timestamp >= $1
		) durations`,
		since,
	).Scan(&r.Avg, &r.Min, &r.Max, &r.Count)
	if err != nil {
		return models.ResponseTimeSummary{}, models.Unavailable("summarising response times", err)
	}

	return r, nil
}

// RoleActivity returns request volume and distinct actors per role since since.
// Events without a role are grouped under "unknown".
func (s *ActivityStore) RoleActivity(ctx context.Context, since time.Time) ([]models.RoleActivity, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT COALESCE(NULLIF(actor_role, ''), 'unknown') AS role,
			COUNT(*), COUNT(DISTINCT actor_id)
		FROM activity_logs
		WHERE timestamp >= $1
		GROUP BY role`,
		since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping activity by role", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RoleActivity, error) {
		var r models.RoleActivity
		err := row.Scan(&r.Role, &r.Requests, &r.UniqueActors)
		return r, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning role activity", err)
	}

	return out, nil
}

// LoginsByActorDay is the first login-frequency stage: login counts per
// (actor, UTC day) since since. Anonymous logins are skipped.
func (s *ActivityStore) LoginsByActorDay(ctx context.Context, since time.Time) ([]models.ActorDayLogins, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT actor_id, date_trunc('day', timestamp AT TIME ZONE 'UTC') AS day, COUNT(*)
		FROM activity_logs
		WHERE action = $1 AND timestamp >= $2 AND COALESCE(actor_id, '') <> ''
		GROUP BY actor_id, day`,
		models.ActionLogin, since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping logins by actor and day", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActorDayLogins, error) {
		var l models.ActorDayLogins
		err := row.Scan(&l.ActorID, &l.Day, &l.Logins)
		return l, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning login groups", err)
	}

	return out, nil
}

// ContentActivityByActor is the first content-activity stage: counts per
// (actor, action) for the given actions since since.
func (s *ActivityStore) ContentActivityByActor(ctx context.Context, since time.Time, actions []string) ([]models.ActorActionCount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT actor_id, action, COUNT(*), MIN(timestamp)
		FROM activity_logs
		WHERE action = ANY($1) AND timestamp >= $2 AND COALESCE(actor_id, '') <> ''
		GROUP BY actor_id, action`,
		actions, since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping content activity", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ActorActionCount, error) {
		var c models.ActorActionCount
		err := row.Scan(&c.ActorID, &c.Action, &c.Count, &c.FirstSeen)
		c.FirstSeen = c.FirstSeen.UTC()
		return c, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning content activity", err)
	}

	return out, nil
}

// PeakUsage returns event volume per (UTC hour, weekday) since since. Sunday is 0.
func (s *ActivityStore) PeakUsage(ctx context.Context, since time.Time) ([]models.PeakUsageSlot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM timestamp AT TIME ZONE 'UTC')::int AS hour,
			EXTRACT(DOW FROM timestamp AT TIME ZONE 'UTC')::int AS dow,
			COUNT(*), MIN(timestamp)
		FROM activity_logs
		WHERE timestamp >= $1
		GROUP BY hour, dow`,
		since,
	)
	if err != nil {
		return nil, models.Unavailable("grouping peak usage", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PeakUsageSlot, error) {
		var p models.PeakUsageSlot
		err := row.Scan(&p.Hour, &p.DayOfWeek, &p.Count, &p.FirstSeen)
		return p, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning peak usage", err)
	}

	return out, nil
}

// HourlyFailureSeries returns total and failed events per UTC hour since since.
// Hours without events are absent.
func (s *ActivityStore) HourlyFailureSeries(ctx context.Context, since time.Time) ([]models.HourlyFailureCount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT date_trunc('hour', timestamp AT TIME ZONE 'UTC') AS hour,
			COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM activity_logs
		WHERE timestamp >= $1
		GROUP BY hour`,
		since, string(models.StatusFailure),
	)
	if err != nil {
		return nil, models.Unavailable("grouping failures by hour", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HourlyFailureCount, error) {
		var h models.HourlyFailureCount
		err := row.Scan(&h.Hour, &h.Total, &h.Failures)
		h.Hour = h.Hour.UTC()
		return h, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning hourly failures", err)
	}

	return out, nil
}

// ErrorGroups groups failures since since by details.errorMessage.
// Failures without a message are skipped.
func (s *ActivityStore) ErrorGroups(ctx context.Context, since time.Time) ([]models.ErrorGroup, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT details->>'errorMessage' AS message, COUNT(*), MAX(timestamp), MIN(timestamp)
		FROM activity_logs
		WHERE status = $2 AND timestamp >= $1 AND COALESCE(details->>'errorMessage', '') <> ''
		GROUP BY message`,
		since, string(models.StatusFailure),
	)
	if err != nil {
		return nil, models.Unavailable("grouping error messages", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ErrorGroup, error) {
		var g models.ErrorGroup
		err := row.Scan(&g.Message, &g.Count, &g.LastSeen, &g.FirstSeen)
		g.LastSeen = g.LastSeen.UTC()
		g.FirstSeen = g.FirstSeen.UTC()
		return g, err
	})
	if err != nil {
		return nil, models.Unavailable("scanning error groups", err)
	}

	return out, nil
}
