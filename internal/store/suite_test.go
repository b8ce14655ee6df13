package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/persistorai/auditlens/internal/models"
	"github.com/persistorai/auditlens/internal/store"
)

func appendEvents(t *testing.T, s *store.ActivityStore, events []models.ActivityLog) {
	t.Helper()

	for i := range events {
		if err := s.AppendEvent(context.Background(), &events[i]); err != nil {
			t.Fatalf("AppendEvent(%d): %v", i, err)
		}
	}
}

func failedLogin(ts time.Time, ip, name string) models.ActivityLog {
	return models.ActivityLog{
		Timestamp: ts, ActorName: name, Action: models.ActionLoginFailed, Resource: "auth",
		Status: models.StatusFailure, Severity: 3, IPAddress: ip,
	}
}

func runActivityStoreSuite(t *testing.T, env *testEnv) {
	t.Helper()

	base := resetTables(t, env)
	s := store.NewActivityStore(base)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	since := now.Add(-24 * time.Hour)

	appendEvents(t, s, []models.ActivityLog{
		failedLogin(now.Add(-1*time.Hour), "10.0.0.1", "mallory"),
		failedLogin(now.Add(-2*time.Hour), "10.0.0.1", "mallory"),
		failedLogin(now.Add(-3*time.Hour), "10.0.0.1", "eve"),
		failedLogin(now.Add(-4*time.Hour), "10.0.0.2", "trent"),
		failedLogin(since, "10.0.0.2", "trent"), // exactly on the window edge
		failedLogin(now.Add(-48*time.Hour), "10.0.0.9", "old"),
		{
			Timestamp: now.Add(-30 * time.Minute), ActorID: "u1", ActorName: "alice", ActorRole: "admin",
			Action: models.ActionLogin, Resource: "auth", Status: models.StatusSuccess, Severity: 1,
			Details: models.Details{"duration": 120},
		},
		{
			Timestamp: now.Add(-20 * time.Minute), ActorID: "u1", ActorName: "alice", ActorRole: "admin",
			Action: "content_created", Resource: "blog", Status: models.StatusFailure, Severity: 4,
			Details: models.Details{"duration": 80, "path": "/api/blogs", "errorMessage": `upstream "timeout"`},
		},
	})

	t.Run("window bound is inclusive", func(t *testing.T) {
		n, err := s.CountEvents(ctx, models.EventQuery{Since: &since, Actions: []string{models.ActionLoginFailed}})
		if err != nil {
			t.Fatalf("CountEvents: %v", err)
		}
		if n != 5 {
			t.Errorf("count = %d, want 5 (edge event included, 48h-old excluded)", n)
		}
	})

	t.Run("list is newest first and limited", func(t *testing.T) {
		events, err := s.ListEvents(ctx, models.EventQuery{Since: &since, Actions: []string{models.ActionLoginFailed}, Limit: 3})
		if err != nil {
			t.Fatalf("ListEvents: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("len = %d, want 3", len(events))
		}
		for i := 1; i < len(events); i++ {
			if events[i].Timestamp.After(events[i-1].Timestamp) {
				t.Errorf("events not sorted descending at %d", i)
			}
		}
	})

	t.Run("failed logins grouped by ip", func(t *testing.T) {
		groups, err := s.FailedLoginsByIP(ctx, since)
		if err != nil {
			t.Fatalf("FailedLoginsByIP: %v", err)
		}

		counts := map[string]int64{}
		for _, g := range groups {
			counts[g.IPAddress] = g.Count
			if int64(len(g.Attempts)) != g.Count {
				t.Errorf("%s: %d attempts for count %d", g.IPAddress, len(g.Attempts), g.Count)
			}
		}
		if counts["10.0.0.1"] != 3 || counts["10.0.0.2"] != 2 || len(counts) != 2 {
			t.Errorf("counts = %v", counts)
		}
	})

	t.Run("high severity", func(t *testing.T) {
		n, err := s.CountEvents(ctx, models.EventQuery{Since: &since, MinSeverity: 4})
		if err != nil {
			t.Fatalf("CountEvents: %v", err)
		}
		if n != 1 {
			t.Errorf("high severity count = %d, want 1", n)
		}
	})

	t.Run("response time summary ignores missing durations", func(t *testing.T) {
		r, err := s.ResponseTimeSummary(ctx, since)
		if err != nil {
			t.Fatalf("ResponseTimeSummary: %v", err)
		}
		if r.Count != 2 || r.Min != 80 || r.Max != 120 || r.Avg != 100 {
			t.Errorf("summary = %+v", r)
		}
	})

	t.Run("failing paths fall back to resource", func(t *testing.T) {
		paths, err := s.FailingPaths(ctx, since, 5)
		if err != nil {
			t.Fatalf("FailingPaths: %v", err)
		}

		byPath := map[string]models.PathFailure{}
		for _, p := range paths {
			byPath[p.Path] = p
		}
		if byPath["auth"].Failures != 5 {
			t.Errorf("auth failures = %d, want 5", byPath["auth"].Failures)
		}
		if len(byPath["auth"].Samples) != 5 {
			t.Errorf("auth samples = %d, want 5", len(byPath["auth"].Samples))
		}
		if got := byPath["/api/blogs"].Samples; len(got) != 1 || got[0].ErrorMessage != `upstream "timeout"` {
			t.Errorf("blog samples = %+v", got)
		}
	})

	t.Run("search matches error message case-insensitively", func(t *testing.T) {
		f := models.LogFilter{Search: "TIMEOUT"}
		logs, err := s.SearchLogs(ctx, f, 10, 0)
		if err != nil {
			t.Fatalf("SearchLogs: %v", err)
		}
		if len(logs) != 1 || logs[0].ActorName != "alice" {
			t.Fatalf("logs = %+v", logs)
		}
		if msg := logs[0].Details.ErrorMessage(); msg != `upstream "timeout"` {
			t.Errorf("details round trip: %q", msg)
		}

		total, err := s.CountLogs(ctx, f)
		if err != nil || total != 1 {
			t.Errorf("CountLogs = %d, %v", total, err)
		}
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		total, err := s.CountLogs(ctx, models.LogFilter{Search: "%"})
		if err != nil {
			t.Fatalf("CountLogs: %v", err)
		}
		if total != 0 {
			t.Errorf("literal %% matched %d rows", total)
		}
	})

	t.Run("pagination offset", func(t *testing.T) {
		f := models.LogFilter{Action: models.ActionLoginFailed}
		page2, err := s.SearchLogs(ctx, f, 4, 4)
		if err != nil {
			t.Fatalf("SearchLogs: %v", err)
		}
		if len(page2) != 2 {
			t.Errorf("page 2 len = %d, want 2", len(page2))
		}
	})

	t.Run("hourly failure series", func(t *testing.T) {
		series, err := s.HourlyFailureSeries(ctx, since)
		if err != nil {
			t.Fatalf("HourlyFailureSeries: %v", err)
		}

		var total, failures int64
		for _, h := range series {
			total += h.Total
			failures += h.Failures
			if h.Hour.Minute() != 0 || h.Hour.Second() != 0 {
				t.Errorf("bucket %v not truncated to the hour", h.Hour)
			}
		}
		if total != 7 || failures != 6 {
			t.Errorf("total = %d failures = %d, want 7 and 6", total, failures)
		}
	})

	t.Run("table stats", func(t *testing.T) {
		st, err := s.TableStats(ctx, "activity_logs")
		if err != nil {
			t.Fatalf("TableStats: %v", err)
		}
		if st.TotalBytes <= 0 {
			t.Errorf("total bytes = %d", st.TotalBytes)
		}

		_, err = s.TableStats(ctx, "no_such_table")
		if !errors.Is(err, models.ErrDataSourceUnavailable) {
			t.Errorf("expected ErrDataSourceUnavailable, got %v", err)
		}
	})

	t.Run("append rejects invalid events", func(t *testing.T) {
		err := s.AppendEvent(ctx, &models.ActivityLog{Action: "x", Status: models.StatusSuccess, Severity: 7})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})
}

func runUserStoreSuite(t *testing.T, env *testEnv) {
	t.Helper()

	base := resetTables(t, env)
	s := store.NewUserStore(base)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := env.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, role, is_active, login_count, failed_login_attempts, locked_until, created_at)
		VALUES
			('u1', 'alice', 'alice@example.com', 'admin', true, 10, 0, NULL, $1),
			('u2', 'bob', 'bob@example.com', 'user', true, 3, 4, $2, $3),
			('u3', 'carol', 'carol@example.com', 'user', false, 0, 1, NULL, $4)`,
		now.Add(-40*24*time.Hour), now.Add(time.Hour), now.Add(-2*24*time.Hour), now.Add(-time.Hour),
	)
	if err != nil {
		t.Fatalf("seeding users: %v", err)
	}

	t.Run("failed attempts only", func(t *testing.T) {
		users, err := s.ListUsers(ctx, models.UserQuery{FailedAttemptsOnly: true})
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 2 || users[0].ID != "u2" || users[1].ID != "u3" {
			t.Fatalf("users = %+v", users)
		}
		if !users[0].LockedAt(now) {
			t.Error("u2 should be locked")
		}
	})

	t.Run("created since", func(t *testing.T) {
		since := now.Add(-30 * 24 * time.Hour)
		users, err := s.ListUsers(ctx, models.UserQuery{CreatedSince: &since})
		if err != nil {
			t.Fatalf("ListUsers: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("len = %d, want 2", len(users))
		}
	})

	t.Run("get users skips unknown ids", func(t *testing.T) {
		got, err := s.GetUsers(ctx, []string{"u1", "ghost"})
		if err != nil {
			t.Fatalf("GetUsers: %v", err)
		}
		if got["u1"] == nil || got["u1"].Username != "alice" {
			t.Errorf("u1 = %+v", got["u1"])
		}
		if _, ok := got["ghost"]; ok {
			t.Error("unknown id should be absent")
		}
	})
}
