package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// SecurityAggregator builds the security dashboard.
type SecurityAggregator struct {
	events      domain.SecurityEvents
	users       domain.UserDirectory
	concurrency int
	log         *logrus.Logger
}

// NewSecurityAggregator creates a SecurityAggregator running at most
// concurrency sub-queries at once.
func NewSecurityAggregator(events domain.SecurityEvents, users domain.UserDirectory, concurrency int, log *logrus.Logger) *SecurityAggregator {
	return &SecurityAggregator{events: events, users: users, concurrency: concurrency, log: log}
}

// Build runs every security sub-query concurrently and assembles the result.
// Any failure fails the whole dashboard.
func (a *SecurityAggregator) Build(ctx context.Context, w models.Window) (*models.SecurityDashboard, error) {
	since := w.Since
	failedLogins := []string{models.ActionLoginFailed}

	var (
		d        = &models.SecurityDashboard{Window: w}
		ipGroups []models.IPFailureGroup
	)

	g, gctx := newGroup(ctx, a.concurrency)

	g.Go(func() error {
		var err error
		d.RecentFailedLogins, err = a.events.ListEvents(gctx, models.EventQuery{
			Since: &since, Actions: failedLogins, Limit: recentFailedLogins,
		})
		return err
	})

	g.Go(func() error {
		var err error
		d.Summary.TotalFailedLogins, err = a.events.CountEvents(gctx, models.EventQuery{Since: &since, Actions: failedLogins})
		return err
	})

	g.Go(func() error {
		var err error
		d.AccountLockouts, err = a.events.ListEvents(gctx, models.EventQuery{
			Since: &since, Actions: []string{models.ActionAccountLocked},
		})
		return err
	})

	g.Go(func() error {
		var err error
		ipGroups, err = a.events.FailedLoginsByIP(gctx, since)
		return err
	})

	g.Go(func() error {
		var err error
		d.UsersWithFailedAttempts, err = a.users.ListUsers(gctx, models.UserQuery{FailedAttemptsOnly: true})
		return err
	})

	g.Go(func() error {
		var err error
		d.HighSeverityEvents, err = a.events.ListEvents(gctx, models.EventQuery{
			Since: &since, MinSeverity: highSeverityFloor, Limit: recentHighSeverity,
		})
		return err
	})

	g.Go(func() error {
		var err error
		d.Summary.HighSeverityEvents, err = a.events.CountEvents(gctx, models.EventQuery{
			Since: &since, MinSeverity: highSeverityFloor,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Summary.UniqueIPsWithFailures = len(ipGroups)
	d.SuspiciousIPs = rankTop(ipGroups, topIPs,
		func(g models.IPFailureGroup) int64 { return g.Count },
		func(g models.IPFailureGroup) time.Time { return g.FirstSeen },
		func(g models.IPFailureGroup) string { return g.IPAddress },
	)

	for i := range d.UsersWithFailedAttempts {
		if d.UsersWithFailedAttempts[i].LockedAt(w.Until) {
			d.Summary.LockedAccounts++
		}
	}

	d.RecentFailedLogins = orEmpty(d.RecentFailedLogins)
	d.AccountLockouts = orEmpty(d.AccountLockouts)
	d.SuspiciousIPs = orEmpty(d.SuspiciousIPs)
	d.UsersWithFailedAttempts = orEmpty(d.UsersWithFailedAttempts)
	d.HighSeverityEvents = orEmpty(d.HighSeverityEvents)

	return d, nil
}
