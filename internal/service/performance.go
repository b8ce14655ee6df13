package service

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// PerformanceAggregator builds the performance dashboard.
type PerformanceAggregator struct {
	events      domain.PerformanceEvents
	concurrency int
	log         *logrus.Logger
}

// NewPerformanceAggregator creates a PerformanceAggregator.
func NewPerformanceAggregator(events domain.PerformanceEvents, concurrency int, log *logrus.Logger) *PerformanceAggregator {
	return &PerformanceAggregator{events: events, concurrency: concurrency, log: log}
}

// Build runs the performance sub-queries concurrently.
func (a *PerformanceAggregator) Build(ctx context.Context, w models.Window) (*models.PerformanceDashboard, error) {
	since := w.Since
	d := &models.PerformanceDashboard{Window: w}

	g, gctx := newGroup(ctx, a.concurrency)

	g.Go(func() error {
		var err error
		d.HourlyActivity, err = a.events.HourlyActivity(gctx, since)
		return err
	})

	g.Go(func() error {
		var err error
		d.TopActions, err = a.events.ActionStats(gctx, since)
		return err
	})

	g.Go(func() error {
		var err error
		d.FailingPaths, err = a.events.FailingPaths(gctx, since, failureSamples)
		return err
	})

	g.Go(func() error {
		var err error
		d.ResponseTimes, err = a.events.ResponseTimeSummary(gctx, since)
		return err
	})

	g.Go(func() error {
		var err error
		d.RoleActivity, err = a.events.RoleActivity(gctx, since)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(d.HourlyActivity, func(a, b models.HourlyActivity) int { return cmp.Compare(a.Hour, b.Hour) })
	for i := range d.HourlyActivity {
		d.HourlyActivity[i].AvgDuration = roundPtr(d.HourlyActivity[i].AvgDuration, 2)
	}

	d.TopActions = rankActions(d.TopActions)

	d.FailingPaths = rankTop(d.FailingPaths, topPaths,
		func(p models.PathFailure) int64 { return p.Failures },
		func(p models.PathFailure) time.Time { return p.FirstSeen },
		func(p models.PathFailure) string { return p.Path },
	)
	for i := range d.FailingPaths {
		if len(d.FailingPaths[i].Samples) > failureSamples {
			d.FailingPaths[i].Samples = d.FailingPaths[i].Samples[:failureSamples]
		}
	}

	if d.ResponseTimes.Count == 0 {
		d.ResponseTimes = models.ResponseTimeSummary{}
	}
	d.ResponseTimes.Avg = round(d.ResponseTimes.Avg, 2)

	slices.SortStableFunc(d.RoleActivity, func(a, b models.RoleActivity) int {
		if c := cmp.Compare(b.Requests, a.Requests); c != 0 {
			return c
		}
		return cmp.Compare(a.Role, b.Role)
	})

	d.HourlyActivity = orEmpty(d.HourlyActivity)
	d.TopActions = orEmpty(d.TopActions)
	d.FailingPaths = orEmpty(d.FailingPaths)
	d.RoleActivity = orEmpty(d.RoleActivity)

	return d, nil
}

// rankActions fills in success rates and keeps the busiest actions.
func rankActions(stats []models.ActionStat) []models.ActionStat {
	for i := range stats {
		s := &stats[i]
		if s.Count > 0 {
			s.SuccessRate = round(float64(s.SuccessCount)/float64(s.Count), 4)
		}
		s.AvgDuration = roundPtr(s.AvgDuration, 2)
	}

	return rankTop(stats, topActions,
		func(s models.ActionStat) int64 { return s.Count },
		func(s models.ActionStat) time.Time { return s.FirstSeen },
		func(s models.ActionStat) string { return s.Action },
	)
}
