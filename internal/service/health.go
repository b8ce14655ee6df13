package service

import (
	"context"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// Probe is a named connectivity check against one backing store.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthAggregator builds the system health dashboard.
type HealthAggregator struct {
	events      domain.HealthEvents
	probes      []Probe
	tables      []string
	startedAt   time.Time
	concurrency int
	log         *logrus.Logger
}

// NewHealthAggregator creates a HealthAggregator. tables are measured for the
// storage section; startedAt anchors the reported uptime.
func NewHealthAggregator(
	events domain.HealthEvents, probes []Probe, tables []string, startedAt time.Time, concurrency int, log *logrus.Logger,
) *HealthAggregator {
	return &HealthAggregator{
		events:      events,
		probes:      probes,
		tables:      tables,
		startedAt:   startedAt,
		concurrency: concurrency,
		log:         log,
	}
}

// Build collects the health sections concurrently. Probe and storage
// failures are reported in the payload; event store failures fail the dashboard.
func (a *HealthAggregator) Build(ctx context.Context, w models.Window) (*models.HealthDashboard, error) {
	since := w.Since
	d := &models.HealthDashboard{Window: w}

	g, gctx := newGroup(ctx, a.concurrency)

	g.Go(func() error {
		d.Connectivity = a.probeAll(gctx)
		return nil
	})

	g.Go(func() error {
		var err error
		d.RecentFailures, err = a.events.ListEvents(gctx, models.EventQuery{
			Since: &since, Status: models.StatusFailure, Limit: recentFailures,
		})
		return err
	})

	g.Go(func() error {
		counts, err := a.events.HourlyFailureSeries(gctx, since)
		if err != nil {
			return err
		}
		d.HourlyFailures = fillFailureSeries(since, w.Until, counts)
		return nil
	})

	g.Go(func() error {
		d.Storage = a.storageStats(gctx)
		return nil
	})

	g.Go(func() error {
		groups, err := a.events.ErrorGroups(gctx, since)
		if err != nil {
			return err
		}
		d.TopErrors = rankTop(groups, topErrors,
			func(e models.ErrorGroup) int64 { return e.Count },
			func(e models.ErrorGroup) time.Time { return e.FirstSeen },
			func(e models.ErrorGroup) string { return e.Message },
		)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Process = processMetrics(w.Until.Sub(a.startedAt))

	d.RecentFailures = orEmpty(d.RecentFailures)
	d.TopErrors = orEmpty(d.TopErrors)

	return d, nil
}

func (a *HealthAggregator) probeAll(ctx context.Context) []models.ConnectivityProbe {
	out := make([]models.ConnectivityProbe, len(a.probes))

	for i, p := range a.probes {
		start := time.Now()
		err := p.Ping(ctx)

		out[i] = models.ConnectivityProbe{
			Name:      p.Name,
			Status:    models.ProbeConnected,
			LatencyMs: round(float64(time.Since(start).Microseconds())/1000, 2),
		}

		if err != nil {
			a.log.WithError(err).WithField("probe", p.Name).Warn("connectivity probe failed")
			out[i].Status = models.ProbeDisconnected
			out[i].Error = err.Error()
		}
	}

	return out
}

// storageStats measures each table on its own. A failing table is replaced
// by a zeroed entry carrying the error.
func (a *HealthAggregator) storageStats(ctx context.Context) []models.TableStats {
	out := make([]models.TableStats, 0, len(a.tables))

	for _, table := range a.tables {
		st, err := a.events.TableStats(ctx, table)
		if err != nil {
			a.log.WithError(err).WithField("table", table).Warn("measuring table failed")
			st = models.TableStats{Table: table, Error: err.Error()}
		}
		out = append(out, st)
	}

	return out
}

// fillFailureSeries expands sparse hourly counts into one bucket per hour
// from since through now, both truncated to the hour.
func fillFailureSeries(since, now time.Time, counts []models.HourlyFailureCount) []models.HourlyFailureRate {
	byHour := make(map[int64]models.HourlyFailureCount, len(counts))
	for _, c := range counts {
		byHour[c.Hour.UTC().Truncate(time.Hour).Unix()] = c
	}

	first := since.UTC().Truncate(time.Hour)
	last := now.UTC().Truncate(time.Hour)

	out := make([]models.HourlyFailureRate, 0, int(last.Sub(first)/time.Hour)+1)
	for h := first; !h.After(last); h = h.Add(time.Hour) {
		c := byHour[h.Unix()]

		r := models.HourlyFailureRate{Hour: h, Total: c.Total, Failures: c.Failures}
		if c.Total > 0 {
			r.FailureRate = round(float64(c.Failures)/float64(c.Total)*100, 2)
		}
		out = append(out, r)
	}

	return out
}

func processMetrics(uptime time.Duration) models.ProcessMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return models.ProcessMetrics{
		UptimeSeconds:  round(uptime.Seconds(), 0),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: m.HeapAlloc,
		HeapInuseBytes: m.HeapInuse,
		SysBytes:       m.Sys,
		NumGC:          m.NumGC,
		GoVersion:      runtime.Version(),
	}
}
