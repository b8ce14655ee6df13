package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

const (
	dayLayout         = "2006-01-02"
	recentlyActiveFor = 7 * 24 * time.Hour
)

// AnalyticsAggregator builds the usage analytics dashboard.
type AnalyticsAggregator struct {
	events      domain.AnalyticsEvents
	users       domain.UserDirectory
	concurrency int
	log         *logrus.Logger
}

// NewAnalyticsAggregator creates an AnalyticsAggregator.
func NewAnalyticsAggregator(events domain.AnalyticsEvents, users domain.UserDirectory, concurrency int, log *logrus.Logger) *AnalyticsAggregator {
	return &AnalyticsAggregator{events: events, users: users, concurrency: concurrency, log: log}
}

// Build runs the analytics sub-queries concurrently. The login and content
// rollups run their later phases inside their own goroutine, so they overlap
// with the other sub-queries.
func (a *AnalyticsAggregator) Build(ctx context.Context, w models.Window) (*models.AnalyticsDashboard, error) {
	since := w.Since
	d := &models.AnalyticsDashboard{Window: w}

	g, gctx := newGroup(ctx, a.concurrency)

	g.Go(func() error {
		users, err := a.users.ListUsers(gctx, models.UserQuery{CreatedSince: &since})
		if err != nil {
			return err
		}
		d.NewUsers = newUsersByDay(users)
		return nil
	})

	g.Go(func() error {
		rows, err := a.events.LoginsByActorDay(gctx, since)
		if err != nil {
			return err
		}
		d.LoginFrequency = rollupLoginFrequency(rows)
		return nil
	})

	g.Go(func() error {
		rows, err := a.events.ContentActivityByActor(gctx, since, models.ContentActions)
		if err != nil {
			return err
		}

		top := rankTop(rollupContentActivity(rows), topContributors,
			func(c models.ContentContributor) int64 { return c.Total },
			func(c models.ContentContributor) time.Time { return c.FirstSeen },
			func(c models.ContentContributor) string { return c.ActorID },
		)

		d.ContentActivity, err = a.enrichContributors(gctx, top)
		return err
	})

	g.Go(func() error {
		slots, err := a.events.PeakUsage(gctx, since)
		if err != nil {
			return err
		}
		d.PeakUsage = rankTop(slots, topPeakSlots,
			func(p models.PeakUsageSlot) int64 { return p.Count },
			func(p models.PeakUsageSlot) time.Time { return p.FirstSeen },
			func(p models.PeakUsageSlot) string { return fmt.Sprintf("%d/%02d", p.DayOfWeek, p.Hour) },
		)
		return nil
	})

	g.Go(func() error {
		users, err := a.users.ListUsers(gctx, models.UserQuery{})
		if err != nil {
			return err
		}
		d.RoleEngagement = roleEngagement(users, w.Until)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.NewUsers = orEmpty(d.NewUsers)
	d.LoginFrequency = orEmpty(d.LoginFrequency)
	d.ContentActivity = orEmpty(d.ContentActivity)
	d.PeakUsage = orEmpty(d.PeakUsage)
	d.RoleEngagement = orEmpty(d.RoleEngagement)

	return d, nil
}

// enrichContributors attaches user display fields. Unknown actors keep a nil User.
func (a *AnalyticsAggregator) enrichContributors(ctx context.Context, top []models.ContentContributor) ([]models.ContentContributor, error) {
	if len(top) == 0 {
		return top, nil
	}

	ids := make([]string, len(top))
	for i := range top {
		ids[i] = top[i].ActorID
	}

	users, err := a.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range top {
		u, ok := users[top[i].ActorID]
		if !ok {
			a.log.WithField("actor_id", top[i].ActorID).Debug("content contributor has no user snapshot")
			continue
		}
		top[i].User = models.DisplayOf(u)
	}

	return top, nil
}

// newUsersByDay buckets users by UTC creation day, ascending. Roles keep one
// entry per user in input order.
func newUsersByDay(users []models.UserSnapshot) []models.NewUsersDay {
	index := make(map[string]int)
	var out []models.NewUsersDay

	for i := range users {
		day := users[i].CreatedAt.UTC().Format(dayLayout)

		pos, ok := index[day]
		if !ok {
			pos = len(out)
			index[day] = pos
			out = append(out, models.NewUsersDay{Day: day, Roles: []string{}})
		}

		out[pos].Count++
		out[pos].Roles = append(out[pos].Roles, users[i].Role)
	}

	slices.SortStableFunc(out, func(a, b models.NewUsersDay) int { return cmp.Compare(a.Day, b.Day) })

	return out
}

// rollupLoginFrequency is the second login stage: it regroups per-actor daily
// counts into per-day totals, ascending by day.
func rollupLoginFrequency(rows []models.ActorDayLogins) []models.LoginFrequencyDay {
	type acc struct {
		actors map[string]struct{}
		total  int64
	}

	days := make(map[string]*acc)

	for _, r := range rows {
		day := r.Day.UTC().Format(dayLayout)

		a, ok := days[day]
		if !ok {
			a = &acc{actors: make(map[string]struct{})}
			days[day] = a
		}

		a.actors[r.ActorID] = struct{}{}
		a.total += r.Logins
	}

	out := make([]models.LoginFrequencyDay, 0, len(days))
	for day, a := range days {
		f := models.LoginFrequencyDay{Day: day, UniqueUsers: len(a.actors), TotalLogins: a.total}
		if f.UniqueUsers > 0 {
			f.AvgLoginsPerUser = round(float64(a.total)/float64(f.UniqueUsers), 2)
		}
		out = append(out, f)
	}

	slices.SortFunc(out, func(a, b models.LoginFrequencyDay) int { return cmp.Compare(a.Day, b.Day) })

	return out
}

// rollupContentActivity is the second content stage: it regroups
// (actor, action) counts per actor. The result is unordered.
func rollupContentActivity(rows []models.ActorActionCount) []models.ContentContributor {
	index := make(map[string]int)
	var out []models.ContentContributor

	for _, r := range rows {
		pos, ok := index[r.ActorID]
		if !ok {
			pos = len(out)
			index[r.ActorID] = pos
			out = append(out, models.ContentContributor{
				ActorID:   r.ActorID,
				Actions:   make(map[string]int64),
				FirstSeen: r.FirstSeen,
			})
		}

		c := &out[pos]
		c.Actions[r.Action] += r.Count
		c.Total += r.Count
		if r.FirstSeen.Before(c.FirstSeen) {
			c.FirstSeen = r.FirstSeen
		}
	}

	return out
}

// roleEngagement summarises users per role, sorted by role.
func roleEngagement(users []models.UserSnapshot, now time.Time) []models.RoleEngagement {
	type acc struct {
		models.RoleEngagement
		logins int64
	}

	roles := make(map[string]*acc)
	recentSince := now.Add(-recentlyActiveFor)

	for i := range users {
		u := &users[i]

		a, ok := roles[u.Role]
		if !ok {
			a = &acc{RoleEngagement: models.RoleEngagement{Role: u.Role}}
			roles[u.Role] = a
		}

		a.TotalUsers++
		a.logins += int64(u.LoginCount)
		if u.IsActive {
			a.ActiveUsers++
		}
		if u.LastLoginAt != nil && !u.LastLoginAt.Before(recentSince) {
			a.RecentlyActive++
		}
	}

	out := make([]models.RoleEngagement, 0, len(roles))
	for _, a := range roles {
		a.AvgLoginCount = round(float64(a.logins)/float64(a.TotalUsers), 2)
		out = append(out, a.RoleEngagement)
	}

	slices.SortFunc(out, func(a, b models.RoleEngagement) int { return cmp.Compare(a.Role, b.Role) })

	return out
}
