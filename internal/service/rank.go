package service

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result sizes for the ranked dashboard sections.
const (
	topIPs             = 10
	topActions         = 10
	topPaths           = 10
	topContributors    = 10
	topErrors          = 10
	topPeakSlots       = 20
	recentFailedLogins = 50
	recentHighSeverity = 20
	recentFailures     = 50
	failureSamples     = 5
	highSeverityFloor  = 4
)

// rankTop sorts items by metric descending, then first seen ascending, then
// key ascending, and keeps at most n. n <= 0 keeps everything.
func rankTop[T any](items []T, n int, metric func(T) int64, firstSeen func(T) time.Time, key func(T) string) []T {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(metric(b), metric(a)); c != 0 {
			return c
		}
		if c := firstSeen(a).Compare(firstSeen(b)); c != 0 {
			return c
		}
		return cmp.Compare(key(a), key(b))
	})

	if n > 0 && len(items) > n {
		items = items[:n]
	}

	return items
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func roundPtr(v *float64, places int) *float64 {
	if v == nil {
		return nil
	}

	r := round(*v, places)

	return &r
}

// orEmpty keeps empty sections serialised as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// newGroup starts a fan-out bounded to limit concurrent sub-queries. The
// first error cancels the returned context.
func newGroup(ctx context.Context, limit int) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	return g, gctx
}
