package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// Compile-time check: *LogQueryService must satisfy domain.LogService.
var _ domain.LogService = (*LogQueryService)(nil)

// LogQueryService answers filtered, paginated log searches.
type LogQueryService struct {
	events  domain.LogSearcher
	users   domain.UserDirectory
	timeout time.Duration
	log     *logrus.Logger
}

// NewLogQueryService creates a LogQueryService. Each search runs under
// timeout; zero leaves the caller's deadline in charge.
func NewLogQueryService(
	events domain.LogSearcher, users domain.UserDirectory, timeout time.Duration, log *logrus.Logger,
) *LogQueryService {
	return &LogQueryService{events: events, users: users, timeout: timeout, log: log}
}

// Search validates the raw filter and pagination, then fetches the page and
// the total count concurrently. Results are newest first and enriched.
func (s *LogQueryService) Search(
	ctx context.Context, params models.LogFilterParams, page, limit string,
) (*models.LogPage, error) {
	f, err := params.Build()
	if err != nil {
		return nil, err
	}

	p, err := models.ParsePagination(page, limit)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withRequestTimeout(ctx, s.timeout)
	defer cancel()

	var (
		logs  []models.ActivityLog
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		logs, err = s.events.SearchLogs(gctx, f, p.Limit, p.Offset())
		return err
	})

	g.Go(func() error {
		var err error
		total, err = s.events.CountLogs(gctx, f)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, deadlineErr(ctx, err)
	}

	enriched, err := enrichLogs(ctx, s.users, s.log, logs)
	if err != nil {
		return nil, deadlineErr(ctx, err)
	}

	return &models.LogPage{Logs: enriched, Pagination: models.NewPageInfo(p, total)}, nil
}
