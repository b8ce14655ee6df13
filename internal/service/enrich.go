package service

import (
	"context"

	"github.com/mssola/useragent"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

// enrichLogs looks up each distinct actor once and parses user agents.
// Actors with no snapshot get a nil Actor; that is never an error.
func enrichLogs(
	ctx context.Context, users domain.UserDirectory, log *logrus.Logger, logs []models.ActivityLog,
) ([]models.EnrichedLog, error) {
	out := make([]models.EnrichedLog, len(logs))
	if len(logs) == 0 {
		return out, nil
	}

	seen := make(map[string]struct{})
	var ids []string
	for i := range logs {
		id := logs[i].ActorID
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	var byID map[string]*models.UserSnapshot
	if len(ids) > 0 {
		var err error
		byID, err = users.GetUsers(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	clients := make(map[string]*models.ClientInfo)

	for i := range logs {
		out[i].ActivityLog = logs[i]

		if id := logs[i].ActorID; id != "" {
			if u, ok := byID[id]; ok {
				out[i].Actor = models.DisplayOf(u)
			} else {
				log.WithField("actor_id", id).Debug("log actor has no user snapshot")
			}
		}

		out[i].Client = parseClient(clients, logs[i].UserAgent)
	}

	return out, nil
}

// parseClient parses a user agent string, memoising per call site.
func parseClient(cache map[string]*models.ClientInfo, raw string) *models.ClientInfo {
	if raw == "" {
		return nil
	}

	if c, ok := cache[raw]; ok {
		return c
	}

	ua := useragent.New(raw)
	name, version := ua.Browser()

	c := &models.ClientInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
	cache[raw] = c

	return c
}
