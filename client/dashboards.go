package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// DashboardService fetches the aggregated dashboards. Payloads are returned
// undecoded; their shape is documented by the server.
type DashboardService struct {
	c *Client
}

// Security returns the security dashboard over the last windowHours hours.
// Zero uses the server default.
func (s *DashboardService) Security(ctx context.Context, windowHours int) (json.RawMessage, error) {
	return s.fetch(ctx, "security", windowHours)
}

// Performance returns the performance dashboard over the last windowHours hours.
func (s *DashboardService) Performance(ctx context.Context, windowHours int) (json.RawMessage, error) {
	return s.fetch(ctx, "performance", windowHours)
}

// Analytics returns the user analytics dashboard over the last windowDays days.
func (s *DashboardService) Analytics(ctx context.Context, windowDays int) (json.RawMessage, error) {
	return s.fetch(ctx, "analytics", windowDays)
}

// Health returns the system health dashboard.
func (s *DashboardService) Health(ctx context.Context) (json.RawMessage, error) {
	return s.fetch(ctx, "health", 0)
}

func (s *DashboardService) fetch(ctx context.Context, name string, window int) (json.RawMessage, error) {
	params := url.Values{}
	if window > 0 {
		params.Set("windowSize", strconv.Itoa(window))
	}

	var raw json.RawMessage
	if err := s.c.get(ctx, "/api/v1/dashboards/"+name, params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
