package client

import (
	"context"
	"mime"
	"strconv"
)

// LogService searches and exports activity logs.
type LogService struct {
	c *Client
}

// Search returns one page of enriched logs. Zero page or limit uses the
// server defaults.
func (s *LogService) Search(ctx context.Context, f *LogFilter, page, limit int) (*LogPage, error) {
	params := f.values()
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var out LogPage
	if err := s.c.get(ctx, "/api/v1/logs", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads matching logs as "json" or "csv".
func (s *LogService) Export(ctx context.Context, f *LogFilter, format string) (*ExportFile, error) {
	params := f.values()
	params.Set("format", format)

	resp, err := s.c.send(ctx, "/api/v1/logs/export", params)
	if err != nil {
		return nil, err
	}
	if resp.status >= 400 {
		return nil, parseAPIError(resp.status, resp.body)
	}

	count, _ := strconv.Atoi(resp.header.Get("X-Record-Count"))
	return &ExportFile{
		Filename:    attachmentName(resp.header.Get("Content-Disposition")),
		ContentType: resp.header.Get("Content-Type"),
		RecordCount: count,
		Truncated:   resp.header.Get("X-Export-Truncated") == "true",
		Body:        resp.body,
	}, nil
}

// attachmentName extracts filename from a Content-Disposition value.
func attachmentName(disposition string) string {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
