package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Pagination defaults and bounds for log search.
const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 1000
	MaxPage      = 100000
)

// maxSearchLen caps the free-text search term.
const maxSearchLen = 500

// dateLayout is the date-only form accepted for startDate/endDate.
const dateLayout = "2006-01-02"

// LogFilterParams is the raw, unvalidated log filter input as it arrives in a query string.
type LogFilterParams struct {
	ActorID   string
	Action    string
	Resource  string
	Status    string
	Severity  string
	StartDate string
	EndDate   string
	Search    string
}

// LogFilter is a validated log search predicate. Zero fields do not filter.
// StartDate and EndDate are both inclusive.
type LogFilter struct {
	ActorID   string     `json:"actorId,omitempty"`
	Action    string     `json:"action,omitempty"`
	Resource  string     `json:"resource,omitempty"`
	Status    Status     `json:"status,omitempty"`
	Severity  int        `json:"severity,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Search    string     `json:"search,omitempty"`
}

// Build validates the raw parameters. Every failure is a FilterError naming the field.
func (p LogFilterParams) Build() (LogFilter, error) {
	f := LogFilter{
		ActorID:  strings.TrimSpace(p.ActorID),
		Action:   strings.TrimSpace(p.Action),
		Resource: strings.TrimSpace(p.Resource),
		Search:   strings.TrimSpace(p.Search),
	}

	if p.Status != "" {
		s := Status(strings.ToLower(strings.TrimSpace(p.Status)))
		if !s.Valid() {
			return LogFilter{}, NewFilterError("status", fmt.Sprintf("must be %q or %q", StatusSuccess, StatusFailure))
		}
		f.Status = s
	}

	if p.Severity != "" {
		sev, err := strconv.Atoi(strings.TrimSpace(p.Severity))
		if err != nil || sev < MinSeverity || sev > MaxSeverity {
			return LogFilter{}, NewFilterError("severity", fmt.Sprintf("must be an integer between %d and %d", MinSeverity, MaxSeverity))
		}
		f.Severity = sev
	}

	if p.StartDate != "" {
		t, err := parseBound(p.StartDate, false)
		if err != nil {
			return LogFilter{}, NewFilterError("startDate", err.Error())
		}
		f.StartDate = &t
	}

	if p.EndDate != "" {
		t, err := parseBound(p.EndDate, true)
		if err != nil {
			return LogFilter{}, NewFilterError("endDate", err.Error())
		}
		f.EndDate = &t
	}

	if f.StartDate != nil && f.EndDate != nil && f.StartDate.After(*f.EndDate) {
		return LogFilter{}, NewFilterError("endDate", "must not be before startDate")
	}

	if len(f.Search) > maxSearchLen {
		return LogFilter{}, NewFilterError("search", fmt.Sprintf("exceeds maximum length of %d", maxSearchLen))
	}

	return f, nil
}

// parseBound accepts an RFC 3339 instant or a YYYY-MM-DD date (UTC). A
// date-only end bound covers the whole day.
func parseBound(raw string, end bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}

	d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("must be an RFC 3339 instant or YYYY-MM-DD date")
	}

	if end {
		return d.Add(24*time.Hour - time.Microsecond), nil
	}

	return d, nil
}

// Pagination is a validated page request.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows to skip.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePagination validates raw page/limit values. Empty values take the
// defaults; limit is clamped to MaxLimit.
func ParsePagination(page, limit string) (Pagination, error) {
	p := Pagination{Page: DefaultPage, Limit: DefaultLimit}

	if page != "" {
		v, err := strconv.Atoi(strings.TrimSpace(page))
		if err != nil || v < 1 {
			return Pagination{}, NewFilterError("page", "must be a positive integer")
		}
		if v > MaxPage {
			return Pagination{}, NewFilterError("page", fmt.Sprintf("must not exceed %d", MaxPage))
		}
		p.Page = v
	}

	if limit != "" {
		v, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil || v < 1 {
			return Pagination{}, NewFilterError("limit", "must be a positive integer")
		}
		p.Limit = min(v, MaxLimit)
	}

	return p, nil
}

// PageInfo is the pagination metadata returned with a page of results.
type PageInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// NewPageInfo derives page metadata. p.Limit must be >= 1.
func NewPageInfo(p Pagination, total int64) PageInfo {
	limit := int64(p.Limit)
	totalPages := (total + limit - 1) / limit

	return PageInfo{
		Page:        p.Page,
		Limit:       p.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: int64(p.Page) < totalPages,
		HasPrevPage: p.Page > 1,
	}
}

// EventQuery selects events for the dashboard aggregators. Zero fields do not
// filter; results are newest first.
type EventQuery struct {
	Since       *time.Time
	Actions     []string
	Status      Status
	MinSeverity int
	Limit       int
}
