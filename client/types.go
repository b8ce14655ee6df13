package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

// HealthResponse represents the liveness check response.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready  bool              `json:"-"`
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// LogFilter narrows log searches and exports. Zero fields are not sent.
type LogFilter struct {
	ActorID   string
	Action    string
	Resource  string
	Status    string
	Severity  int
	StartDate time.Time
	EndDate   time.Time
	Search    string
}

func (f *LogFilter) values() url.Values {
	v := url.Values{}
	if f == nil {
		return v
	}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("actorId", f.ActorID)
	set("action", f.Action)
	set("resource", f.Resource)
	set("status", f.Status)
	set("search", f.Search)
	if f.Severity > 0 {
		v.Set("severity", strconv.Itoa(f.Severity))
	}
	if !f.StartDate.IsZero() {
		v.Set("startDate", f.StartDate.UTC().Format(time.RFC3339))
	}
	if !f.EndDate.IsZero() {
		v.Set("endDate", f.EndDate.UTC().Format(time.RFC3339))
	}
	return v
}

// UserDisplay is the actor attached to an enriched log entry.
type UserDisplay struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// ClientInfo is the parsed user agent of an entry.
type ClientInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

// LogEntry is one enriched activity log record.
type LogEntry struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	ActorID   string          `json:"actorId,omitempty"`
	ActorName string          `json:"actorName,omitempty"`
	ActorRole string          `json:"actorRole,omitempty"`
	Action    string          `json:"action"`
	Resource  string          `json:"resource"`
	Status    string          `json:"status"`
	Severity  int             `json:"severity"`
	IPAddress string          `json:"ipAddress"`
	UserAgent string          `json:"userAgent"`
	Details   json.RawMessage `json:"details,omitempty"`
	Actor     *UserDisplay    `json:"actor"`
	Client    *ClientInfo     `json:"client,omitempty"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// LogPage is one page of search results.
type LogPage struct {
	Logs       []LogEntry `json:"logs"`
	Pagination Pagination `json:"pagination"`
}

// ExportFile is a downloaded export.
type ExportFile struct {
	Filename    string
	ContentType string
	RecordCount int
	Truncated   bool
	Body        []byte
}
