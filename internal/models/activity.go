// Package models defines the data types shared by the auditlens stores,
// services, and HTTP handlers.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Status is the outcome recorded on an activity log event.
type Status string

// Event outcomes.
const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailure
}

// Severity bounds.
const (
	MinSeverity = 1
	MaxSeverity = 5
)

// Action tags the aggregators look for. The vocabulary is open; any other
// value is carried through untouched.
const (
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionAccountLocked  = "account_locked"
	ActionContentCreated = "content_created"
	ActionContentUpdated = "content_updated"
	ActionContentDeleted = "content_deleted"
	ActionDataExport     = "data_export"
)

// ContentActions are the actions counted by the content activity rollup.
var ContentActions = []string{ActionContentCreated, ActionContentUpdated, ActionContentDeleted}

// Well-known keys inside Details.
const (
	DetailDuration     = "duration"
	DetailPath         = "path"
	DetailErrorMessage = "errorMessage"
)

// Details is the open key/value bag attached to an event.
type Details map[string]any

// Duration returns details.duration in milliseconds. The second result is
// false when the key is absent or not numeric, so callers never mistake a
// missing duration for zero. Store aggregates apply the same rule in SQL
// through jsonb_typeof(details->'duration') = 'number'.
func (d Details) Duration() (float64, bool) {
	v, ok := d[DetailDuration]
	if !ok {
		return 0, false
	}

	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// Path returns details.path when it is a non-empty string. Store aggregates
// mirror it with NULLIF(details->>'path', '') and fall back to the resource.
func (d Details) Path() (string, bool) {
	s, ok := d[DetailPath].(string)
	if !ok || s == "" {
		return "", false
	}

	return s, true
}

// ErrorMessage returns details.errorMessage, or "" when absent.
func (d Details) ErrorMessage() string {
	s, _ := d[DetailErrorMessage].(string) //nolint:errcheck // type assertion, absent means empty.
	return s
}

// ActivityLog is a single immutable activity/audit log event.
type ActivityLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId,omitempty"`
	ActorName string    `json:"actorName,omitempty"`
	ActorRole string    `json:"actorRole,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Status    Status    `json:"status"`
	Severity  int       `json:"severity"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Details   Details   `json:"details"`
}

// Validate checks the event invariants enforced before an append.
func (l *ActivityLog) Validate() error {
	if l.Action == "" {
		return ErrMissingAction
	}

	if !l.Status.Valid() {
		return fmt.Errorf("status must be %q or %q, got %q", StatusSuccess, StatusFailure, l.Status)
	}

	if l.Severity < MinSeverity || l.Severity > MaxSeverity {
		return fmt.Errorf("severity must be between %d and %d, got %d", MinSeverity, MaxSeverity, l.Severity)
	}

	return nil
}

// Actor identifies the caller of a request, as forwarded by the gateway,
// plus the client address and user agent the request arrived with.
type Actor struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role,omitempty"`
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}
