package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the server.
const (
	CodeInvalidFilter = "invalid_filter"
	CodeTimeout       = "timeout"
	CodeNotFound      = "not_found"
	CodeRateLimited   = "rate_limited"
)

// APIError represents a structured error response from the auditlens API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	RequestID  string `json:"requestId,omitempty"`
	Detail     string `json:"error,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("auditlens: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, msg, e.RequestID)
	}
	return fmt.Sprintf("auditlens: %d %s: %s", e.StatusCode, e.Code, msg)
}

func asAPIError(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

// IsInvalidFilter returns true if the server rejected a query parameter.
func IsInvalidFilter(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Code == CodeInvalidFilter
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	e, ok := asAPIError(err)
	return ok && (e.Code == CodeNotFound || e.StatusCode == http.StatusNotFound)
}

// IsTimeout returns true if the server gave up on a dashboard or query.
func IsTimeout(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Code == CodeTimeout
}

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool {
	e, ok := asAPIError(err)
	return ok && (e.Code == CodeRateLimited || e.StatusCode == http.StatusTooManyRequests)
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
