package models

// ClientInfo is parsed from an event's user agent.
type ClientInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

// EnrichedLog is an event with its actor looked up. Actor is nil when the
// event has no actor or the account no longer exists.
type EnrichedLog struct {
	ActivityLog
	Actor  *UserDisplay `json:"actor"`
	Client *ClientInfo  `json:"client,omitempty"`
}

// LogPage is one page of log search results.
type LogPage struct {
	Logs       []EnrichedLog `json:"logs"`
	Pagination PageInfo      `json:"pagination"`
}
