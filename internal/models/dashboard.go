package models

import "time"

// Window is the resolved time window of a dashboard.
type Window struct {
	Size  int       `json:"size"`
	Unit  string    `json:"unit"`
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

// UserDisplay is the display subset of a UserSnapshot used for enrichment.
type UserDisplay struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// DisplayOf returns the display fields of u, or nil when u is nil.
func DisplayOf(u *UserSnapshot) *UserDisplay {
	if u == nil {
		return nil
	}

	return &UserDisplay{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// --- Security ---

// SecurityDashboard is the security dashboard payload.
type SecurityDashboard struct {
	Window                  Window           `json:"window"`
	Summary                 SecuritySummary  `json:"summary"`
	RecentFailedLogins      []ActivityLog    `json:"recentFailedLogins"`
	AccountLockouts         []ActivityLog    `json:"accountLockouts"`
	SuspiciousIPs           []IPFailureGroup `json:"suspiciousIPs"`
	UsersWithFailedAttempts []UserSnapshot   `json:"usersWithFailedAttempts"`
	HighSeverityEvents      []ActivityLog    `json:"highSeverityEvents"`
}

// SecuritySummary holds the headline security counters.
type SecuritySummary struct {
	TotalFailedLogins     int64 `json:"totalFailedLogins"`
	UniqueIPsWithFailures int   `json:"uniqueIPsWithFailures"`
	LockedAccounts        int   `json:"lockedAccounts"`
	HighSeverityEvents    int64 `json:"highSeverityEvents"`
}

// LoginAttempt is one failed login attributed to an IP.
type LoginAttempt struct {
	Timestamp time.Time `json:"timestamp"`
	ActorName string    `json:"actorName,omitempty"`
}

// IPFailureGroup is the failed-login rollup for one IP address.
type IPFailureGroup struct {
	IPAddress string         `json:"ipAddress"`
	Count     int64          `json:"count"`
	FirstSeen time.Time      `json:"firstSeen"`
	LastSeen  time.Time      `json:"lastSeen"`
	Attempts  []LoginAttempt `json:"attempts"`
}

// --- Performance ---

// PerformanceDashboard is the performance dashboard payload.
type PerformanceDashboard struct {
	Window         Window              `json:"window"`
	HourlyActivity []HourlyActivity    `json:"hourlyActivity"`
	TopActions     []ActionStat        `json:"topActions"`
	FailingPaths   []PathFailure       `json:"failingPaths"`
	ResponseTimes  ResponseTimeSummary `json:"responseTimes"`
	RoleActivity   []RoleActivity      `json:"roleActivity"`
}

// HourlyActivity is the event volume for one hour of the day (UTC, 0-23)
// across every day in the window. AvgDuration is nil when no event in the
// bucket carried a numeric duration.
type HourlyActivity struct {
	Hour        int      `json:"hour"`
	Count       int64    `json:"count"`
	AvgDuration *float64 `json:"avgDuration"`
}

// ActionStat is the per-action performance rollup. SuccessRate is a fraction in [0,1].
type ActionStat struct {
	Action       string    `json:"action"`
	Count        int64     `json:"count"`
	SuccessCount int64     `json:"successCount"`
	SuccessRate  float64   `json:"successRate"`
	AvgDuration  *float64  `json:"avgDuration"`
	FirstSeen    time.Time `json:"firstSeen"`
}

// FailureSample is one recent failure on a path.
type FailureSample struct {
	Timestamp    time.Time `json:"timestamp"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// PathFailure is the failure rollup for one resource path.
type PathFailure struct {
	Path      string          `json:"path"`
	Failures  int64           `json:"failures"`
	FirstSeen time.Time       `json:"firstSeen"`
	LastSeen  time.Time       `json:"lastSeen"`
	Samples   []FailureSample `json:"samples"`
}

// ResponseTimeSummary covers events carrying a numeric duration. It is zeroed
// when there are none.
type ResponseTimeSummary struct {
	Avg   float64 `json:"avg"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int64   `json:"count"`
}

// RoleActivity is request volume per actor role.
type RoleActivity struct {
	Role         string `json:"role"`
	Requests     int64  `json:"requests"`
	UniqueActors int64  `json:"uniqueActors"`
}

// --- Analytics ---

// AnalyticsDashboard is the usage analytics dashboard payload.
type AnalyticsDashboard struct {
	Window          Window               `json:"window"`
	NewUsers        []NewUsersDay        `json:"newUsers"`
	LoginFrequency  []LoginFrequencyDay  `json:"loginFrequency"`
	ContentActivity []ContentContributor `json:"contentActivity"`
	PeakUsage       []PeakUsageSlot      `json:"peakUsage"`
	RoleEngagement  []RoleEngagement     `json:"roleEngagement"`
}

// NewUsersDay lists accounts created on one UTC day. Roles has one entry per user.
type NewUsersDay struct {
	Day   string   `json:"day"`
	Count int      `json:"count"`
	Roles []string `json:"roles"`
}

// ActorDayLogins is the first login rollup stage: logins per actor per UTC day.
type ActorDayLogins struct {
	ActorID string
	Day     time.Time
	Logins  int64
}

// LoginFrequencyDay is the second login rollup stage.
type LoginFrequencyDay struct {
	Day              string  `json:"day"`
	UniqueUsers      int     `json:"uniqueUsers"`
	TotalLogins      int64   `json:"totalLogins"`
	AvgLoginsPerUser float64 `json:"avgLoginsPerUser"`
}

// ActorActionCount is the first content rollup stage: events per actor per action.
type ActorActionCount struct {
	ActorID   string
	Action    string
	Count     int64
	FirstSeen time.Time
}

// ContentContributor is the second content rollup stage, enriched with the
// actor's display fields. User is nil when the account no longer exists.
type ContentContributor struct {
	ActorID   string           `json:"actorId"`
	Actions   map[string]int64 `json:"actions"`
	Total     int64            `json:"total"`
	FirstSeen time.Time        `json:"firstSeen"`
	User      *UserDisplay     `json:"user"`
}

// PeakUsageSlot is event volume for an (hour, weekday) pair. DayOfWeek 0 is Sunday.
type PeakUsageSlot struct {
	Hour      int       `json:"hour"`
	DayOfWeek int       `json:"dayOfWeek"`
	Count     int64     `json:"count"`
	FirstSeen time.Time `json:"-"`
}

// RoleEngagement summarises the user base per role.
type RoleEngagement struct {
	Role           string  `json:"role"`
	TotalUsers     int     `json:"totalUsers"`
	ActiveUsers    int     `json:"activeUsers"`
	AvgLoginCount  float64 `json:"avgLoginCount"`
	RecentlyActive int     `json:"recentlyActive"`
}

// --- System health ---

// Connectivity probe states.
const (
	ProbeConnected    = "connected"
	ProbeDisconnected = "disconnected"
)

// HealthDashboard is the system health dashboard payload.
type HealthDashboard struct {
	Window         Window              `json:"window"`
	Connectivity   []ConnectivityProbe `json:"connectivity"`
	RecentFailures []ActivityLog       `json:"recentFailures"`
	HourlyFailures []HourlyFailureRate `json:"hourlyFailures"`
	Process        ProcessMetrics      `json:"process"`
	Storage        []TableStats        `json:"storage"`
	TopErrors      []ErrorGroup        `json:"topErrors"`
}

// ConnectivityProbe is the result of pinging one backing store.
type ConnectivityProbe struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	LatencyMs float64 `json:"latencyMs"`
	Error     string  `json:"error,omitempty"`
}

// HourlyFailureCount is the raw per-hour tally from the event store.
type HourlyFailureCount struct {
	Hour     time.Time
	Total    int64
	Failures int64
}

// HourlyFailureRate is one bucket of the failure series. FailureRate is a
// percentage and is 0 when Total is 0.
type HourlyFailureRate struct {
	Hour        time.Time `json:"hour"`
	Total       int64     `json:"total"`
	Failures    int64     `json:"failures"`
	FailureRate float64   `json:"failureRate"`
}

// ProcessMetrics is the host runtime snapshot.
type ProcessMetrics struct {
	UptimeSeconds  float64 `json:"uptimeSeconds"`
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heapAllocBytes"`
	HeapInuseBytes uint64  `json:"heapInuseBytes"`
	SysBytes       uint64  `json:"sysBytes"`
	NumGC          uint32  `json:"numGC"`
	GoVersion      string  `json:"goVersion"`
}

// TableStats is the storage footprint of one table. Error is set, and the
// numbers zeroed, when the table could not be measured.
type TableStats struct {
	Table       string `json:"table"`
	RowEstimate int64  `json:"rowEstimate"`
	TableBytes  int64  `json:"tableBytes"`
	IndexBytes  int64  `json:"indexBytes"`
	TotalBytes  int64  `json:"totalBytes"`
	Error       string `json:"error,omitempty"`
}

// ErrorGroup is one distinct failure message.
type ErrorGroup struct {
	Message   string    `json:"message"`
	Count     int64     `json:"count"`
	LastSeen  time.Time `json:"lastSeen"`
	FirstSeen time.Time `json:"firstSeen"`
}
