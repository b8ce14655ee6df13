package models

import "time"

// UserSnapshot is the read-only view of a user account.
type UserSnapshot struct {
	ID                  string     `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	IsActive            bool       `json:"isActive"`
	LoginCount          int        `json:"loginCount"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockedUntil         *time.Time `json:"lockedUntil,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// LockedAt reports whether the account is still locked at now.
func (u *UserSnapshot) LockedAt(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// UserQuery selects users from a UserStore. Zero fields do not filter.
type UserQuery struct {
	CreatedSince       *time.Time
	FailedAttemptsOnly bool
}
