package integration

import "time"

// AccessLevel is the permission tier a user effectively holds on a
// repository via one of their linked installations.
type AccessLevel string

const (
	AccessNone  AccessLevel = "none"
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
	AccessAdmin AccessLevel = "admin"
)

// CachedAccess is a materialized (user, repo) access decision. It is
// authoritative only while now < ExpiresAt; past that it may be served only
// with an explicit stale flag, never as fresh.
type CachedAccess struct {
	ID             uint
	UserID         uint
	RepoID         int64
	InstallationID uint
	Level          AccessLevel
	ComputedAt     time.Time
	ExpiresAt      time.Time
}

// IsStale reports whether the entry is past its freshness window.
func (a *CachedAccess) IsStale(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// AccessDecision is the read-side result of a cache lookup.
type AccessDecision struct {
	Level AccessLevel
	Stale bool
}
