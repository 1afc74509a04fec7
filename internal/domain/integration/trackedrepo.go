package integration

import "time"

// TrackedRepo is a repository the product actively monitors. It must always
// reference an installation; when that installation is removed the repo
// becomes untracked, not deleted.
type TrackedRepo struct {
	ID              uint
	ExternalRepoID  int64
	InstallationID  uint
	FullName        string
	TrackingEnabled bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Untrack disables tracking while preserving the row.
func (r *TrackedRepo) Untrack() {
	r.TrackingEnabled = false
}
