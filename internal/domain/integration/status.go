package integration

// Status is the aggregated integration state consumed by the UI and the
// access guard. It is derived on every read, never persisted.
type Status string

const (
	StatusNotConnected Status = "not_connected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusNeedsReauth  Status = "needs_reauth"
	StatusDegraded     Status = "degraded"
	StatusError        Status = "error"
)

// StatusInput is everything the resolver needs, assembled by the caller from
// registry state, cache freshness and the sync service's in-flight records.
// The resolver itself performs no I/O.
type StatusInput struct {
	// Installations are the installations linked to the user, any status.
	Installations []*Installation

	// FreshCacheCount is the number of non-stale cache entries the user
	// holds across active installations.
	FreshCacheCount int

	// SyncInFlight reports whether a sync for any of the user's active
	// installations is currently running.
	SyncInFlight bool

	// LastSyncFailed reports whether the most recent sync attempt for any
	// active installation ended in error.
	LastSyncFailed bool

	// RetriesExhausted reports whether the failing installation has used up
	// its automatic retries.
	RetriesExhausted bool
}

// ResolveStatus derives the integration status. Resolution order is a
// deliberate tie-break: reauth beats generic degradation because it requires
// user action, while transient degradation does not.
func ResolveStatus(in StatusInput) Status {
	if len(in.Installations) == 0 {
		return StatusNotConnected
	}

	// Removed installations grant nothing; drop them before the tie-break.
	// A user whose every link is removed is back to square one.
	live := make([]*Installation, 0, len(in.Installations))
	for _, inst := range in.Installations {
		if inst.Status != InstallationRemoved {
			live = append(live, inst)
		}
	}
	if len(live) == 0 {
		return StatusNotConnected
	}

	allNeedReauth := true
	anyActive := false
	for _, inst := range live {
		if inst.Status != InstallationNeedsReauth {
			allNeedReauth = false
		}
		if inst.Status == InstallationActive {
			anyActive = true
		}
	}
	if allNeedReauth {
		return StatusNeedsReauth
	}

	if anyActive && in.FreshCacheCount > 0 {
		return StatusConnected
	}
	if anyActive && in.SyncInFlight {
		return StatusConnecting
	}
	if anyActive && in.LastSyncFailed && in.RetriesExhausted {
		return StatusDegraded
	}
	return StatusError
}
