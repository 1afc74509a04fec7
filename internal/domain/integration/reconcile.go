package integration

import "time"

// RemoteRepo is one repository as reported by the provider for a given
// user and installation, with the user's effective permission.
type RemoteRepo struct {
	ExternalID int64
	FullName   string
	Level      AccessLevel
}

// Snapshot is the provider's current view of one installation for one user.
type Snapshot struct {
	InstallationExternalID int64
	Repos                  []RemoteRepo
}

// LocalState is the locally cached view for the same (user, installation)
// pair, loaded before reconciliation.
type LocalState struct {
	TrackedRepos []*TrackedRepo
	CacheEntries []*CachedAccess
}

// Changes is the write set a reconciliation produces. Applying it is the
// caller's job; computing it is pure, which keeps the diff deterministic and
// unit-testable without a live network.
type Changes struct {
	// PutEntries are cache entries to upsert with a fresh TTL.
	PutEntries []CachedAccess

	// ExpireRepoIDs are external repo ids whose cache entries must be
	// expired because the provider no longer returns them. Expired, not
	// deleted: a vanished repo must stop serving as fresh immediately.
	ExpireRepoIDs []int64

	// TrackRepos are repositories to upsert as tracked for the installation.
	TrackRepos []RemoteRepo
}

// Reconcile diffs the provider snapshot against local state for one
// (user, installation) pair. userID and installationID identify the cache
// rows to write; ttl bounds the freshness window of new entries.
func Reconcile(local LocalState, snapshot Snapshot, userID, installationID uint, now time.Time, ttl time.Duration) Changes {
	var out Changes

	seen := make(map[int64]struct{}, len(snapshot.Repos))
	for _, repo := range snapshot.Repos {
		seen[repo.ExternalID] = struct{}{}
		out.PutEntries = append(out.PutEntries, CachedAccess{
			UserID:         userID,
			RepoID:         repo.ExternalID,
			InstallationID: installationID,
			Level:          repo.Level,
			ComputedAt:     now,
			ExpiresAt:      now.Add(ttl),
		})
		out.TrackRepos = append(out.TrackRepos, repo)
	}

	for _, entry := range local.CacheEntries {
		if _, ok := seen[entry.RepoID]; !ok {
			out.ExpireRepoIDs = append(out.ExpireRepoIDs, entry.RepoID)
		}
	}

	return out
}
