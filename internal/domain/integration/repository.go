package integration

import (
	"context"
	"time"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByProviderID retrieves a user by the hosted identity provider's id
	GetByProviderID(ctx context.Context, providerID string) (*User, error)

	// GetByID retrieves a user by internal ID
	GetByID(ctx context.Context, id uint) (*User, error)

	// EnsureByProviderID returns the user for the identity, creating the
	// record on first successful sign-in
	EnsureByProviderID(ctx context.Context, providerID, handle string) (*User, error)

	// SetOnboardingComplete flags the user's onboarding as done
	SetOnboardingComplete(ctx context.Context, id uint) error
}

// InstallationRepository defines the interface for installation records.
// Registry state is the single source of truth for whether a user has any
// path to a repository; the access cache is only a performance layer on top.
type InstallationRepository interface {
	// Upsert records an installation; re-running with the same external id
	// must update the existing row, never create a duplicate
	Upsert(ctx context.Context, installation *Installation) error

	// GetByExternalID retrieves an installation by the provider's id
	GetByExternalID(ctx context.Context, externalID int64) (*Installation, error)

	// ListByUser retrieves all installations linked to a user, any status
	ListByUser(ctx context.Context, userID uint) ([]*Installation, error)

	// ListActive retrieves all active installations
	ListActive(ctx context.Context) ([]*Installation, error)

	// UpdateStatus transitions an installation's lifecycle status
	UpdateStatus(ctx context.Context, externalID int64, status InstallationStatus) error

	// MarkRemoved sets status removed, untracks dependent tracked repos and
	// invalidates every cache entry referencing the installation, atomically
	MarkRemoved(ctx context.Context, externalID int64) error
}

// UserInstallationRepository defines the interface for user-installation links
type UserInstallationRepository interface {
	// Link creates the join row; linking an already-linked pair is a no-op
	Link(ctx context.Context, userID, installationID uint, role string) error

	// ListUserIDs retrieves all user ids linked to an installation
	ListUserIDs(ctx context.Context, installationID uint) ([]uint, error)

	// ListActiveLinks retrieves all (user, installation) pairs whose
	// installation is active, for the periodic refresh
	ListActiveLinks(ctx context.Context) ([]*UserInstallation, error)
}

// TrackedRepoRepository defines the interface for tracked repositories
type TrackedRepoRepository interface {
	// UpsertMany records repositories as tracked for an installation
	UpsertMany(ctx context.Context, installationID uint, repos []RemoteRepo) error

	// ListByInstallation retrieves tracked repos for an installation
	ListByInstallation(ctx context.Context, installationID uint) ([]*TrackedRepo, error)

	// UntrackByInstallation disables tracking for all of an installation's
	// repos without deleting them
	UntrackByInstallation(ctx context.Context, installationID uint) error
}

// AccessCacheRepository defines the interface for the materialized
// (user, repo) access cache. Mutated only by the sync worker and the
// registry's invalidation path.
type AccessCacheRepository interface {
	// Get returns the cached decision and whether it is stale, or nil when
	// no decision exists. A missing decision must never default to allowed.
	Get(ctx context.Context, userID uint, repoID int64, now time.Time) (*CachedAccess, bool, error)

	// PutMany upserts entries with fresh TTLs
	PutMany(ctx context.Context, entries []CachedAccess) error

	// ExpireRepos expires the user's entries for the given repos
	ExpireRepos(ctx context.Context, userID uint, repoIDs []int64, now time.Time) error

	// MarkStaleByInstallation forces every entry of an installation stale,
	// used when a sync fails and existing data must stop serving as fresh
	MarkStaleByInstallation(ctx context.Context, installationID uint, now time.Time) error

	// InvalidateByInstallation deletes every entry referencing the
	// installation, used on removal
	InvalidateByInstallation(ctx context.Context, installationID uint) error

	// CountFresh counts the user's non-stale entries owned by active
	// installations; entries of suspended, removed or needs_reauth
	// installations never count
	CountFresh(ctx context.Context, userID uint, now time.Time) (int64, error)

	// ListByUserAndInstallation retrieves the user's entries for one
	// installation, fresh or stale, for reconciliation
	ListByUserAndInstallation(ctx context.Context, userID, installationID uint) ([]*CachedAccess, error)
}
