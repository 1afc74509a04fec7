package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/github"
	apperrors "gitgate/internal/shared/errors"
	"gitgate/internal/shared/logger"
)

// SyncConfig tunes the access sync service.
type SyncConfig struct {
	CacheTTL       time.Duration
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	MaxRetries     int
}

// syncState tracks the outcome of the most recent sync attempt for one
// installation. Kept in memory: it feeds status resolution, not persistence.
type syncState struct {
	inFlight     bool
	failCount    int
	lastFailed   bool
	backoffUntil time.Time
	lastSyncedAt time.Time
}

// SyncView is a read-only summary of sync state across a set of
// installations, consumed by the status resolver.
type SyncView struct {
	InFlight         bool
	LastFailed       bool
	RetriesExhausted bool
}

// SyncService reconciles the provider's repository grants into the local
// access cache. Concurrent syncs of the same (user, installation) pair
// collapse into one provider call via singleflight.
type SyncService struct {
	installationRepo integration.InstallationRepository
	trackedRepoRepo  integration.TrackedRepoRepository
	cacheRepo        integration.AccessCacheRepository
	githubClient     GitHubClient
	cfg              SyncConfig
	logger           logger.Interface

	group  singleflight.Group
	mu     sync.Mutex
	states map[int64]*syncState
}

// NewSyncService creates a new SyncService instance.
func NewSyncService(
	installationRepo integration.InstallationRepository,
	trackedRepoRepo integration.TrackedRepoRepository,
	cacheRepo integration.AccessCacheRepository,
	githubClient GitHubClient,
	cfg SyncConfig,
	logger logger.Interface,
) *SyncService {
	return &SyncService{
		installationRepo: installationRepo,
		trackedRepoRepo:  trackedRepoRepo,
		cacheRepo:        cacheRepo,
		githubClient:     githubClient,
		cfg:              cfg,
		logger:           logger,
		states:           make(map[int64]*syncState),
	}
}

// Sync refreshes the access cache for one (user, installation) pair. The
// returned error is classified: revoked authorization flips the installation
// to needs_reauth, a rate limit backs off without touching the cache, any
// other failure marks the installation's cache entries stale.
func (s *SyncService) Sync(ctx context.Context, userID uint, externalID int64) error {
	key := fmt.Sprintf("%d/%d", userID, externalID)
	_, err, _ := s.group.Do(key, func() (interface{}, error) {
		return nil, s.doSync(ctx, userID, externalID)
	})
	return err
}

func (s *SyncService) doSync(ctx context.Context, userID uint, externalID int64) error {
	s.setInFlight(externalID, true)
	defer s.setInFlight(externalID, false)

	if until, backedOff := s.backoffActive(externalID); backedOff {
		return apperrors.NewExternalAPIError("sync backed off after rate limit",
			fmt.Sprintf("retry after %s", until.Format(time.RFC3339)))
	}

	inst, err := s.installationRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return fmt.Errorf("failed to load installation: %w", err)
	}

	switch inst.Status {
	case integration.InstallationRemoved:
		// Removal may have raced an earlier sync's write-back. Purge whatever
		// it left behind so no entry outlives the uninstall.
		if purgeErr := s.cacheRepo.InvalidateByInstallation(ctx, inst.ID); purgeErr != nil {
			s.logger.Errorw("failed to purge cache for removed installation",
				"installation_id", externalID, "error", purgeErr)
		}
		return integration.ErrInstallationRemoved
	case integration.InstallationNeedsReauth:
		return apperrors.NewAuthRevokedError("installation requires re-authorization")
	case integration.InstallationSuspended:
		s.logger.Infow("skipping sync for suspended installation", "installation_id", externalID)
		return nil
	}

	repos, err := s.githubClient.ListInstallationRepos(ctx, inst.AccessToken, externalID)
	if err != nil {
		return s.recordFailure(ctx, inst, err)
	}

	now := time.Now().UTC()
	entries, err := s.cacheRepo.ListByUserAndInstallation(ctx, userID, inst.ID)
	if err != nil {
		return fmt.Errorf("failed to load cache entries: %w", err)
	}

	changes := integration.Reconcile(
		integration.LocalState{CacheEntries: entries},
		integration.Snapshot{InstallationExternalID: externalID, Repos: repos},
		userID, inst.ID, now, s.cfg.CacheTTL,
	)

	// The installation may have been removed while the provider call was in
	// flight. A removed installation grants nothing, so the snapshot is
	// discarded rather than written.
	current, err := s.installationRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		return fmt.Errorf("failed to re-check installation: %w", err)
	}
	if current.Status == integration.InstallationRemoved {
		s.logger.Warnw("discarding sync result for removed installation", "installation_id", externalID)
		return integration.ErrInstallationRemoved
	}

	if len(changes.TrackRepos) > 0 {
		if err := s.trackedRepoRepo.UpsertMany(ctx, inst.ID, changes.TrackRepos); err != nil {
			return fmt.Errorf("failed to upsert tracked repos: %w", err)
		}
	}
	if len(changes.PutEntries) > 0 {
		if err := s.cacheRepo.PutMany(ctx, changes.PutEntries); err != nil {
			return fmt.Errorf("failed to write cache entries: %w", err)
		}
	}
	if len(changes.ExpireRepoIDs) > 0 {
		if err := s.cacheRepo.ExpireRepos(ctx, userID, changes.ExpireRepoIDs, now); err != nil {
			return fmt.Errorf("failed to expire vanished repos: %w", err)
		}
	}

	s.recordSuccess(externalID)
	s.logger.Infow("access sync completed",
		"installation_id", externalID,
		"user_id", userID,
		"repos", len(repos),
		"expired", len(changes.ExpireRepoIDs),
	)
	return nil
}

// SyncUser refreshes every active installation linked to the user. A failure
// on one installation never blocks the others; errors are joined.
func (s *SyncService) SyncUser(ctx context.Context, userID uint) error {
	installations, err := s.installationRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list installations: %w", err)
	}

	var errs []error
	for _, inst := range installations {
		if !inst.IsActive() {
			continue
		}
		if err := s.Sync(ctx, userID, inst.ExternalID); err != nil {
			s.logger.Warnw("installation sync failed",
				"installation_id", inst.ExternalID,
				"user_id", userID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("installation %d: %w", inst.ExternalID, err))
		}
	}
	return errors.Join(errs...)
}

// View summarizes sync state across the given installations for status
// resolution. Only active installations are considered.
func (s *SyncService) View(installations []*integration.Installation) SyncView {
	s.mu.Lock()
	defer s.mu.Unlock()

	var view SyncView
	for _, inst := range installations {
		if !inst.IsActive() {
			continue
		}
		st, ok := s.states[inst.ExternalID]
		if !ok {
			continue
		}
		if st.inFlight {
			view.InFlight = true
		}
		if st.lastFailed {
			view.LastFailed = true
			if st.failCount >= s.cfg.MaxRetries {
				view.RetriesExhausted = true
			}
		}
	}
	return view
}

func (s *SyncService) recordFailure(ctx context.Context, inst *integration.Installation, err error) error {
	switch {
	case github.IsAuthRevoked(err):
		if updateErr := s.installationRepo.UpdateStatus(ctx, inst.ExternalID, integration.InstallationNeedsReauth); updateErr != nil {
			s.logger.Errorw("failed to flag installation for reauth",
				"installation_id", inst.ExternalID, "error", updateErr)
		}
		s.markFailed(inst.ExternalID, false)
		s.logger.Warnw("provider revoked authorization", "installation_id", inst.ExternalID)
		return apperrors.NewAuthRevokedError("provider rejected the installation token", err.Error())

	case github.IsNotFound(err):
		// The installation is gone upstream. Cascade the removal locally so
		// the registry, tracked repos and cache stop granting through it.
		if removeErr := s.installationRepo.MarkRemoved(ctx, inst.ExternalID); removeErr != nil {
			s.logger.Errorw("failed to mark installation removed",
				"installation_id", inst.ExternalID, "error", removeErr)
		}
		s.logger.Infow("installation removed upstream", "installation_id", inst.ExternalID)
		return integration.ErrInstallationRemoved

	case github.IsRateLimited(err):
		// Backed off, cache untouched: existing entries keep serving until
		// their own TTLs run out.
		s.markFailed(inst.ExternalID, true)
		s.logger.Warnw("provider rate limited sync", "installation_id", inst.ExternalID)
		return apperrors.NewExternalAPIError("provider rate limit hit", err.Error())

	default:
		now := time.Now().UTC()
		if staleErr := s.cacheRepo.MarkStaleByInstallation(ctx, inst.ID, now); staleErr != nil {
			s.logger.Errorw("failed to mark cache stale",
				"installation_id", inst.ExternalID, "error", staleErr)
		}
		s.markFailed(inst.ExternalID, true)
		s.logger.Errorw("access sync failed", "installation_id", inst.ExternalID, "error", err)
		return apperrors.NewExternalAPIError("provider sync failed", err.Error())
	}
}

func (s *SyncService) setInFlight(externalID int64, inFlight bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(externalID).inFlight = inFlight
}

func (s *SyncService) markFailed(externalID int64, backoff bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(externalID)
	st.lastFailed = true
	st.failCount++
	if backoff {
		st.backoffUntil = time.Now().UTC().Add(s.backoffDelay(st.failCount))
	}
}

func (s *SyncService) recordSuccess(externalID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(externalID)
	st.lastFailed = false
	st.failCount = 0
	st.backoffUntil = time.Time{}
	st.lastSyncedAt = time.Now().UTC()
}

func (s *SyncService) backoffActive(externalID int64) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(externalID)
	if time.Now().UTC().Before(st.backoffUntil) {
		return st.backoffUntil, true
	}
	return time.Time{}, false
}

// backoffDelay doubles per consecutive failure, capped at BackoffMax.
func (s *SyncService) backoffDelay(failCount int) time.Duration {
	delay := s.cfg.BackoffInitial
	for i := 1; i < failCount; i++ {
		delay *= 2
		if delay >= s.cfg.BackoffMax {
			return s.cfg.BackoffMax
		}
	}
	if delay > s.cfg.BackoffMax {
		return s.cfg.BackoffMax
	}
	return delay
}

// state must be called with mu held.
func (s *SyncService) state(externalID int64) *syncState {
	st, ok := s.states[externalID]
	if !ok {
		st = &syncState{}
		s.states[externalID] = st
	}
	return st
}
