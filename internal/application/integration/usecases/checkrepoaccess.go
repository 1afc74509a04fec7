package usecases

import (
	"context"
	"fmt"
	"time"

	"gitgate/internal/domain/integration"
	"gitgate/internal/shared/goroutine"
	"gitgate/internal/shared/logger"
)

type CheckRepoAccessCommand struct {
	UserID uint
	RepoID int64
}

type CheckRepoAccessResult struct {
	Decision integration.AccessDecision
}

// CheckRepoAccessUseCase answers "may this user act on this repo" from the
// access cache. A miss or stale hit triggers a bounded on-demand refresh;
// when the refresh cannot complete in time, a stale entry is served flagged
// as stale and a missing entry denies. A missing decision never defaults to
// allowed.
type CheckRepoAccessUseCase struct {
	cacheRepo       integration.AccessCacheRepository
	syncService     *SyncService
	onDemandTimeout time.Duration
	logger          logger.Interface
}

func NewCheckRepoAccessUseCase(
	cacheRepo integration.AccessCacheRepository,
	syncService *SyncService,
	onDemandTimeout time.Duration,
	logger logger.Interface,
) *CheckRepoAccessUseCase {
	return &CheckRepoAccessUseCase{
		cacheRepo:       cacheRepo,
		syncService:     syncService,
		onDemandTimeout: onDemandTimeout,
		logger:          logger,
	}
}

func (uc *CheckRepoAccessUseCase) Execute(ctx context.Context, cmd CheckRepoAccessCommand) (*CheckRepoAccessResult, error) {
	now := time.Now().UTC()

	entry, stale, err := uc.cacheRepo.Get(ctx, cmd.UserID, cmd.RepoID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to read access cache: %w", err)
	}
	if entry != nil && !stale {
		return &CheckRepoAccessResult{
			Decision: integration.AccessDecision{Level: entry.Level},
		}, nil
	}

	syncCtx, cancel := context.WithTimeout(ctx, uc.onDemandTimeout)
	defer cancel()

	if syncErr := uc.syncService.SyncUser(syncCtx, cmd.UserID); syncErr != nil {
		uc.logger.Warnw("on-demand access refresh failed",
			"user_id", cmd.UserID, "repo_id", cmd.RepoID, "error", syncErr)
		// Keep a refresh going in the background so the next read has a
		// chance at a fresh answer; this request falls back to stale below.
		userID := cmd.UserID
		goroutine.SafeGo(uc.logger, "background-access-refresh", func() {
			if err := uc.syncService.SyncUser(context.Background(), userID); err != nil {
				uc.logger.Warnw("background access refresh failed", "user_id", userID, "error", err)
			}
		})
	}

	refreshed, refreshedStale, err := uc.cacheRepo.Get(ctx, cmd.UserID, cmd.RepoID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to re-read access cache: %w", err)
	}
	if refreshed != nil {
		return &CheckRepoAccessResult{
			Decision: integration.AccessDecision{Level: refreshed.Level, Stale: refreshedStale},
		}, nil
	}

	// No entry at all, fresh or stale: deny.
	return &CheckRepoAccessResult{
		Decision: integration.AccessDecision{Level: integration.AccessNone},
	}, nil
}
