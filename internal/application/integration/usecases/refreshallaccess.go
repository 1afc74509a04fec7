package usecases

import (
	"context"
	"fmt"

	"gitgate/internal/domain/integration"
	"gitgate/internal/shared/logger"
)

type RefreshAllAccessResult struct {
	Synced int
	Failed int
}

// RefreshAllAccessUseCase is the periodic refresh driven by the scheduler.
// It walks every (user, active installation) link and syncs each pair,
// isolating failures so one broken installation never stalls the sweep.
type RefreshAllAccessUseCase struct {
	installationRepo integration.InstallationRepository
	linkRepo         integration.UserInstallationRepository
	syncService      *SyncService
	logger           logger.Interface
}

func NewRefreshAllAccessUseCase(
	installationRepo integration.InstallationRepository,
	linkRepo integration.UserInstallationRepository,
	syncService *SyncService,
	logger logger.Interface,
) *RefreshAllAccessUseCase {
	return &RefreshAllAccessUseCase{
		installationRepo: installationRepo,
		linkRepo:         linkRepo,
		syncService:      syncService,
		logger:           logger,
	}
}

func (uc *RefreshAllAccessUseCase) Execute(ctx context.Context) (*RefreshAllAccessResult, error) {
	links, err := uc.linkRepo.ListActiveLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active links: %w", err)
	}

	installations, err := uc.installationRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active installations: %w", err)
	}
	externalByID := make(map[uint]int64, len(installations))
	for _, inst := range installations {
		externalByID[inst.ID] = inst.ExternalID
	}

	result := &RefreshAllAccessResult{}
	for _, link := range links {
		externalID, ok := externalByID[link.InstallationID]
		if !ok {
			continue
		}
		if err := uc.syncService.Sync(ctx, link.UserID, externalID); err != nil {
			result.Failed++
			uc.logger.Warnw("periodic refresh failed for pair",
				"user_id", link.UserID, "installation_id", externalID, "error", err)
			continue
		}
		result.Synced++
	}

	uc.logger.Infow("periodic access refresh completed",
		"synced", result.Synced, "failed", result.Failed)
	return result, nil
}

// AccessRefreshJob adapts the refresh usecase to the scheduler's batch job
// contract.
type AccessRefreshJob struct {
	uc *RefreshAllAccessUseCase
}

func NewAccessRefreshJob(uc *RefreshAllAccessUseCase) *AccessRefreshJob {
	return &AccessRefreshJob{uc: uc}
}

func (j *AccessRefreshJob) Execute(ctx context.Context) (int, error) {
	result, err := j.uc.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return result.Synced, nil
}
