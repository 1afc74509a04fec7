package usecases

import (
	"context"
	"fmt"
	"time"

	"gitgate/internal/domain/integration"
	"gitgate/internal/shared/logger"
)

type GetIntegrationStatusCommand struct {
	UserID uint
}

type GetIntegrationStatusResult struct {
	Status        integration.Status
	Installations []*integration.Installation
	FreshEntries  int64
}

// GetIntegrationStatusUseCase assembles the resolver input from registry
// state, cache freshness and the sync service, then derives the status.
// Nothing is persisted; the status is recomputed on every read.
type GetIntegrationStatusUseCase struct {
	installationRepo integration.InstallationRepository
	cacheRepo        integration.AccessCacheRepository
	syncService      *SyncService
	logger           logger.Interface
}

func NewGetIntegrationStatusUseCase(
	installationRepo integration.InstallationRepository,
	cacheRepo integration.AccessCacheRepository,
	syncService *SyncService,
	logger logger.Interface,
) *GetIntegrationStatusUseCase {
	return &GetIntegrationStatusUseCase{
		installationRepo: installationRepo,
		cacheRepo:        cacheRepo,
		syncService:      syncService,
		logger:           logger,
	}
}

func (uc *GetIntegrationStatusUseCase) Execute(ctx context.Context, cmd GetIntegrationStatusCommand) (*GetIntegrationStatusResult, error) {
	installations, err := uc.installationRepo.ListByUser(ctx, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("failed to list installations", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to list installations: %w", err)
	}

	freshCount, err := uc.cacheRepo.CountFresh(ctx, cmd.UserID, time.Now().UTC())
	if err != nil {
		uc.logger.Errorw("failed to count fresh cache entries", "user_id", cmd.UserID, "error", err)
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}

	view := uc.syncService.View(installations)

	status := integration.ResolveStatus(integration.StatusInput{
		Installations:    installations,
		FreshCacheCount:  int(freshCount),
		SyncInFlight:     view.InFlight,
		LastSyncFailed:   view.LastFailed,
		RetriesExhausted: view.RetriesExhausted,
	})

	return &GetIntegrationStatusResult{
		Status:        status,
		Installations: installations,
		FreshEntries:  freshCount,
	}, nil
}
