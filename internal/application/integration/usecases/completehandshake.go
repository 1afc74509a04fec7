package usecases

import (
	"context"
	"fmt"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/github"
	apperrors "gitgate/internal/shared/errors"
	"gitgate/internal/shared/goroutine"
	"gitgate/internal/shared/logger"
)

type CompleteHandshakeCommand struct {
	UserID uint

	// Code is the authorization code from the provider callback.
	Code string

	// QueryState is the state echoed back in the callback query.
	QueryState string

	// CookieState is the state bound to this browser via the handshake
	// cookie. It must equal QueryState or the handshake aborts with no
	// state committed.
	CookieState string

	// InstallationID is the provider's installation id from the callback.
	// Zero means the callback did not carry one; every installation visible
	// to the token is registered instead.
	InstallationID int64
}

type CompleteHandshakeResult struct {
	Installations []*integration.Installation
}

// CompleteHandshakeUseCase finishes the authorization handshake: verifies the
// CSRF state against both the browser cookie and the one-time server-side
// record, exchanges the code, registers the installation and links it to the
// user, then kicks off the first access sync in the background.
type CompleteHandshakeUseCase struct {
	installationRepo integration.InstallationRepository
	linkRepo         integration.UserInstallationRepository
	userRepo         integration.UserRepository
	githubClient     GitHubClient
	stateStore       StateStore
	syncService      *SyncService
	txManager        TransactionManager
	logger           logger.Interface
}

func NewCompleteHandshakeUseCase(
	installationRepo integration.InstallationRepository,
	linkRepo integration.UserInstallationRepository,
	userRepo integration.UserRepository,
	githubClient GitHubClient,
	stateStore StateStore,
	syncService *SyncService,
	txManager TransactionManager,
	logger logger.Interface,
) *CompleteHandshakeUseCase {
	return &CompleteHandshakeUseCase{
		installationRepo: installationRepo,
		linkRepo:         linkRepo,
		userRepo:         userRepo,
		githubClient:     githubClient,
		stateStore:       stateStore,
		syncService:      syncService,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *CompleteHandshakeUseCase) Execute(ctx context.Context, cmd CompleteHandshakeCommand) (*CompleteHandshakeResult, error) {
	if cmd.CookieState == "" || cmd.QueryState == "" || cmd.CookieState != cmd.QueryState {
		uc.logger.Warnw("handshake state mismatch", "user_id", cmd.UserID)
		return nil, apperrors.NewCSRFMismatchError("state parameter does not match handshake cookie")
	}

	if _, err := uc.stateStore.VerifyAndConsume(ctx, cmd.QueryState); err != nil {
		uc.logger.Warnw("handshake state unknown or replayed", "user_id", cmd.UserID, "error", err)
		return nil, apperrors.NewCSRFMismatchError("state parameter is invalid or expired")
	}

	accessToken, err := uc.githubClient.ExchangeCode(ctx, cmd.Code)
	if err != nil {
		uc.logger.Errorw("failed to exchange authorization code", "error", err)
		return nil, apperrors.NewExternalAPIError("failed to exchange authorization code", err.Error())
	}

	infos, err := uc.resolveInstallations(ctx, accessToken, cmd.InstallationID)
	if err != nil {
		return nil, err
	}

	result := &CompleteHandshakeResult{}
	for _, info := range infos {
		inst, err := uc.registerInstallation(ctx, cmd.UserID, accessToken, info)
		if err != nil {
			return nil, err
		}
		result.Installations = append(result.Installations, inst)

		externalID := inst.ExternalID
		goroutine.SafeGo(uc.logger, "initial-access-sync", func() {
			if syncErr := uc.syncService.Sync(context.Background(), cmd.UserID, externalID); syncErr != nil {
				uc.logger.Warnw("initial access sync failed",
					"installation_id", externalID, "user_id", cmd.UserID, "error", syncErr)
			}
		})
	}

	// A completed link ends onboarding; a failure here must not unwind an
	// otherwise successful handshake.
	if err := uc.userRepo.SetOnboardingComplete(ctx, cmd.UserID); err != nil {
		uc.logger.Warnw("failed to flag onboarding complete", "user_id", cmd.UserID, "error", err)
	}

	uc.logger.Infow("github handshake completed",
		"user_id", cmd.UserID, "installations", len(result.Installations))
	return result, nil
}

func (uc *CompleteHandshakeUseCase) resolveInstallations(ctx context.Context, accessToken string, installationID int64) ([]*github.InstallationInfo, error) {
	if installationID > 0 {
		info, err := uc.githubClient.GetInstallation(ctx, accessToken, installationID)
		if err != nil {
			uc.logger.Errorw("failed to fetch installation", "installation_id", installationID, "error", err)
			return nil, apperrors.NewExternalAPIError("failed to fetch installation", err.Error())
		}
		return []*github.InstallationInfo{info}, nil
	}

	infos, err := uc.githubClient.ListUserInstallations(ctx, accessToken)
	if err != nil {
		uc.logger.Errorw("failed to list installations", "error", err)
		return nil, apperrors.NewExternalAPIError("failed to list installations", err.Error())
	}
	if len(infos) == 0 {
		return nil, apperrors.NewNotFoundError("no installation is visible to this account")
	}
	return infos, nil
}

func (uc *CompleteHandshakeUseCase) registerInstallation(ctx context.Context, userID uint, accessToken string, info *github.InstallationInfo) (*integration.Installation, error) {
	inst, err := integration.NewInstallation(info.ID, info.Account, info.AccountType, userID, info.Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid installation data: %w", err)
	}
	inst.AccessToken = accessToken
	if info.Suspended {
		inst.Status = integration.InstallationSuspended
	}

	// Registration and link commit together: a crash between the two must not
	// leave an installation nobody is linked to.
	var stored *integration.Installation
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		// Upsert keyed on the external id: a re-link of an existing
		// installation refreshes its token and reactivates it instead of
		// duplicating the row.
		if err := uc.installationRepo.Upsert(txCtx, inst); err != nil {
			uc.logger.Errorw("failed to upsert installation", "installation_id", info.ID, "error", err)
			return fmt.Errorf("failed to record installation: %w", err)
		}

		persisted, err := uc.installationRepo.GetByExternalID(txCtx, info.ID)
		if err != nil {
			return fmt.Errorf("failed to reload installation: %w", err)
		}
		stored = persisted

		if err := uc.linkRepo.Link(txCtx, userID, persisted.ID, "member"); err != nil {
			uc.logger.Errorw("failed to link user to installation",
				"installation_id", info.ID, "user_id", userID, "error", err)
			return fmt.Errorf("failed to link installation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}
