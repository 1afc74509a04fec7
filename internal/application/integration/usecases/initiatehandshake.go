package usecases

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	apperrors "gitgate/internal/shared/errors"
	"gitgate/internal/shared/logger"
	"gitgate/internal/shared/utils"
)

type InitiateHandshakeResult struct {
	AuthURL string
	State   string
}

// InitiateHandshakeUseCase starts the GitHub App authorization handshake:
// it mints a CSRF state token, records it server-side for one-time
// verification and builds the provider redirect.
type InitiateHandshakeUseCase struct {
	githubClient GitHubClient
	stateStore   StateStore
	logger       logger.Interface
}

func NewInitiateHandshakeUseCase(
	githubClient GitHubClient,
	stateStore StateStore,
	logger logger.Interface,
) *InitiateHandshakeUseCase {
	return &InitiateHandshakeUseCase{
		githubClient: githubClient,
		stateStore:   stateStore,
		logger:       logger,
	}
}

func (uc *InitiateHandshakeUseCase) Execute(ctx context.Context) (*InitiateHandshakeResult, error) {
	if !uc.githubClient.Configured() {
		uc.logger.Errorw("github oauth client id is not configured")
		return nil, apperrors.NewConfigurationError("github integration is not configured")
	}

	state, err := generateState()
	if err != nil {
		uc.logger.Errorw("failed to generate state", "error", err)
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	if err := uc.stateStore.Set(ctx, state); err != nil {
		uc.logger.Errorw("failed to store handshake state", "error", err)
		return nil, fmt.Errorf("failed to store state: %w", err)
	}

	uc.logger.Infow("github handshake initiated", "state", utils.MaskToken(state))

	return &InitiateHandshakeResult{
		AuthURL: uc.githubClient.AuthCodeURL(state),
		State:   state,
	}, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
