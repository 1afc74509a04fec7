package usecases

import (
	"context"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/cache"
	"gitgate/internal/infrastructure/github"
)

// GitHubClient defines the provider operations the handshake and the sync
// worker depend on.
type GitHubClient interface {
	Configured() bool
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	GetInstallation(ctx context.Context, accessToken string, installationID int64) (*github.InstallationInfo, error)
	ListUserInstallations(ctx context.Context, accessToken string) ([]*github.InstallationInfo, error)
	ListInstallationRepos(ctx context.Context, accessToken string, installationID int64) ([]integration.RemoteRepo, error)
}

// StateStore defines the interface for one-time OAuth state storage.
type StateStore interface {
	Set(ctx context.Context, state string) error
	VerifyAndConsume(ctx context.Context, state string) (*cache.StateInfo, error)
}

// TransactionManager runs a function within a database transaction. Writes
// made through the repositories inside fn commit or roll back together.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
