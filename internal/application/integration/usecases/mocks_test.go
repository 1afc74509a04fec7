package usecases

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/cache"
	"gitgate/internal/infrastructure/github"
	"gitgate/internal/shared/logger"
)

func testLogger() logger.Interface {
	return logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type mockInstallationRepository struct {
	mock.Mock
}

func (m *mockInstallationRepository) Upsert(ctx context.Context, installation *integration.Installation) error {
	args := m.Called(ctx, installation)
	return args.Error(0)
}

func (m *mockInstallationRepository) GetByExternalID(ctx context.Context, externalID int64) (*integration.Installation, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Installation), args.Error(1)
}

func (m *mockInstallationRepository) ListByUser(ctx context.Context, userID uint) ([]*integration.Installation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.Installation), args.Error(1)
}

func (m *mockInstallationRepository) ListActive(ctx context.Context) ([]*integration.Installation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.Installation), args.Error(1)
}

func (m *mockInstallationRepository) UpdateStatus(ctx context.Context, externalID int64, status integration.InstallationStatus) error {
	args := m.Called(ctx, externalID, status)
	return args.Error(0)
}

func (m *mockInstallationRepository) MarkRemoved(ctx context.Context, externalID int64) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByProviderID(ctx context.Context, providerID string) (*integration.User, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.User), args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*integration.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.User), args.Error(1)
}

func (m *mockUserRepository) EnsureByProviderID(ctx context.Context, providerID, handle string) (*integration.User, error) {
	args := m.Called(ctx, providerID, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.User), args.Error(1)
}

func (m *mockUserRepository) SetOnboardingComplete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUserInstallationRepository struct {
	mock.Mock
}

func (m *mockUserInstallationRepository) Link(ctx context.Context, userID, installationID uint, role string) error {
	args := m.Called(ctx, userID, installationID, role)
	return args.Error(0)
}

func (m *mockUserInstallationRepository) ListUserIDs(ctx context.Context, installationID uint) ([]uint, error) {
	args := m.Called(ctx, installationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *mockUserInstallationRepository) ListActiveLinks(ctx context.Context) ([]*integration.UserInstallation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.UserInstallation), args.Error(1)
}

type mockTrackedRepoRepository struct {
	mock.Mock
}

func (m *mockTrackedRepoRepository) UpsertMany(ctx context.Context, installationID uint, repos []integration.RemoteRepo) error {
	args := m.Called(ctx, installationID, repos)
	return args.Error(0)
}

func (m *mockTrackedRepoRepository) ListByInstallation(ctx context.Context, installationID uint) ([]*integration.TrackedRepo, error) {
	args := m.Called(ctx, installationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.TrackedRepo), args.Error(1)
}

func (m *mockTrackedRepoRepository) UntrackByInstallation(ctx context.Context, installationID uint) error {
	args := m.Called(ctx, installationID)
	return args.Error(0)
}

type mockAccessCacheRepository struct {
	mock.Mock
}

func (m *mockAccessCacheRepository) Get(ctx context.Context, userID uint, repoID int64, now time.Time) (*integration.CachedAccess, bool, error) {
	args := m.Called(ctx, userID, repoID, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*integration.CachedAccess), args.Bool(1), args.Error(2)
}

func (m *mockAccessCacheRepository) PutMany(ctx context.Context, entries []integration.CachedAccess) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *mockAccessCacheRepository) ExpireRepos(ctx context.Context, userID uint, repoIDs []int64, now time.Time) error {
	args := m.Called(ctx, userID, repoIDs, now)
	return args.Error(0)
}

func (m *mockAccessCacheRepository) MarkStaleByInstallation(ctx context.Context, installationID uint, now time.Time) error {
	args := m.Called(ctx, installationID, now)
	return args.Error(0)
}

func (m *mockAccessCacheRepository) InvalidateByInstallation(ctx context.Context, installationID uint) error {
	args := m.Called(ctx, installationID)
	return args.Error(0)
}

func (m *mockAccessCacheRepository) CountFresh(ctx context.Context, userID uint, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAccessCacheRepository) ListByUserAndInstallation(ctx context.Context, userID, installationID uint) ([]*integration.CachedAccess, error) {
	args := m.Called(ctx, userID, installationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*integration.CachedAccess), args.Error(1)
}

type mockGitHubClient struct {
	mock.Mock
}

func (m *mockGitHubClient) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockGitHubClient) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *mockGitHubClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *mockGitHubClient) GetInstallation(ctx context.Context, accessToken string, installationID int64) (*github.InstallationInfo, error) {
	args := m.Called(ctx, accessToken, installationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.InstallationInfo), args.Error(1)
}

func (m *mockGitHubClient) ListUserInstallations(ctx context.Context, accessToken string) ([]*github.InstallationInfo, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*github.InstallationInfo), args.Error(1)
}

func (m *mockGitHubClient) ListInstallationRepos(ctx context.Context, accessToken string, installationID int64) ([]integration.RemoteRepo, error) {
	args := m.Called(ctx, accessToken, installationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.RemoteRepo), args.Error(1)
}

// passthroughTxManager runs the function directly; unit tests exercise the
// write set, not transaction semantics.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockStateStore struct {
	mock.Mock
}

func (m *mockStateStore) Set(ctx context.Context, state string) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockStateStore) VerifyAndConsume(ctx context.Context, state string) (*cache.StateInfo, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.StateInfo), args.Error(1)
}
