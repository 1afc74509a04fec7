package usecases

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitgate/internal/domain/integration"
	"gitgate/internal/infrastructure/github"
	apperrors "gitgate/internal/shared/errors"
)

func newTestSyncService(
	installationRepo *mockInstallationRepository,
	trackedRepoRepo *mockTrackedRepoRepository,
	cacheRepo *mockAccessCacheRepository,
	githubClient *mockGitHubClient,
) *SyncService {
	return NewSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient, SyncConfig{
		CacheTTL:       5 * time.Minute,
		BackoffInitial: 30 * time.Second,
		BackoffMax:     5 * time.Minute,
		MaxRetries:     3,
	}, testLogger())
}

func activeInstallation(id uint, externalID int64) *integration.Installation {
	return &integration.Installation{
		ID:          id,
		ExternalID:  externalID,
		Account:     "acme",
		AccountType: "Organization",
		Scope:       integration.ScopeSelectedRepos,
		Status:      integration.InstallationActive,
		AccessToken: "tok",
	}
}

func TestSync_SuccessWritesReconciledChanges(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)

	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).Return([]integration.RemoteRepo{
		{ExternalID: 501, FullName: "acme/api", Level: integration.AccessWrite},
		{ExternalID: 502, FullName: "acme/web", Level: integration.AccessRead},
	}, nil)

	// Entry 999 vanished from the provider and must be expired.
	cacheRepo.On("ListByUserAndInstallation", mock.Anything, uint(3), uint(7)).Return([]*integration.CachedAccess{
		{UserID: 3, RepoID: 999, InstallationID: 7, Level: integration.AccessRead},
	}, nil)

	trackedRepoRepo.On("UpsertMany", mock.Anything, uint(7), mock.Anything).Return(nil)
	cacheRepo.On("PutMany", mock.Anything, mock.MatchedBy(func(entries []integration.CachedAccess) bool {
		return len(entries) == 2
	})).Return(nil)
	cacheRepo.On("ExpireRepos", mock.Anything, uint(3), []int64{999}, mock.Anything).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.NoError(t, err)

	trackedRepoRepo.AssertExpectations(t)
	cacheRepo.AssertExpectations(t)

	view := svc.View([]*integration.Installation{inst})
	assert.False(t, view.LastFailed)
}

func TestSync_AuthRevokedFlagsNeedsReauth(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusForbidden})
	installationRepo.On("UpdateStatus", mock.Anything, int64(1001), integration.InstallationNeedsReauth).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRevokedError(err))

	installationRepo.AssertCalled(t, "UpdateStatus", mock.Anything, int64(1001), integration.InstallationNeedsReauth)
	cacheRepo.AssertNotCalled(t, "MarkStaleByInstallation", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_TransientErrorMarksCacheStale(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusBadGateway})
	cacheRepo.On("MarkStaleByInstallation", mock.Anything, uint(7), mock.Anything).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.Error(t, err)
	assert.True(t, apperrors.IsExternalAPIError(err))

	cacheRepo.AssertCalled(t, "MarkStaleByInstallation", mock.Anything, uint(7), mock.Anything)
	cacheRepo.AssertNotCalled(t, "PutMany", mock.Anything, mock.Anything)
}

func TestSync_RateLimitBacksOffWithoutTouchingCache(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusTooManyRequests})

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.Error(t, err)
	assert.True(t, apperrors.IsExternalAPIError(err))
	cacheRepo.AssertNotCalled(t, "MarkStaleByInstallation", mock.Anything, mock.Anything, mock.Anything)

	// Still inside the backoff window: the provider is not called again.
	err = svc.Sync(context.Background(), 3, 1001)
	require.Error(t, err)
	githubClient.AssertNumberOfCalls(t, "ListInstallationRepos", 1)
}

func TestSync_RemovalDuringFetchDiscardsSnapshot(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	removed := activeInstallation(7, 1001)
	removed.Status = integration.InstallationRemoved

	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil).Once()
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).Return([]integration.RemoteRepo{
		{ExternalID: 501, FullName: "acme/api", Level: integration.AccessWrite},
	}, nil)
	cacheRepo.On("ListByUserAndInstallation", mock.Anything, uint(3), uint(7)).Return(nil, nil)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(removed, nil).Once()

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.ErrorIs(t, err, integration.ErrInstallationRemoved)

	cacheRepo.AssertNotCalled(t, "PutMany", mock.Anything, mock.Anything)
	trackedRepoRepo.AssertNotCalled(t, "UpsertMany", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_GoneUpstreamCascadesRemoval(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusNotFound})
	installationRepo.On("MarkRemoved", mock.Anything, int64(1001)).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.ErrorIs(t, err, integration.ErrInstallationRemoved)
	installationRepo.AssertCalled(t, "MarkRemoved", mock.Anything, int64(1001))
}

func TestSyncUser_OneFailureDoesNotBlockSiblings(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	instA := activeInstallation(7, 1001)
	instB := activeInstallation(8, 1002)
	instB.AccessToken = "tok-b"

	installationRepo.On("ListByUser", mock.Anything, uint(3)).
		Return([]*integration.Installation{instA, instB}, nil)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(instA, nil)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1002)).Return(instB, nil)

	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusBadGateway})
	cacheRepo.On("MarkStaleByInstallation", mock.Anything, uint(7), mock.Anything).Return(nil)

	githubClient.On("ListInstallationRepos", mock.Anything, "tok-b", int64(1002)).Return([]integration.RemoteRepo{
		{ExternalID: 601, FullName: "acme/infra", Level: integration.AccessAdmin},
	}, nil)
	cacheRepo.On("ListByUserAndInstallation", mock.Anything, uint(3), uint(8)).Return(nil, nil)
	trackedRepoRepo.On("UpsertMany", mock.Anything, uint(8), mock.Anything).Return(nil)
	cacheRepo.On("PutMany", mock.Anything, mock.Anything).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.SyncUser(context.Background(), 3)
	require.Error(t, err)

	// B's sync went through despite A's failure.
	cacheRepo.AssertCalled(t, "PutMany", mock.Anything, mock.Anything)

	view := svc.View([]*integration.Installation{instA, instB})
	assert.True(t, view.LastFailed)
	assert.False(t, view.RetriesExhausted)
}

func TestSync_AlreadyRemovedPurgesLeftoverCache(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	inst.Status = integration.InstallationRemoved
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	cacheRepo.On("InvalidateByInstallation", mock.Anything, uint(7)).Return(nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.ErrorIs(t, err, integration.ErrInstallationRemoved)

	cacheRepo.AssertCalled(t, "InvalidateByInstallation", mock.Anything, uint(7))
	githubClient.AssertNotCalled(t, "ListInstallationRepos", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_SuspendedInstallationIsSkipped(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	inst.Status = integration.InstallationSuspended
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)

	err := svc.Sync(context.Background(), 3, 1001)
	require.NoError(t, err)
	githubClient.AssertNotCalled(t, "ListInstallationRepos", mock.Anything, mock.Anything, mock.Anything)
}
