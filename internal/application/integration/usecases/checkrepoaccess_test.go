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
)

func TestCheckRepoAccess_FreshHitSkipsSync(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	entry := &integration.CachedAccess{UserID: 3, RepoID: 501, Level: integration.AccessWrite}
	cacheRepo.On("Get", mock.Anything, uint(3), int64(501), mock.Anything).Return(entry, false, nil)

	svc := newTestSyncService(installationRepo, new(mockTrackedRepoRepository), cacheRepo, githubClient)
	uc := NewCheckRepoAccessUseCase(cacheRepo, svc, 3*time.Second, testLogger())

	result, err := uc.Execute(context.Background(), CheckRepoAccessCommand{UserID: 3, RepoID: 501})
	require.NoError(t, err)

	assert.Equal(t, integration.AccessWrite, result.Decision.Level)
	assert.False(t, result.Decision.Stale)
	installationRepo.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestCheckRepoAccess_MissTriggersOnDemandSync(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	trackedRepoRepo := new(mockTrackedRepoRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	fresh := &integration.CachedAccess{UserID: 3, RepoID: 501, Level: integration.AccessRead}

	cacheRepo.On("Get", mock.Anything, uint(3), int64(501), mock.Anything).Return(nil, false, nil).Once()
	installationRepo.On("ListByUser", mock.Anything, uint(3)).Return([]*integration.Installation{inst}, nil)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).Return([]integration.RemoteRepo{
		{ExternalID: 501, FullName: "acme/api", Level: integration.AccessRead},
	}, nil)
	cacheRepo.On("ListByUserAndInstallation", mock.Anything, uint(3), uint(7)).Return(nil, nil)
	trackedRepoRepo.On("UpsertMany", mock.Anything, uint(7), mock.Anything).Return(nil)
	cacheRepo.On("PutMany", mock.Anything, mock.Anything).Return(nil)
	cacheRepo.On("Get", mock.Anything, uint(3), int64(501), mock.Anything).Return(fresh, false, nil).Once()

	svc := newTestSyncService(installationRepo, trackedRepoRepo, cacheRepo, githubClient)
	uc := NewCheckRepoAccessUseCase(cacheRepo, svc, 3*time.Second, testLogger())

	result, err := uc.Execute(context.Background(), CheckRepoAccessCommand{UserID: 3, RepoID: 501})
	require.NoError(t, err)

	assert.Equal(t, integration.AccessRead, result.Decision.Level)
	assert.False(t, result.Decision.Stale)
}

func TestCheckRepoAccess_StaleServedFlaggedWhenSyncFails(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	inst := activeInstallation(7, 1001)
	stale := &integration.CachedAccess{UserID: 3, RepoID: 501, Level: integration.AccessWrite}

	cacheRepo.On("Get", mock.Anything, uint(3), int64(501), mock.Anything).Return(stale, true, nil)
	installationRepo.On("ListByUser", mock.Anything, uint(3)).Return([]*integration.Installation{inst}, nil)
	installationRepo.On("GetByExternalID", mock.Anything, int64(1001)).Return(inst, nil)
	githubClient.On("ListInstallationRepos", mock.Anything, "tok", int64(1001)).
		Return(nil, &github.APIError{StatusCode: http.StatusBadGateway})
	cacheRepo.On("MarkStaleByInstallation", mock.Anything, uint(7), mock.Anything).Return(nil)

	svc := newTestSyncService(installationRepo, new(mockTrackedRepoRepository), cacheRepo, githubClient)
	uc := NewCheckRepoAccessUseCase(cacheRepo, svc, 3*time.Second, testLogger())

	result, err := uc.Execute(context.Background(), CheckRepoAccessCommand{UserID: 3, RepoID: 501})
	require.NoError(t, err)

	// Served, but never as fresh.
	assert.Equal(t, integration.AccessWrite, result.Decision.Level)
	assert.True(t, result.Decision.Stale)
}

func TestCheckRepoAccess_MissWithFailedSyncDenies(t *testing.T) {
	installationRepo := new(mockInstallationRepository)
	cacheRepo := new(mockAccessCacheRepository)
	githubClient := new(mockGitHubClient)

	cacheRepo.On("Get", mock.Anything, uint(3), int64(501), mock.Anything).Return(nil, false, nil)
	installationRepo.On("ListByUser", mock.Anything, uint(3)).Return(nil, nil)

	svc := newTestSyncService(installationRepo, new(mockTrackedRepoRepository), cacheRepo, githubClient)
	uc := NewCheckRepoAccessUseCase(cacheRepo, svc, 3*time.Second, testLogger())

	result, err := uc.Execute(context.Background(), CheckRepoAccessCommand{UserID: 3, RepoID: 501})
	require.NoError(t, err)

	assert.Equal(t, integration.AccessNone, result.Decision.Level)
	assert.False(t, result.Decision.Stale)
}
