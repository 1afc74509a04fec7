package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func inst(status InstallationStatus) *Installation {
	return &Installation{ExternalID: 1, Account: "acme", Status: status}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name string
		in   StatusInput
		want Status
	}{
		{
			name: "no linked installations",
			in:   StatusInput{},
			want: StatusNotConnected,
		},
		{
			name: "all installations removed",
			in: StatusInput{
				Installations: []*Installation{inst(InstallationRemoved), inst(InstallationRemoved)},
			},
			want: StatusNotConnected,
		},
		{
			name: "single installation needs reauth",
			in: StatusInput{
				Installations: []*Installation{inst(InstallationNeedsReauth)},
			},
			want: StatusNeedsReauth,
		},
		{
			name: "reauth wins even with fresh cache entries",
			in: StatusInput{
				Installations:   []*Installation{inst(InstallationNeedsReauth)},
				FreshCacheCount: 3,
			},
			want: StatusNeedsReauth,
		},
		{
			name: "removed installation does not mask reauth",
			in: StatusInput{
				Installations: []*Installation{inst(InstallationRemoved), inst(InstallationNeedsReauth)},
			},
			want: StatusNeedsReauth,
		},
		{
			name: "active with fresh cache",
			in: StatusInput{
				Installations:   []*Installation{inst(InstallationActive)},
				FreshCacheCount: 1,
			},
			want: StatusConnected,
		},
		{
			name: "active mixed with reauth still connected",
			in: StatusInput{
				Installations:   []*Installation{inst(InstallationActive), inst(InstallationNeedsReauth)},
				FreshCacheCount: 2,
			},
			want: StatusConnected,
		},
		{
			name: "active with sync in flight and no fresh entries",
			in: StatusInput{
				Installations: []*Installation{inst(InstallationActive)},
				SyncInFlight:  true,
			},
			want: StatusConnecting,
		},
		{
			name: "active with exhausted retries",
			in: StatusInput{
				Installations:    []*Installation{inst(InstallationActive)},
				LastSyncFailed:   true,
				RetriesExhausted: true,
			},
			want: StatusDegraded,
		},
		{
			name: "active with failure but retries remaining",
			in: StatusInput{
				Installations:  []*Installation{inst(InstallationActive)},
				LastSyncFailed: true,
			},
			want: StatusError,
		},
		{
			name: "only suspended installations",
			in: StatusInput{
				Installations: []*Installation{inst(InstallationSuspended)},
			},
			want: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.in))
		})
	}
}

func TestInstallationTransitions(t *testing.T) {
	i, err := NewInstallation(42, "acme", "Organization", 1, ScopeAllRepos)
	assert.NoError(t, err)
	assert.True(t, i.IsActive())

	i.MarkNeedsReauth()
	assert.Equal(t, InstallationNeedsReauth, i.Status)

	i.Reactivate()
	assert.True(t, i.IsActive())

	i.MarkRemoved()
	assert.Equal(t, InstallationRemoved, i.Status)

	// A removed installation never comes back via reauth marking.
	i.MarkNeedsReauth()
	assert.Equal(t, InstallationRemoved, i.Status)
}

func TestNewInstallationValidation(t *testing.T) {
	_, err := NewInstallation(0, "acme", "Organization", 1, ScopeAllRepos)
	assert.Error(t, err)

	_, err = NewInstallation(42, "", "Organization", 1, ScopeAllRepos)
	assert.Error(t, err)
}
