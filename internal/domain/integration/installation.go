// Package integration contains the domain model for the GitHub installation
// access resolver: installations, user links, tracked repositories, the
// materialized access cache and the derived integration status.
package integration

import (
	"fmt"
	"time"
)

// InstallationStatus is the lifecycle state of a GitHub App installation.
type InstallationStatus string

const (
	InstallationActive      InstallationStatus = "active"
	InstallationSuspended   InstallationStatus = "suspended"
	InstallationRemoved     InstallationStatus = "removed"
	InstallationNeedsReauth InstallationStatus = "needs_reauth"
)

// RepoScope describes what the installation grants access to.
type RepoScope string

const (
	ScopeSelectedRepos RepoScope = "selected"
	ScopeAllRepos      RepoScope = "all"
)

// Installation is one GitHub App installation. It is keyed externally by the
// provider's installation id and owned by an org or user account. Removal is
// a soft transition, never a row delete: dependent tracked repos become
// untracked and referencing cache entries are invalidated.
type Installation struct {
	ID          uint
	ExternalID  int64
	Account     string
	AccountType string
	InstalledBy uint
	Scope       RepoScope
	Status      InstallationStatus
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewInstallation creates an active installation from a provider grant.
func NewInstallation(externalID int64, account, accountType string, installedBy uint, scope RepoScope) (*Installation, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("external installation id must be positive, got %d", externalID)
	}
	if account == "" {
		return nil, fmt.Errorf("installation account cannot be empty")
	}
	if scope == "" {
		scope = ScopeSelectedRepos
	}
	return &Installation{
		ExternalID:  externalID,
		Account:     account,
		AccountType: accountType,
		InstalledBy: installedBy,
		Scope:       scope,
		Status:      InstallationActive,
	}, nil
}

// IsActive reports whether the installation may be synced against.
func (i *Installation) IsActive() bool {
	return i.Status == InstallationActive
}

// MarkRemoved transitions the installation to removed. Idempotent.
func (i *Installation) MarkRemoved() {
	i.Status = InstallationRemoved
}

// MarkNeedsReauth flags the installation as requiring a user re-link after
// the provider answered 401/403. Never applied to a removed installation.
func (i *Installation) MarkNeedsReauth() {
	if i.Status == InstallationRemoved {
		return
	}
	i.Status = InstallationNeedsReauth
}

// Reactivate restores an installation after a successful re-link.
func (i *Installation) Reactivate() {
	i.Status = InstallationActive
}

// UserInstallation links a User to an Installation they are authorized to
// use. A user may hold zero or more installations; a shared org installation
// may be linked to many users.
type UserInstallation struct {
	ID             uint
	UserID         uint
	InstallationID uint
	Role           string
	LinkedAt       time.Time
}

// User is the identity record keyed by the hosted identity provider's id.
// Created on first successful sign-in, never deleted by this subsystem.
type User struct {
	ID                 uint
	ProviderID         string
	Handle             string
	OnboardingComplete bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
