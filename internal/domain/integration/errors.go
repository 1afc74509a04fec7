package integration

import "errors"

var (
	// ErrInstallationNotFound is returned when no installation matches the
	// given external id.
	ErrInstallationNotFound = errors.New("installation not found")

	// ErrInstallationRemoved is returned when an operation targets an
	// installation that has been uninstalled.
	ErrInstallationRemoved = errors.New("installation has been removed")

	// ErrUserNotFound is returned when no user matches the given identity.
	ErrUserNotFound = errors.New("user not found")
)
