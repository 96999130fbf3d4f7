package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")

	// ErrEmailNotConfirmed rejects sign-in attempts whose email has not been
	// verified; the partially-created provider session is torn down first.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")

	// ErrBackendDegraded blocks profile writes while the canonical backend is
	// unreachable and the user is running on a fallback profile.
	ErrBackendDegraded = errors.New("profile backend degraded")

	ErrResendThrottled = errors.New("confirmation email recently sent")
)
