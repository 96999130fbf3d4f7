package ports

import (
	"context"

	"github.com/wyclub/member-system/internal/core/domain"
)

// Reconciler owns the session-profile cache and produces the derived
// AuthState view. It is the cache's single writer: consumers only ever read
// snapshots through Resolve/State.
type Reconciler interface {
	// HandleEvent applies one provider event. Non-blocking; fetch pipelines
	// run asynchronously and bursts within the debounce window are coalesced.
	HandleEvent(ev domain.AuthEvent)

	// Resolve returns the current state for the session, fetching the profile
	// synchronously when the cache is stale. Never returns an error: backend
	// failures degrade the state instead (BackendError flag).
	Resolve(ctx context.Context, session *domain.Session) domain.AuthState

	// Refresh re-runs the fetch pipeline bypassing the cache.
	Refresh(ctx context.Context, session *domain.Session) domain.AuthState

	// State returns the last reconciled state without touching the network.
	State(userID string) domain.AuthState

	// Invalidate drops the cached profile and reconciled state for a user.
	Invalidate(userID string)
}

// AccountService exposes the authentication actions available to the rest of
// the application. Action errors are returned to the caller for UI display;
// reconciliation errors surface only through AuthState flags.
type AccountService interface {
	// SignIn authenticates and returns an access token plus the reconciled
	// state. Unconfirmed accounts are signed back out and rejected.
	SignIn(ctx context.Context, email, password string) (string, domain.AuthState, error)
	SignUp(ctx context.Context, email, password, name string) (*domain.Session, error)
	SignOut(ctx context.Context, userID string) error
	// UpdateProfile fails with domain.ErrBackendDegraded while the user is on
	// a fallback profile.
	UpdateProfile(ctx context.Context, session *domain.Session, in UpdateProfileInput) (domain.AuthState, error)
	// RefreshUser forces a cache-bypassing profile re-fetch.
	RefreshUser(ctx context.Context, session *domain.Session) (domain.AuthState, error)
	ResendConfirmation(ctx context.Context, email string) error
}

// MemberStats is the aggregate view backing the admin dashboard.
type MemberStats struct {
	Total  int64
	ByRole RoleCounts
}

// StatsService computes aggregate member counts.
type StatsService interface {
	MemberStats(ctx context.Context) (*MemberStats, error)
}
