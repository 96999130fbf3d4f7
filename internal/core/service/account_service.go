package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/api/metrics"
	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

// ResendThrottle limits confirmation-email resends per address (Redis).
type ResendThrottle interface {
	// Allow reports whether a resend for this address is permitted now, and
	// reserves the cooldown window when it is.
	Allow(ctx context.Context, email string) (bool, error)
}

// AccountService implements the authentication actions exposed to the
// application. Action errors are returned to the caller; profile
// reconciliation failures are absorbed into AuthState flags instead.
type AccountService struct {
	provider   ports.SessionProvider
	reconciler ports.Reconciler
	profiles   ports.ProfileService
	throttle   ResendThrottle
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger
}

func NewAccountService(
	provider ports.SessionProvider,
	reconciler ports.Reconciler,
	profiles ports.ProfileService,
	throttle ResendThrottle,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AccountService{
		provider:   provider,
		reconciler: reconciler,
		profiles:   profiles,
		throttle:   throttle,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
	}
}

// SignIn authenticates against the provider and returns an access token plus
// the reconciled state. A session with an unconfirmed email is torn down
// immediately (forced sign-out) so no half-authenticated state survives.
func (s *AccountService) SignIn(ctx context.Context, email, password string) (string, domain.AuthState, error) {
	if email == "" || password == "" {
		return "", domain.Unauthenticated(), domain.ErrInvalidCredentials
	}

	session, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
		return "", domain.Unauthenticated(), err
	}

	if !session.EmailConfirmed {
		metrics.SignInsTotal.WithLabelValues("unconfirmed").Inc()
		if soErr := s.provider.SignOut(ctx, session.UserID); soErr != nil {
			s.log.Warn().Err(soErr).Str("user_id", session.UserID).Msg("forced sign-out failed")
		}
		s.reconciler.Invalidate(session.UserID)
		return "", domain.Unauthenticated(), domain.ErrEmailNotConfirmed
	}

	token, err := s.generateToken(session)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return "", domain.Unauthenticated(), err
	}

	metrics.SignInsTotal.WithLabelValues("success").Inc()
	state := s.reconciler.Resolve(ctx, session)
	s.log.Info().Str("user_id", session.UserID).Msg("member signed in")
	return token, state, nil
}

// SignUp registers a new account with the provider. No profile is fetched or
// provisioned here: confirmation gates full profile access.
func (s *AccountService) SignUp(ctx context.Context, email, password, name string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	metadata := map[string]string{}
	if name != "" {
		metadata["name"] = name
	}
	session, err := s.provider.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", session.UserID).Bool("confirmed", session.EmailConfirmed).Msg("member signed up")
	return session, nil
}

// SignOut tears down the provider session and clears the cached profile
// immediately, without waiting for the provider's SIGNED_OUT event.
func (s *AccountService) SignOut(ctx context.Context, userID string) error {
	err := s.provider.SignOut(ctx, userID)
	s.reconciler.Invalidate(userID)
	return err
}

// UpdateProfile applies a partial profile update and refreshes the cache.
// Rejected while the user is running on a degraded fallback profile: writes
// against an unreachable backend would be lost or clobber the canonical row.
func (s *AccountService) UpdateProfile(ctx context.Context, session *domain.Session, in ports.UpdateProfileInput) (domain.AuthState, error) {
	state := s.reconciler.Resolve(ctx, session)
	if !state.IsAuthenticated {
		return state, domain.ErrUserNotFound
	}
	if state.BackendError {
		return state, domain.ErrBackendDegraded
	}

	if _, err := s.profiles.UpdateProfile(ctx, session.UserID, in); err != nil {
		return state, err
	}

	// Replace the cache wholesale with the stored row.
	return s.reconciler.Refresh(ctx, session), nil
}

// RefreshUser forces a cache-bypassing re-fetch of the profile.
func (s *AccountService) RefreshUser(ctx context.Context, session *domain.Session) (domain.AuthState, error) {
	if session == nil {
		return domain.Unauthenticated(), domain.ErrUserNotFound
	}
	return s.reconciler.Refresh(ctx, session), nil
}

// ResendConfirmation asks the provider to resend the confirmation email,
// subject to a per-address cooldown.
func (s *AccountService) ResendConfirmation(ctx context.Context, email string) error {
	if email == "" {
		return domain.ErrInvalidCredentials
	}

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// Throttle store failure must not block the user from confirming.
		s.log.Warn().Err(err).Msg("resend throttle check failed, allowing")
	} else if !allowed {
		metrics.ResendThrottledTotal.Inc()
		return domain.ErrResendThrottled
	}

	return s.provider.ResendConfirmation(ctx, email)
}

func (s *AccountService) generateToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":             session.UserID,
		"email":           session.Email,
		"email_confirmed": session.EmailConfirmed,
		"exp":             time.Now().Add(s.tokenTTL).Unix(),
	}
	if session.Name != "" {
		claims["name"] = session.Name
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
