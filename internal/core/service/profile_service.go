package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

// ProfileService implements the canonical profile backend over a repository,
// translating storage failures into structured ProfileError kinds.
type ProfileService struct {
	repo ports.ProfileRepository
	log  zerolog.Logger
}

func NewProfileService(repo ports.ProfileRepository, log zerolog.Logger) *ProfileService {
	return &ProfileService{repo: repo, log: log}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// CreateProfile provisions a profile from session-derived defaults. New
// profiles always start with the USER role.
func (s *ProfileService) CreateProfile(ctx context.Context, in ports.CreateProfileInput) (*domain.Profile, error) {
	now := time.Now().UTC()
	p := &domain.Profile{
		UserID:    in.UserID,
		Email:     in.Email,
		Name:      in.Name,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, classify(err)
	}
	s.log.Info().Str("user_id", in.UserID).Msg("profile provisioned")
	return p, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*domain.Profile, error) {
	p, err := s.repo.Update(ctx, userID, in, time.Now().UTC())
	if err != nil {
		return nil, classify(err)
	}
	return p, nil
}

// classify maps storage errors to structured kinds. Context failures count as
// unavailable so the reconciler treats them as transient.
func classify(err error) error {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return &ports.ProfileError{Kind: ports.ProfileErrNotFound, Err: err}
	case errors.Is(err, domain.ErrProfileExists):
		return &ports.ProfileError{Kind: ports.ProfileErrConflict, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &ports.ProfileError{Kind: ports.ProfileErrUnavailable, Err: err}
	default:
		return &ports.ProfileError{Kind: ports.ProfileErrInternal, Err: err}
	}
}
