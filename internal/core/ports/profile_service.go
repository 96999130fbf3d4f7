package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyclub/member-system/internal/core/domain"
)

// ProfileErrorKind classifies profile-service failures so callers branch on a
// structured code instead of matching error message text.
type ProfileErrorKind string

const (
	ProfileErrNotFound    ProfileErrorKind = "not_found"
	ProfileErrConflict    ProfileErrorKind = "conflict"
	ProfileErrUnavailable ProfileErrorKind = "unavailable"
	ProfileErrInternal    ProfileErrorKind = "internal"
)

// ProfileError wraps an underlying failure with its classification.
type ProfileError struct {
	Kind ProfileErrorKind
	Err  error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile service: %s: %v", e.Kind, e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, or ProfileErrInternal when err
// is not a ProfileError.
func KindOf(err error) ProfileErrorKind {
	var pe *ProfileError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ProfileErrInternal
}

// CreateProfileInput carries the session-derived defaults used to provision a
// profile that does not exist yet.
type CreateProfileInput struct {
	UserID string
	Email  string
	Name   string
}

// UpdateProfileInput is a partial update; nil fields are left untouched.
type UpdateProfileInput struct {
	Name *string
}

// ProfileService exposes the canonical profile backend.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	CreateProfile(ctx context.Context, in CreateProfileInput) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.Profile, error)
}

// RoleCounts maps each role to the number of profiles holding it.
type RoleCounts map[domain.Role]int64

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Insert(ctx context.Context, p *domain.Profile) error
	// Update applies the partial update and returns the stored profile.
	Update(ctx context.Context, userID string, in UpdateProfileInput, now time.Time) (*domain.Profile, error)
	CountByRole(ctx context.Context) (RoleCounts, error)
}
