package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

// stubRepo is an in-memory ProfileRepository returning domain sentinels.
type stubRepo struct {
	profiles map[string]*domain.Profile
	findErr  error
	counts   ports.RoleCounts
}

func newStubRepo() *stubRepo {
	return &stubRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *stubRepo) FindByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubRepo) Insert(_ context.Context, p *domain.Profile) error {
	if _, exists := r.profiles[p.UserID]; exists {
		return domain.ErrProfileExists
	}
	clone := *p
	r.profiles[p.UserID] = &clone
	return nil
}

func (r *stubRepo) Update(_ context.Context, userID string, in ports.UpdateProfileInput, now time.Time) (*domain.Profile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	p.UpdatedAt = now
	clone := *p
	return &clone, nil
}

func (r *stubRepo) CountByRole(context.Context) (ports.RoleCounts, error) {
	if r.counts != nil {
		return r.counts, nil
	}
	counts := make(ports.RoleCounts)
	for _, p := range r.profiles {
		counts[p.Role]++
	}
	return counts, nil
}

func TestProfileService_GetProfile_NotFoundKind(t *testing.T) {
	svc := NewProfileService(newStubRepo(), zerolog.Nop())

	_, err := svc.GetProfile(context.Background(), "missing")
	if ports.KindOf(err) != ports.ProfileErrNotFound {
		t.Fatalf("expected not_found kind, got %v", err)
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestProfileService_GetProfile_UnavailableKind(t *testing.T) {
	repo := newStubRepo()
	repo.findErr = context.DeadlineExceeded
	svc := NewProfileService(repo, zerolog.Nop())

	_, err := svc.GetProfile(context.Background(), "u1")
	if ports.KindOf(err) != ports.ProfileErrUnavailable {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
}

func TestProfileService_CreateProfile_Defaults(t *testing.T) {
	svc := NewProfileService(newStubRepo(), zerolog.Nop())

	p, err := svc.CreateProfile(context.Background(), ports.CreateProfileInput{
		UserID: "u1", Email: "a@b.com", Name: "a",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Role != domain.RoleUser {
		t.Fatalf("new profiles must start as USER, got %s", p.Role)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set")
	}
}

func TestProfileService_CreateProfile_ConflictKind(t *testing.T) {
	repo := newStubRepo()
	repo.profiles["u1"] = &domain.Profile{UserID: "u1", Role: domain.RoleUser}
	svc := NewProfileService(repo, zerolog.Nop())

	_, err := svc.CreateProfile(context.Background(), ports.CreateProfileInput{UserID: "u1", Email: "a@b.com"})
	if ports.KindOf(err) != ports.ProfileErrConflict {
		t.Fatalf("expected conflict kind, got %v", err)
	}
}

func TestProfileService_UpdateProfile_Partial(t *testing.T) {
	repo := newStubRepo()
	repo.profiles["u1"] = &domain.Profile{UserID: "u1", Email: "a@b.com", Name: "a", Role: domain.RoleModerator}
	svc := NewProfileService(repo, zerolog.Nop())

	name := "Commodore"
	p, err := svc.UpdateProfile(context.Background(), "u1", ports.UpdateProfileInput{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if p.Name != "Commodore" {
		t.Fatalf("name not updated: %q", p.Name)
	}
	if p.Role != domain.RoleModerator {
		t.Fatalf("update must not touch unset fields")
	}
}
