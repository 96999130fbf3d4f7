package domain

import "testing"

func TestStateFor_RoleFlags(t *testing.T) {
	cases := []struct {
		role        Role
		isAdmin     bool
		isModerator bool
	}{
		{RoleUser, false, false},
		{RoleModerator, false, true},
		{RoleAdmin, true, true},
	}

	for _, tc := range cases {
		state := StateFor(&Profile{UserID: "u1", Role: tc.role}, false)
		if !state.IsAuthenticated {
			t.Fatalf("role %s: expected authenticated", tc.role)
		}
		if state.IsAdmin != tc.isAdmin {
			t.Fatalf("role %s: IsAdmin = %v, want %v", tc.role, state.IsAdmin, tc.isAdmin)
		}
		if state.IsModerator != tc.isModerator {
			t.Fatalf("role %s: IsModerator = %v, want %v", tc.role, state.IsModerator, tc.isModerator)
		}
	}
}

func TestStateFor_Degraded(t *testing.T) {
	state := StateFor(&Profile{UserID: "u1", Role: RoleUser}, true)
	if !state.BackendError {
		t.Fatalf("expected BackendError to be set")
	}
	if !state.IsAuthenticated {
		t.Fatalf("degraded state must still be authenticated")
	}
}

func TestFallbackProfile_NameFromEmail(t *testing.T) {
	p := FallbackProfile(&Session{UserID: "u1", Email: "a@b.com"})
	if p.Name != "a" {
		t.Fatalf("expected name %q, got %q", "a", p.Name)
	}
	if p.Role != RoleUser {
		t.Fatalf("expected role USER, got %s", p.Role)
	}
}

func TestFallbackProfile_PrefersMetadataName(t *testing.T) {
	p := FallbackProfile(&Session{UserID: "u1", Email: "a@b.com", Name: "Alice"})
	if p.Name != "Alice" {
		t.Fatalf("expected metadata name, got %q", p.Name)
	}
}
