package domain

// AuthState is the reconciled "current user" view consumed by the rest of the
// application. It is always derived from a Session plus a cached Profile,
// never mutated independently.
type AuthState struct {
	User            *Profile `json:"user,omitempty"`
	IsAuthenticated bool     `json:"is_authenticated"`
	IsAdmin         bool     `json:"is_admin"`
	IsModerator     bool     `json:"is_moderator"`
	BackendError    bool     `json:"backend_error"`
	IsLoading       bool     `json:"is_loading"`
}

// Unauthenticated is the valid absence state: no session, no user, no error.
func Unauthenticated() AuthState {
	return AuthState{}
}

// StateFor derives an authenticated AuthState from a profile. ADMIN always
// implies moderator-level display rights.
func StateFor(p *Profile, degraded bool) AuthState {
	return AuthState{
		User:            p,
		IsAuthenticated: true,
		IsAdmin:         p.Role == RoleAdmin,
		IsModerator:     p.Role == RoleModerator || p.Role == RoleAdmin,
		BackendError:    degraded,
	}
}
