package domain

import "strings"

// Session is the slice of the identity provider's session this system reads.
// It is owned and lifecycled entirely by the provider; we never mutate it.
type Session struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"` // display name from provider metadata, may be empty
	EmailConfirmed bool   `json:"email_confirmed"`
}

// AuthEventType identifies a session lifecycle notification from the provider.
type AuthEventType string

const (
	EventSignedIn       AuthEventType = "SIGNED_IN"
	EventSignedOut      AuthEventType = "SIGNED_OUT"
	EventTokenRefreshed AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is a single provider notification. Session is nil for SIGNED_OUT
// events that carry only a user ID.
type AuthEvent struct {
	Type    AuthEventType
	UserID  string
	Session *Session
}

// FallbackProfile synthesizes a minimal profile from session fields alone.
// Used when the email is unconfirmed (full profile access is gated on
// confirmation) and when the profile backend is unreachable.
func FallbackProfile(s *Session) *Profile {
	name := s.Name
	if name == "" {
		name = emailLocalPart(s.Email)
	}
	return &Profile{
		UserID: s.UserID,
		Email:  s.Email,
		Name:   name,
		Role:   RoleUser,
	}
}

func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
