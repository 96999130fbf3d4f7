package ports

import (
	"context"

	"github.com/wyclub/member-system/internal/core/domain"
)

// SessionProvider is the external identity service managing credentials,
// tokens and email confirmation. This system only consumes it.
type SessionProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]string) (*domain.Session, error)
	SignOut(ctx context.Context, userID string) error
	GetSession(ctx context.Context, userID string) (*domain.Session, error)
	ResendConfirmation(ctx context.Context, email string) error

	// Events delivers session lifecycle notifications (SIGNED_IN, SIGNED_OUT,
	// TOKEN_REFRESHED) in arrival order.
	Events() <-chan domain.AuthEvent
}
