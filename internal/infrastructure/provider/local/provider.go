// Package local implements ports.SessionProvider in memory. It exists for
// development and tests: production deployments point the service at a hosted
// identity provider and deliver its notifications through the events webhook.
package local

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyclub/member-system/internal/core/domain"
)

const eventBuffer = 64

type account struct {
	id        string
	email     string
	name      string
	hash      []byte
	confirmed bool
	signedIn  bool
	createdAt time.Time
}

// Provider is an in-memory identity provider with bcrypt password hashes,
// email confirmation state and a session event stream.
type Provider struct {
	mu      sync.Mutex
	byEmail map[string]*account
	events  chan domain.AuthEvent
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Provider {
	return &Provider{
		byEmail: make(map[string]*account),
		events:  make(chan domain.AuthEvent, eventBuffer),
		log:     log,
	}
}

func (p *Provider) SignUp(_ context.Context, email, password string, metadata map[string]string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.byEmail[email]; exists {
		return nil, domain.ErrUserExists
	}

	acc := &account{
		id:        newUserID(),
		email:     email,
		name:      metadata["name"],
		hash:      hash,
		createdAt: time.Now().UTC(),
	}
	p.byEmail[email] = acc

	p.log.Info().Str("user_id", acc.id).Msg("account registered, confirmation pending")
	return sessionFor(acc), nil
}

func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[email]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	acc.signedIn = true
	session := sessionFor(acc)
	p.emit(domain.AuthEvent{Type: domain.EventSignedIn, UserID: acc.id, Session: session})
	return session, nil
}

func (p *Provider) SignOut(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, acc := range p.byEmail {
		if acc.id == userID {
			acc.signedIn = false
			p.emit(domain.AuthEvent{Type: domain.EventSignedOut, UserID: userID})
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (p *Provider) GetSession(_ context.Context, userID string) (*domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, acc := range p.byEmail {
		if acc.id == userID && acc.signedIn {
			return sessionFor(acc), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (p *Provider) ResendConfirmation(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	// No mail transport here: log the request so developers can confirm via
	// the Confirm helper.
	p.log.Info().Str("user_id", acc.id).Msg("confirmation email requested")
	return nil
}

// Confirm marks the account's email as verified and emits a TOKEN_REFRESHED
// event so downstream state picks up the change. Dev/test helper; hosted
// providers confirm through their own email flow.
func (p *Provider) Confirm(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc, ok := p.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	acc.confirmed = true
	if acc.signedIn {
		p.emit(domain.AuthEvent{Type: domain.EventTokenRefreshed, UserID: acc.id, Session: sessionFor(acc)})
	}
	return nil
}

func (p *Provider) Events() <-chan domain.AuthEvent { return p.events }

// emit never blocks: if the buffer is full the event is dropped and logged.
// Callers hold mu.
func (p *Provider) emit(ev domain.AuthEvent) {
	select {
	case p.events <- ev:
	default:
		p.log.Warn().Str("type", string(ev.Type)).Msg("event buffer full, dropping")
	}
}

func sessionFor(acc *account) *domain.Session {
	return &domain.Session{
		UserID:         acc.id,
		Email:          acc.email,
		Name:           acc.name,
		EmailConfirmed: acc.confirmed,
	}
}

// newUserID returns an identifier in the format usr_XXXXXXXXXXXX.
func newUserID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("usr_%012X", time.Now().UnixNano())
	}
	return fmt.Sprintf("usr_%012X", b)
}
