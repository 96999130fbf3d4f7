package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/core/domain"
)

type collectingSink struct {
	mu     sync.Mutex
	byUser map[string][]domain.AuthEventType
}

func newCollectingSink() *collectingSink {
	return &collectingSink{byUser: make(map[string][]domain.AuthEventType)}
}

func (s *collectingSink) HandleEvent(ev domain.AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := ev.UserID
	if uid == "" && ev.Session != nil {
		uid = ev.Session.UserID
	}
	s.byUser[uid] = append(s.byUser[uid], ev.Type)
}

func (s *collectingSink) sequence(uid string) []domain.AuthEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuthEventType(nil), s.byUser[uid]...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newCollectingSink()
	d := NewDispatcher(4, sink, zerolog.Nop())
	d.Start(ctx)

	want := []domain.AuthEventType{domain.EventSignedIn, domain.EventTokenRefreshed, domain.EventSignedOut}
	users := make([]string, 8)
	for i := range users {
		users[i] = fmt.Sprintf("u%d", i)
		for _, typ := range want {
			d.Enqueue(domain.AuthEvent{Type: typ, UserID: users[i]})
		}
	}

	waitFor(t, func() bool {
		for _, uid := range users {
			if len(sink.sequence(uid)) != len(want) {
				return false
			}
		}
		return true
	})

	for _, uid := range users {
		got := sink.sequence(uid)
		for i, typ := range want {
			if got[i] != typ {
				t.Fatalf("user %s: event %d = %s, want %s", uid, i, got[i], typ)
			}
		}
	}
}

func TestDispatcher_PumpForwardsProviderEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := newCollectingSink()
	d := NewDispatcher(2, sink, zerolog.Nop())
	d.Start(ctx)

	events := make(chan domain.AuthEvent, 4)
	go d.Pump(ctx, events)

	events <- domain.AuthEvent{Type: domain.EventSignedIn, Session: &domain.Session{UserID: "u1", Email: "a@b.com"}}
	events <- domain.AuthEvent{Type: domain.EventSignedOut, UserID: "u1"}
	close(events)

	waitFor(t, func() bool { return len(sink.sequence("u1")) == 2 })

	got := sink.sequence("u1")
	if got[0] != domain.EventSignedIn || got[1] != domain.EventSignedOut {
		t.Fatalf("unexpected order %v", got)
	}
}
