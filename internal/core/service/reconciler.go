package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wyclub/member-system/internal/api/metrics"
	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

// Options configures the reconciler's timing behaviour. Zero values fall back
// to the defaults below; tests override them with short durations.
type Options struct {
	// CacheTTL is the freshness window of a fetched profile. Degraded
	// fallback profiles are cached at half this value so recovery is
	// re-attempted sooner.
	CacheTTL time.Duration
	// DebounceWindow coalesces provider event bursts: only the last event
	// within the window triggers a pipeline run.
	DebounceWindow time.Duration
	// SettleDelay is the wait after a confirmed sign-in before the first
	// fetch, tolerating backend-side profile provisioning latency.
	SettleDelay time.Duration
	// RetryBackoff is the base backoff between fetch attempts, scaled
	// linearly: the n-th retry waits n * RetryBackoff.
	RetryBackoff time.Duration
	// MaxRetries bounds retries after the initial fetch attempt.
	MaxRetries int
	// FetchTimeout bounds a single background pipeline run end-to-end.
	FetchTimeout time.Duration
}

const (
	defaultCacheTTL     = 5 * time.Minute
	defaultDebounce     = 500 * time.Millisecond
	defaultSettleDelay  = time.Second
	defaultRetryBackoff = time.Second
	defaultMaxRetries   = 2
	defaultFetchTimeout = 10 * time.Second
)

func (o Options) withDefaults() Options {
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.DebounceWindow <= 0 {
		o.DebounceWindow = defaultDebounce
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = defaultSettleDelay
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = defaultRetryBackoff
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = defaultFetchTimeout
	}
	return o
}

// cacheEntry wraps a profile with its fetch timestamp. Entries are replaced
// wholesale on each successful fetch, never partially updated.
type cacheEntry struct {
	profile   *domain.Profile
	fetchedAt time.Time
	ttl       time.Duration
	degraded  bool
}

// userSlot holds the per-user reconciled state plus the single pending-run
// slot: each new event cancels the previous pending timer before scheduling a
// new one, so at most one reconciliation is in flight per debounce window.
// The generation counter discards in-flight results that were superseded by a
// later event or a sign-out.
type userSlot struct {
	state   domain.AuthState
	pending *time.Timer
	gen     uint64
}

// Reconciler owns the session-profile cache and derives AuthState from the
// provider's session plus the cached profile. It is the cache's single
// writer; all consumer reads go through Resolve/State snapshots.
type Reconciler struct {
	profiles ports.ProfileService
	opts     Options
	log      zerolog.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
	slots map[string]*userSlot
}

// NewReconciler creates a Reconciler over the given profile backend.
func NewReconciler(profiles ports.ProfileService, opts Options, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		profiles: profiles,
		opts:     opts.withDefaults(),
		log:      log,
		cache:    make(map[string]*cacheEntry),
		slots:    make(map[string]*userSlot),
	}
}

// HandleEvent applies one provider event. Sign-outs take effect immediately;
// fetch-triggering events are debounced and run asynchronously.
func (r *Reconciler) HandleEvent(ev domain.AuthEvent) {
	switch ev.Type {
	case domain.EventSignedOut:
		uid := ev.UserID
		if uid == "" && ev.Session != nil {
			uid = ev.Session.UserID
		}
		r.Invalidate(uid)

	case domain.EventSignedIn:
		if ev.Session == nil {
			return
		}
		if !ev.Session.EmailConfirmed {
			// Confirmation gates full profile access: synthesize the
			// session-derived profile immediately, no fetch.
			r.setImmediate(ev.Session.UserID, domain.StateFor(domain.FallbackProfile(ev.Session), false))
			return
		}
		r.schedule(ev.Session, false, r.opts.SettleDelay, "signed_in")

	case domain.EventTokenRefreshed:
		if ev.Session == nil {
			return
		}
		// Bypass the cache so role/claim changes are picked up.
		r.schedule(ev.Session, true, r.opts.DebounceWindow, "token_refreshed")
	}
}

// Resolve returns the state for the session, serving the cache when fresh and
// fetching synchronously otherwise. Backend failures never surface as errors:
// they degrade the returned state.
func (r *Reconciler) Resolve(ctx context.Context, session *domain.Session) domain.AuthState {
	return r.resolve(ctx, session, false, "resolve")
}

// Refresh re-runs the fetch pipeline unconditionally, bypassing the cache.
func (r *Reconciler) Refresh(ctx context.Context, session *domain.Session) domain.AuthState {
	return r.resolve(ctx, session, true, "refresh")
}

// State returns the last reconciled state for the user without any I/O.
func (r *Reconciler) State(userID string) domain.AuthState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot, ok := r.slots[userID]; ok {
		return slot.state
	}
	return domain.Unauthenticated()
}

// Invalidate cancels any pending run, drops the cached profile and resets the
// user to the unauthenticated state. In-flight fetch results for the old
// generation are discarded when they land.
func (r *Reconciler) Invalidate(userID string) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slot(userID)
	if slot.pending != nil {
		slot.pending.Stop()
		slot.pending = nil
	}
	slot.gen++
	slot.state = domain.Unauthenticated()
	delete(r.cache, userID)
}

// slot returns the userSlot for uid, creating it if needed. Callers hold mu.
func (r *Reconciler) slot(uid string) *userSlot {
	slot, ok := r.slots[uid]
	if !ok {
		slot = &userSlot{}
		r.slots[uid] = slot
	}
	return slot
}

func (r *Reconciler) setImmediate(uid string, state domain.AuthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slot(uid)
	if slot.pending != nil {
		slot.pending.Stop()
		slot.pending = nil
	}
	slot.gen++
	slot.state = state
}

// schedule arms the single pending-run slot for the user. A previously armed
// timer is cancelled first, so bursts inside the delay window collapse into
// one run driven by the most recent event.
func (r *Reconciler) schedule(session *domain.Session, bypass bool, delay time.Duration, trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slot(session.UserID)
	if slot.pending != nil {
		slot.pending.Stop()
	}
	slot.gen++
	gen := slot.gen
	slot.state.IsLoading = true
	slot.pending = time.AfterFunc(delay, func() {
		r.run(session, bypass, gen, trigger)
	})
}

// run executes a scheduled pipeline in the background and commits the result
// unless a later event superseded this generation.
func (r *Reconciler) run(session *domain.Session, bypass bool, gen uint64, trigger string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opts.FetchTimeout)
	defer cancel()

	metrics.ReconcileRunsTotal.WithLabelValues(trigger).Inc()
	state := r.pipeline(ctx, session, bypass, gen)
	r.commit(session.UserID, gen, state)
}

func (r *Reconciler) resolve(ctx context.Context, session *domain.Session, bypass bool, trigger string) domain.AuthState {
	if session == nil {
		return domain.Unauthenticated()
	}
	r.mu.Lock()
	gen := r.slot(session.UserID).gen
	r.mu.Unlock()

	metrics.ReconcileRunsTotal.WithLabelValues(trigger).Inc()
	state := r.pipeline(ctx, session, bypass, gen)
	r.commit(session.UserID, gen, state)
	return state
}

// commit publishes the terminal state for gen; stale generations are dropped.
func (r *Reconciler) commit(uid string, gen uint64, state domain.AuthState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot := r.slot(uid)
	if slot.gen != gen {
		return
	}
	slot.pending = nil
	state.IsLoading = false
	slot.state = state
}

// pipeline implements the resolution algorithm: fallback for unconfirmed
// sessions, cache-or-fetch for confirmed ones, provisioning on not-found,
// bounded linear-backoff retries, then degraded fallback.
func (r *Reconciler) pipeline(ctx context.Context, session *domain.Session, bypass bool, gen uint64) domain.AuthState {
	uid := session.UserID

	if !session.EmailConfirmed {
		return domain.StateFor(domain.FallbackProfile(session), false)
	}

	if !bypass {
		if p, degraded, ok := r.cached(uid); ok {
			metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
			return domain.StateFor(p, degraded)
		}
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
	}

	provisioned := false
	var lastErr error

fetch:
	for attempt := 0; attempt <= r.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.ProfileFetchRetriesTotal.Inc()
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break fetch
			case <-time.After(time.Duration(attempt) * r.opts.RetryBackoff):
			}
		}

		p, err := r.profiles.GetProfile(ctx, uid)
		if err == nil {
			metrics.ProfileFetchesTotal.WithLabelValues("success").Inc()
			r.store(uid, gen, p, r.opts.CacheTTL, false)
			return domain.StateFor(p, false)
		}

		if ports.KindOf(err) == ports.ProfileErrNotFound && !provisioned {
			metrics.ProfileFetchesTotal.WithLabelValues("not_found").Inc()
			provisioned = true
			created, cerr := r.profiles.CreateProfile(ctx, ports.CreateProfileInput{
				UserID: uid,
				Email:  session.Email,
				Name:   domain.FallbackProfile(session).Name,
			})
			if cerr == nil {
				metrics.ProfileFetchesTotal.WithLabelValues("created").Inc()
				r.store(uid, gen, created, r.opts.CacheTTL, false)
				return domain.StateFor(created, false)
			}
			err = cerr
		} else if err != nil {
			metrics.ProfileFetchesTotal.WithLabelValues("error").Inc()
		}
		lastErr = err
	}

	// Retry budget exhausted: degrade to a session-derived profile, cached at
	// half TTL so the backend is re-attempted sooner once it may have
	// recovered.
	metrics.DegradedFallbacksTotal.Inc()
	r.log.Warn().Err(lastErr).
		Str("user_id", uid).
		Msg("profile backend unavailable, serving fallback profile")

	fb := domain.FallbackProfile(session)
	r.store(uid, gen, fb, r.opts.CacheTTL/2, true)
	return domain.StateFor(fb, true)
}

// cached returns the profile for uid when a fresh entry exists. Expired
// entries are never served stale.
func (r *Reconciler) cached(uid string) (*domain.Profile, bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[uid]
	if !ok {
		return nil, false, false
	}
	if time.Since(e.fetchedAt) >= e.ttl {
		return nil, false, false
	}
	return e.profile, e.degraded, true
}

// store replaces the cache entry wholesale, unless the run was superseded.
func (r *Reconciler) store(uid string, gen uint64, p *domain.Profile, ttl time.Duration, degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot, ok := r.slots[uid]; ok && slot.gen != gen {
		return
	}
	r.cache[uid] = &cacheEntry{
		profile:   p,
		fetchedAt: time.Now().UTC(),
		ttl:       ttl,
		degraded:  degraded,
	}
}
