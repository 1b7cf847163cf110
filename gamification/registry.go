package gamification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry keeps one Session per user for a single store, opening each
// lazily on first use. Idle sessions are dropped by EvictIdle.
type Registry struct {
	store StateStore
	opts  Options

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	once     sync.Once
	session  *Session
	opened   bool // guarded by Registry.mu
	lastUsed time.Time
}

func NewRegistry(store StateStore, opts Options) *Registry {
	return &Registry{
		store:    store,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*registryEntry),
	}
}

// Session returns the session for userID, loading its state the first time.
// Concurrent first calls for the same user share one load.
func (r *Registry) Session(ctx context.Context, userID string) *Session {
	r.mu.Lock()
	e, ok := r.sessions[userID]
	if !ok {
		e = &registryEntry{}
		r.sessions[userID] = e
	}
	e.lastUsed = r.opts.Clock()
	r.mu.Unlock()

	e.once.Do(func() {
		// the first caller's cancellation must not turn into a default state for everyone
		e.session = Open(context.WithoutCancel(ctx), r.store, userID, r.opts)
		r.mu.Lock()
		e.opened = true
		r.mu.Unlock()
	})
	return e.session
}

// Broker returns the broker shared by every session of the registry.
func (r *Registry) Broker() *Broker {
	return r.opts.Broker
}

func (r *Registry) Catalog() *Catalog {
	return r.opts.Catalog
}

// Len returns the number of sessions currently held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) openedSessions() map[string]*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*Session, len(r.sessions))
	for id, e := range r.sessions {
		if e.opened {
			out[id] = e.session
		}
	}
	return out
}

// FlushAll saves every session with unsaved changes.
func (r *Registry) FlushAll(ctx context.Context) error {
	var errs []error
	for _, s := range r.openedSessions() {
		if !s.Dirty() {
			continue
		}
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EvictIdle flushes and drops sessions unused for longer than idle. A session
// whose flush fails is kept so its changes are not lost. The next request for
// an evicted user reloads the stored record.
func (r *Registry) EvictIdle(ctx context.Context, idle time.Duration) (int, error) {
	if idle <= 0 {
		return 0, nil
	}
	cutoff := r.opts.Clock().Add(-idle)

	r.mu.Lock()
	candidates := make(map[string]*Session)
	for id, e := range r.sessions {
		if e.opened && e.lastUsed.Before(cutoff) {
			candidates[id] = e.session
		}
	}
	r.mu.Unlock()

	var errs []error
	evicted := 0
	for id, s := range candidates {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		r.mu.Lock()
		// recheck: the session may have been picked up again while flushing
		if e, ok := r.sessions[id]; ok && e.session == s && e.lastUsed.Before(cutoff) && !s.Dirty() {
			delete(r.sessions, id)
			evicted++
		}
		r.mu.Unlock()
	}
	if evicted > 0 {
		r.opts.Logger.Debug("evicted idle gamification sessions", zap.Int("count", evicted))
	}
	return evicted, errors.Join(errs...)
}
