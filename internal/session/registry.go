// Package session composes the per-user services. Each user gets exactly one
// wishlist service, one swipe service and one filter store for the lifetime
// of the process; the membership and choice caches are singly-owned by them.
package session

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/application/filters"
	"github.com/eventdeck/eventdeck/internal/application/swipe"
	"github.com/eventdeck/eventdeck/internal/application/wishlist"
	"github.com/eventdeck/eventdeck/internal/remote"
)

type Clock interface{ Now() time.Time }

// Prefs is the local preference store surface sessions use.
type Prefs interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	Remove(ctx context.Context, key string) error
}

// Session bundles one identity's services. Anonymous sessions (empty user id)
// carry an ephemeral filter store and reject wishlist/swipe mutations.
type Session struct {
	UserID   string
	Filters  *filters.Store
	Wishlist *wishlist.Service
	Swipe    *swipe.Service

	prefs Prefs

	mu        sync.Mutex
	community string
	loadedCom bool
}

// Community returns the persisted selected community id, loading it lazily.
// Empty means no community filter.
func (s *Session) Community(ctx context.Context) string {
	s.mu.Lock()
	if s.loadedCom || s.prefs == nil || s.UserID == "" {
		c := s.community
		s.mu.Unlock()
		return c
	}
	s.mu.Unlock()

	// Read outside the lock, install under it.
	var stored string
	_, err := s.prefs.Get(ctx, "community:"+s.UserID, &stored)
	if err != nil {
		zlog.Warn().Err(err).Str("user_id", s.UserID).Msg("community default load failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadedCom {
		// A SetCommunity raced the load; the explicit choice wins.
		return s.community
	}
	if err == nil {
		s.community = stored
	}
	s.loadedCom = true
	return s.community
}

// SetCommunity stores the selected community id; empty clears it.
func (s *Session) SetCommunity(ctx context.Context, id string) {
	s.mu.Lock()
	s.community = id
	s.loadedCom = true
	s.mu.Unlock()

	if s.prefs == nil || s.UserID == "" {
		return
	}
	var err error
	if id == "" {
		err = s.prefs.Remove(ctx, "community:"+s.UserID)
	} else {
		err = s.prefs.Set(ctx, "community:"+s.UserID, id)
	}
	if err != nil {
		zlog.Warn().Err(err).Str("user_id", s.UserID).Msg("community default persist failed")
	}
}

// Registry hands out sessions keyed by user id.
type Registry struct {
	rc            *remote.Client
	prefs         Prefs
	clock         Clock
	events        *events.Cache
	wishlistLease time.Duration
	swipeLease    time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	anon     *Session
}

func NewRegistry(rc *remote.Client, prefs Prefs, clock Clock, eventCache *events.Cache, wishlistLease, swipeLease time.Duration) *Registry {
	return &Registry{
		rc:            rc,
		prefs:         prefs,
		clock:         clock,
		events:        eventCache,
		wishlistLease: wishlistLease,
		swipeLease:    swipeLease,
		sessions:      make(map[string]*Session),
	}
}

// Session returns the singly-owned session for userID, creating it on first
// sight. An identity transition (a user not seen before) bumps the event
// cache generation, mirroring the refetch-on-login behavior of the client.
func (r *Registry) Session(ctx context.Context, userID, bearer string) *Session {
	r.mu.Lock()

	if userID == "" {
		if r.anon == nil {
			// Nil prefs: the load is in-memory, no I/O under the lock.
			r.anon = &Session{Filters: filters.NewStore(nil, "")}
			r.anon.Filters.Load(ctx)
		}
		s := r.anon
		r.mu.Unlock()
		return s
	}

	if s, ok := r.sessions[userID]; ok {
		r.mu.Unlock()
		s.Wishlist.SetBearer(bearer)
		s.Swipe.SetBearer(bearer)
		return s
	}

	wl := wishlist.New(r.rc, r.clock, userID, bearer, r.wishlistLease)
	s := &Session{
		UserID:   userID,
		Filters:  filters.NewStore(r.prefs, userID),
		Wishlist: wl,
		Swipe:    swipe.New(r.rc, r.clock, userID, bearer, r.swipeLease, wl.MarkStale),
		prefs:    r.prefs,
	}
	r.sessions[userID] = s

	if r.events != nil {
		r.events.Invalidate()
	}
	r.mu.Unlock()

	// The restore hits the preference store; only the creator runs it.
	s.Filters.Load(ctx)
	return s
}
