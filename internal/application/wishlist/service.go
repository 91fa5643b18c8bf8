// Package wishlist keeps a per-user projection of the remote wishlist
// resource and mutates it optimistically: the expected effect is applied to
// the local membership set before the network call is issued, and rolled back
// exactly when the call fails.
package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/application/optimistic"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/remote"
)

type Clock interface{ Now() time.Time }

// Remote is the slice of the resource client this service needs.
type Remote interface {
	GetWishlist(ctx context.Context, bearer string) ([]string, error)
	AddToWishlist(ctx context.Context, bearer, eventID string) error
	RemoveFromWishlist(ctx context.Context, bearer, eventID string) error
}

// Service owns one user's wishlist membership cache. The cache is the single
// source of truth for IsOnWishlist between refetches; it goes stale after the
// lease period or after a successful mutation and is reconciled by the next
// read.
type Service struct {
	rc     Remote
	clock  Clock
	lease  time.Duration
	userID string
	bearer string

	members *optimistic.Resource[map[string]struct{}]

	mu            sync.Mutex
	fetchedAt     time.Time
	stale         bool
	refetchCancel context.CancelFunc
}

func New(rc Remote, clock Clock, userID, bearer string, lease time.Duration) *Service {
	if lease == 0 {
		lease = 5 * time.Minute
	}
	return &Service{
		rc:      rc,
		clock:   clock,
		lease:   lease,
		userID:  userID,
		bearer:  bearer,
		members: optimistic.New(cloneSet),
	}
}

func cloneSet(m map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

// IsOnWishlist is a pure membership check. Unknown or not-yet-loaded is
// false, never an error.
func (s *Service) IsOnWishlist(eventID string) bool {
	on := false
	s.members.View(func(m map[string]struct{}) {
		_, on = m[eventID]
	})
	return on
}

// EventIDs refreshes the membership projection if it is missing, stale or
// past its lease, then returns the current id set. A failed refresh keeps the
// previous projection.
func (s *Service) EventIDs(ctx context.Context) []string {
	if s.needsRefresh() {
		s.refresh(ctx)
	}

	var ids []string
	s.members.View(func(m map[string]struct{}) {
		ids = make([]string, 0, len(m))
		for id := range m {
			ids = append(ids, id)
		}
	})
	return ids
}

// Events projects the membership over an event list, preserving input order.
func (s *Service) Events(ctx context.Context, list []domain.EventWithMetadata) []domain.EventWithMetadata {
	_ = s.EventIDs(ctx)

	out := make([]domain.EventWithMetadata, 0)
	s.members.View(func(m map[string]struct{}) {
		for _, e := range list {
			if _, ok := m[e.ID]; ok {
				out = append(out, e)
			}
		}
	})
	return out
}

// Toggle applies next to the membership set synchronously, then issues the
// remote add/remove. A toggle that would set the current value is ignored, so
// contradictory requests are not sent back-to-back. On remote failure the
// pre-mutation snapshot is restored exactly and the error surfaced; nothing
// retries automatically.
func (s *Service) Toggle(ctx context.Context, eventID string, next bool) error {
	if s.userID == "" {
		return domain.ErrUnauthenticated("sign in to use the wishlist")
	}
	if eventID == "" {
		return domain.ErrValidation("event_id is required")
	}
	if s.IsOnWishlist(eventID) == next {
		return nil
	}

	// A refetch resolving after the optimistic write would clobber it.
	s.cancelRefetch()

	err := s.members.Mutate(ctx,
		func(m map[string]struct{}) map[string]struct{} {
			if next {
				m[eventID] = struct{}{}
			} else {
				delete(m, eventID)
			}
			return m
		},
		func(ctx context.Context) error {
			if next {
				return s.rc.AddToWishlist(ctx, s.getBearer(), eventID)
			}
			return s.rc.RemoveFromWishlist(ctx, s.getBearer(), eventID)
		},
	)
	if err != nil {
		return mapRemoteErr(err)
	}

	// The optimistic value already matches the server; mark the projection
	// stale so a later read reconciles it.
	s.MarkStale()
	return nil
}

// MarkStale forces the next read to refetch membership.
func (s *Service) MarkStale() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// SetBearer swaps the token forwarded to the backend, e.g. after a refresh.
func (s *Service) SetBearer(bearer string) {
	s.mu.Lock()
	s.bearer = bearer
	s.mu.Unlock()
}

func (s *Service) getBearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bearer
}

func (s *Service) needsRefresh() bool {
	if s.userID == "" {
		return false
	}
	_, loaded := s.members.Peek()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !loaded || s.stale {
		return true
	}
	return s.clock.Now().Sub(s.fetchedAt) >= s.lease
}

func (s *Service) cancelRefetch() {
	s.mu.Lock()
	if s.refetchCancel != nil {
		s.refetchCancel()
		s.refetchCancel = nil
	}
	s.mu.Unlock()
}

// refresh fetches server truth. The result is discarded when a toggle
// canceled the refetch mid-flight; installing it anyway would overwrite the
// optimistic value.
func (s *Service) refresh(ctx context.Context) {
	s.mu.Lock()
	if s.refetchCancel != nil {
		s.mu.Unlock()
		return
	}
	rctx, cancel := context.WithCancel(ctx)
	s.refetchCancel = cancel
	s.mu.Unlock()

	ids, err := s.rc.GetWishlist(rctx, s.getBearer())

	s.mu.Lock()
	defer s.mu.Unlock()
	superseded := rctx.Err() != nil
	if s.refetchCancel != nil {
		s.refetchCancel()
		s.refetchCancel = nil
	}
	if superseded {
		return
	}
	if err != nil {
		zlog.Warn().Err(err).Str("user_id", s.userID).Msg("wishlist refresh failed, keeping projection")
		return
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	s.members.Replace(set)
	s.fetchedAt = s.clock.Now()
	s.stale = false
}

func mapRemoteErr(err error) error {
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		return domain.ErrUnauthenticated("wishlist update rejected: not signed in")
	case remote.Retryable(err):
		return domain.ErrNetworkFailure("wishlist update failed", err)
	default:
		return domain.ErrRemoteRejected("wishlist update rejected", err)
	}
}
