// Package swipe records like/skip decisions from the card deck and keeps the
// read model used to exclude already-decided cards. Recording is best-effort:
// a failed write is logged and surfaced but never blocks or rolls anything
// back.
package swipe

import (
	"context"
	"sort"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/application/optimistic"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/remote"
)

type Clock interface{ Now() time.Time }

type Remote interface {
	GetSwipeChoices(ctx context.Context, bearer string) (remote.SwipeChoices, error)
	RecordSwipeChoice(ctx context.Context, bearer string, choice domain.SwipeChoice) error
}

// Choices is the local projection of past decisions: two id sets.
type Choices struct {
	Wishlist map[string]struct{}
	Skip     map[string]struct{}
}

func cloneChoices(c Choices) Choices {
	out := Choices{
		Wishlist: make(map[string]struct{}, len(c.Wishlist)),
		Skip:     make(map[string]struct{}, len(c.Skip)),
	}
	for id := range c.Wishlist {
		out.Wishlist[id] = struct{}{}
	}
	for id := range c.Skip {
		out.Skip[id] = struct{}{}
	}
	return out
}

// Service owns one user's swipe choice read model. Its cache is keyed by the
// user and independent of the wishlist membership cache.
type Service struct {
	rc     Remote
	clock  Clock
	lease  time.Duration
	userID string
	bearer string

	// onWishlistChosen marks the wishlist membership projection stale when a
	// "wishlist" choice lands, so the next membership read reconciles.
	onWishlistChosen func()

	choices *optimistic.Resource[Choices]

	mu        sync.Mutex
	fetchedAt time.Time
}

func New(rc Remote, clock Clock, userID, bearer string, lease time.Duration, onWishlistChosen func()) *Service {
	if lease == 0 {
		lease = 5 * time.Minute
	}
	return &Service{
		rc:               rc,
		clock:            clock,
		lease:            lease,
		userID:           userID,
		bearer:           bearer,
		onWishlistChosen: onWishlistChosen,
		choices:          optimistic.New(cloneChoices),
	}
}

// RecordChoice appends one decision. The local id sets are updated first so
// the card leaves the deck immediately; the remote write is fire-and-forget
// with respect to local state, though its error is still returned for a
// transient indicator.
func (s *Service) RecordChoice(ctx context.Context, eventID, choice string) error {
	if s.userID == "" {
		return domain.ErrUnauthenticated("sign in to swipe")
	}
	if choice != domain.ChoiceWishlist && choice != domain.ChoiceSkip {
		return domain.ErrValidationMeta("invalid choice", map[string]string{
			"choice": "must be one of: wishlist, skip",
		})
	}

	s.choices.Update(func(c Choices) Choices {
		if c.Wishlist == nil {
			c.Wishlist = make(map[string]struct{})
		}
		if c.Skip == nil {
			c.Skip = make(map[string]struct{})
		}
		if choice == domain.ChoiceWishlist {
			c.Wishlist[eventID] = struct{}{}
		} else {
			c.Skip[eventID] = struct{}{}
		}
		return c
	})

	if choice == domain.ChoiceWishlist && s.onWishlistChosen != nil {
		s.onWishlistChosen()
	}

	err := s.rc.RecordSwipeChoice(ctx, s.getBearer(), domain.SwipeChoice{
		EventID: eventID,
		Choice:  choice,
		List:    domain.DefaultSwipeList,
	})
	if err != nil {
		zlog.Warn().Err(err).Str("event_id", eventID).Str("choice", choice).
			Msg("swipe choice write failed")
		return domain.ErrNetworkFailure("swipe choice not recorded", err)
	}
	return nil
}

// AvailableCards returns the events not yet decided on, sorted by start date
// ascending.
func (s *Service) AvailableCards(ctx context.Context, list []domain.EventWithMetadata) []domain.EventWithMetadata {
	s.ensureFresh(ctx)

	out := make([]domain.EventWithMetadata, 0, len(list))
	s.choices.View(func(c Choices) {
		for _, e := range list {
			if _, ok := c.Wishlist[e.ID]; ok {
				continue
			}
			if _, ok := c.Skip[e.ID]; ok {
				continue
			}
			out = append(out, e)
		}
	})

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// SetBearer swaps the token forwarded to the backend.
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

func (s *Service) ensureFresh(ctx context.Context) {
	if s.userID == "" {
		return
	}
	_, loaded := s.choices.Peek()
	s.mu.Lock()
	fresh := loaded && s.clock.Now().Sub(s.fetchedAt) < s.lease
	s.mu.Unlock()
	if fresh {
		return
	}

	got, err := s.rc.GetSwipeChoices(ctx, s.getBearer())
	if err != nil {
		zlog.Warn().Err(err).Str("user_id", s.userID).Msg("swipe choices fetch failed, keeping projection")
		return
	}

	next := Choices{
		Wishlist: make(map[string]struct{}, len(got.ChosenWishlist)),
		Skip:     make(map[string]struct{}, len(got.ChosenSkip)),
	}
	for _, id := range got.ChosenWishlist {
		next.Wishlist[id] = struct{}{}
	}
	for _, id := range got.ChosenSkip {
		next.Skip[id] = struct{}{}
	}
	s.choices.Replace(next)

	s.mu.Lock()
	s.fetchedAt = s.clock.Now()
	s.mu.Unlock()
}
