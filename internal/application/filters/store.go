package filters

import (
	"context"
	"strings"
	"sync"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/domain"
)

// Prefs is the slice of the local preference store this package needs.
type Prefs interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any) error
}

// State is the user-owned filter selection. Organizer ids narrow the view to
// those organizers; Search is a free-text needle.
type State struct {
	Organizers []string `json:"organizers"`
	Search     string   `json:"search"`
}

// Patch is a partial State; nil fields are left untouched by SetFilters.
type Patch struct {
	Organizers *[]string `json:"organizers,omitempty"`
	Search     *string   `json:"search,omitempty"`
}

// Store holds one user's FilterState and persists it across sessions.
// Changes made before the initial load attempt resolves are held in memory
// only, so the stored value is never clobbered by defaults during the load
// race.
type Store struct {
	prefs Prefs
	key   string

	mu     sync.Mutex
	state  State
	loaded bool
}

func NewStore(prefs Prefs, userID string) *Store {
	return &Store{
		prefs: prefs,
		key:   "filters:" + userID,
		state: State{Organizers: []string{}},
	}
}

// Load reads the persisted state once. Both success and "no stored value"
// resolve the load; only afterwards do state changes start persisting. A
// read failure is logged and the store proceeds with in-memory defaults for
// the session.
func (s *Store) Load(ctx context.Context) {
	if s.prefs == nil {
		// Ephemeral store (anonymous session): nothing to load, nothing will
		// persist.
		s.mu.Lock()
		s.loaded = true
		s.mu.Unlock()
		return
	}

	var stored State
	found, err := s.prefs.Get(ctx, s.key, &stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		zlog.Warn().Err(err).Str("key", s.key).Msg("filter state load failed")
		s.loaded = true
		return
	}
	if found {
		if stored.Organizers == nil {
			stored.Organizers = []string{}
		}
		s.state = stored
	}
	s.loaded = true
}

// Filters returns a copy of the current state.
func (s *Store) Filters() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// SetFilters merges patch into the current state and, once the initial load
// has resolved, serializes the result to the preference store. Persistence
// failures are logged and never block the feature.
func (s *Store) SetFilters(ctx context.Context, patch Patch) State {
	s.mu.Lock()
	if patch.Organizers != nil {
		s.state.Organizers = append([]string{}, (*patch.Organizers)...)
	}
	if patch.Search != nil {
		s.state.Search = *patch.Search
	}
	next := s.copyLocked()
	persist := s.loaded
	s.mu.Unlock()

	if persist && s.prefs != nil {
		if err := s.prefs.Set(ctx, s.key, next); err != nil {
			zlog.Warn().Err(err).Str("key", s.key).Msg("filter state persist failed")
		}
	}
	return next
}

func (s *Store) copyLocked() State {
	return State{
		Organizers: append([]string{}, s.state.Organizers...),
		Search:     s.state.Search,
	}
}

// Matches is the pure filter predicate: an event passes when the organizer
// filter is empty or contains its organizer id, and the search string is
// empty or a case-insensitive substring of its name, organizer name or
// description.
func Matches(f State, e domain.Event) bool {
	if len(f.Organizers) > 0 {
		organizerID := ""
		if e.Organizer != nil {
			organizerID = e.Organizer.ID
		}
		ok := false
		for _, id := range f.Organizers {
			if id == organizerID {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	if e.Organizer != nil && strings.Contains(strings.ToLower(e.Organizer.Name), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(e.Description), needle)
}

// Apply filters a metadata list with Matches, preserving input order.
func Apply(f State, list []domain.EventWithMetadata) []domain.EventWithMetadata {
	out := make([]domain.EventWithMetadata, 0, len(list))
	for _, e := range list {
		if Matches(f, e.Event) {
			out = append(out, e)
		}
	}
	return out
}

// ApplyCommunity narrows a list to events belonging to the community, when
// one is selected. Empty id means no community filter.
func ApplyCommunity(communityID string, list []domain.EventWithMetadata) []domain.EventWithMetadata {
	if communityID == "" {
		return list
	}
	out := make([]domain.EventWithMetadata, 0, len(list))
	for _, e := range list {
		if e.InCommunity(communityID) {
			out = append(out, e)
		}
	}
	return out
}
