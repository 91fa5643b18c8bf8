package events

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/domain"
)

type Clock interface{ Now() time.Time }

// Feed is the read port onto the remote event resource.
type Feed interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// View is one consistent snapshot of the event read model.
type View struct {
	Events     []domain.EventWithMetadata
	Organizers []domain.OrganizerOption
	IsLoading  bool

	// Failed means the most recent fetch errored. Stale additionally means a
	// previous successful list is being served in its place; a populated
	// cache is never cleared to empty on error.
	Failed    bool
	Stale     bool
	FetchedAt time.Time
}

// Cache holds the fetched event list plus its derived metadata, keyed by a
// generation token. Bumping the generation (app foreground, identity change)
// invalidates the entry; the next read refetches. One instance per process;
// all mutation goes through this API.
type Cache struct {
	feed  Feed
	clock Clock
	ttl   time.Duration

	mu         sync.Mutex
	generation uint64
	fetchedGen uint64
	fetchedAt  time.Time
	fetching   bool
	populated  bool
	failed     bool
	events     []domain.EventWithMetadata
	organizers []domain.OrganizerOption
}

func NewCache(feed Feed, clock Clock, ttl time.Duration) *Cache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{feed: feed, clock: clock, ttl: ttl}
}

// Invalidate bumps the generation token. The cached list stays readable until
// the next View triggers a refetch.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
}

// View returns the current read model, refetching synchronously when the
// entry is missing or its generation is stale. If another fetch is already in
// flight the previous snapshot is returned with IsLoading set.
func (c *Cache) View(ctx context.Context) View {
	c.mu.Lock()
	if c.fresh() || c.fetching {
		v := c.snapshotLocked()
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	c.fetch(ctx)

	c.mu.Lock()
	v := c.snapshotLocked()
	c.mu.Unlock()
	return v
}

// Refetch forces a reload regardless of freshness.
func (c *Cache) Refetch(ctx context.Context) View {
	c.Invalidate()
	return c.View(ctx)
}

// fresh reports whether the cached entry matches the current generation and
// is within its lease. Callers hold c.mu.
func (c *Cache) fresh() bool {
	if !c.populated || c.failed {
		return false
	}
	if c.fetchedGen != c.generation {
		return false
	}
	return c.clock.Now().Sub(c.fetchedAt) < c.ttl
}

func (c *Cache) snapshotLocked() View {
	return View{
		Events:     c.events,
		Organizers: c.organizers,
		IsLoading:  c.fetching,
		Failed:     c.failed,
		Stale:      c.failed && c.populated,
		FetchedAt:  c.fetchedAt,
	}
}

func (c *Cache) fetch(ctx context.Context) {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return
	}
	c.fetching = true
	gen := c.generation
	c.mu.Unlock()

	list, err := c.feed.ListEvents(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false

	if err != nil {
		// Stale-but-available: keep whatever we had.
		c.failed = true
		zlog.Warn().Err(err).Msg("event feed fetch failed, serving stale list")
		return
	}

	deduped := DedupeByID(list)
	organizers := AvailableOrganizers(deduped)

	c.events = WithMetadata(deduped, organizers)
	c.organizers = organizers
	c.populated = true
	c.failed = false
	c.fetchedGen = gen
	c.fetchedAt = c.clock.Now()
}
