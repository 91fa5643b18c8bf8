package domain

import (
	"math"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Organizer is the entity hosting one or more events. It is the primary
// grouping, filtering and color-coding dimension of the app.
type Organizer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is a record ingested remotely and read-only on this side. The feed is
// refreshed wholesale; there are no partial patches.
type Event struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	Organizer   *Organizer `json:"organizer,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Visibility  Visibility `json:"visibility"`
	Communities []string   `json:"communities,omitempty"`
}

// InCommunity reports whether the event belongs to the given community id.
func (e *Event) InCommunity(id string) bool {
	for _, c := range e.Communities {
		if c == id {
			return true
		}
	}
	return false
}

// UnknownPriority sorts events without a ranked organizer after every ranked
// one.
const UnknownPriority = math.MaxInt

// OrganizerOption is a derived filter option: one entry per distinct
// organizer, with its event count and assigned calendar color. Never
// persisted; recomputed whenever the event list changes.
type OrganizerOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`

	// DisplayName carries the "(N)" count suffix for presentation. Joins and
	// predicate matching must use Name.
	DisplayName string `json:"display_name"`
}

// EventWithMetadata joins an Event with its organizer's assigned color and
// priority (index into the count-sorted organizer list). Derived, recomputed
// on any input change, never mutated in place.
type EventWithMetadata struct {
	Event

	OrganizerColor    string `json:"organizer_color,omitempty"`
	OrganizerPriority int    `json:"organizer_priority"`
}

// Community is a public or private interest group events can belong to.
type Community struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// SwipeChoice is a user's like/skip decision on a card. Append-only and owned
// by the backend; the client only keeps the resulting id sets.
type SwipeChoice struct {
	EventID string `json:"event_id"`
	Choice  string `json:"choice"`
	List    string `json:"list"`
}

const (
	ChoiceWishlist = "wishlist"
	ChoiceSkip     = "skip"

	DefaultSwipeList = "main"
)
