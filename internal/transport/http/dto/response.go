package dto

import (
	"time"

	"github.com/eventdeck/eventdeck/internal/application/schedule"
)

// EventResp is the stable API response model for one event.
// NOTE: derived fields (organizer_color/organizer_priority/is_on_wishlist)
// are computed at runtime from the cached read model.
type EventResp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	OrganizerID   string `json:"organizer_id,omitempty"`
	OrganizerName string `json:"organizer_name,omitempty"`

	ImageURL    string   `json:"image_url,omitempty"`
	Visibility  string   `json:"visibility,omitempty"`
	Communities []string `json:"communities,omitempty"`

	// Derived
	OrganizerColor    string `json:"organizer_color,omitempty"`
	OrganizerPriority int    `json:"organizer_priority"`
	IsOnWishlist      bool   `json:"is_on_wishlist"`
}

type OrganizerOptionResp struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Count       int    `json:"count"`
	Color       string `json:"color"`
	DisplayName string `json:"display_name"`
}

type FeedResp struct {
	Events     []EventResp           `json:"events"`
	Organizers []OrganizerOptionResp `json:"organizers"`
	IsLoading  bool                  `json:"is_loading"`
	Stale      bool                  `json:"stale"`
	FetchedAt  *time.Time            `json:"fetched_at,omitempty"`
}

type SectionResp struct {
	Date  string      `json:"date"`
	Title string      `json:"title"`
	Data  []EventResp `json:"data"`
}

type SectionsResp struct {
	Sections    []SectionResp                  `json:"sections"`
	MarkedDates map[string]schedule.MarkedDate `json:"marked_dates"`
	Stale       bool                           `json:"stale"`
}

type WishlistResp struct {
	EventIDs []string    `json:"event_ids"`
	Events   []EventResp `json:"events"`
}

type CommunityResp struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

type CommunitiesResp struct {
	Communities []CommunityResp `json:"communities"`
	Selected    string          `json:"selected,omitempty"`
}
