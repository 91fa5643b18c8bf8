package dto

import (
	"time"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/application/schedule"
	"github.com/eventdeck/eventdeck/internal/domain"
)

// Membership answers "is this event on the wishlist" for the response join.
// A nil Membership renders every event as not-on-wishlist (anonymous view).
type Membership interface {
	IsOnWishlist(eventID string) bool
}

func ToEventResp(e domain.EventWithMetadata, m Membership) EventResp {
	resp := EventResp{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		ImageURL:          e.ImageURL,
		Visibility:        string(e.Visibility),
		Communities:       e.Communities,
		OrganizerColor:    e.OrganizerColor,
		OrganizerPriority: e.OrganizerPriority,
	}
	if e.Organizer != nil {
		resp.OrganizerID = e.Organizer.ID
		resp.OrganizerName = e.Organizer.Name
	}
	if m != nil {
		resp.IsOnWishlist = m.IsOnWishlist(e.ID)
	}
	return resp
}

func ToEventResps(list []domain.EventWithMetadata, m Membership) []EventResp {
	out := make([]EventResp, 0, len(list))
	for _, e := range list {
		out = append(out, ToEventResp(e, m))
	}
	return out
}

func ToOrganizerOptionResp(o domain.OrganizerOption) OrganizerOptionResp {
	return OrganizerOptionResp{
		ID:          o.ID,
		Name:        o.Name,
		Count:       o.Count,
		Color:       o.Color,
		DisplayName: o.DisplayName,
	}
}

func ToFeedResp(v events.View, m Membership) FeedResp {
	organizers := make([]OrganizerOptionResp, 0, len(v.Organizers))
	for _, o := range v.Organizers {
		organizers = append(organizers, ToOrganizerOptionResp(o))
	}
	resp := FeedResp{
		Events:     ToEventResps(v.Events, m),
		Organizers: organizers,
		IsLoading:  v.IsLoading,
		Stale:      v.Stale,
	}
	if !v.FetchedAt.IsZero() {
		t := v.FetchedAt.UTC().Truncate(time.Second)
		resp.FetchedAt = &t
	}
	return resp
}

func ToSectionResps(sections []schedule.Section, m Membership) []SectionResp {
	out := make([]SectionResp, 0, len(sections))
	for _, s := range sections {
		out = append(out, SectionResp{
			Date:  s.Date,
			Title: s.Title,
			Data:  ToEventResps(s.Data, m),
		})
	}
	return out
}

func ToCommunityResps(list []domain.Community) []CommunityResp {
	out := make([]CommunityResp, 0, len(list))
	for _, c := range list {
		out = append(out, CommunityResp{ID: c.ID, Name: c.Name, Kind: c.Kind})
	}
	return out
}
