package events

import (
	"sort"

	"github.com/eventdeck/eventdeck/internal/domain"
)

type organizerRank struct {
	color    string
	priority int
}

// buildOrganizerRanks indexes the count-sorted organizer list by id. Priority
// is the position in that list; it drives the secondary ordering the grouper
// depends on.
func buildOrganizerRanks(organizers []domain.OrganizerOption) map[string]organizerRank {
	ranks := make(map[string]organizerRank, len(organizers))
	for i, o := range organizers {
		ranks[o.ID] = organizerRank{color: o.Color, priority: i}
	}
	return ranks
}

// WithMetadata joins events with their organizer color and priority, then
// sorts by priority ascending. Events whose organizer is absent or unranked
// get UnknownPriority and sort last. The priority pre-sort is load-bearing:
// the sectioning engine preserves input order within a date, so sections
// interleave chronological grouping with this organizer-priority order.
func WithMetadata(events []domain.Event, organizers []domain.OrganizerOption) []domain.EventWithMetadata {
	ranks := buildOrganizerRanks(organizers)

	out := make([]domain.EventWithMetadata, 0, len(events))
	for _, e := range events {
		m := domain.EventWithMetadata{Event: e, OrganizerPriority: domain.UnknownPriority}
		if e.Organizer != nil {
			if r, ok := ranks[e.Organizer.ID]; ok {
				m.OrganizerColor = r.color
				m.OrganizerPriority = r.priority
			}
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrganizerPriority < out[j].OrganizerPriority
	})
	return out
}

// DedupeByID keeps the first occurrence of each event id, preserving order.
func DedupeByID(events []domain.Event) []domain.Event {
	seen := make(map[string]struct{}, len(events))
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
