package events

import (
	"fmt"
	"sort"

	"github.com/eventdeck/eventdeck/internal/domain"
)

// calendarPalette mirrors the organizer dot colors used by the calendar UI.
// Color assignment is positional over first-seen order, so it is not stable
// across re-derivations when the feed order changes; accepted simplification.
var calendarPalette = []string{
	"#7986CB", "#33B679", "#8E24AA", "#E67C73", "#F6BF26", "#F4511E", "#039BE5", "#616161",
	"#3F51B5", "#0B8043", "#D50000", "#F09300", "#F6BF26", "#33B679", "#0B8043", "#E4C441",
	"#FF7043", "#795548", "#8D6E63", "#9E9E9E",
}

// AvailableOrganizers derives the deduplicated organizer registry from an
// event list in a single left-to-right pass: events without an organizer are
// skipped, first sight of an id appends an entry with the next palette color,
// repeat sight increments its count. The result is sorted descending by
// count; ties keep first-seen order. Pure and deterministic for a given
// input order.
func AvailableOrganizers(events []domain.Event) []domain.OrganizerOption {
	byID := make(map[string]int, len(events))
	options := make([]domain.OrganizerOption, 0)

	for _, e := range events {
		if e.Organizer == nil {
			continue
		}
		if idx, ok := byID[e.Organizer.ID]; ok {
			options[idx].Count++
			continue
		}
		byID[e.Organizer.ID] = len(options)
		options = append(options, domain.OrganizerOption{
			ID:    e.Organizer.ID,
			Name:  e.Organizer.Name,
			Count: 1,
			Color: calendarPalette[len(options)%len(calendarPalette)],
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Count > options[j].Count
	})

	for i := range options {
		options[i].DisplayName = fmt.Sprintf("%s (%d)", options[i].Name, options[i].Count)
	}
	return options
}
