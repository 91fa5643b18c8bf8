// Package schedule turns a filtered event list into date-ordered sections and
// the marked-dates structure the calendar widget renders. Everything here is
// deterministic and side-effect free.
package schedule

import (
	"sort"
	"time"

	"github.com/eventdeck/eventdeck/internal/domain"
)

const (
	// SectionTitleFormat is the human-readable section label, e.g.
	// "May 1, 2024 (Wednesday)".
	SectionTitleFormat = "Jan 2, 2006 (Monday)"

	dateKeyFormat = "2006-01-02"

	// maxDotsPerDay caps the organizer color dots rendered on one calendar
	// day.
	maxDotsPerDay = 5
)

// Section is a date-labeled bucket of events for calendar-style list
// rendering. Never persisted.
type Section struct {
	Date  string                     `json:"date"`
	Title string                     `json:"title"`
	Data  []domain.EventWithMetadata `json:"data"`
}

// MarkedDate flags a calendar day that has at least one event, carrying the
// first distinct organizer colors for that day in input (priority) order.
type MarkedDate struct {
	Marked    bool     `json:"marked"`
	DotColors []string `json:"dot_colors"`
}

// Group buckets events by the local calendar date of their start time (not
// the UTC date, to avoid midnight-boundary misclassification). Sections come
// back ordered by date ascending; within a section the input order is kept.
// Callers pass the list pre-sorted by organizer priority, so sections
// interleave chronological grouping with that secondary order; this two-key
// ordering (date asc, organizerPriority asc) is inherited behavior and must
// be preserved.
func Group(events []domain.EventWithMetadata, loc *time.Location) ([]Section, map[string]MarkedDate) {
	if loc == nil {
		loc = time.Local
	}

	byDate := make(map[string][]domain.EventWithMetadata)
	for _, e := range events {
		key := e.StartDate.In(loc).Format(dateKeyFormat)
		byDate[key] = append(byDate[key], e)
	}

	keys := make([]string, 0, len(byDate))
	for k := range byDate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sections := make([]Section, 0, len(keys))
	marked := make(map[string]MarkedDate, len(keys))
	for _, key := range keys {
		day := byDate[key]
		t, _ := time.ParseInLocation(dateKeyFormat, key, loc)
		sections = append(sections, Section{
			Date:  key,
			Title: t.Format(SectionTitleFormat),
			Data:  day,
		})
		marked[key] = MarkedDate{Marked: true, DotColors: dotColors(day)}
	}
	return sections, marked
}

// dotColors collects up to maxDotsPerDay distinct organizer colors in input
// order, skipping events whose organizer has no assigned color.
func dotColors(day []domain.EventWithMetadata) []string {
	seen := make(map[string]struct{}, maxDotsPerDay)
	colors := make([]string, 0, maxDotsPerDay)
	for _, e := range day {
		if e.OrganizerColor == "" {
			continue
		}
		if _, ok := seen[e.OrganizerColor]; ok {
			continue
		}
		seen[e.OrganizerColor] = struct{}{}
		colors = append(colors, e.OrganizerColor)
		if len(colors) == maxDotsPerDay {
			break
		}
	}
	return colors
}
