package events

import (
	"strings"

	"github.com/eventdeck/eventdeck/internal/domain"
)

// WithoutExplicit drops events whose name contains any blocklisted word,
// case-insensitively. Applied to anonymous sessions only; an empty blocklist
// disables the guard.
func WithoutExplicit(events []domain.EventWithMetadata, words []string) []domain.EventWithMetadata {
	if len(words) == 0 {
		return events
	}
	out := make([]domain.EventWithMetadata, 0, len(events))
	for _, e := range events {
		name := strings.ToLower(e.Name)
		blocked := false
		for _, w := range words {
			if w != "" && strings.Contains(name, strings.ToLower(w)) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, e)
		}
	}
	return out
}
