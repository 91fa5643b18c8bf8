package handlers

import (
	"net/http"
	"time"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/application/filters"
	"github.com/eventdeck/eventdeck/internal/application/schedule"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/metrics"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
	"github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/response"
)

// EventsHandler serves the cached event read model and its derived
// calendar sections.
type EventsHandler struct {
	cache    *events.Cache
	sessions *session.Registry

	explicitWords []string
	loc           *time.Location
}

func NewEventsHandler(cache *events.Cache, sessions *session.Registry, explicitWords []string, loc *time.Location) *EventsHandler {
	if loc == nil {
		loc = time.Local
	}
	return &EventsHandler{cache: cache, sessions: sessions, explicitWords: explicitWords, loc: loc}
}

// Feed returns the current event list with organizer metadata. Anonymous
// callers get the same list minus explicit events and without the wishlist
// join.
func (h *EventsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	view := h.cache.View(r.Context())
	view.Events = h.visible(sess, view.Events)

	response.Data(w, http.StatusOK, dto.ToFeedResp(view, membership(r.Context(), sess)))
}

// Refresh forces a feed reload. The client calls this on app foreground.
func (h *EventsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	metrics.RecordFeedRefresh()

	view := h.cache.Refetch(r.Context())
	view.Events = h.visible(sess, view.Events)

	response.Data(w, http.StatusOK, dto.ToFeedResp(view, membership(r.Context(), sess)))
}

// Sections returns the filtered feed grouped by local calendar date, plus the
// marked-dates map for the calendar widget.
func (h *EventsHandler) Sections(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	view := h.cache.View(r.Context())

	list := h.visible(sess, view.Events)
	list = filters.Apply(sess.Filters.Filters(), list)
	list = filters.ApplyCommunity(sess.Community(r.Context()), list)

	sections, marked := schedule.Group(list, h.loc)

	response.Data(w, http.StatusOK, dto.SectionsResp{
		Sections:    dto.ToSectionResps(sections, membership(r.Context(), sess)),
		MarkedDates: marked,
		Stale:       view.Stale,
	})
}

// visible applies the explicit-content guard for anonymous sessions.
func (h *EventsHandler) visible(sess *session.Session, list []domain.EventWithMetadata) []domain.EventWithMetadata {
	if sess.UserID != "" {
		return list
	}
	return events.WithoutExplicit(list, h.explicitWords)
}
