package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/metrics"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
	"github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/response"
)

type WishlistHandler struct {
	cache    *events.Cache
	sessions *session.Registry
}

func NewWishlistHandler(cache *events.Cache, sessions *session.Registry) *WishlistHandler {
	return &WishlistHandler{cache: cache, sessions: sessions}
}

// List returns the wishlisted event ids plus their full event records, in
// the feed's (priority-sorted) order.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	if sess.Wishlist == nil {
		response.Err(w, r, domain.ErrUnauthenticated("sign in to use the wishlist"))
		return
	}

	view := h.cache.View(r.Context())
	ids := sess.Wishlist.EventIDs(r.Context())
	picked := sess.Wishlist.Events(r.Context(), view.Events)

	response.Data(w, http.StatusOK, dto.WishlistResp{
		EventIDs: ids,
		Events:   dto.ToEventResps(picked, sess.Wishlist),
	})
}

// Add toggles an event onto the wishlist.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, true)
}

// Remove toggles an event off the wishlist.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, false)
}

func (h *WishlistHandler) toggle(w http.ResponseWriter, r *http.Request, next bool) {
	eventID := chi.URLParam(r, "event_id")

	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	if sess.Wishlist == nil {
		response.Err(w, r, domain.ErrUnauthenticated("sign in to use the wishlist"))
		return
	}

	if err := sess.Wishlist.Toggle(r.Context(), eventID, next); err != nil {
		metrics.RecordWishlistToggle("error")
		response.Err(w, r, err)
		return
	}
	metrics.RecordWishlistToggle("ok")

	response.Data(w, http.StatusOK, map[string]any{
		"event_id":       eventID,
		"is_on_wishlist": next,
	})
}
