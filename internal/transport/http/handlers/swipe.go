package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/metrics"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
	"github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/response"
)

type SwipeHandler struct {
	cache    *events.Cache
	sessions *session.Registry
}

func NewSwipeHandler(cache *events.Cache, sessions *session.Registry) *SwipeHandler {
	return &SwipeHandler{cache: cache, sessions: sessions}
}

// Cards returns the events the user has not yet decided on, soonest first.
func (h *SwipeHandler) Cards(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	if sess.Swipe == nil {
		response.Err(w, r, domain.ErrUnauthenticated("sign in to swipe"))
		return
	}

	view := h.cache.View(r.Context())
	cards := sess.Swipe.AvailableCards(r.Context(), view.Events)

	response.Data(w, http.StatusOK, map[string]any{
		"cards": dto.ToEventResps(cards, sess.Wishlist),
	})
}

// RecordChoice appends one like/skip decision. The local decision sticks
// even when the backend write fails; the handler still reports that failure.
func (h *SwipeHandler) RecordChoice(w http.ResponseWriter, r *http.Request) {
	var req dto.SwipeChoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, r, domain.ErrValidation("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid swipe choice", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	if sess.Swipe == nil {
		response.Err(w, r, domain.ErrUnauthenticated("sign in to swipe"))
		return
	}

	if err := sess.Swipe.RecordChoice(r.Context(), req.EventID, req.Choice); err != nil {
		response.Err(w, r, err)
		return
	}
	metrics.RecordSwipeChoice(req.Choice)

	response.Data(w, http.StatusCreated, map[string]any{
		"event_id": req.EventID,
		"choice":   req.Choice,
	})
}
