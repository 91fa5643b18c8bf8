package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/application/filters"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
	"github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/response"
)

type FiltersHandler struct {
	sessions *session.Registry
}

func NewFiltersHandler(sessions *session.Registry) *FiltersHandler {
	return &FiltersHandler{sessions: sessions}
}

func (h *FiltersHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	response.Data(w, http.StatusOK, sess.Filters.Filters())
}

// Patch merges the submitted fields into the stored filter state and returns
// the result.
func (h *FiltersHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req dto.FiltersPatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, r, domain.ErrValidation("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid filter patch", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	next := sess.Filters.SetFilters(r.Context(), filters.Patch{
		Organizers: req.Organizers,
		Search:     req.Search,
	})
	response.Data(w, http.StatusOK, next)
}
