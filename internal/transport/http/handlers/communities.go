package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/remote"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
	"github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/response"
)

type CommunitiesHandler struct {
	rc       *remote.Client
	sessions *session.Registry
}

func NewCommunitiesHandler(rc *remote.Client, sessions *session.Registry) *CommunitiesHandler {
	return &CommunitiesHandler{rc: rc, sessions: sessions}
}

// List returns the available communities along with the user's persisted
// selection.
func (h *CommunitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))

	list, err := h.rc.ListCommunities(r.Context())
	if err != nil {
		response.Err(w, r, domain.ErrNetworkFailure("community list unavailable", err))
		return
	}

	response.Data(w, http.StatusOK, dto.CommunitiesResp{
		Communities: dto.ToCommunityResps(list),
		Selected:    sess.Community(r.Context()),
	})
}

// Select persists the chosen community id as the default filter. Empty
// clears the selection.
func (h *CommunitiesHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req dto.SelectCommunityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, r, domain.ErrValidation("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		response.Err(w, r, domain.ErrValidationMeta("invalid community selection", map[string]string{
			"body": err.Error(),
		}))
		return
	}

	sess := h.sessions.Session(r.Context(), middleware.UserID(r), middleware.Bearer(r))
	sess.SetCommunity(r.Context(), req.CommunityID)

	response.Data(w, http.StatusOK, map[string]string{"selected": req.CommunityID})
}
