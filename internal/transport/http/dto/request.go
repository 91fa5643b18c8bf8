package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// FiltersPatchReq is a partial filter update; absent fields keep their
// current value.
type FiltersPatchReq struct {
	Organizers *[]string `json:"organizers,omitempty" validate:"omitempty,dive,required"`
	Search     *string   `json:"search,omitempty" validate:"omitempty,max=200"`
}

func (r *FiltersPatchReq) Validate() error { return validate.Struct(r) }

type SwipeChoiceReq struct {
	EventID string `json:"event_id" validate:"required"`
	Choice  string `json:"choice" validate:"required,oneof=wishlist skip"`
	List    string `json:"list" validate:"omitempty,max=100"`
}

func (r *SwipeChoiceReq) Validate() error { return validate.Struct(r) }

type SelectCommunityReq struct {
	CommunityID string `json:"community_id" validate:"omitempty,max=100"`
}

func (r *SelectCommunityReq) Validate() error { return validate.Struct(r) }
