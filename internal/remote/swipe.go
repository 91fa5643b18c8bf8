package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/domain"
)

// SwipeChoices is the read model of a user's past swipe decisions: the two id
// sets used to exclude already-decided cards from the deck.
type SwipeChoices struct {
	ChosenWishlist []string `json:"chosen_wishlist"`
	ChosenSkip     []string `json:"chosen_skip"`
}

func (c *Client) GetSwipeChoices(ctx context.Context, bearer string) (SwipeChoices, error) {
	resp, err := c.do(ctx, http.MethodGet, "/wishlist/swipe-choices", bearer, nil)
	if err != nil {
		return SwipeChoices{}, err
	}
	var out SwipeChoices
	if err := decodeData(resp, &out); err != nil {
		return SwipeChoices{}, err
	}
	if out.ChosenWishlist == nil {
		out.ChosenWishlist = make([]string, 0)
	}
	if out.ChosenSkip == nil {
		out.ChosenSkip = make([]string, 0)
	}
	return out, nil
}

// RecordSwipeChoice appends one like/skip decision. Append-only on the
// backend; never retried here.
func (c *Client) RecordSwipeChoice(ctx context.Context, bearer string, choice domain.SwipeChoice) error {
	if choice.List == "" {
		choice.List = domain.DefaultSwipeList
	}
	body, err := json.Marshal(choice)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, "/wishlist/swipe-choices", bearer, bytes.NewReader(body))
	if err != nil {
		return err
	}
	return drain(resp)
}
