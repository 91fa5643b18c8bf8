package remote

import (
	"context"
	"net/http"
	"net/url"
)

// GetWishlist returns the current user's wishlist as a list of event ids.
func (c *Client) GetWishlist(ctx context.Context, bearer string) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/wishlist", bearer, nil)
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := decodeData(resp, &ids); err != nil {
		return nil, err
	}
	if ids == nil {
		ids = make([]string, 0)
	}
	return ids, nil
}

func (c *Client) AddToWishlist(ctx context.Context, bearer, eventID string) error {
	resp, err := c.do(ctx, http.MethodPost, "/wishlist/"+url.PathEscape(eventID), bearer, nil)
	if err != nil {
		return err
	}
	return drain(resp)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, bearer, eventID string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/wishlist/"+url.PathEscape(eventID), bearer, nil)
	if err != nil {
		return err
	}
	return drain(resp)
}
