package remote

import (
	"context"
	"net/http"

	"github.com/eventdeck/eventdeck/internal/domain"
)

func (c *Client) ListCommunities(ctx context.Context) ([]domain.Community, error) {
	resp, err := c.do(ctx, http.MethodGet, "/communities", "", nil)
	if err != nil {
		return nil, err
	}
	var out []domain.Community
	if err := decodeData(resp, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make([]domain.Community, 0)
	}
	return out, nil
}
