package remote

import (
	"context"
	"net/http"
	"net/url"

	retry "github.com/avast/retry-go/v4"
	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/domain"
)

const listRetryAttempts = 3

// ListParams narrows the event feed. A non-empty bearer widens visibility to
// include the caller's private events.
type ListParams struct {
	Visibility string
	Bearer     string
}

// ListEvents fetches the full event feed. It retries transport-level failures
// a bounded number of times; HTTP-level rejections are returned as-is.
func (c *Client) ListEvents(ctx context.Context, p ListParams) ([]domain.Event, error) {
	path := "/events"
	if p.Visibility != "" {
		q := url.Values{}
		q.Set("visibility", p.Visibility)
		path += "?" + q.Encode()
	}

	events, err := retry.DoWithData(
		func() ([]domain.Event, error) {
			resp, err := c.do(ctx, http.MethodGet, path, p.Bearer, nil)
			if err != nil {
				return nil, err
			}
			var out []domain.Event
			if err := decodeData(resp, &out); err != nil {
				return nil, err
			}
			return out, nil
		},
		retry.Context(ctx),
		retry.Attempts(listRetryAttempts),
		retry.RetryIf(Retryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			zlog.Warn().Err(err).Uint("attempt", n+1).Msg("event feed fetch retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = make([]domain.Event, 0)
	}
	return events, nil
}
