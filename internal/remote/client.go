package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	appCtx "github.com/eventdeck/eventdeck/internal/pkg/context"
)

// Client talks to the event backend. It is the only component issuing network
// I/O for events, wishlist membership, swipe choices and communities; every
// read model above it is a projection of what this client returns.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if reqID := appCtx.RequestID(ctx); reqID != "" {
		req.Header.Set("X-Request-Id", reqID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnavailable
	}
	return resp, nil
}

// decodeData reads a {"data": ...} envelope into dest and closes the body.
func decodeData[T any](resp *http.Response, dest *T) error {
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return decodeError(resp)
	}

	var wrapper dataEnvelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return err
	}
	*dest = wrapper.Data
	return nil
}

// drain discards the body of a response whose payload we do not need.
func drain(resp *http.Response) error {
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return decodeError(resp)
	}
}
