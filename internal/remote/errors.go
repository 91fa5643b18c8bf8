package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrTimeout      = errors.New("remote_timeout")
	ErrUnavailable  = errors.New("remote_unavailable")
	ErrNotFound     = errors.New("resource_not_found")
	ErrUnauthorized = errors.New("unauthorized")
)

type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Code != "" {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Error.Code,
			Message:    apiErr.Error.Message,
		}
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Code:       "remote_error",
		Message:    fmt.Sprintf("unexpected status: %d", resp.StatusCode),
	}
}

// Retryable reports whether an error is a transport-level failure worth
// retrying on read paths. Mutations are never retried by this package.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}
