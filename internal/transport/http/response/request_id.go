package response

import "net/http"

// RequestIDFromRequest extracts the request id echoed by the request-id
// middleware.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := r.Header.Get("X-Request-Id"); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}
