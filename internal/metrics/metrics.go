package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	// Business logic metrics
	wishlistTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_toggles_total",
			Help: "Total number of wishlist toggle attempts",
		},
		[]string{"outcome"},
	)

	swipeChoicesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipe_choices_total",
			Help: "Total number of recorded swipe choices",
		},
		[]string{"choice"},
	)

	eventFeedRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_feed_refreshes_total",
			Help: "Total number of forced event feed refreshes",
		},
	)
)

func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	s := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, endpoint, s).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, s).Observe(duration.Seconds())
}

func RecordWishlistToggle(outcome string) {
	wishlistTogglesTotal.WithLabelValues(outcome).Inc()
}

func RecordSwipeChoice(choice string) {
	swipeChoicesTotal.WithLabelValues(choice).Inc()
}

func RecordFeedRefresh() {
	eventFeedRefreshesTotal.Inc()
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
