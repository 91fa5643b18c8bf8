package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/metrics"
	"github.com/eventdeck/eventdeck/internal/transport/http/handlers"
	deckmw "github.com/eventdeck/eventdeck/internal/transport/http/middleware"
)

type Handlers struct {
	Events      *handlers.EventsHandler
	Filters     *handlers.FiltersHandler
	Wishlist    *handlers.WishlistHandler
	Swipe       *handlers.SwipeHandler
	Communities *handlers.CommunitiesHandler
	Health      *handlers.HealthHandler
}

func New(h Handlers, auth *deckmw.AuthMiddleware, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(deckmw.RequestID)
	r.Use(deckmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deckmw.AccessLog)
	r.Use(deckmw.Metrics())

	if cfg.RLEnabled {
		r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
	}

	r.Get("/healthz", h.Health.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/deck/v1", func(r chi.Router) {
		// Readable anonymously; an attached identity enriches the view with
		// the wishlist join and lifts the explicit-content guard.
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Get("/events", h.Events.Feed)
			r.Post("/events/refresh", h.Events.Refresh)
			r.Get("/sections", h.Events.Sections)
			r.Get("/communities", h.Communities.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)
			r.Get("/filters", h.Filters.Get)
			r.Put("/filters", h.Filters.Patch)
			r.Get("/wishlist", h.Wishlist.List)
			r.Post("/wishlist/{event_id}", h.Wishlist.Add)
			r.Delete("/wishlist/{event_id}", h.Wishlist.Remove)
			r.Get("/swipe/cards", h.Swipe.Cards)
			r.Post("/swipe/choices", h.Swipe.RecordChoice)
			r.Put("/communities/selected", h.Communities.Select)
		})
	})

	return r
}
