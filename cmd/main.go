package main

import (
	"context"
	"log"
	"net/http"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/logger"
	"github.com/eventdeck/eventdeck/internal/prefs"
	"github.com/eventdeck/eventdeck/internal/remote"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/handlers"
	deckmw "github.com/eventdeck/eventdeck/internal/transport/http/middleware"
	"github.com/eventdeck/eventdeck/internal/transport/http/router"
)

// sysClock implements the Clock interfaces using system time
type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

// publicFeed adapts the remote client to the event cache's read port. The
// cache is shared across sessions so it only ever sees the public feed.
type publicFeed struct {
	rc *remote.Client
}

func (f publicFeed) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return f.rc.ListEvents(ctx, remote.ListParams{Visibility: "public"})
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var store *prefs.Store
	if cfg.RedisURL != "" {
		store, err = prefs.New(cfg.RedisURL)
		if err != nil {
			zlog.Fatal().Err(err).Msg("preference store init failed")
		}
		defer store.Close()
	} else {
		zlog.Warn().Msg("REDIS_URL empty: filter state will not persist across restarts")
	}

	app := NewApp(cfg, store)

	zlog.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal().Err(err).Msg("server crashed")
	}
}

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
}

func NewApp(cfg *config.Config, store *prefs.Store) *App {
	clock := sysClock{}

	// 1) Infrastructure
	rc := remote.New(cfg.APIBaseURL, cfg.RemoteTimeout)

	loc := time.Local
	if cfg.DisplayTimezone != "" {
		l, err := time.LoadLocation(cfg.DisplayTimezone)
		if err != nil {
			zlog.Fatal().Err(err).Str("tz", cfg.DisplayTimezone).Msg("invalid display timezone")
		}
		loc = l
	}

	// 2) Application
	cache := events.NewCache(publicFeed{rc: rc}, clock, cfg.EventsTTL)

	var sessPrefs session.Prefs
	if store != nil {
		sessPrefs = store
	}
	sessions := session.NewRegistry(rc, sessPrefs, clock, cache, cfg.WishlistTTL, cfg.SwipeTTL)

	// 3) Transport
	h := router.Handlers{
		Events:      handlers.NewEventsHandler(cache, sessions, cfg.ExplicitWords, loc),
		Filters:     handlers.NewFiltersHandler(sessions),
		Wishlist:    handlers.NewWishlistHandler(cache, sessions),
		Swipe:       handlers.NewSwipeHandler(cache, sessions),
		Communities: handlers.NewCommunitiesHandler(rc, sessions),
		Health:      handlers.NewHealthHandler(),
	}
	auth := deckmw.NewAuth(cfg.JWTSecret, cfg.JWTIssuer)

	// 4) Router + server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router.New(h, auth, cfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &App{Config: cfg, Server: srv}
}
