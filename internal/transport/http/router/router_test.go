package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck/internal/application/events"
	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/remote"
	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/handlers"
	deckmw "github.com/eventdeck/eventdeck/internal/transport/http/middleware"
)

const (
	testSecret = "router-test-secret"
	testIssuer = "eventdeck"
)

// fakeBackend is an in-memory stand-in for the event platform API.
type fakeBackend struct {
	mu       sync.Mutex
	events   []map[string]any
	wishlist map[string]struct{}
	swipes   []map[string]any
}

func backendEvent(id, name, orgID, orgName, start string) map[string]any {
	e := map[string]any{
		"id":         id,
		"name":       name,
		"start_date": start,
		"end_date":   start,
	}
	if orgID != "" {
		e["organizer"] = map[string]any{"id": orgID, "name": orgName}
	}
	return e
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"data": b.events})
	})
	mux.HandleFunc("GET /wishlist", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		ids := make([]string, 0, len(b.wishlist))
		for id := range b.wishlist {
			ids = append(ids, id)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": ids})
	})
	mux.HandleFunc("GET /wishlist/swipe-choices", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"chosen_wishlist": []string{},
			"chosen_skip":     []string{},
		}})
	})
	mux.HandleFunc("POST /wishlist/swipe-choices", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.swipes = append(b.swipes, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.wishlist[r.PathValue("id")] = struct{}{}
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delete(b.wishlist, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /communities", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"id": "com-1", "name": "Rope"},
		}})
	})
	return mux
}

type testPrefs struct {
	mu    sync.Mutex
	store map[string]json.RawMessage
}

func (p *testPrefs) Get(ctx context.Context, key string, dest any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	raw, ok := p.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (p *testPrefs) Set(ctx context.Context, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.store[key] = raw
	p.mu.Unlock()
	return nil
}

func (p *testPrefs) Remove(ctx context.Context, key string) error {
	p.mu.Lock()
	delete(p.store, key)
	p.mu.Unlock()
	return nil
}

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

func newTestStack(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()

	backend := &fakeBackend{
		events: []map[string]any{
			backendEvent("e1", "Rope Basics", "a", "Alpha", "2024-05-01T18:00:00Z"),
			backendEvent("e2", "XXX After Dark", "b", "Beta", "2024-05-01T22:00:00Z"),
			backendEvent("e3", "Alpha Social", "a", "Alpha", "2024-05-02T18:00:00Z"),
		},
		wishlist: map[string]struct{}{},
	}
	backendSrv := httptest.NewServer(backend.handler())
	t.Cleanup(backendSrv.Close)

	rc := remote.New(backendSrv.URL, time.Second)
	cache := events.NewCache(rc2feed{rc}, sysClock{}, time.Hour)
	sessions := session.NewRegistry(rc, &testPrefs{store: map[string]json.RawMessage{}}, sysClock{}, cache, time.Hour, time.Hour)

	cfg := &config.Config{RLEnabled: false}
	h := Handlers{
		Events:      handlers.NewEventsHandler(cache, sessions, []string{"xxx"}, time.UTC),
		Filters:     handlers.NewFiltersHandler(sessions),
		Wishlist:    handlers.NewWishlistHandler(cache, sessions),
		Swipe:       handlers.NewSwipeHandler(cache, sessions),
		Communities: handlers.NewCommunitiesHandler(rc, sessions),
		Health:      handlers.NewHealthHandler(),
	}
	auth := deckmw.NewAuth(testSecret, testIssuer)

	srv := httptest.NewServer(New(h, auth, cfg))
	t.Cleanup(srv.Close)
	return srv, backend
}

type rc2feed struct{ rc *remote.Client }

func (f rc2feed) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return f.rc.ListEvents(ctx, remote.ListParams{Visibility: "public"})
}

func signToken(t *testing.T, uid string) string {
	t.Helper()
	claims := deckmw.Claims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doReq(t *testing.T, method, url, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "missing data envelope: %v", body)
	return data
}

func TestRouter_Health(t *testing.T) {
	srv, _ := newTestStack(t)
	resp, body := doReq(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", dataOf(t, body)["status"])
}

func TestRouter_FeedAnonymousHidesExplicit(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/events", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	evs := dataOf(t, body)["events"].([]any)
	assert.Len(t, evs, 2)
	for _, e := range evs {
		assert.NotContains(t, e.(map[string]any)["name"], "XXX")
	}

	// Organizer registry is derived from the full list: Alpha twice, Beta once.
	orgs := dataOf(t, body)["organizers"].([]any)
	require.Len(t, orgs, 2)
	first := orgs[0].(map[string]any)
	assert.Equal(t, "a", first["id"])
	assert.Equal(t, "Alpha (2)", first["display_name"])
}

func TestRouter_FeedAuthenticatedSeesEverything(t *testing.T) {
	srv, _ := newTestStack(t)
	tok := signToken(t, "u1")

	resp, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/events", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, dataOf(t, body)["events"].([]any), 3)
}

func TestRouter_AuthGroupRejectsAnonymous(t *testing.T) {
	srv, _ := newTestStack(t)

	for _, ep := range []struct{ method, path string }{
		{http.MethodGet, "/deck/v1/filters"},
		{http.MethodGet, "/deck/v1/wishlist"},
		{http.MethodPost, "/deck/v1/wishlist/e1"},
		{http.MethodGet, "/deck/v1/swipe/cards"},
	} {
		resp, _ := doReq(t, ep.method, srv.URL+ep.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", ep.method, ep.path)
	}
}

func TestRouter_WishlistToggleRoundTrip(t *testing.T) {
	srv, backend := newTestStack(t)
	tok := signToken(t, "u1")

	resp, body := doReq(t, http.MethodPost, srv.URL+"/deck/v1/wishlist/e1", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, dataOf(t, body)["is_on_wishlist"])

	backend.mu.Lock()
	_, onServer := backend.wishlist["e1"]
	backend.mu.Unlock()
	assert.True(t, onServer)

	// The feed join reflects the membership.
	_, feedBody := doReq(t, http.MethodGet, srv.URL+"/deck/v1/events", tok, "")
	for _, e := range dataOf(t, feedBody)["events"].([]any) {
		ev := e.(map[string]any)
		if ev["id"] == "e1" {
			assert.Equal(t, true, ev["is_on_wishlist"])
		}
	}

	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/deck/v1/wishlist/e1", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	backend.mu.Lock()
	_, onServer = backend.wishlist["e1"]
	backend.mu.Unlock()
	assert.False(t, onServer)
}

func TestRouter_FiltersRoundTripAndSections(t *testing.T) {
	srv, _ := newTestStack(t)
	tok := signToken(t, "u1")

	resp, _ := doReq(t, http.MethodPut, srv.URL+"/deck/v1/filters", tok, `{"organizers":["a"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/filters", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"a"}, dataOf(t, body)["organizers"])

	// Sections only contain Alpha's events, bucketed by date.
	resp, body = doReq(t, http.MethodGet, srv.URL+"/deck/v1/sections", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sections := dataOf(t, body)["sections"].([]any)
	require.Len(t, sections, 2)
	first := sections[0].(map[string]any)
	assert.Equal(t, "2024-05-01", first["date"])
	assert.Equal(t, "May 1, 2024 (Wednesday)", first["title"])
	assert.Len(t, first["data"].([]any), 1)

	marked := dataOf(t, body)["marked_dates"].(map[string]any)
	assert.Contains(t, marked, "2024-05-01")
	assert.Contains(t, marked, "2024-05-02")
}

func TestRouter_SwipeFlow(t *testing.T) {
	srv, backend := newTestStack(t)
	tok := signToken(t, "u1")

	resp, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/swipe/cards", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, dataOf(t, body)["cards"].([]any), 3)

	resp, _ = doReq(t, http.MethodPost, srv.URL+"/deck/v1/swipe/choices", tok,
		`{"event_id":"e1","choice":"skip"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	backend.mu.Lock()
	require.Len(t, backend.swipes, 1)
	assert.Equal(t, "main", backend.swipes[0]["list"])
	backend.mu.Unlock()

	// The skipped card leaves the deck.
	_, body = doReq(t, http.MethodGet, srv.URL+"/deck/v1/swipe/cards", tok, "")
	assert.Len(t, dataOf(t, body)["cards"].([]any), 2)

	// Invalid choices are rejected before anything is recorded.
	resp, _ = doReq(t, http.MethodPost, srv.URL+"/deck/v1/swipe/choices", tok,
		`{"event_id":"e2","choice":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Communities(t *testing.T) {
	srv, _ := newTestStack(t)
	tok := signToken(t, "u1")

	resp, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/communities", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, dataOf(t, body)["communities"].([]any), 1)

	resp, _ = doReq(t, http.MethodPut, srv.URL+"/deck/v1/communities/selected", tok, `{"community_id":"com-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = doReq(t, http.MethodGet, srv.URL+"/deck/v1/communities", tok, "")
	assert.Equal(t, "com-1", dataOf(t, body)["selected"])
}

func TestRouter_RefreshForcesRefetch(t *testing.T) {
	srv, backend := newTestStack(t)

	_, body := doReq(t, http.MethodGet, srv.URL+"/deck/v1/events", "", "")
	require.Len(t, dataOf(t, body)["events"].([]any), 2)

	backend.mu.Lock()
	backend.events = append(backend.events,
		backendEvent("e4", "New Workshop", "a", "Alpha", "2024-05-03T18:00:00Z"))
	backend.mu.Unlock()

	resp, body := doReq(t, http.MethodPost, srv.URL+"/deck/v1/events/refresh", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, dataOf(t, body)["events"].([]any), 3)
}

func TestRouter_SecurityHeadersAndRequestID(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestRouter_MetricsExposed(t *testing.T) {
	srv, _ := newTestStack(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
