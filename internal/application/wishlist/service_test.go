package wishlist

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck/internal/domain"
	"github.com/eventdeck/eventdeck/internal/remote"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeRemote struct {
	server map[string]struct{}

	getErr    error
	addErr    error
	removeErr error

	getN, addN, removeN int

	// addGate, when set, blocks AddToWishlist until released. Lets tests
	// observe the optimistic state while the call is in flight.
	addGate chan struct{}

	lastBearer string
}

func newFakeRemote(ids ...string) *fakeRemote {
	r := &fakeRemote{server: map[string]struct{}{}}
	for _, id := range ids {
		r.server[id] = struct{}{}
	}
	return r
}

func (r *fakeRemote) GetWishlist(ctx context.Context, bearer string) ([]string, error) {
	r.getN++
	r.lastBearer = bearer
	if r.getErr != nil {
		return nil, r.getErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(r.server))
	for id := range r.server {
		out = append(out, id)
	}
	return out, nil
}

func (r *fakeRemote) AddToWishlist(ctx context.Context, bearer, eventID string) error {
	r.addN++
	r.lastBearer = bearer
	if r.addGate != nil {
		<-r.addGate
	}
	if r.addErr != nil {
		return r.addErr
	}
	r.server[eventID] = struct{}{}
	return nil
}

func (r *fakeRemote) RemoveFromWishlist(ctx context.Context, bearer, eventID string) error {
	r.removeN++
	if r.removeErr != nil {
		return r.removeErr
	}
	delete(r.server, eventID)
	return nil
}

func newService(rc Remote) *Service {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	return New(rc, clock, "u1", "tok", 5*time.Minute)
}

func TestToggle_RoundTrip(t *testing.T) {
	rc := newFakeRemote()
	s := newService(rc)

	require.NoError(t, s.Toggle(context.Background(), "e1", true))
	assert.True(t, s.IsOnWishlist("e1"))

	require.NoError(t, s.Toggle(context.Background(), "e1", false))
	assert.False(t, s.IsOnWishlist("e1"))

	assert.Equal(t, 1, rc.addN)
	assert.Equal(t, 1, rc.removeN)
	_, onServer := rc.server["e1"]
	assert.False(t, onServer)
}

func TestToggle_OptimisticBeforeCallResolves(t *testing.T) {
	rc := newFakeRemote()
	rc.addGate = make(chan struct{})
	s := newService(rc)

	done := make(chan error, 1)
	go func() { done <- s.Toggle(context.Background(), "e1", true) }()

	// The membership flips before the remote call returns.
	assert.Eventually(t, func() bool {
		return s.IsOnWishlist("e1")
	}, time.Second, time.Millisecond)

	close(rc.addGate)
	require.NoError(t, <-done)
	assert.True(t, s.IsOnWishlist("e1"))
}

func TestToggle_OverlappedTogglesSettleOnLast(t *testing.T) {
	rc := newFakeRemote()
	rc.addGate = make(chan struct{})
	s := newService(rc)

	done := make(chan error, 1)
	go func() { done <- s.Toggle(context.Background(), "e1", true) }()

	require.Eventually(t, func() bool {
		return s.IsOnWishlist("e1")
	}, time.Second, time.Millisecond)

	// The user changes their mind while the add is still in flight.
	require.NoError(t, s.Toggle(context.Background(), "e1", false))

	close(rc.addGate)
	require.NoError(t, <-done)

	// The later toggle wins; the add settling does not resurrect membership.
	assert.False(t, s.IsOnWishlist("e1"))
	assert.Equal(t, 1, rc.addN)
	assert.Equal(t, 1, rc.removeN)
}

func TestToggle_RollbackOnFailure(t *testing.T) {
	rc := newFakeRemote("kept")
	s := newService(rc)

	// Load server truth first.
	ids := s.EventIDs(context.Background())
	require.Equal(t, []string{"kept"}, ids)

	rc.addErr = remote.ErrUnavailable
	err := s.Toggle(context.Background(), "e1", true)

	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.CodeNetworkFailure, appErr.Code)

	// The pre-mutation membership is restored exactly.
	assert.False(t, s.IsOnWishlist("e1"))
	assert.True(t, s.IsOnWishlist("kept"))
}

func TestToggle_NoOpWhenAlreadyInState(t *testing.T) {
	rc := newFakeRemote()
	s := newService(rc)

	require.NoError(t, s.Toggle(context.Background(), "e1", true))
	require.NoError(t, s.Toggle(context.Background(), "e1", true))

	// The second toggle sends nothing.
	assert.Equal(t, 1, rc.addN)
}

func TestToggle_Validation(t *testing.T) {
	rc := newFakeRemote()

	t.Run("unauthenticated", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		anon := New(rc, clock, "", "", 0)
		err := anon.Toggle(context.Background(), "e1", true)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeUnauthenticated, appErr.Code)
	})

	t.Run("missing_event_id", func(t *testing.T) {
		s := newService(rc)
		err := s.Toggle(context.Background(), "", true)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeValidation, appErr.Code)
	})
}

func TestToggle_ErrorMapping(t *testing.T) {
	t.Run("unauthorized_maps_to_unauthenticated", func(t *testing.T) {
		rc := newFakeRemote()
		rc.addErr = remote.ErrUnauthorized
		s := newService(rc)

		err := s.Toggle(context.Background(), "e1", true)
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeUnauthenticated, appErr.Code)
	})

	t.Run("rejection_maps_to_remote_rejected", func(t *testing.T) {
		rc := newFakeRemote()
		rc.addErr = errors.New("409 conflict")
		s := newService(rc)

		err := s.Toggle(context.Background(), "e1", true)
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.CodeRemoteRejected, appErr.Code)
	})
}

func TestEventIDs_RefreshLifecycle(t *testing.T) {
	rc := newFakeRemote("a", "b")
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	s := New(rc, clock, "u1", "tok", 5*time.Minute)

	ids := s.EventIDs(context.Background())
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, 1, rc.getN)

	// Within the lease, no refetch.
	s.EventIDs(context.Background())
	assert.Equal(t, 1, rc.getN)

	// Past the lease, refetch.
	clock.advance(6 * time.Minute)
	s.EventIDs(context.Background())
	assert.Equal(t, 2, rc.getN)
}

func TestEventIDs_SuccessfulToggleMarksStale(t *testing.T) {
	rc := newFakeRemote("a")
	s := newService(rc)

	s.EventIDs(context.Background())
	require.Equal(t, 1, rc.getN)

	require.NoError(t, s.Toggle(context.Background(), "b", true))

	// The next read reconciles against the server.
	ids := s.EventIDs(context.Background())
	assert.Equal(t, 2, rc.getN)
	sort.Strings(ids)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestEventIDs_FailedRefreshKeepsProjection(t *testing.T) {
	rc := newFakeRemote("a")
	clock := &fakeClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	s := New(rc, clock, "u1", "tok", 5*time.Minute)

	s.EventIDs(context.Background())
	rc.getErr = remote.ErrTimeout
	clock.advance(6 * time.Minute)

	ids := s.EventIDs(context.Background())
	assert.Equal(t, []string{"a"}, ids)
	assert.True(t, s.IsOnWishlist("a"))
}

func TestEventIDs_AnonymousNeverFetches(t *testing.T) {
	rc := newFakeRemote("a")
	clock := &fakeClock{t: time.Now()}
	anon := New(rc, clock, "", "", 0)

	assert.Empty(t, anon.EventIDs(context.Background()))
	assert.Zero(t, rc.getN)
}

func TestEvents_ProjectsMembershipInOrder(t *testing.T) {
	rc := newFakeRemote("e1", "e3")
	s := newService(rc)

	list := []domain.EventWithMetadata{
		{Event: domain.Event{ID: "e1"}},
		{Event: domain.Event{ID: "e2"}},
		{Event: domain.Event{ID: "e3"}},
	}
	got := s.Events(context.Background(), list)

	require.Len(t, got, 2)
	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "e3", got[1].ID)
}

func TestSetBearer_ForwardedToRemote(t *testing.T) {
	rc := newFakeRemote()
	s := newService(rc)

	s.SetBearer("tok2")
	require.NoError(t, s.Toggle(context.Background(), "e1", true))
	assert.Equal(t, "tok2", rc.lastBearer)
}
