package handlers

import (
	"context"

	"github.com/eventdeck/eventdeck/internal/session"
	"github.com/eventdeck/eventdeck/internal/transport/http/dto"
)

// membership resolves the wishlist join source for a session. Anonymous
// sessions have no wishlist service and render every event as
// not-on-wishlist. The EventIDs call warms the membership cache so a feed
// fetched right after login already carries the join.
func membership(ctx context.Context, sess *session.Session) dto.Membership {
	if sess.Wishlist == nil {
		return nil
	}
	sess.Wishlist.EventIDs(ctx)
	return sess.Wishlist
}
