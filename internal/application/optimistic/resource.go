// Package optimistic provides a small reusable cache-with-rollback primitive
// for remote resources mutated ahead of server confirmation. The wishlist
// membership set and the swipe choice lists are both projections of this
// shape: apply the expected effect locally first, reconcile when the remote
// call settles.
package optimistic

import (
	"context"
	"sync"
)

// Resource is a singly-owned cached value. All mutations go through its API;
// the mutex is never held across network I/O.
type Resource[T any] struct {
	clone func(T) T

	mu    sync.Mutex
	value T
	valid bool
}

// New creates a Resource. clone must produce an independent copy; it is used
// for snapshots and for reads so callers never alias internal state.
func New[T any](clone func(T) T) *Resource[T] {
	return &Resource[T]{clone: clone}
}

// Peek returns a copy of the current value and whether it has been loaded.
func (r *Resource[T]) Peek() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clone(r.value), r.valid
}

// View runs read under the lock against the live value. read must not retain
// the value or block.
func (r *Resource[T]) View(read func(T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	read(r.value)
}

// Replace installs server truth wholesale.
func (r *Resource[T]) Replace(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = v
	r.valid = true
}

// Invalidate drops the cached value. The next Peek reports unloaded.
func (r *Resource[T]) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.value = zero
	r.valid = false
}

// Mutate applies the expected effect synchronously, then issues call. On
// failure the pre-mutation snapshot is restored wholesale (full replace, not
// merge) before the error is returned. On success the optimistic value is
// kept; reconciliation with server truth is the caller's concern.
func (r *Resource[T]) Mutate(ctx context.Context, apply func(T) T, call func(context.Context) error) error {
	r.mu.Lock()
	snapshot := r.clone(r.value)
	wasValid := r.valid
	r.value = apply(r.clone(r.value))
	r.valid = true
	r.mu.Unlock()

	if err := call(ctx); err != nil {
		r.mu.Lock()
		r.value = snapshot
		r.valid = wasValid
		r.mu.Unlock()
		return err
	}
	return nil
}

// Update applies an effect with no rollback path, for best-effort writes
// whose local projection should stand even if the remote call fails.
func (r *Resource[T]) Update(apply func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = apply(r.clone(r.value))
	r.valid = true
}
