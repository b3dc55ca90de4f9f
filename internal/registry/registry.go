// Package registry holds every connected Client, keyed by handle, with
// insertion-order iteration. It generalizes the teacher's
// Hub.clients map[*Client]bool (pkg/websocket/hub.go) — which is fine
// with an unordered map because it only ever broadcasts — into an
// ordered, handle-addressable collection, since the matcher relies on a
// stable scan order within one tick (spec §4.2).
package registry

import "arenad/internal/client"

// Registry owns Client storage exclusively; every other reference to a
// Client (Opponent, LastOpponent) is a plain pointer the holder must
// treat as possibly stale once the pointed-to Client has been removed —
// the onRemove hook below is the single choke point that keeps those
// pointers consistent, per spec §5.
type Registry struct {
	clients  map[uint64]*client.Client
	order    []uint64
	onRemove func(*client.Client)
}

// New builds an empty Registry. onRemove is invoked for a Client just
// before it is dropped from storage — the forfeit hook (spec §4.5) is
// wired here so the registry is the one place removal and rematch
// bookkeeping happen together.
func New(onRemove func(*client.Client)) *Registry {
	return &Registry{
		clients:  make(map[uint64]*client.Client),
		onRemove: onRemove,
	}
}

// Insert adds a Client, keyed by its Handle.
func (r *Registry) Insert(c *client.Client) {
	r.clients[c.Handle] = c
	r.order = append(r.order, c.Handle)
}

// Remove invokes the disconnect hook and then drops the Client from
// storage. Calling Remove for a handle not present is a no-op.
func (r *Registry) Remove(handle uint64) {
	c, ok := r.clients[handle]
	if !ok {
		return
	}
	if r.onRemove != nil {
		r.onRemove(c)
	}
	delete(r.clients, handle)
	for i, h := range r.order {
		if h == handle {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Find looks up a Client by handle.
func (r *Registry) Find(handle uint64) (*client.Client, bool) {
	c, ok := r.clients[handle]
	return c, ok
}

// ForEach visits every Client in insertion order. fn must not mutate the
// registry itself (insert/remove); it may freely mutate the Client it is
// given.
func (r *Registry) ForEach(fn func(*client.Client)) {
	for _, h := range r.order {
		if c, ok := r.clients[h]; ok {
			fn(c)
		}
	}
}

// Len returns the number of connected clients.
func (r *Registry) Len() int {
	return len(r.clients)
}
