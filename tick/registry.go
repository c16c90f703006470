package tick

import (
	"sort"

	"github.com/lcx/dice/net"
	"github.com/lcx/dice/packet"
)

// Registry holds the adopted sessions keyed by id. It is owned by the tick
// goroutine and has no locks.
type Registry struct {
	entries map[net.SessionID]*Context
	order   []net.SessionID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[net.SessionID]*Context)}
}

func (r *Registry) add(p Peer) *Context {
	id := p.ID()
	if c, ok := r.entries[id]; ok {
		return c
	}
	c := newContext(p, r)
	r.entries[id] = c
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= id })
	r.order = append(r.order, 0)
	copy(r.order[i+1:], r.order[i:])
	r.order[i] = id
	return c
}

func (r *Registry) remove(id net.SessionID) {
	if _, ok := r.entries[id]; !ok {
		return
	}
	delete(r.entries, id)
	i := sort.Search(len(r.order), func(i int) bool { return r.order[i] >= id })
	r.order = append(r.order[:i], r.order[i+1:]...)
}

// Get returns the context of session id.
func (r *Registry) Get(id net.SessionID) (*Context, bool) {
	c, ok := r.entries[id]
	return c, ok
}

// Len reports how many sessions are adopted.
func (r *Registry) Len() int { return len(r.order) }

// Each calls fn for every session in ascending id order.
func (r *Registry) Each(fn func(*Context)) {
	for _, id := range r.snapshot() {
		if c, ok := r.entries[id]; ok {
			fn(c)
		}
	}
}

// Broadcast sends p to every session and returns how many accepted it.
func (r *Registry) Broadcast(p packet.Packet) int {
	return r.BroadcastExcept(p, 0)
}

// BroadcastExcept sends p to every session but skip. Session id 0 is never used.
func (r *Registry) BroadcastExcept(p packet.Packet, skip net.SessionID) int {
	sent := 0
	r.Each(func(c *Context) {
		if c.ID() == skip {
			return
		}
		if c.Send(p) == nil {
			sent++
		}
	})
	return sent
}

// snapshot copies the id order so fn may kick sessions while iterating.
func (r *Registry) snapshot() []net.SessionID {
	return append([]net.SessionID(nil), r.order...)
}
