package tick

import (
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/net"
	"github.com/lcx/dice/packet"
)

// Context is the handler's handle on one adopted session. It is only valid
// on the tick goroutine.
type Context struct {
	log.Logger
	peer     Peer
	registry *Registry
	value    any
}

func newContext(peer Peer, registry *Registry) *Context {
	remote := ""
	if addr := peer.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return &Context{
		Logger:   log.NewSessionLogger(nil, uint64(peer.ID()), remote),
		peer:     peer,
		registry: registry,
	}
}

// ID returns the session id.
func (c *Context) ID() net.SessionID { return c.peer.ID() }

// Peer returns the session.
func (c *Context) Peer() Peer { return c.peer }

// Registry returns every adopted session.
func (c *Context) Registry() *Registry { return c.registry }

// Value returns what the handler stored with SetValue.
func (c *Context) Value() any { return c.value }

// SetValue attaches handler state to the session.
func (c *Context) SetValue(v any) { c.value = v }

// Send queues p for the session and logs a failure.
func (c *Context) Send(p packet.Packet) error {
	err := c.peer.Send(p)
	if err != nil {
		c.Debug().Err(err).Str("packet", packet.Name(p)).Msg("send failed")
	}
	return err
}

// Kick sends p, if not nil, and closes the session once it is flushed.
func (c *Context) Kick(p packet.Packet) {
	if p != nil {
		_ = c.Send(p)
	}
	c.peer.CloseGracefully()
}
