package tick

import (
	stdnet "net"

	"github.com/lcx/dice/net"
	"github.com/lcx/dice/packet"
)

// Peer is the part of a session the tick loop may use. None of these calls block.
type Peer interface {
	ID() net.SessionID
	TryRecv() (packet.Packet, bool)
	// Pending reports how many inbound packets are queued.
	Pending() int
	Send(p packet.Packet) error
	Done() <-chan struct{}
	Err() error
	Close()
	CloseGracefully()
	RemoteAddr() stdnet.Addr
}

var _ Peer = (*net.Session)(nil)

// Source yields sessions that have not been adopted yet.
type Source interface {
	TryRecv() (Peer, bool)
}

// HandoffSource adapts the acceptor's handoff to Source.
type HandoffSource struct {
	Handoff *net.Handoff[*net.Session]
}

func (h HandoffSource) TryRecv() (Peer, bool) {
	s, ok := h.Handoff.TryRecv()
	if !ok {
		return nil, false
	}
	return s, true
}
