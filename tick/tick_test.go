package tick

import (
	"context"
	"errors"
	"io"
	stdnet "net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/lcx/dice/net"
	"github.com/lcx/dice/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	id       net.SessionID
	mu       sync.Mutex
	in       []packet.Packet
	sent     []packet.Packet
	done     chan struct{}
	err      error
	graceful bool
	closed   bool
}

func newFakePeer(id net.SessionID) *fakePeer {
	return &fakePeer{id: id, done: make(chan struct{})}
}

func (p *fakePeer) push(ps ...packet.Packet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.in = append(p.in, ps...)
}

func (p *fakePeer) hangup(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

func (p *fakePeer) ID() net.SessionID { return p.id }

func (p *fakePeer) TryRecv() (packet.Packet, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.in) == 0 {
		return nil, false
	}
	v := p.in[0]
	p.in = p.in[1:]
	return v, true
}

func (p *fakePeer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.in)
}

func (p *fakePeer) Send(pk packet.Packet) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.graceful {
		return net.ErrSessionClosed
	}
	p.sent = append(p.sent, pk)
	return nil
}

func (p *fakePeer) Done() <-chan struct{} { return p.done }

func (p *fakePeer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakePeer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePeer) CloseGracefully() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.graceful = true
}

func (p *fakePeer) RemoteAddr() stdnet.Addr {
	return &stdnet.TCPAddr{IP: stdnet.IPv4(127, 0, 0, 1), Port: 40000 + int(p.id)}
}

func (p *fakePeer) sentPackets() []packet.Packet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]packet.Packet(nil), p.sent...)
}

type fakeSource struct {
	mu    sync.Mutex
	peers []Peer
}

func (s *fakeSource) add(p Peer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers = append(s.peers, p)
}

func (s *fakeSource) TryRecv() (Peer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.peers) == 0 {
		return nil, false
	}
	p := s.peers[0]
	s.peers = s.peers[1:]
	return p, true
}

type event struct {
	kind string
	id   net.SessionID
	p    packet.Packet
	err  error
}

type recordingHandler struct {
	mu     sync.Mutex
	events []event
	ticks  []uint64
	onJoin func(*Context)
}

func (h *recordingHandler) OnJoin(ctx *Context) {
	h.mu.Lock()
	h.events = append(h.events, event{kind: "join", id: ctx.ID()})
	h.mu.Unlock()
	if h.onJoin != nil {
		h.onJoin(ctx)
	}
}

func (h *recordingHandler) OnPacket(ctx *Context, p packet.Packet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event{kind: "packet", id: ctx.ID(), p: p})
}

func (h *recordingHandler) OnLeave(ctx *Context, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, stillThere := ctx.Registry().Get(ctx.ID())
	if stillThere {
		panic("OnLeave before removal")
	}
	h.events = append(h.events, event{kind: "leave", id: ctx.ID(), err: err})
}

func (h *recordingHandler) OnTick(t *Tick) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks = append(h.ticks, t.Number)
}

func (h *recordingHandler) tickCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ticks)
}

func chat(s string) packet.Packet { return &packet.Chat{Message: packet.MustWireString(s)} }

func TestLoop_StepOrder(t *testing.T) {
	src := &fakeSource{}
	h := &recordingHandler{}
	l := NewLoop(&Cfg{TickRate: 20}, src, h)

	a, b := newFakePeer(2), newFakePeer(1)
	a.push(chat("a1"), chat("a2"))
	b.push(chat("b1"))
	src.add(a)
	src.add(b)

	l.Step()

	assert.Equal(t, []event{
		{kind: "join", id: 2},
		{kind: "join", id: 1},
		{kind: "packet", id: 1, p: chat("b1")},
		{kind: "packet", id: 2, p: chat("a1")},
		{kind: "packet", id: 2, p: chat("a2")},
	}, h.events)
	assert.Equal(t, []uint64{1}, h.ticks)
	assert.Equal(t, 2, l.Registry().Len())
}

func TestLoop_MaxPacketsPerTick(t *testing.T) {
	src := &fakeSource{}
	h := &recordingHandler{}
	l := NewLoop(&Cfg{TickRate: 20, MaxPacketsPerTick: 2}, src, h)

	p := newFakePeer(1)
	p.push(chat("1"), chat("2"), chat("3"))
	src.add(p)

	l.Step()
	assert.Len(t, h.events, 3) // join + 2 packets
	assert.Equal(t, 1, l.backlog)
	l.Step()
	assert.Len(t, h.events, 4)
	assert.Equal(t, chat("3"), h.events[3].p)
	assert.Zero(t, l.backlog)
}

func TestLoop_RetiresAfterDrain(t *testing.T) {
	src := &fakeSource{}
	h := &recordingHandler{}
	l := NewLoop(&Cfg{TickRate: 20, MaxPacketsPerTick: 1}, src, h)

	p := newFakePeer(5)
	src.add(p)
	l.Step()

	p.push(chat("last"), chat("words"))
	p.hangup(io.EOF)

	l.Step()
	assert.Equal(t, 1, l.Registry().Len(), "packets still queued")
	l.Step()
	assert.Equal(t, 1, l.Registry().Len(), "cap reached exactly on the last packet")
	l.Step()
	assert.Zero(t, l.Registry().Len())

	last := h.events[len(h.events)-1]
	assert.Equal(t, "leave", last.kind)
	assert.ErrorIs(t, last.err, io.EOF)
	assert.Equal(t, chat("words"), h.events[len(h.events)-2].p)
}

func TestLoop_BroadcastSkipsLeavers(t *testing.T) {
	src := &fakeSource{}
	h := &leaveBroadcaster{}
	l := NewLoop(nil, src, h)

	stay, leave := newFakePeer(1), newFakePeer(2)
	src.add(stay)
	src.add(leave)
	l.Step()

	leave.hangup(errors.New("reset"))
	l.Step()

	assert.Equal(t, []packet.Packet{chat("bye 2")}, stay.sentPackets())
	assert.Empty(t, leave.sentPackets())
}

type leaveBroadcaster struct{ recordingHandler }

func (h *leaveBroadcaster) OnLeave(ctx *Context, err error) {
	ctx.Registry().Broadcast(chat("bye " + strconv.FormatUint(uint64(ctx.ID()), 10)))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	for _, id := range []net.SessionID{5, 1, 3} {
		r.add(newFakePeer(id))
	}
	var order []net.SessionID
	r.Each(func(c *Context) { order = append(order, c.ID()) })
	assert.Equal(t, []net.SessionID{1, 3, 5}, order)

	c, ok := r.Get(3)
	require.True(t, ok)
	c.SetValue("state")
	assert.Equal(t, "state", c.Value())
	assert.Same(t, c, r.add(c.Peer()))

	r.remove(3)
	r.remove(42)
	_, ok = r.Get(3)
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())

	assert.Equal(t, 1, r.BroadcastExcept(chat("x"), 1))
	assert.Equal(t, 2, r.Broadcast(chat("y")))
}

func TestContext_KickAndSendFailure(t *testing.T) {
	r := NewRegistry()
	p := newFakePeer(1)
	c := r.add(p)

	c.Kick(&packet.Disconnect{Reason: packet.MustWireString("handshake required")})
	assert.True(t, p.graceful)
	assert.Len(t, p.sentPackets(), 1)
	assert.ErrorIs(t, c.Send(chat("late")), net.ErrSessionClosed)
}

func TestLoop_RunWithMockClock(t *testing.T) {
	mock := clock.NewMock()
	src := &fakeSource{}
	h := &recordingHandler{}
	l := NewLoop(&Cfg{TickRate: 20}, src, h, WithClock(mock))

	p := newFakePeer(1)
	src.add(p)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		mock.Add(50 * time.Millisecond)
		return h.tickCount() >= 3
	}, 3*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.True(t, p.graceful, "sessions are closed gracefully on shutdown")

	late := newFakePeer(2)
	src.add(late)
	l.shutdown()
	assert.True(t, late.closed, "unadopted sessions are closed")
}

func TestHandoffSource(t *testing.T) {
	h := net.NewHandoff[*net.Session]()
	src := HandoffSource{Handoff: h}
	_, ok := src.TryRecv()
	assert.False(t, ok)
}

func TestCfg(t *testing.T) {
	c := DefaultCfg()
	require.NoError(t, c.Validate())
	assert.Equal(t, 50*time.Millisecond, c.Period())
	assert.Error(t, (&Cfg{TickRate: 0}).Validate())
	assert.Error(t, (&Cfg{TickRate: 20, MaxPacketsPerTick: -1}).Validate())
}
