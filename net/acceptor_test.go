package net

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/lcx/dice/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAcceptor(t *testing.T) (*Acceptor, *Handoff[*Session]) {
	t.Helper()
	cfg := testCfg()
	cfg.Addr = "127.0.0.1:0"
	h := NewHandoff[*Session]()
	a := NewAcceptor(cfg, h)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })
	return a, h
}

func adopt(t *testing.T, h *Handoff[*Session]) *Session {
	t.Helper()
	var s *Session
	require.Eventually(t, func() bool {
		var ok bool
		s, ok = h.TryRecv()
		return ok
	}, waitFor, time.Millisecond)
	return s
}

func TestAcceptor_PublishesSessions(t *testing.T) {
	a, h := startAcceptor(t)

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	s := adopt(t, h)
	assert.Equal(t, SessionID(1), s.ID())
	assert.Equal(t, conn.LocalAddr().String(), s.RemoteAddr().String())
	assert.Equal(t, 1, a.SessionCount())

	_, err = conn.Write(frame(t, &packet.Handshake{Username: packet.MustWireString("Steve")}))
	require.NoError(t, err)
	assert.Equal(t, "Steve", recv(t, s).(*packet.Handshake).Username.String())

	require.NoError(t, s.Send(&packet.KeepAlive{}))
	r := &clientReader{conn: conn}
	assert.Equal(t, &packet.KeepAlive{}, r.next(t))

	conn2, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn2.Close()
	assert.Equal(t, SessionID(2), adopt(t, h).ID())
}

func TestAcceptor_SessionRemovedOnClose(t *testing.T) {
	a, h := startAcceptor(t)
	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)

	s := adopt(t, h)
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, waitDone(t, s), io.EOF)
	assert.Eventually(t, func() bool { return a.SessionCount() == 0 }, waitFor, time.Millisecond)
}

func TestAcceptor_StopClosesEverything(t *testing.T) {
	cfg := testCfg()
	cfg.Addr = "127.0.0.1:0"
	h := NewHandoff[*Session]()
	a := NewAcceptor(cfg, h)
	require.NoError(t, a.Start(context.Background()))

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	s := adopt(t, h)

	require.NoError(t, a.Stop())
	assert.ErrorIs(t, s.Err(), ErrSessionClosed)
	assert.Zero(t, a.SessionCount())

	_ = conn.SetReadDeadline(time.Now().Add(waitFor))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	_, err = net.DialTimeout("tcp", a.Addr().String(), 200*time.Millisecond)
	assert.Error(t, err)
	assert.NoError(t, a.Stop())
}

func TestAcceptor_StopFlushesQueued(t *testing.T) {
	cfg := testCfg()
	cfg.Addr = "127.0.0.1:0"
	cfg.WriteTimeout = time.Second
	h := NewHandoff[*Session]()
	a := NewAcceptor(cfg, h)
	require.NoError(t, a.Start(context.Background()))

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	s := adopt(t, h)

	require.NoError(t, s.Send(&packet.Disconnect{Reason: packet.MustWireString("Server closed")}))
	require.NoError(t, a.Stop())

	r := &clientReader{conn: conn}
	assert.Equal(t, "Server closed", r.next(t).(*packet.Disconnect).Reason.String())
	assert.ErrorIs(t, s.Err(), ErrSessionClosed)
}

func TestAcceptor_BindFailure(t *testing.T) {
	a, _ := startAcceptor(t)

	cfg := testCfg()
	cfg.Addr = a.Addr().String()
	b := NewAcceptor(cfg, NewHandoff[*Session]())
	err := b.Start(context.Background())
	assert.ErrorIs(t, err, ErrListenerBind)
	assert.Nil(t, b.Addr())
}

func TestAcceptor_ContextCancelStops(t *testing.T) {
	cfg := testCfg()
	cfg.Addr = "127.0.0.1:0"
	h := NewHandoff[*Session]()
	a := NewAcceptor(cfg, h)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Start(ctx))
	defer a.Stop()

	conn, err := net.Dial("tcp", a.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	s := adopt(t, h)

	cancel()
	assert.ErrorIs(t, waitDone(t, s), ErrSessionClosed)
}

func TestAcceptor_OnConfigChanged(t *testing.T) {
	a := NewAcceptor(DefaultServerCfg(), NewHandoff[*Session]())

	require.NoError(t, a.OnConfigChanged("logger", nil, nil))

	bad := DefaultServerCfg()
	bad.OutboundOverflow = OverflowBlock
	assert.Error(t, a.OnConfigChanged("server", bad, nil))
	assert.Equal(t, OverflowDisconnect, a.cfg.Load().OutboundOverflow)

	next := DefaultServerCfg()
	next.InboundQueueSize = 8
	next.AcceptRateLimit = 100
	require.NoError(t, a.OnConfigChanged("server", next, nil))
	assert.Equal(t, 8, a.cfg.Load().InboundQueueSize)
}
