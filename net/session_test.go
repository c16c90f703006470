package net

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/lcx/dice/codec"
	"github.com/lcx/dice/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func testCfg() *ServerCfg {
	cfg := DefaultServerCfg()
	cfg.IdleTimeout = 0
	cfg.WriteTimeout = 0
	return cfg
}

func pipeSession(t *testing.T, cfg *ServerCfg) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	s := NewSession(context.Background(), server, 1, cfg)
	t.Cleanup(func() {
		_ = client.Close()
		s.Close()
		<-s.Done()
	})
	return s, client
}

func frame(t *testing.T, ps ...packet.Packet) []byte {
	t.Helper()
	var out []byte
	for _, p := range ps {
		var err error
		out, err = codec.AppendEncode(out, p)
		require.NoError(t, err)
	}
	return out
}

func recv(t *testing.T, s *Session) packet.Packet {
	t.Helper()
	var got packet.Packet
	require.Eventually(t, func() bool {
		p, ok := s.TryRecv()
		got = p
		return ok
	}, waitFor, time.Millisecond)
	return got
}

func waitDone(t *testing.T, s *Session) error {
	t.Helper()
	select {
	case <-s.Done():
		return s.Err()
	case <-time.After(waitFor):
		t.Fatal("session did not close")
		return nil
	}
}

// clientReader decodes frames arriving on the client end of a pipe.
type clientReader struct {
	conn net.Conn
	buf  bytes.Buffer
}

func (c *clientReader) next(t *testing.T) packet.Packet {
	t.Helper()
	chunk := make([]byte, 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(waitFor))
	for {
		p, err := codec.Decode(&c.buf)
		if err == nil {
			return p
		}
		require.ErrorIs(t, err, codec.ErrIncomplete)
		n, err := c.conn.Read(chunk)
		require.NoError(t, err)
		c.buf.Write(chunk[:n])
	}
}

func TestSession_ReceivesInOrder(t *testing.T) {
	s, client := pipeSession(t, testCfg())

	var want []packet.Packet
	for i := 0; i < 50; i++ {
		want = append(want, &packet.UpdateTime{Time: int64(i)})
	}
	b := frame(t, want...)
	go func() { _, _ = client.Write(b) }()

	for _, w := range want {
		assert.Equal(t, w, recv(t, s))
	}
	assert.Equal(t, StateOpen, s.State())
	assert.Nil(t, s.Err())
}

func TestSession_FrameSplitAcrossReads(t *testing.T) {
	s, client := pipeSession(t, testCfg())
	b := frame(t, &packet.Handshake{Username: packet.MustWireString("Steve")})

	go func() {
		for i := range b {
			_, _ = client.Write(b[i : i+1])
		}
	}()

	got := recv(t, s)
	assert.Equal(t, "Steve", got.(*packet.Handshake).Username.String())
	_, ok := s.TryRecv()
	assert.False(t, ok)
}

// A partial frame that announces its length is not re-parsed until the
// buffer reaches that length.
func TestSession_PartialFrameWaitsForNeed(t *testing.T) {
	s, _ := pipeSession(t, testCfg())
	long := frame(t, &packet.Chat{Message: packet.MustWireString(strings.Repeat("a", 300))})

	in := &inbox{}
	in.buf.Write(long[:3])
	require.NoError(t, s.decodeBuffered(in))
	assert.Equal(t, len(long), in.need)

	in.buf.Write(long[3 : len(long)-1])
	require.NoError(t, s.decodeBuffered(in))
	assert.Equal(t, len(long), in.need)
	assert.Equal(t, len(long)-1, in.buf.Len())

	in.buf.Write(long[len(long)-1:])
	require.NoError(t, s.decodeBuffered(in))
	assert.Equal(t, 0, in.need)
	assert.Equal(t, 0, in.buf.Len())
	assert.Equal(t, 300, len(recv(t, s).(*packet.Chat).Message.String()))

	// Below need nothing is decoded, even bytes that would form a frame.
	in.buf.Write(frame(t, &packet.UpdateTime{Time: 1}))
	in.need = in.buf.Len() + 1
	require.NoError(t, s.decodeBuffered(in))
	_, ok := s.TryRecv()
	assert.False(t, ok)

	in.buf.Write(frame(t, &packet.UpdateTime{Time: 2}))
	require.NoError(t, s.decodeBuffered(in))
	assert.Equal(t, &packet.UpdateTime{Time: 1}, recv(t, s))
	assert.Equal(t, &packet.UpdateTime{Time: 2}, recv(t, s))
	assert.Equal(t, 0, in.need)
}

func TestSession_LongFrameDrippedByteByByte(t *testing.T) {
	s, client := pipeSession(t, testCfg())
	msg := strings.Repeat("z", 2000)
	b := frame(t, &packet.Chat{Message: packet.MustWireString(msg)}, &packet.UpdateTime{Time: 7})

	go func() {
		for i := range b {
			_, _ = client.Write(b[i : i+1])
		}
	}()

	assert.Equal(t, msg, recv(t, s).(*packet.Chat).Message.String())
	assert.Equal(t, &packet.UpdateTime{Time: 7}, recv(t, s))
}

func TestSession_SendWritesFrames(t *testing.T) {
	s, client := pipeSession(t, testCfg())
	r := &clientReader{conn: client}

	require.NoError(t, s.Send(&packet.KeepAlive{}))
	require.NoError(t, s.Send(&packet.Chat{Message: packet.MustWireString("hi")}))

	assert.Equal(t, &packet.KeepAlive{}, r.next(t))
	assert.Equal(t, "hi", r.next(t).(*packet.Chat).Message.String())
}

func TestSession_SendNil(t *testing.T) {
	s, _ := pipeSession(t, testCfg())
	assert.ErrorIs(t, s.Send(nil), codec.ErrInvalidPacket)

	var chat *packet.Chat
	assert.ErrorIs(t, s.Send(chat), codec.ErrInvalidPacket)
	assert.Equal(t, StateOpen, s.State())
}

func TestSession_MalformedCloses(t *testing.T) {
	s, client := pipeSession(t, testCfg())
	go func() { _, _ = client.Write([]byte{0x00, 0xFE}) }()

	assert.Equal(t, &packet.KeepAlive{}, recv(t, s))
	err := waitDone(t, s)
	assert.ErrorIs(t, err, codec.ErrMalformed)
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_PeerHangupIsEOF(t *testing.T) {
	s, client := pipeSession(t, testCfg())
	go func() {
		_, _ = client.Write([]byte{0x00})
		_ = client.Close()
	}()

	assert.Equal(t, &packet.KeepAlive{}, recv(t, s))
	assert.ErrorIs(t, waitDone(t, s), io.EOF)
}

func TestSession_IdleTimeout(t *testing.T) {
	cfg := testCfg()
	cfg.IdleTimeout = 50 * time.Millisecond
	s, _ := pipeSession(t, cfg)
	assert.ErrorIs(t, waitDone(t, s), ErrIdleTimeout)
}

func TestSession_FrameTooLarge(t *testing.T) {
	cfg := testCfg()
	cfg.MaxFrameSize = 16
	s, client := pipeSession(t, cfg)

	// A ChunkData header promising 1000 bytes, followed by 20 of them.
	head := []byte{byte(packet.TagChunkData), 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 0, 0x03, 0xE8}
	go func() { _, _ = client.Write(append(head, make([]byte, 20)...)) }()

	assert.ErrorIs(t, waitDone(t, s), ErrFrameTooLarge)
}

func TestSession_CloseGracefullyFlushes(t *testing.T) {
	s, client := pipeSession(t, testCfg())

	sent := []packet.Packet{
		&packet.Chat{Message: packet.MustWireString("one")},
		&packet.Chat{Message: packet.MustWireString("two")},
		&packet.Disconnect{Reason: packet.MustWireString("bye")},
	}
	for _, p := range sent {
		require.NoError(t, s.Send(p))
	}
	s.CloseGracefully()
	assert.ErrorIs(t, s.Send(&packet.KeepAlive{}), ErrSessionClosed)

	_ = client.SetReadDeadline(time.Now().Add(waitFor))
	data, err := io.ReadAll(client)
	require.NoError(t, err)
	assert.Equal(t, frame(t, sent...), data)

	assert.ErrorIs(t, waitDone(t, s), ErrSessionClosed)
}

func TestSession_SendRacingCloseGracefully(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, client := pipeSession(t, testCfg())

		read := make(chan []byte, 1)
		go func() {
			_ = client.SetReadDeadline(time.Now().Add(waitFor))
			data, _ := io.ReadAll(client)
			read <- data
		}()

		accepted := make(chan int, 1)
		go func() {
			n := 0
			for j := 0; j < 200; j++ {
				if s.Send(&packet.UpdateTime{Time: int64(j)}) == nil {
					n++
				}
			}
			accepted <- n
		}()
		s.CloseGracefully()

		n := <-accepted
		<-s.Done()
		data := <-read

		buf := bytes.NewBuffer(data)
		got := 0
		for buf.Len() > 0 {
			_, err := codec.Decode(buf)
			require.NoError(t, err)
			got++
		}
		require.Equal(t, n, got, "every accepted packet is written")
	}
}

func TestSession_Close(t *testing.T) {
	s, _ := pipeSession(t, testCfg())
	s.Close()
	assert.ErrorIs(t, waitDone(t, s), ErrSessionClosed)
	assert.Equal(t, StateClosed, s.State())
	assert.ErrorIs(t, s.Send(&packet.KeepAlive{}), ErrSessionClosed)
}

func TestSession_ContextCancelCloses(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSession(ctx, server, 9, testCfg())
	assert.Equal(t, SessionID(9), s.ID())

	cancel()
	assert.ErrorIs(t, waitDone(t, s), ErrSessionClosed)
}

func TestSession_OutboundDrop(t *testing.T) {
	cfg := testCfg()
	cfg.OutboundQueueSize = 1
	cfg.OutboundOverflow = OverflowDrop
	s, _ := pipeSession(t, cfg)

	// Nobody reads the client end, so the writer blocks on its first packet.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = s.Send(&packet.KeepAlive{})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Nil(t, s.Err())
	assert.Equal(t, StateOpen, s.State())
}

func TestSession_OutboundDisconnect(t *testing.T) {
	cfg := testCfg()
	cfg.OutboundQueueSize = 1
	cfg.OutboundOverflow = OverflowDisconnect
	s, _ := pipeSession(t, cfg)

	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = s.Send(&packet.KeepAlive{})
	}
	assert.ErrorIs(t, err, ErrQueueOverflow)
	assert.ErrorIs(t, waitDone(t, s), ErrQueueOverflow)
}

func TestSession_InboundDisconnect(t *testing.T) {
	cfg := testCfg()
	cfg.InboundQueueSize = 1
	cfg.InboundOverflow = OverflowDisconnect
	s, client := pipeSession(t, cfg)

	go func() { _, _ = client.Write([]byte{0, 0, 0, 0}) }()
	assert.ErrorIs(t, waitDone(t, s), ErrQueueOverflow)
}

func TestSession_InboundBlockKeepsEverything(t *testing.T) {
	cfg := testCfg()
	cfg.InboundQueueSize = 1
	cfg.InboundOverflow = OverflowBlock
	s, client := pipeSession(t, cfg)

	var frames [][]byte
	for i := 0; i < 5; i++ {
		frames = append(frames, frame(t, &packet.HandSlot{Slot: int16(i)}))
	}
	go func() {
		for _, f := range frames {
			_, _ = client.Write(f)
		}
	}()

	for i := 0; i < 5; i++ {
		assert.Equal(t, &packet.HandSlot{Slot: int16(i)}, recv(t, s))
	}
	assert.Nil(t, s.Err())
}

func TestSession_InboundRateLimit(t *testing.T) {
	cfg := testCfg()
	cfg.InboundRateLimit = 20
	cfg.InboundRateBurst = 1
	s, client := pipeSession(t, cfg)

	start := time.Now()
	go func() { _, _ = client.Write([]byte{0, 0, 0, 0, 0}) }()
	for i := 0; i < 5; i++ {
		recv(t, s)
	}
	// burst of one, then four more tokens at 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestCloseReason(t *testing.T) {
	assert.Equal(t, "eof", closeReason(io.EOF))
	assert.Equal(t, "closed", closeReason(ErrSessionClosed))
	assert.Equal(t, "idle_timeout", closeReason(ErrIdleTimeout))
	assert.Equal(t, "malformed", closeReason(errors.Join(codec.ErrMalformed)))
	assert.Equal(t, "io", closeReason(errors.New("reset")))
}
