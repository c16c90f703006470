package net

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcx/dice/codec"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
	"github.com/lcx/dice/packet"
	"github.com/lcx/dice/tracing"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	_metricGroup = "net.session"
	// _maxWriteBatch bounds how many encoded bytes the writer gathers before one Write.
	_maxWriteBatch = 64 << 10
)

// SessionID identifies a session for its whole life. Ids start at 1 and are never reused.
type SessionID uint64

// State is the lifecycle stage of a session.
type State int32

const (
	StateOpen       State = iota // both pumps running
	StateHalfClosed              // one pump exited
	StateClosed                  // both pumps exited
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfClosed:
		return "half_closed"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Session owns one connection. A reader goroutine decodes frames into the
// inbound queue and a writer goroutine encodes packets from the outbound
// queue. The tick loop talks to it only through the non-blocking methods.
type Session struct {
	id      SessionID
	conn    net.Conn
	cfg     ServerCfg
	limiter *RecvLimiter
	logger  *log.SessionLogger
	span    trace.Span

	inbound  chan packet.Packet
	outbound chan packet.Packet

	ctx       context.Context
	cancel    context.CancelFunc
	stopWatch func() bool

	// sendMu orders Send against CloseGracefully: once closing is closed no
	// Send is between its check and its enqueue.
	sendMu       sync.RWMutex
	closing      chan struct{}
	gracefulOnce sync.Once
	closeOnce    sync.Once

	mu  sync.Mutex
	err error

	opened time.Time
	exited atomic.Int32
	pumps  conc.WaitGroup
	done   chan struct{}

	onClosed func(*Session)
}

// NewSession wraps conn and starts its pumps. Cancelling ctx closes the session.
func NewSession(ctx context.Context, conn net.Conn, id SessionID, cfg *ServerCfg) *Session {
	s := newSession(ctx, conn, id, cfg)
	s.start()
	return s
}

func newSession(ctx context.Context, conn net.Conn, id SessionID, cfg *ServerCfg) *Session {
	if cfg == nil {
		cfg = DefaultServerCfg()
	}
	remote := addrString(conn.RemoteAddr())

	spanCtx, span := tracing.StartSpan(ctx, "net.session",
		attribute.Int64("session.id", int64(id)),
		attribute.String("net.peer.addr", remote),
	)
	sctx, cancel := context.WithCancel(spanCtx)

	s := &Session{
		id:       id,
		conn:     conn,
		cfg:      *cfg,
		logger:   log.NewSessionLogger(nil, uint64(id), remote),
		span:     span,
		inbound:  make(chan packet.Packet, cfg.InboundQueueSize),
		outbound: make(chan packet.Packet, cfg.OutboundQueueSize),
		ctx:      sctx,
		cancel:   cancel,
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	if cfg.InboundRateLimit > 0 {
		s.limiter = NewRecvLimiter(cfg.InboundRateLimit, cfg.inboundBurst())
	}
	return s
}

func (s *Session) start() {
	s.stopWatch = context.AfterFunc(s.ctx, func() { s.terminate(ErrSessionClosed) })

	s.opened = time.Now()
	metrics.IncrCounterWithGroup(_metricGroup, "session_open_total", 1)
	s.logger.Debug().Msg("session opened")

	s.pumps.Go(func() { s.pumpExit(s.serveRecv()) })
	s.pumps.Go(func() { s.pumpExit(s.serveSend()) })

	go func() {
		s.pumps.Wait()
		s.stopWatch()
		s.finish()
	}()
}

func (s *Session) pumpExit(err error) {
	s.terminate(err)
	if s.exited.Add(1) == 1 {
		s.logger.Debug().Msg("session half closed")
	}
}

func (s *Session) finish() {
	reason := s.Err()
	dim := metrics.Dimension{"reason": closeReason(reason)}
	metrics.IncrCounterWithDimGroup(_metricGroup, "session_close_total", 1, dim)
	metrics.RecordStopwatchWithDimGroup(_metricGroup, "session_lifetime", s.opened, dim)

	if expectedClose(reason) {
		s.logger.Info().Str("reason", reason.Error()).Msg("session closed")
		tracing.EndSpan(s.span, nil)
	} else {
		s.logger.Warn().Err(reason).Msg("session closed")
		tracing.EndSpan(s.span, reason)
	}

	if s.onClosed != nil {
		s.onClosed(s)
	}
	close(s.done)
}

// terminate records the first close reason, stops both pumps and closes the socket.
func (s *Session) terminate(reason error) {
	if reason == nil {
		reason = ErrSessionClosed
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = reason
	}
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		s.cancel()
		_ = s.conn.Close()
	})
}

// ID returns the session id.
func (s *Session) ID() SessionID { return s.id }

// RemoteAddr returns the peer address.
func (s *Session) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// State reports how many pumps are still running.
func (s *Session) State() State {
	switch s.exited.Load() {
	case 0:
		return StateOpen
	case 1:
		return StateHalfClosed
	}
	return StateClosed
}

// Done is closed once both pumps have exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns why the session closed, or nil while it is open. io.EOF means
// the peer hung up; ErrSessionClosed means the server closed it.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the session immediately. Queued outbound packets are lost.
func (s *Session) Close() {
	s.terminate(ErrSessionClosed)
}

// CloseGracefully stops accepting Sends, lets the writer flush what is
// queued and then closes the session.
func (s *Session) CloseGracefully() {
	s.gracefulOnce.Do(func() {
		s.sendMu.Lock()
		close(s.closing)
		s.sendMu.Unlock()
	})
}

// TryRecv pops the next inbound packet without blocking.
func (s *Session) TryRecv() (packet.Packet, bool) {
	select {
	case p := <-s.inbound:
		return p, true
	default:
		return nil, false
	}
}

// Pending reports how many inbound packets are queued. The tick loop reads it
// to report the backlog its per-step cap leaves behind.
func (s *Session) Pending() int { return len(s.inbound) }

// Send queues p for the writer without blocking. A full queue is handled by
// the outbound overflow policy.
func (s *Session) Send(p packet.Packet) error {
	if packet.IsNil(p) {
		return fmt.Errorf("net: send: %w", codec.ErrInvalidPacket)
	}
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}
	select {
	case <-s.closing:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbound <- p:
		// The writer stops without draining once ctx is done.
		if s.ctx.Err() != nil {
			return ErrSessionClosed
		}
		return nil
	default:
	}

	metrics.IncrCounterWithDimGroup(_metricGroup, "overflow_total", 1,
		metrics.Dimension{"queue": "outbound", "policy": s.cfg.OutboundOverflow.String()})
	if s.cfg.OutboundOverflow == OverflowDrop {
		s.logger.Debug().Str("packet", packet.Name(p)).Msg("outbound queue full, packet dropped")
		return ErrQueueFull
	}
	s.terminate(ErrQueueOverflow)
	return ErrQueueOverflow
}

// inbox holds received bytes not yet decoded. need is the buffer length the
// pending partial frame is known to require; below it decoding is skipped.
type inbox struct {
	buf  bytes.Buffer
	need int
}

func (s *Session) serveRecv() error {
	in := &inbox{}
	chunk := make([]byte, s.cfg.ReadBufferSize)

	for {
		s.setReadDeadline()
		n, err := s.conn.Read(chunk)
		if n > 0 {
			metrics.IncrCounterWithGroup(_metricGroup, "bytes_in_total", metrics.Value(n))
			in.buf.Write(chunk[:n])
			if derr := s.decodeBuffered(in); derr != nil {
				return derr
			}
		}
		if err != nil {
			return s.readError(err)
		}
	}
}

// decodeBuffered delivers every complete frame in the inbox and leaves the
// tail of a partial frame for the next read.
func (s *Session) decodeBuffered(in *inbox) error {
	for in.buf.Len() > 0 && in.buf.Len() >= in.need {
		p, err := codec.Decode(&in.buf)
		if errors.Is(err, codec.ErrIncomplete) {
			in.need = codec.Needed(err)
			break
		}
		if err != nil {
			metrics.IncrCounterWithGroup(_metricGroup, "malformed_total", 1)
			return err
		}
		in.need = 0
		if err := s.deliver(p); err != nil {
			return err
		}
	}
	if in.buf.Len() > s.cfg.MaxFrameSize {
		return ErrFrameTooLarge
	}
	return nil
}

func (s *Session) deliver(p packet.Packet) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(s.ctx); err != nil {
			return ErrSessionClosed
		}
	}
	metrics.IncrCounterWithDimGroup(_metricGroup, "packets_in_total", 1, metrics.Dimension{"packet": packet.Name(p)})

	if s.cfg.InboundOverflow == OverflowBlock {
		select {
		case s.inbound <- p:
			return nil
		case <-s.ctx.Done():
			return ErrSessionClosed
		}
	}

	select {
	case s.inbound <- p:
		return nil
	default:
		metrics.IncrCounterWithDimGroup(_metricGroup, "overflow_total", 1,
			metrics.Dimension{"queue": "inbound", "policy": s.cfg.InboundOverflow.String()})
		return ErrQueueOverflow
	}
}

func (s *Session) readError(err error) error {
	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrIdleTimeout
	}
	return fmt.Errorf("net: read: %w", err)
}

func (s *Session) serveSend() error {
	batch := make([]byte, 0, 512)
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case p := <-s.outbound:
			var err error
			if batch, err = s.flush(batch[:0], p); err != nil {
				return err
			}
		case <-s.closing:
			for {
				select {
				case p := <-s.outbound:
					var err error
					if batch, err = s.flush(batch[:0], p); err != nil {
						return err
					}
				default:
					return ErrSessionClosed
				}
			}
		}
	}
}

// flush encodes first and whatever else is already queued, up to
// _maxWriteBatch bytes, and writes it with one call.
func (s *Session) flush(batch []byte, first packet.Packet) ([]byte, error) {
	batch, count := s.appendPacket(batch, first)
gather:
	for len(batch) < _maxWriteBatch {
		select {
		case p := <-s.outbound:
			var n int
			batch, n = s.appendPacket(batch, p)
			count += n
		default:
			break gather
		}
	}
	if len(batch) == 0 {
		return batch, nil
	}

	s.setWriteDeadline()
	if _, err := s.conn.Write(batch); err != nil {
		if s.ctx.Err() != nil {
			return batch, ErrSessionClosed
		}
		return batch, fmt.Errorf("net: write: %w", err)
	}
	metrics.IncrCounterWithGroup(_metricGroup, "packets_out_total", metrics.Value(count))
	metrics.IncrCounterWithGroup(_metricGroup, "bytes_out_total", metrics.Value(len(batch)))
	return batch, nil
}

// appendPacket encodes p onto batch. A packet that cannot be encoded is
// logged and skipped; it never reaches the socket.
func (s *Session) appendPacket(batch []byte, p packet.Packet) ([]byte, int) {
	out, err := codec.AppendEncode(batch, p)
	if err != nil {
		metrics.IncrCounterWithGroup(_metricGroup, "encode_error_total", 1)
		s.logger.Error().Err(err).Str("packet", packet.Name(p)).Msg("encode failed, packet skipped")
		return batch, 0
	}
	return out, 1
}

func (s *Session) setReadDeadline() {
	if s.cfg.IdleTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	}
}

func (s *Session) setWriteDeadline() {
	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// expectedClose reports whether reason is an ordinary end of a session.
func expectedClose(reason error) bool {
	return errors.Is(reason, io.EOF) || errors.Is(reason, ErrSessionClosed)
}

func closeReason(err error) string {
	switch {
	case err == nil:
		return "unknown"
	case errors.Is(err, io.EOF):
		return "eof"
	case errors.Is(err, ErrSessionClosed):
		return "closed"
	case errors.Is(err, ErrIdleTimeout):
		return "idle_timeout"
	case errors.Is(err, ErrFrameTooLarge):
		return "frame_too_large"
	case errors.Is(err, ErrQueueOverflow):
		return "queue_overflow"
	case errors.Is(err, codec.ErrMalformed):
		return "malformed"
	}
	return "io"
}
