package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lcx/dice/config"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
	"github.com/sourcegraph/conc"
)

var _ Transport = (*Acceptor)(nil)

const _stopGrace = 5 * time.Second

// Acceptor owns the listening socket. Every accepted connection becomes a
// Session that is published to the handoff for the tick loop to adopt.
type Acceptor struct {
	cfg     atomic.Pointer[ServerCfg]
	handoff *Handoff[*Session]
	limiter *AcceptLimiter

	listener *net.TCPListener
	cancel   context.CancelFunc
	loop     conc.WaitGroup
	stopOnce sync.Once

	nextID   atomic.Uint64
	lock     sync.RWMutex
	sessions map[SessionID]*Session
}

// NewAcceptor creates an acceptor publishing new sessions to handoff.
func NewAcceptor(cfg *ServerCfg, handoff *Handoff[*Session]) *Acceptor {
	if cfg == nil {
		cfg = DefaultServerCfg()
	}
	a := &Acceptor{
		handoff:  handoff,
		limiter:  NewAcceptLimiter(cfg.AcceptRateLimit),
		sessions: make(map[SessionID]*Session),
	}
	a.cfg.Store(cfg)
	return a
}

// NewAcceptorWithConfigManager loads the "server" config over the defaults and
// subscribes the acceptor to reloads.
func NewAcceptorWithConfigManager(cm config.ConfigManager, handoff *Handoff[*Session]) (*Acceptor, error) {
	if cm == nil {
		return nil, errors.New("configManager cannot be nil")
	}
	cfg := DefaultServerCfg()
	if err := cm.LoadConfig(cfg.GetName(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	a := NewAcceptor(cfg, handoff)
	cm.AddChangeListener(a)
	return a, nil
}

// OnConfigChanged applies a reloaded "server" config. Rate limits, queue sizes
// and timeouts apply to sessions accepted afterwards; the address is fixed
// once the listener is bound.
func (a *Acceptor) OnConfigChanged(configName string, newConfig, _ config.Config) error {
	if configName != "server" {
		return nil
	}
	newCfg, ok := newConfig.(*ServerCfg)
	if !ok {
		return fmt.Errorf("invalid configuration type for Acceptor: %T", newConfig)
	}
	if err := newCfg.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	old := a.cfg.Swap(newCfg)
	if old.Addr != newCfg.Addr {
		log.Warn().Str("bound", old.Addr).Str("configured", newCfg.Addr).Msg("server addr change needs a restart")
	}
	a.limiter.Reload(newCfg.AcceptRateLimit)

	log.Info().Str("configName", configName).Msg("server configuration updated")
	return nil
}

// Start binds the listener and runs the accept loop until Stop or ctx is done.
// When ctx ends, live sessions are closed gracefully.
func (a *Acceptor) Start(ctx context.Context) error {
	cfg := a.cfg.Load()

	tcpAddr, err := net.ResolveTCPAddr("tcp", cfg.Addr)
	if err != nil {
		metrics.IncrCounterWithDimGroup("net", "listener_start_error_total", 1, metrics.Dimension{"error_type": "resolve"})
		return fmt.Errorf("%w: resolve %s: %w", ErrListenerBind, cfg.Addr, err)
	}
	listener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		metrics.IncrCounterWithDimGroup("net", "listener_start_error_total", 1, metrics.Dimension{"error_type": "listen"})
		return fmt.Errorf("%w: %w", ErrListenerBind, err)
	}
	metrics.IncrCounterWithGroup("net", "listener_start_total", 1)

	ctx, cancel := context.WithCancel(ctx)
	a.listener = listener
	a.cancel = cancel
	context.AfterFunc(ctx, func() {
		_ = listener.Close()
		for _, s := range a.snapshot() {
			s.CloseGracefully()
		}
	})

	log.Info().Str("addr", listener.Addr().String()).Msg("listening")
	a.loop.Go(func() { a.serve(ctx, listener) })
	return nil
}

// Addr returns the bound address, or nil before Start.
func (a *Acceptor) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop closes the listener, closes every live session gracefully and waits
// for the accept loop and the sessions to finish.
func (a *Acceptor) Stop() error {
	var result *multierror.Error
	a.stopOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
		}
		if a.listener != nil {
			if err := a.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				result = multierror.Append(result, fmt.Errorf("close listener: %w", err))
			}
		}
		a.loop.Wait()

		// Sessions get WriteTimeout to flush, then are cut.
		sessions := a.snapshot()
		for _, s := range sessions {
			s.CloseGracefully()
		}
		wait := a.cfg.Load().WriteTimeout
		if wait <= 0 {
			wait = _stopGrace
		}
		grace := time.NewTimer(wait)
		defer grace.Stop()
		expired := false
		for _, s := range sessions {
			if !expired {
				select {
				case <-s.Done():
					continue
				case <-grace.C:
					expired = true
				}
			}
			s.Close()
			<-s.Done()
		}
	})
	return result.ErrorOrNil()
}

// SessionCount reports how many sessions are live.
func (a *Acceptor) SessionCount() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return len(a.sessions)
}

func (a *Acceptor) snapshot() []*Session {
	a.lock.RLock()
	defer a.lock.RUnlock()
	out := make([]*Session, 0, len(a.sessions))
	for _, s := range a.sessions {
		out = append(out, s)
	}
	return out
}

func (a *Acceptor) serve(ctx context.Context, listener *net.TCPListener) {
	for {
		a.limiter.Take()

		conn, err := listener.AcceptTCP()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			metrics.IncrCounterWithGroup("net", "accept_error_total", 1)
			log.Error().Err(err).Msg("accept failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(a.cfg.Load().AcceptBackoff):
			}
			continue
		}

		cfg := a.cfg.Load()
		if err := configureConn(conn, cfg); err != nil {
			log.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("configure connection failed")
			_ = conn.Close()
			continue
		}

		// Sessions outlive ctx; Stop and the AfterFunc above close them.
		s := newSession(context.WithoutCancel(ctx), conn, SessionID(a.nextID.Add(1)), cfg)
		s.onClosed = a.removeSession
		a.addSession(s)
		s.start()
		a.handoff.Publish(s)
	}
}

func configureConn(conn *net.TCPConn, cfg *ServerCfg) error {
	if err := conn.SetNoDelay(cfg.NoDelay); err != nil {
		return fmt.Errorf("set nodelay: %w", err)
	}
	if cfg.SocketBufferSize > 0 {
		if err := conn.SetReadBuffer(cfg.SocketBufferSize); err != nil {
			return fmt.Errorf("set read buffer: %w", err)
		}
		if err := conn.SetWriteBuffer(cfg.SocketBufferSize); err != nil {
			return fmt.Errorf("set write buffer: %w", err)
		}
	}
	return nil
}

func (a *Acceptor) addSession(s *Session) {
	a.lock.Lock()
	a.sessions[s.ID()] = s
	n := len(a.sessions)
	a.lock.Unlock()
	metrics.UpdateGaugeWithGroup("net", "current_sessions", metrics.Value(n))
}

func (a *Acceptor) removeSession(s *Session) {
	a.lock.Lock()
	delete(a.sessions, s.ID())
	n := len(a.sessions)
	a.lock.Unlock()
	metrics.UpdateGaugeWithGroup("net", "current_sessions", metrics.Value(n))
}
