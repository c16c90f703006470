// Package tick runs the single-threaded simulation side of the server. Each
// step adopts new sessions, feeds queued packets to the Handler in session
// id order, retires closed sessions and finally calls OnTick.
package tick

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
	"github.com/lcx/dice/packet"
)

const _metricGroup = "tick"

// Handler is the game logic. Every method runs on the tick goroutine.
type Handler interface {
	OnJoin(ctx *Context)
	OnPacket(ctx *Context, p packet.Packet)
	// OnLeave runs after the session has left the registry. err is the close reason.
	OnLeave(ctx *Context, err error)
	OnTick(t *Tick)
}

// Tick describes one step.
type Tick struct {
	Number   uint64
	Now      time.Time
	Registry *Registry
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// Loop drives a Handler at a fixed rate.
type Loop struct {
	cfg      *Cfg
	source   Source
	handler  Handler
	registry *Registry
	clock    clock.Clock
	number   uint64
	// backlog is how many packets the last dispatch left queued by the cap.
	backlog int
}

// NewLoop creates a loop; nil cfg means DefaultCfg.
func NewLoop(cfg *Cfg, source Source, handler Handler, opts ...Option) *Loop {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	l := &Loop{
		cfg:      cfg,
		source:   source,
		handler:  handler,
		registry: NewRegistry(),
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the loop's session registry.
func (l *Loop) Registry() *Registry { return l.registry }

// Step runs exactly one tick.
func (l *Loop) Step() {
	start := l.clock.Now()
	l.number++

	l.adopt()
	leaving := l.dispatch()
	l.retire(leaving)
	l.handler.OnTick(&Tick{Number: l.number, Now: start, Registry: l.registry})

	metrics.IncrCounterWithGroup(_metricGroup, "step_total", 1)
	metrics.UpdateGaugeWithGroup(_metricGroup, "sessions", metrics.Value(l.registry.Len()))
	metrics.UpdateGaugeWithGroup(_metricGroup, "inbound_backlog", metrics.Value(l.backlog))
	metrics.RecordStopwatchWithGroup(_metricGroup, "step_time", start)

	warn := l.cfg.SlowTickWarn
	if warn == 0 {
		warn = l.cfg.Period()
	}
	if took := l.clock.Since(start); took > warn {
		log.Warn().Uint64("tick", l.number).Dur("took", took).Msg("slow tick")
	}
}

func (l *Loop) adopt() {
	for {
		p, ok := l.source.TryRecv()
		if !ok {
			return
		}
		ctx := l.registry.add(p)
		ctx.Debug().Msg("session adopted")
		l.handler.OnJoin(ctx)
	}
}

// dispatch feeds queued packets to the handler and returns the sessions that
// closed and have nothing left to deliver.
func (l *Loop) dispatch() []*Context {
	var leaving []*Context
	limit := l.cfg.MaxPacketsPerTick
	l.backlog = 0
	l.registry.Each(func(ctx *Context) {
		// Done is checked first: once it fired no more packets can arrive, so
		// an empty queue afterwards really is the end.
		done := isDone(ctx.peer)
		empty := false
		for n := 0; limit == 0 || n < limit; n++ {
			p, ok := ctx.peer.TryRecv()
			if !ok {
				empty = true
				break
			}
			l.handler.OnPacket(ctx, p)
		}
		if done && empty {
			leaving = append(leaving, ctx)
		}
		if !empty {
			l.backlog += ctx.peer.Pending()
		}
	})
	return leaving
}

func (l *Loop) retire(leaving []*Context) {
	for _, ctx := range leaving {
		l.registry.remove(ctx.ID())
	}
	for _, ctx := range leaving {
		err := ctx.peer.Err()
		ctx.Debug().AnErr("reason", err).Msg("session retired")
		l.handler.OnLeave(ctx, err)
	}
}

// Run steps at cfg.TickRate until ctx is done, then closes every session gracefully.
func (l *Loop) Run(ctx context.Context) error {
	ticker := l.clock.Ticker(l.cfg.Period())
	defer ticker.Stop()

	log.Info().Int("tickRate", l.cfg.TickRate).Msg("tick loop started")
	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			log.Info().Uint64("ticks", l.number).Msg("tick loop stopped")
			return nil
		case <-ticker.C:
			l.Step()
		}
	}
}

func (l *Loop) shutdown() {
	l.registry.Each(func(c *Context) { c.peer.CloseGracefully() })
	// Sessions still waiting in the source were never seen by the handler.
	for {
		p, ok := l.source.TryRecv()
		if !ok {
			return
		}
		p.Close()
	}
}

func isDone(p Peer) bool {
	select {
	case <-p.Done():
		return true
	default:
		return false
	}
}
