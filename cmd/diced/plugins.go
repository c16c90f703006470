package main

import (
	"context"
	"fmt"
	stdnet "net"

	"github.com/lcx/dice/discovery"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
	"github.com/lcx/dice/net"
)

// metricsPlugin installs the Prometheus sink and serves it over HTTP.
type metricsPlugin struct {
	cfg    *metrics.Cfg
	cancel context.CancelFunc
	done   chan error
}

func (p *metricsPlugin) Name() string           { return "metrics" }
func (p *metricsPlugin) Dependencies() []string { return nil }

func (p *metricsPlugin) Start(ctx context.Context) error {
	if err := metrics.Init(p.cfg); err != nil {
		return err
	}
	ln, err := stdnet.Listen("tcp", p.cfg.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan error, 1)
	go func() { p.done <- metrics.Serve(ctx, ln) }()
	log.Info().Str("addr", ln.Addr().String()).Msg("metrics endpoint listening")
	return nil
}

func (p *metricsPlugin) Stop() error {
	p.cancel()
	return <-p.done
}

// serverPlugin owns the game listener.
type serverPlugin struct {
	acceptor *net.Acceptor
}

func (p *serverPlugin) Name() string           { return "server" }
func (p *serverPlugin) Dependencies() []string { return []string{"metrics"} }
func (p *serverPlugin) Start(ctx context.Context) error {
	return p.acceptor.Start(ctx)
}
func (p *serverPlugin) Stop() error { return p.acceptor.Stop() }

// discoveryPlugin announces the bound listener to Consul.
type discoveryPlugin struct {
	registrar *discovery.Registrar
	server    *serverPlugin
}

func (p *discoveryPlugin) Name() string           { return "discovery" }
func (p *discoveryPlugin) Dependencies() []string { return []string{"server"} }

func (p *discoveryPlugin) Start(ctx context.Context) error {
	return p.registrar.Register(ctx, p.server.acceptor.Addr())
}

// Stop runs after the run context is cancelled, so it uses its own.
func (p *discoveryPlugin) Stop() error {
	return p.registrar.Deregister(context.Background())
}

// noopPlugin stands in for a disabled component so dependents still resolve.
type noopPlugin string

func (p noopPlugin) Name() string                { return string(p) }
func (p noopPlugin) Dependencies() []string      { return nil }
func (p noopPlugin) Start(context.Context) error { return nil }
func (p noopPlugin) Stop() error                 { return nil }
