// Package discovery registers the game listener with a Consul agent so that
// proxies and tooling can find it.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/lcx/dice/log"
)

// Cfg is the "discovery" config.
type Cfg struct {
	Enabled     bool     `mapstructure:"enabled"`
	AgentAddr   string   `mapstructure:"agentAddr"`
	Token       string   `mapstructure:"token"`
	ServiceName string   `mapstructure:"serviceName"`
	ServiceID   string   `mapstructure:"serviceID"`
	Tags        []string `mapstructure:"tags"`
	// AdvertiseAddr is the host announced to Consul. Empty uses the listener's host.
	AdvertiseAddr   string        `mapstructure:"advertiseAddr"`
	CheckInterval   time.Duration `mapstructure:"checkInterval"`
	CheckTimeout    time.Duration `mapstructure:"checkTimeout"`
	DeregisterAfter time.Duration `mapstructure:"deregisterAfter"`
}

// DefaultCfg returns the configuration used when no "discovery" file exists.
func DefaultCfg() *Cfg {
	return &Cfg{
		AgentAddr:       "127.0.0.1:8500",
		ServiceName:     "dice",
		Tags:            []string{"game", "tcp"},
		CheckInterval:   10 * time.Second,
		CheckTimeout:    2 * time.Second,
		DeregisterAfter: time.Minute,
	}
}

func (c *Cfg) GetName() string { return "discovery" }

func (c *Cfg) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.AgentAddr == "" || c.ServiceName == "" {
		return errors.New("discovery: agentAddr and serviceName are required")
	}
	if c.CheckInterval <= 0 || c.CheckTimeout <= 0 {
		return errors.New("discovery: check interval and timeout must be positive")
	}
	return nil
}

// Registrar keeps one service registration with the local agent.
type Registrar struct {
	cfg    *Cfg
	agent  *api.Agent
	id     string
	active bool
}

// NewRegistrar creates a Consul client for cfg.AgentAddr.
func NewRegistrar(cfg *Cfg) (*Registrar, error) {
	client, err := api.NewClient(&api.Config{Address: cfg.AgentAddr, Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("discovery: consul client: %w", err)
	}
	return &Registrar{cfg: cfg, agent: client.Agent()}, nil
}

// Registration builds the agent registration for a listener bound at addr.
func (r *Registrar) Registration(addr net.Addr) (*api.AgentServiceRegistration, error) {
	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, fmt.Errorf("discovery: listener addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("discovery: listener port: %w", err)
	}
	if r.cfg.AdvertiseAddr != "" {
		host = r.cfg.AdvertiseAddr
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		host = "127.0.0.1"
	}

	id := r.cfg.ServiceID
	if id == "" {
		id = fmt.Sprintf("%s-%s-%d", r.cfg.ServiceName, host, port)
	}

	return &api.AgentServiceRegistration{
		ID:      id,
		Name:    r.cfg.ServiceName,
		Tags:    r.cfg.Tags,
		Address: host,
		Port:    port,
		Check: &api.AgentServiceCheck{
			TCP:                            net.JoinHostPort(host, portStr),
			Interval:                       r.cfg.CheckInterval.String(),
			Timeout:                        r.cfg.CheckTimeout.String(),
			DeregisterCriticalServiceAfter: r.cfg.DeregisterAfter.String(),
		},
	}, nil
}

// Register announces the listener at addr.
func (r *Registrar) Register(ctx context.Context, addr net.Addr) error {
	reg, err := r.Registration(addr)
	if err != nil {
		return err
	}
	opts := api.ServiceRegisterOpts{ReplaceExistingChecks: true}.WithContext(ctx)
	if err := r.agent.ServiceRegisterOpts(reg, opts); err != nil {
		return fmt.Errorf("discovery: register %s: %w", reg.ID, err)
	}
	r.id = reg.ID
	r.active = true
	log.Info().Str("service", reg.Name).Str("id", reg.ID).Str("addr", reg.Check.TCP).Msg("registered with consul")
	return nil
}

// Deregister removes the registration made by Register, if any.
func (r *Registrar) Deregister(ctx context.Context) error {
	if !r.active {
		return nil
	}
	q := (&api.QueryOptions{}).WithContext(ctx)
	if err := r.agent.ServiceDeregisterOpts(r.id, q); err != nil {
		return fmt.Errorf("discovery: deregister %s: %w", r.id, err)
	}
	r.active = false
	log.Info().Str("id", r.id).Msg("deregistered from consul")
	return nil
}
