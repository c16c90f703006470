package net

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// OverflowPolicy decides what happens when a session queue is full.
type OverflowPolicy uint8

const (
	// OverflowBlock stops reading the socket until the tick loop catches up.
	// Only valid for the inbound queue.
	OverflowBlock OverflowPolicy = iota
	// OverflowDrop discards the newest packet. Only valid for the outbound queue.
	OverflowDrop
	// OverflowDisconnect closes the session with ErrQueueOverflow.
	OverflowDisconnect
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDrop:
		return "drop"
	case OverflowDisconnect:
		return "disconnect"
	}
	return fmt.Sprintf("OverflowPolicy(%d)", uint8(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OverflowPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "block":
		*p = OverflowBlock
	case "drop":
		*p = OverflowDrop
	case "disconnect":
		*p = OverflowDisconnect
	default:
		return fmt.Errorf("net: unknown overflow policy %q", text)
	}
	return nil
}

// ServerCfg is the "server" config.
type ServerCfg struct {
	Addr string `mapstructure:"addr"`

	// IdleTimeout closes sessions that send nothing for this long. 0 disables it.
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`

	// MaxFrameSize bounds the bytes buffered for one partial frame.
	MaxFrameSize   int `mapstructure:"maxFrameSize"`
	ReadBufferSize int `mapstructure:"readBufferSize"`
	// SocketBufferSize sets SO_RCVBUF and SO_SNDBUF. 0 keeps the OS default.
	SocketBufferSize int  `mapstructure:"socketBufferSize"`
	NoDelay          bool `mapstructure:"noDelay"`

	InboundQueueSize  int            `mapstructure:"inboundQueueSize"`
	OutboundQueueSize int            `mapstructure:"outboundQueueSize"`
	InboundOverflow   OverflowPolicy `mapstructure:"inboundOverflow"`
	OutboundOverflow  OverflowPolicy `mapstructure:"outboundOverflow"`

	// InboundRateLimit is packets per second per session. 0 disables it.
	InboundRateLimit int `mapstructure:"inboundRateLimit"`
	InboundRateBurst int `mapstructure:"inboundRateBurst"`
	// AcceptRateLimit is accepted connections per second. 0 disables it.
	AcceptRateLimit int           `mapstructure:"acceptRateLimit"`
	AcceptBackoff   time.Duration `mapstructure:"acceptBackoff"`
}

// DefaultServerCfg returns the configuration used when no "server" file exists.
func DefaultServerCfg() *ServerCfg {
	return &ServerCfg{
		Addr:              "0.0.0.0:25565",
		IdleTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Second,
		MaxFrameSize:      2 << 20,
		ReadBufferSize:    4096,
		NoDelay:           true,
		InboundQueueSize:  256,
		OutboundQueueSize: 1024,
		InboundOverflow:   OverflowBlock,
		OutboundOverflow:  OverflowDisconnect,
		AcceptBackoff:     50 * time.Millisecond,
	}
}

// GetName returns the configuration name for ServerCfg
func (c *ServerCfg) GetName() string {
	return "server"
}

// Validate validates the ServerCfg parameters
func (c *ServerCfg) Validate() error {
	if c.Addr == "" {
		return errors.New("addr cannot be empty")
	}
	if c.IdleTimeout < 0 || c.WriteTimeout < 0 || c.AcceptBackoff < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.MaxFrameSize <= 0 {
		return errors.New("maxFrameSize must be positive")
	}
	if c.ReadBufferSize <= 0 {
		return errors.New("readBufferSize must be positive")
	}
	if c.SocketBufferSize < 0 {
		return errors.New("socketBufferSize must not be negative")
	}
	if c.InboundQueueSize <= 0 || c.OutboundQueueSize <= 0 {
		return errors.New("queue sizes must be positive")
	}
	if c.InboundOverflow != OverflowBlock && c.InboundOverflow != OverflowDisconnect {
		return fmt.Errorf("inboundOverflow %s not allowed, use block or disconnect", c.InboundOverflow)
	}
	if c.OutboundOverflow != OverflowDrop && c.OutboundOverflow != OverflowDisconnect {
		return fmt.Errorf("outboundOverflow %s not allowed, use drop or disconnect", c.OutboundOverflow)
	}
	if c.InboundRateLimit < 0 || c.InboundRateBurst < 0 || c.AcceptRateLimit < 0 {
		return errors.New("rate limits must not be negative")
	}
	return nil
}

func (c *ServerCfg) inboundBurst() int {
	if c.InboundRateBurst > 0 {
		return c.InboundRateBurst
	}
	return c.InboundRateLimit
}
