package tick

import (
	"errors"
	"time"
)

// Cfg is the "tick" config.
type Cfg struct {
	// TickRate is steps per second.
	TickRate int `mapstructure:"tickRate"`
	// MaxPacketsPerTick caps how many packets one session may feed the
	// handler per step. 0 means no cap.
	MaxPacketsPerTick int `mapstructure:"maxPacketsPerTick"`
	// SlowTickWarn logs steps that run longer than this. 0 means one period.
	SlowTickWarn time.Duration `mapstructure:"slowTickWarn"`
}

// DefaultCfg returns the configuration used when no "tick" file exists.
func DefaultCfg() *Cfg {
	return &Cfg{
		TickRate:          20,
		MaxPacketsPerTick: 64,
	}
}

func (c *Cfg) GetName() string { return "tick" }

func (c *Cfg) Validate() error {
	if c.TickRate <= 0 || c.TickRate > 1000 {
		return errors.New("tickRate must be in 1..1000")
	}
	if c.MaxPacketsPerTick < 0 {
		return errors.New("maxPacketsPerTick must not be negative")
	}
	if c.SlowTickWarn < 0 {
		return errors.New("slowTickWarn must not be negative")
	}
	return nil
}

// Period is the time between two steps.
func (c *Cfg) Period() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
