package metrics

import (
	"errors"
	"time"
)

// Cfg is the "metrics" config.
type Cfg struct {
	Enabled     bool          `mapstructure:"enabled"`
	Addr        string        `mapstructure:"addr"`
	ServiceName string        `mapstructure:"serviceName"`
	Expiration  time.Duration `mapstructure:"expiration"`
}

func (c *Cfg) GetName() string { return "metrics" }

func (c *Cfg) Validate() error {
	if c.ServiceName == "" {
		return errors.New("metrics: serviceName is required")
	}
	if c.Enabled && c.Addr == "" {
		return errors.New("metrics: addr is required when enabled")
	}
	if c.Expiration < 0 {
		return errors.New("metrics: expiration must not be negative")
	}
	return nil
}

// DefaultCfg returns the configuration used when no "metrics" file exists.
func DefaultCfg() *Cfg {
	return &Cfg{
		Enabled:     true,
		Addr:        "127.0.0.1:9100",
		ServiceName: "dice",
		Expiration:  time.Minute,
	}
}
