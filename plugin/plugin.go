// Package plugin starts and stops the long lived parts of a server in
// dependency order.
package plugin

import (
	"context"
	"fmt"
	"time"
)

// Plugin is one startable component. Start must return once the component is
// running; Stop releases it and may be called only after a successful Start.
type Plugin interface {
	Name() string
	// Dependencies names plugins that must be started first.
	Dependencies() []string
	Start(ctx context.Context) error
	Stop() error
}

// Status is the lifecycle position of a registered plugin.
type Status int

const (
	StatusRegistered Status = iota
	StatusStarted
	StatusStopped
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusRegistered:
		return "registered"
	case StatusStarted:
		return "started"
	case StatusStopped:
		return "stopped"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Info is a snapshot of one plugin's state.
type Info struct {
	Name         string
	Status       Status
	Dependencies []string
	StartTime    time.Time
	StopTime     time.Time
	Err          error
}

// Error reports which plugin failed and in which step.
type Error struct {
	Plugin string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("plugin %s %s: %v", e.Plugin, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
