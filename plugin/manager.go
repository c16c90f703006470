package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
)

// Manager owns a set of plugins.
type Manager struct {
	mu      sync.Mutex
	plugins map[string]Plugin
	infos   map[string]*Info
	// started holds names in start order; StopAll walks it backwards.
	started []string
}

func NewManager() *Manager {
	return &Manager{
		plugins: make(map[string]Plugin),
		infos:   make(map[string]*Info),
	}
}

// Register adds p. Names must be unique.
func (m *Manager) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin cannot be nil")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	m.plugins[name] = p
	m.infos[name] = &Info{
		Name:         name,
		Status:       StatusRegistered,
		Dependencies: p.Dependencies(),
	}
	log.Debug().Str("plugin", name).Msg("plugin registered")
	return nil
}

// StartAll starts every registered plugin, dependencies first. If one fails,
// the plugins already started are stopped in reverse order.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, err := m.resolveDependencies()
	if err != nil {
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	log.Info().Strs("order", order).Msg("starting plugins")

	for _, name := range order {
		if slices.Contains(m.started, name) {
			continue
		}
		info := m.infos[name]
		if err := m.plugins[name].Start(ctx); err != nil {
			info.Status = StatusError
			info.Err = err
			perr := &Error{Plugin: name, Op: "start", Err: err}
			if rerr := m.stopStarted(); rerr != nil {
				return multierror.Append(perr, rerr)
			}
			return perr
		}
		info.Status = StatusStarted
		info.StartTime = time.Now()
		info.Err = nil
		reportStatus(name, StatusStarted)
		m.started = append(m.started, name)
		log.Info().Str("plugin", name).Msg("plugin started")
	}
	return nil
}

// StopAll stops started plugins in reverse start order. Every plugin is
// stopped even if some fail; the failures are returned together.
func (m *Manager) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopStarted()
}

func (m *Manager) stopStarted() error {
	var result *multierror.Error
	for i := len(m.started) - 1; i >= 0; i-- {
		name := m.started[i]
		info := m.infos[name]
		if err := m.plugins[name].Stop(); err != nil {
			info.Status = StatusError
			info.Err = err
			log.Error().Err(err).Str("plugin", name).Msg("failed to stop plugin")
			result = multierror.Append(result, &Error{Plugin: name, Op: "stop", Err: err})
			continue
		}
		info.Status = StatusStopped
		info.StopTime = time.Now()
		reportStatus(name, StatusStopped)
		log.Info().Str("plugin", name).Msg("plugin stopped")
	}
	m.started = m.started[:0]
	return result.ErrorOrNil()
}

// Get returns the plugin registered under name, or nil.
func (m *Manager) Get(name string) Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plugins[name]
}

// Info returns a copy of the named plugin's state.
func (m *Manager) Info(name string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, exists := m.infos[name]
	if !exists {
		return Info{}, fmt.Errorf("plugin %s not found", name)
	}
	return *info, nil
}

// List returns every plugin's state sorted by name.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]Info, 0, len(m.infos))
	for _, name := range m.sortedNames() {
		infos = append(infos, *m.infos[name])
	}
	return infos
}

func (m *Manager) sortedNames() []string {
	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// resolveDependencies returns a start order by depth first topological sort.
// Plugins are visited by name so the order is stable between runs.
func (m *Manager) resolveDependencies() ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(m.plugins))

	var visit func(string) error
	visit = func(name string) error {
		if visiting[name] {
			return fmt.Errorf("circular dependency detected involving plugin %s", name)
		}
		if visited[name] {
			return nil
		}
		p, exists := m.plugins[name]
		if !exists {
			return fmt.Errorf("plugin %s not found", name)
		}
		visiting[name] = true
		for _, dep := range p.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		visiting[name] = false
		visited[name] = true
		result = append(result, name)
		return nil
	}

	for _, name := range m.sortedNames() {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// reportStatus sets the "plugin.started" gauge for name: 1 while running.
func reportStatus(name string, status Status) {
	var v metrics.Value
	if status == StatusStarted {
		v = 1
	}
	metrics.UpdateGaugeWithDimGroup("plugin", "started", v, metrics.Dimension{"plugin": name})
}
