// Package metrics is a small facade over go-metrics. Init installs a
// Prometheus sink on a private registry that Handler exposes over HTTP.
// Before Init every helper writes to a blackhole sink.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"

	gometrics "github.com/armon/go-metrics"
	promsink "github.com/armon/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type state struct {
	m   *gometrics.Metrics
	reg *prometheus.Registry
}

var _state atomic.Pointer[state]

func init() {
	m, _ := gometrics.New(baseConfig("dice"), &gometrics.BlackholeSink{})
	_state.Store(&state{m: m, reg: prometheus.NewRegistry()})
}

func baseConfig(service string) *gometrics.Config {
	c := gometrics.DefaultConfig(service)
	c.EnableHostname = false
	c.EnableHostnameLabel = false
	c.EnableRuntimeMetrics = false
	c.EnableServiceLabel = false
	return c
}

// Init replaces the global sink with a Prometheus sink registered on a fresh registry.
func Init(cfg *Cfg) error {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sink, err := promsink.NewPrometheusSinkFrom(promsink.PrometheusOpts{
		Expiration: cfg.Expiration,
		Registerer: reg,
	})
	if err != nil {
		return fmt.Errorf("metrics: prometheus sink: %w", err)
	}

	m, err := gometrics.New(baseConfig(cfg.ServiceName), sink)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	_state.Store(&state{m: m, reg: reg})
	return nil
}

// Registry returns the registry the current sink reports to.
func Registry() *prometheus.Registry { return _state.Load().reg }

func key(group, name string) []string { return []string{group, name} }

func IncrCounterWithGroup(group, name string, value Value) {
	_state.Load().m.IncrCounter(key(group, name), float32(value))
}

func IncrCounterWithDimGroup(group, name string, value Value, dim Dimension) {
	_state.Load().m.IncrCounterWithLabels(key(group, name), float32(value), dim.labels())
}

func UpdateGaugeWithGroup(group, name string, value Value) {
	_state.Load().m.SetGauge(key(group, name), float32(value))
}

func UpdateGaugeWithDimGroup(group, name string, value Value, dim Dimension) {
	_state.Load().m.SetGaugeWithLabels(key(group, name), float32(value), dim.labels())
}

// RecordStopwatchWithGroup records the time elapsed since start.
func RecordStopwatchWithGroup(group, name string, start time.Time) {
	_state.Load().m.MeasureSince(key(group, name), start)
}

func RecordStopwatchWithDimGroup(group, name string, start time.Time, dim Dimension) {
	_state.Load().m.MeasureSinceWithLabels(key(group, name), start, dim.labels())
}
