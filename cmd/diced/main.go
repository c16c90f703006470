// Command diced runs the lobby server: a TCP acceptor feeding sessions to a
// fixed rate tick loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/lcx/dice/config"
	"github.com/lcx/dice/discovery"
	"github.com/lcx/dice/lobby"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/metrics"
	"github.com/lcx/dice/net"
	"github.com/lcx/dice/plugin"
	"github.com/lcx/dice/tick"
)

type options struct {
	configDir string
	env       string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "diced",
		Short:         "Run the lobby server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			err := run(ctx, opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, "diced:", err)
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&opts.configDir, "config", "c", "configs", "directory holding <name>.yaml files")
	cmd.Flags().StringVarP(&opts.env, "env", "e", "", "environment subdirectory searched before --config")
	return cmd
}

// load reads cfg from the manager. A missing file keeps the defaults.
func load(cm config.ConfigManager, cfg config.Config) error {
	if err := cm.LoadConfig(cfg.GetName(), cfg); err != nil && !config.IsNotFound(err) {
		return fmt.Errorf("%s config: %w", cfg.GetName(), err)
	}
	return cfg.Validate()
}

// reportConfigError logs failures from background config reloads.
func reportConfigError(configName string, err error) {
	log.Error().Str("config", configName).Err(err).Msg("config reload failed")
}

func run(ctx context.Context, opts *options) (err error) {
	cm := config.NewConfigManager()
	cm.SetBasePath(opts.configDir)
	cm.SetEnvironment(opts.env)
	config.SetInstance(cm)
	defer func() { err = multierror.Append(err, cm.Close()).ErrorOrNil() }()

	if err := log.InitializeWithConfigManager(cm, log.DefaultCfg()); err != nil {
		if !config.IsNotFound(err) {
			return fmt.Errorf("logger config: %w", err)
		}
		if err := log.InitializeWithConfigManager(nil, log.DefaultCfg()); err != nil {
			return err
		}
	}
	defer log.Default().Close()
	config.SetErrorHandler(reportConfigError)

	metricsCfg := metrics.DefaultCfg()
	tickCfg := tick.DefaultCfg()
	lobbyCfg := lobby.DefaultCfg()
	discoveryCfg := discovery.DefaultCfg()
	for _, c := range []config.Config{metricsCfg, tickCfg, lobbyCfg, discoveryCfg} {
		if err := load(cm, c); err != nil {
			return err
		}
	}

	handoff := net.NewHandoff[*net.Session]()
	acceptor, err := newAcceptor(cm, handoff)
	if err != nil {
		return err
	}

	server := &serverPlugin{acceptor: acceptor}
	plugins := []plugin.Plugin{server}
	if metricsCfg.Enabled {
		plugins = append(plugins, &metricsPlugin{cfg: metricsCfg})
	} else {
		plugins = append(plugins, noopPlugin("metrics"))
	}
	if discoveryCfg.Enabled {
		registrar, err := discovery.NewRegistrar(discoveryCfg)
		if err != nil {
			return err
		}
		plugins = append(plugins, &discoveryPlugin{registrar: registrar, server: server})
	}

	pm := plugin.NewManager()
	for _, p := range plugins {
		if err := pm.Register(p); err != nil {
			return err
		}
	}
	if err := pm.StartAll(ctx); err != nil {
		return err
	}
	defer func() { err = multierror.Append(err, pm.StopAll()).ErrorOrNil() }()

	loop := tick.NewLoop(tickCfg, tick.HandoffSource{Handoff: handoff}, lobby.New(lobbyCfg))
	return loop.Run(ctx)
}

func newAcceptor(cm config.ConfigManager, handoff *net.Handoff[*net.Session]) (*net.Acceptor, error) {
	acceptor, err := net.NewAcceptorWithConfigManager(cm, handoff)
	if err == nil {
		return acceptor, nil
	}
	if !config.IsNotFound(err) {
		return nil, err
	}
	return net.NewAcceptor(net.DefaultServerCfg(), handoff), nil
}
