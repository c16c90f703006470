package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/dice/config"
	"github.com/lcx/dice/log"
	"github.com/lcx/dice/tick"
)

func newManager(t *testing.T, dir string) config.ConfigManager {
	t.Helper()
	cm := config.NewConfigManager()
	cm.SetBasePath(dir)
	t.Cleanup(func() { _ = cm.Close() })
	return cm
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cm := newManager(t, t.TempDir())
	cfg := tick.DefaultCfg()
	require.NoError(t, load(cm, cfg))
	assert.Equal(t, tick.DefaultCfg(), cfg)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tick.yaml"), []byte("tickRate: 10\nslowTickWarn: 75ms\n"), 0o644))
	cm := newManager(t, dir)

	cfg := tick.DefaultCfg()
	require.NoError(t, load(cm, cfg))
	assert.Equal(t, 10, cfg.TickRate)
	assert.Equal(t, 75*time.Millisecond, cfg.SlowTickWarn)
	assert.Equal(t, tick.DefaultCfg().MaxPacketsPerTick, cfg.MaxPacketsPerTick)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tick.yaml"), []byte("tickRate: 0\n"), 0o644))
	cm := newManager(t, dir)
	assert.ErrorContains(t, load(cm, tick.DefaultCfg()), "tick config")
}

func TestRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--config", "/etc/dice", "-e", "prod"}))
	dir, err := cmd.Flags().GetString("config")
	require.NoError(t, err)
	env, err := cmd.Flags().GetString("env")
	require.NoError(t, err)
	assert.Equal(t, "/etc/dice", dir)
	assert.Equal(t, "prod", env)
}

func TestReportConfigError(t *testing.T) {
	prev := log.Default()
	t.Cleanup(func() { log.SetDefaultLogger(prev) })

	var buf bytes.Buffer
	log.SetDefaultLogger(log.NewLoggerTo(&buf, log.InfoLevel))
	reportConfigError("server", errors.New("reload: bad yaml"))

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"config":"server"`)
	assert.Contains(t, out, "reload: bad yaml")
	assert.Contains(t, out, "config reload failed")
}
