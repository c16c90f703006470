package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcx/dice/config"
	"github.com/rs/zerolog"
)

// LogEvent is a single log line under construction:
// log.Info().Str("k", "v").Msg("text").
type LogEvent = zerolog.Event

// Logger is what components hold on to.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
}

// GameLogger writes through zerolog to the appenders named in LogCfg. The
// level and appenders can be swapped at runtime with Reconfigure.
type GameLogger struct {
	zl atomic.Pointer[zerolog.Logger]

	mu   sync.Mutex
	file *os.File
	cfg  *LogCfg
}

// NewLogger builds a logger from cfg; nil means DefaultCfg. If the log file
// cannot be opened the error is reported on stderr and the file appender is skipped.
func NewLogger(cfg *LogCfg) *GameLogger {
	l := &GameLogger{}
	if err := l.Reconfigure(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
	}
	return l
}

// NewLoggerTo builds a logger writing JSON lines to w, used by tests and tools.
func NewLoggerTo(w io.Writer, level Level) *GameLogger {
	l := &GameLogger{cfg: &LogCfg{LogLevel: level}}
	zl := zerolog.New(w).Level(zerolog.Level(level)).With().Timestamp().Logger()
	l.zl.Store(&zl)
	return l
}

// Reconfigure rebuilds the writers and level from cfg.
func (l *GameLogger) Reconfigure(cfg *LogCfg) error {
	if cfg == nil {
		cfg = DefaultCfg()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		writers []io.Writer
		file    *os.File
		openErr error
	)
	if cfg.ConsoleAppender {
		if cfg.ConsolePretty {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
		} else {
			writers = append(writers, os.Stdout)
		}
	}
	if cfg.FileAppender {
		file, openErr = openLogFile(cfg.LogPath)
		if openErr == nil {
			writers = append(writers, file)
		}
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(out).Level(zerolog.Level(cfg.LogLevel)).With().Timestamp()
	if cfg.EnabledCallerInfo {
		ctx = ctx.Caller()
	}
	zl := ctx.Logger()
	l.zl.Store(&zl)

	if l.file != nil && l.file != file {
		_ = l.file.Close()
	}
	l.file = file
	l.cfg = cfg
	return openErr
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// OnConfigChanged implements config.ConfigChangeListener for the "logger" config.
func (l *GameLogger) OnConfigChanged(configName string, newConfig, _ config.Config) error {
	if configName != "logger" {
		return nil
	}
	cfg, ok := newConfig.(*LogCfg)
	if !ok {
		return fmt.Errorf("log: unexpected config type %T", newConfig)
	}
	return l.Reconfigure(cfg)
}


// Level reports the current minimum level.
func (l *GameLogger) Level() Level { return Level(l.zl.Load().GetLevel()) }

func (l *GameLogger) Debug() *LogEvent { return l.zl.Load().Debug() }
func (l *GameLogger) Info() *LogEvent  { return l.zl.Load().Info() }
func (l *GameLogger) Warn() *LogEvent  { return l.zl.Load().Warn() }
func (l *GameLogger) Error() *LogEvent { return l.zl.Load().Error() }
func (l *GameLogger) Fatal() *LogEvent { return l.zl.Load().Fatal() }

// Close releases the log file, if any.
func (l *GameLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
