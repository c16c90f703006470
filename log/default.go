package log

import (
	"sync/atomic"

	"github.com/lcx/dice/config"
)

var _defaultLogger atomic.Pointer[GameLogger]

func init() {
	_defaultLogger.Store(NewLogger(nil))
}

// SetDefaultLogger replaces the logger behind the package level functions.
func SetDefaultLogger(logger *GameLogger) {
	if logger != nil {
		_defaultLogger.Store(logger)
	}
}

// Default returns the logger behind the package level functions.
func Default() *GameLogger { return _defaultLogger.Load() }

// InitializeWithConfigManager loads the "logger" config over cfg's defaults,
// installs the result as the default logger and subscribes it to reloads.
func InitializeWithConfigManager(cm config.ConfigManager, cfg *LogCfg) error {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	if cm != nil {
		if err := cm.LoadConfig(cfg.GetName(), cfg); err != nil {
			return err
		}
	}
	logger := NewLogger(cfg)
	SetDefaultLogger(logger)
	if cm != nil {
		cm.AddChangeListener(logger)
	}
	return nil
}

// Initialize is InitializeWithConfigManager on the singleton manager with defaults.
func Initialize() error {
	return InitializeWithConfigManager(config.GetInstance(), nil)
}

func Debug() *LogEvent { return Default().Debug() }
func Info() *LogEvent  { return Default().Info() }
func Warn() *LogEvent  { return Default().Warn() }
func Error() *LogEvent { return Default().Error() }
func Fatal() *LogEvent { return Default().Fatal() }
