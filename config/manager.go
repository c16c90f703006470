package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

// ConfigManager interface for configuration management
type ConfigManager interface {
	LoadConfig(configName string, config Config) error
	GetConfig(configName string) (Config, error)
	RegisterValidator(configName string, validator ValidatorFunc)
	RegisterHook(configName string, hook HookFunc)
	AddChangeListener(listener ConfigChangeListener)
	RemoveChangeListener(listener ConfigChangeListener)
	SetBasePath(path string)
	SetEnvironment(env string)
	Close() error
}

// ValidatorFunc configuration validation function
type ValidatorFunc func(Config) error

// HookFunc configuration change hook function
type HookFunc func(oldVal, newVal Config) error

// ErrorHandler receives errors from background reloads.
type ErrorHandler func(configName string, err error)

var _errorHandler ErrorHandler = func(configName string, err error) {
	fmt.Fprintf(os.Stderr, "config %s: %v\n", configName, err)
}

// SetErrorHandler replaces the reporter used for reload failures.
func SetErrorHandler(h ErrorHandler) {
	if h != nil {
		_errorHandler = h
	}
}

// configManager implementation of ConfigManager interface
type configManager struct {
	mu         sync.RWMutex
	configs    map[string]Config
	watchers   map[string]*fsnotify.Watcher
	validators map[string]ValidatorFunc
	hooks      map[string][]HookFunc
	listeners  []ConfigChangeListener
	basePath   string
	env        string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() ConfigManager {
	return &configManager{
		configs:    make(map[string]Config),
		watchers:   make(map[string]*fsnotify.Watcher),
		validators: make(map[string]ValidatorFunc),
		hooks:      make(map[string][]HookFunc),
		basePath:   "./configs",
		env:        "development",
	}
}

func (cm *configManager) newViper(configName string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(cm.basePath, cm.env))
	v.AddConfigPath(cm.basePath)

	v.AutomaticEnv()
	v.SetEnvPrefix(strings.ToUpper(configName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// decodeHooks lets config structs use time.Duration and any type implementing
// encoding.TextUnmarshaler (log levels, overflow policies).
func decodeHooks() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
}

func (cm *configManager) read(configName string, config Config) (*viper.Viper, error) {
	v := cm.newViper(configName)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}
	if err := v.Unmarshal(config, decodeHooks()); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config failed: %w", err)
	}
	if validator, exists := cm.validators[configName]; exists {
		if err := validator(config); err != nil {
			return nil, fmt.Errorf("validate config failed: %w", err)
		}
	}
	return v, nil
}

// IsNotFound reports whether err came from a config file that does not exist
// in any search path.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// LoadConfig loads configuration from file. Fields absent from the file keep
// the values config already holds, so callers pass a struct filled with defaults.
func (cm *configManager) LoadConfig(configName string, config Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	v, err := cm.read(configName, config)
	if err != nil {
		return err
	}

	cm.configs[configName] = config

	if err := cm.watchConfigFile(configName, v); err != nil {
		return fmt.Errorf("watch config file failed: %w", err)
	}

	return nil
}

// GetConfig retrieves a loaded configuration
func (cm *configManager) GetConfig(configName string) (Config, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	config, exists := cm.configs[configName]
	if !exists {
		return nil, fmt.Errorf("config %s not found", configName)
	}

	return config, nil
}

// RegisterValidator registers configuration validator
func (cm *configManager) RegisterValidator(configName string, validator ValidatorFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.validators[configName] = validator
}

// RegisterHook registers configuration change hook
func (cm *configManager) RegisterHook(configName string, hook HookFunc) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.hooks[configName] = append(cm.hooks[configName], hook)
}

// AddChangeListener registers a listener for every config this manager loads.
func (cm *configManager) AddChangeListener(listener ConfigChangeListener) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.listeners = append(cm.listeners, listener)
}

// RemoveChangeListener unregisters a listener added with AddChangeListener.
func (cm *configManager) RemoveChangeListener(listener ConfigChangeListener) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for i, l := range cm.listeners {
		if l == listener {
			cm.listeners = append(cm.listeners[:i], cm.listeners[i+1:]...)
			return
		}
	}
}

// SetBasePath sets base path for configuration files
func (cm *configManager) SetBasePath(path string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.basePath = path
}

// SetEnvironment sets environment for configuration
func (cm *configManager) SetEnvironment(env string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.env = env
}

// watchConfigFile watches the directory holding the config file so that
// editors replacing the file by rename are seen as well.
func (cm *configManager) watchConfigFile(configName string, v *viper.Viper) error {
	configFile := v.ConfigFileUsed()
	if configFile == "" {
		return nil
	}
	if old, ok := cm.watchers[configName]; ok {
		_ = old.Close()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	cm.watchers[configName] = watcher

	target := filepath.Clean(configFile)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					cm.reloadConfig(configName)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				_errorHandler(configName, fmt.Errorf("watcher: %w", err))
			}
		}
	}()

	return watcher.Add(filepath.Dir(target))
}

// reloadConfig reloads configuration when file changes. A reload that fails
// to read, decode, validate or pass its hooks keeps the old value.
func (cm *configManager) reloadConfig(configName string) {
	cm.mu.Lock()
	oldConfig, exists := cm.configs[configName]
	if !exists {
		cm.mu.Unlock()
		return
	}

	// Start from a copy of the current value so absent keys keep their defaults.
	newConfig := reflect.New(reflect.TypeOf(oldConfig).Elem())
	newConfig.Elem().Set(reflect.ValueOf(oldConfig).Elem())
	cfg := newConfig.Interface().(Config)

	if _, err := cm.read(configName, cfg); err != nil {
		cm.mu.Unlock()
		_errorHandler(configName, fmt.Errorf("reload: %w", err))
		return
	}

	for _, hook := range cm.hooks[configName] {
		if err := hook(oldConfig, cfg); err != nil {
			cm.mu.Unlock()
			_errorHandler(configName, fmt.Errorf("reload hook: %w", err))
			return
		}
	}

	cm.configs[configName] = cfg
	listeners := append([]ConfigChangeListener(nil), cm.listeners...)
	cm.mu.Unlock()

	for _, l := range listeners {
		if err := l.OnConfigChanged(configName, cfg, oldConfig); err != nil {
			_errorHandler(configName, fmt.Errorf("listener: %w", err))
		}
	}
}

// Close stops every file watcher.
func (cm *configManager) Close() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	var result *multierror.Error
	for name, watcher := range cm.watchers {
		if err := watcher.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close watcher %s: %w", name, err))
		}
		delete(cm.watchers, name)
	}

	return result.ErrorOrNil()
}
