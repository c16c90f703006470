package log

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Level is a log severity. It decodes from config strings such as "info".
type Level int8

const (
	TraceLevel = Level(zerolog.TraceLevel)
	DebugLevel = Level(zerolog.DebugLevel)
	InfoLevel  = Level(zerolog.InfoLevel)
	WarnLevel  = Level(zerolog.WarnLevel)
	ErrorLevel = Level(zerolog.ErrorLevel)
	FatalLevel = Level(zerolog.FatalLevel)
)

func (l Level) String() string { return zerolog.Level(l).String() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	zl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(string(text))))
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	*l = Level(zl)
	return nil
}

// LogCfg is the "logger" config.
type LogCfg struct {
	// LogPath is the file written by the file appender. Parent directories are created.
	LogPath string `mapstructure:"path"`

	// LogLevel is the minimum level written. Hot reloadable.
	LogLevel Level `mapstructure:"level"`

	// FileAppender writes JSON lines to LogPath.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender writes to stdout.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// ConsolePretty switches the console appender to zerolog's human readable writer.
	ConsolePretty bool `mapstructure:"consolePretty"`

	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`
}

func (cfg *LogCfg) GetName() string { return "logger" }

func (cfg *LogCfg) Validate() error {
	if cfg.LogLevel < TraceLevel || cfg.LogLevel > FatalLevel {
		return fmt.Errorf("log: invalid level %d", cfg.LogLevel)
	}
	if cfg.FileAppender && cfg.LogPath == "" {
		return fmt.Errorf("log: file appender needs a path")
	}
	return nil
}

// DefaultCfg returns the configuration used when no "logger" file exists.
func DefaultCfg() *LogCfg {
	return &LogCfg{
		LogPath:         "./dice.log",
		LogLevel:        InfoLevel,
		ConsoleAppender: true,
		ConsolePretty:   true,
	}
}
