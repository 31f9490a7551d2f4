package cliconfig

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bft-labs/aesdsocket/internal/adapters/fs"
	logadapter "github.com/bft-labs/aesdsocket/internal/adapters/log"
	"github.com/bft-labs/aesdsocket/internal/domain"
)

// Default values for Config.
const (
	DefaultPort      = 9000
	DefaultBacklog   = 10
	DefaultDataFile  = fs.DefaultPath
	DefaultChunkSize = 60000
	DefaultLogLevel  = "info"
	DefaultSyslogTag = "aesdsocket"
)

// Config holds CLI configuration for aesdsocket.
type Config struct {
	Port      int
	Backlog   int
	DataFile  string
	Daemon    bool
	ChunkSize int

	LogLevel  string
	LogSink   string
	SyslogTag string

	MetricsAddr string
	WatchStore  bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Port:      DefaultPort,
		Backlog:   DefaultBacklog,
		DataFile:  DefaultDataFile,
		ChunkSize: DefaultChunkSize,
		LogLevel:  DefaultLogLevel,
		LogSink:   logadapter.SinkSyslog,
		SyslogTag: DefaultSyslogTag,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
// Errors wrap domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return invalid("port %d out of range", c.Port)
	}
	if c.Backlog < 1 {
		return invalid("backlog must be positive")
	}
	if c.ChunkSize < 1 {
		return invalid("chunk size must be positive")
	}
	if c.DataFile == "" {
		return invalid("data file is required")
	}

	// The daemon runs with working directory "/".
	if !filepath.IsAbs(c.DataFile) {
		abs, err := filepath.Abs(c.DataFile)
		if err != nil {
			return invalid("data file: %v", err)
		}
		c.DataFile = abs
	}

	switch c.LogSink {
	case logadapter.SinkSyslog, logadapter.SinkConsole:
	case "":
		c.LogSink = logadapter.SinkSyslog
	default:
		return invalid("unknown log sink %q", c.LogSink)
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return invalid("log level: %v", err)
	}

	if c.SyslogTag == "" {
		c.SyslogTag = DefaultSyslogTag
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
