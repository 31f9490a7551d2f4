package cliconfig

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/bft-labs/aesdsocket/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 9000 {
		t.Errorf("Port = %v, want 9000", cfg.Port)
	}
	if cfg.Backlog != 10 {
		t.Errorf("Backlog = %v, want 10", cfg.Backlog)
	}
	if cfg.DataFile != "/var/tmp/aesdsocketdata" {
		t.Errorf("DataFile = %v, want /var/tmp/aesdsocketdata", cfg.DataFile)
	}
	if cfg.ChunkSize != 60000 {
		t.Errorf("ChunkSize = %v, want 60000", cfg.ChunkSize)
	}
	if cfg.LogSink != "syslog" {
		t.Errorf("LogSink = %v, want syslog", cfg.LogSink)
	}
	if cfg.Daemon {
		t.Error("Daemon = true, want false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mut func(*Config)) Config {
		c := DefaultConfig()
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", valid(func(*Config) {}), false},
		{"ephemeral port", valid(func(c *Config) { c.Port = 0 }), false},
		{"highest port", valid(func(c *Config) { c.Port = 65535 }), false},
		{"negative port", valid(func(c *Config) { c.Port = -1 }), true},
		{"port too large", valid(func(c *Config) { c.Port = 65536 }), true},
		{"zero backlog", valid(func(c *Config) { c.Backlog = 0 }), true},
		{"zero chunk size", valid(func(c *Config) { c.ChunkSize = 0 }), true},
		{"empty data file", valid(func(c *Config) { c.DataFile = "" }), true},
		{"console sink", valid(func(c *Config) { c.LogSink = "console" }), false},
		{"unknown sink", valid(func(c *Config) { c.LogSink = "kafka" }), true},
		{"debug level", valid(func(c *Config) { c.LogLevel = "debug" }), false},
		{"bad level", valid(func(c *Config) { c.LogLevel = "loud" }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Validate_Derivations(t *testing.T) {
	c := DefaultConfig()
	c.DataFile = "relative/data"
	c.LogSink = ""
	c.LogLevel = ""
	c.SyslogTag = ""
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if !filepath.IsAbs(c.DataFile) {
		t.Errorf("DataFile = %v, want absolute", c.DataFile)
	}
	if filepath.Base(c.DataFile) != "data" {
		t.Errorf("DataFile = %v, want base data", c.DataFile)
	}
	if c.LogSink != "syslog" {
		t.Errorf("LogSink = %v, want syslog", c.LogSink)
	}
	if c.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", c.LogLevel, DefaultLogLevel)
	}
	if c.SyslogTag != DefaultSyslogTag {
		t.Errorf("SyslogTag = %v, want %v", c.SyslogTag, DefaultSyslogTag)
	}
}
