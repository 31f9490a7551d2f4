package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = "/etc/aesdsocket/config.toml"

// FileConfig mirrors Config with TOML keys. Booleans are pointers so an
// absent key leaves the current value alone.
type FileConfig struct {
	Port        int    `toml:"port"`
	Backlog     int    `toml:"backlog"`
	DataFile    string `toml:"data_file"`
	Daemon      *bool  `toml:"daemon"`
	ChunkSize   int    `toml:"chunk_size"`
	LogLevel    string `toml:"log_level"`
	LogSink     string `toml:"log_sink"`
	SyslogTag   string `toml:"syslog_tag"`
	MetricsAddr string `toml:"metrics_addr"`
	WatchStore  *bool  `toml:"watch_store"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("backlog", fc.Backlog, &cfg.Backlog)
	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)

	s.setString("data-file", fc.DataFile, &cfg.DataFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-sink", fc.LogSink, &cfg.LogSink)
	s.setString("syslog-tag", fc.SyslogTag, &cfg.SyslogTag)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	s.setBool("daemon", fc.Daemon, &cfg.Daemon)
	s.setBool("watch-store", fc.WatchStore, &cfg.WatchStore)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
