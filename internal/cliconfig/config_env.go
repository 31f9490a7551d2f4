package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (AESDSOCKET_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("port", os.Getenv("AESDSOCKET_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("backlog", os.Getenv("AESDSOCKET_BACKLOG"), &cfg.Backlog); err != nil {
		return err
	}
	if err := s.setIntFromString("chunk-size", os.Getenv("AESDSOCKET_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}

	s.setString("data-file", os.Getenv("AESDSOCKET_DATA_FILE"), &cfg.DataFile)
	s.setString("log-level", os.Getenv("AESDSOCKET_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-sink", os.Getenv("AESDSOCKET_LOG_SINK"), &cfg.LogSink)
	s.setString("syslog-tag", os.Getenv("AESDSOCKET_SYSLOG_TAG"), &cfg.SyslogTag)
	s.setString("metrics-addr", os.Getenv("AESDSOCKET_METRICS_ADDR"), &cfg.MetricsAddr)

	s.setBoolFromString("daemon", os.Getenv("AESDSOCKET_DAEMON"), &cfg.Daemon)
	s.setBoolFromString("watch-store", os.Getenv("AESDSOCKET_WATCH_STORE"), &cfg.WatchStore)

	return nil
}
