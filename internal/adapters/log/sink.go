package log

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Sink kinds.
const (
	SinkSyslog  = "syslog"
	SinkConsole = "console"
)

// SinkConfig selects where log lines go.
type SinkConfig struct {
	// Kind is SinkSyslog or SinkConsole.
	Kind string

	// Tag identifies the process in the system log.
	Tag string

	// Level is a zerolog level name ("debug", "info", "error", ...).
	Level string

	// Console receives console output. Defaults to os.Stderr.
	Console io.Writer
}

// Sink is the process-wide logging collaborator. It is opened once at
// startup and closed once as the last cleanup step.
type Sink struct {
	*ZerologAdapter
	kind   string
	closer io.Closer
}

// dialSyslog is replaced in tests.
var dialSyslog = func(tag string) (*syslog.Writer, error) {
	return syslog.New(syslog.LOG_USER|syslog.LOG_INFO, tag)
}

// OpenSink opens the configured sink. When the system logger cannot be
// reached it falls back to the console and records a warning there.
func OpenSink(cfg SinkConfig) (*Sink, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	switch cfg.Kind {
	case SinkConsole, "":
		return consoleSink(console, level), nil
	case SinkSyslog:
		w, err := dialSyslog(cfg.Tag)
		if err != nil {
			s := consoleSink(console, level)
			s.Warn(fmt.Sprintf("syslog unavailable, logging to console: %v", err))
			return s, nil
		}
		logger := zerolog.New(zerolog.SyslogLevelWriter(w)).Level(level)
		return &Sink{
			ZerologAdapter: NewZerologAdapterWithLogger(logger),
			kind:           SinkSyslog,
			closer:         w,
		}, nil
	default:
		return nil, fmt.Errorf("unknown log sink %q", cfg.Kind)
	}
}

func consoleSink(out io.Writer, level zerolog.Level) *Sink {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Sink{
		ZerologAdapter: NewZerologAdapterWithLogger(logger),
		kind:           SinkConsole,
	}
}

// Kind returns the sink actually in use.
func (s *Sink) Kind() string { return s.kind }

// Close closes the system log connection. It is idempotent.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
