package log

import (
	"bytes"
	"errors"
	"log/syslog"
	"strings"
	"testing"

	"github.com/bft-labs/aesdsocket/internal/ports"
)

func TestOpenSink_Console(t *testing.T) {
	var out bytes.Buffer
	s, err := OpenSink(SinkConfig{Kind: SinkConsole, Level: "info", Console: &out})
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	defer s.Close()

	s.Debug("hidden")
	s.Info("Accepted connection from 127.0.0.1", ports.String("session", "abc"))
	s.Error("File open failed", ports.Err(errors.New("permission denied")))

	got := out.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("debug message written at info level: %q", got)
	}
	for _, want := range []string{"Accepted connection from 127.0.0.1", "session", "abc", "File open failed", "permission denied"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %q", want, got)
		}
	}
	if s.Kind() != SinkConsole {
		t.Errorf("Kind() = %s, want %s", s.Kind(), SinkConsole)
	}
}

func TestOpenSink_SyslogFallback(t *testing.T) {
	orig := dialSyslog
	t.Cleanup(func() { dialSyslog = orig })
	dialSyslog = func(string) (*syslog.Writer, error) {
		return nil, errors.New("no syslog daemon")
	}

	var out bytes.Buffer
	s, err := OpenSink(SinkConfig{Kind: SinkSyslog, Tag: "aesdsocket", Level: "debug", Console: &out})
	if err != nil {
		t.Fatalf("OpenSink: %v", err)
	}
	if s.Kind() != SinkConsole {
		t.Errorf("Kind() = %s, want fallback to %s", s.Kind(), SinkConsole)
	}
	if !strings.Contains(out.String(), "no syslog daemon") {
		t.Errorf("fallback warning missing: %q", out.String())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenSink_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  SinkConfig
	}{
		{"unknown kind", SinkConfig{Kind: "journald", Level: "info"}},
		{"bad level", SinkConfig{Kind: SinkConsole, Level: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := OpenSink(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func TestSink_CloseIdempotent(t *testing.T) {
	c := &closeCounter{}
	s := &Sink{ZerologAdapter: consoleSink(&bytes.Buffer{}, 0).ZerologAdapter, closer: c}
	for i := 0; i < 3; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	if c.n != 1 {
		t.Errorf("underlying Close called %d times, want 1", c.n)
	}
}
