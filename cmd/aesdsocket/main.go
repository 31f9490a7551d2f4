package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/aesdsocket/internal/adapters/fs"
	logAdapter "github.com/bft-labs/aesdsocket/internal/adapters/log"
	"github.com/bft-labs/aesdsocket/internal/adapters/proc"
	"github.com/bft-labs/aesdsocket/internal/app"
	"github.com/bft-labs/aesdsocket/internal/cliconfig"
	"github.com/bft-labs/aesdsocket/internal/metrics"
	"github.com/bft-labs/aesdsocket/internal/ports"
	"github.com/bft-labs/aesdsocket/plugins/storewatch"
)

const longHelp = `Line-framed TCP log server.

Each client sends one newline-terminated packet. The packet is appended to
the data file and the entire file is sent back before the connection closes.
SIGINT or SIGTERM removes the data file and exits.`

var exampleUsage = strings.TrimSpace(`
  aesdsocket
  aesdsocket -d
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "aesdsocket [-d]",
		Short:         "Line-framed TCP log server on port 9000",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Determine config path
			cfgFile := cfgPath
			if cfgFile == "" && cliconfig.FileExists(cliconfig.DefaultConfigPath) {
				cfgFile = cliconfig.DefaultConfigPath
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" {
				abs, err := filepath.Abs(cfgFile)
				if err != nil {
					return fmt.Errorf("config path: %w", err)
				}
				cfgFile = abs
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (AESDSOCKET_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cfg, cfgFile)
		},
	}

	// Flags
	root.Flags().BoolVarP(&cfg.Daemon, "daemon", "d", cfg.Daemon, "run in the background after binding the port")
	root.Flags().StringVar(&cfgPath, "config", "", fmt.Sprintf("path to config file (default: %s if present)", cliconfig.DefaultConfigPath))

	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "TCP port to listen on")
	root.Flags().StringVar(&cfg.DataFile, "data-file", cfg.DataFile, "data file holding received packets")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogSink, "log-sink", cfg.LogSink, "log destination (syslog, console)")
	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address for the prometheus /metrics endpoint (disabled when empty)")
	for _, name := range []string{"port", "data-file", "log-level", "log-sink", "metrics-addr"} {
		if err := root.Flags().MarkHidden(name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to hide %s flag: %v\n", name, err)
		}
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "aesdsocket: %v\n", err)
		os.Exit(1)
	}
}

// run binds, optionally detaches, and serves until a termination signal.
// An error means startup failed; cleanup failures are logged only.
func run(cfg cliconfig.Config, cfgFile string) error {
	sink, err := logAdapter.OpenSink(logAdapter.SinkConfig{
		Kind:  cfg.LogSink,
		Tag:   cfg.SyslogTag,
		Level: cfg.LogLevel,
	})
	if err != nil {
		return err
	}

	// Register before binding so an early signal is not lost.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ln, err := app.Bind(cfg.Port, cfg.Backlog, sink)
	if err != nil {
		sink.Error("startup failed", ports.Err(err))
		_ = sink.Close()
		return err
	}

	opts := []app.Option{
		app.WithLogger(sink),
		app.WithLogCloser(sink),
		app.WithChunkSize(cfg.ChunkSize),
	}
	store := fs.NewFileLogStore(cfg.DataFile)

	var detacher ports.Detacher = proc.Foreground{}
	if cfg.Daemon {
		bg, err := proc.NewBackground(childArgs(cfg, cfgFile), sink)
		if err != nil {
			_ = ln.Close()
			_ = sink.Close()
			return err
		}
		detacher = bg
	}

	detached, err := detacher.Detach(ln)
	if err != nil {
		sink.Error("Failed to detach", ports.Err(err))
		_ = app.NewServer(ln, store, opts...).Release()
		return err
	}
	if detached {
		return app.NewServer(ln, store, opts...).Release()
	}

	if cfg.MetricsAddr != "" {
		ms, err := metrics.Listen(cfg.MetricsAddr, sink)
		if err != nil {
			sink.Error("startup failed", ports.Err(err))
			_ = app.NewServer(ln, store, opts...).Release()
			return fmt.Errorf("metrics endpoint: %w", err)
		}
		opts = append(opts, app.WithResource(app.Resource{Name: "metrics endpoint", Close: ms.Close}))
	}
	if cfg.WatchStore {
		opts = append(opts, storewatch.WithDefaultStoreWatch())
	}

	srv := app.NewServer(ln, store, opts...)
	// Cleanup failures were logged; the exit status stays 0.
	_ = srv.Serve(sigCh)
	return nil
}

// childArgs re-encodes the resolved configuration for the next daemon stage,
// which starts in "/" and must not depend on the caller's working directory.
func childArgs(cfg cliconfig.Config, cfgFile string) []string {
	args := []string{
		"--daemon",
		"--port", strconv.Itoa(cfg.Port),
		"--data-file", cfg.DataFile,
		"--log-level", cfg.LogLevel,
		"--log-sink", cfg.LogSink,
	}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}
	if cfg.MetricsAddr != "" {
		args = append(args, "--metrics-addr", cfg.MetricsAddr)
	}
	return args
}
