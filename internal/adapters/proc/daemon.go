package proc

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/bft-labs/aesdsocket/internal/adapters/sock"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

// EnvDaemonStage carries the detachment stage across re-executions.
const EnvDaemonStage = "AESDSOCKET_DAEMON_STAGE"

// Detachment stages. The interactive process is StageLaunch; it starts
// StageSession in a new session, which starts StageServe and exits so the
// serving process is not a session leader.
const (
	StageLaunch  = ""
	StageSession = "session"
	StageServe   = "serve"
)

// Foreground keeps serving in the current process.
type Foreground struct{}

// Detach never detaches.
func (Foreground) Detach(net.Listener) (bool, error) { return false, nil }

// Background detaches the server from its controlling terminal by
// re-executing the binary twice, handing the bound listener down each time.
type Background struct {
	// Stage is the stage of the current process.
	Stage string

	// Path and Args re-execute the current binary.
	Path string
	Args []string

	// Start launches the next stage. Defaults to proc.Start.
	Start func(Command) (int, error)

	Logger ports.Logger
}

// NewBackground returns a Background strategy for the running binary.
func NewBackground(args []string, logger ports.Logger) (*Background, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return &Background{
		Stage:  os.Getenv(EnvDaemonStage),
		Path:   exe,
		Args:   args,
		Start:  Start,
		Logger: logger,
	}, nil
}

// Detach launches the next stage and reports true, or reports false in the
// serving stage.
func (b *Background) Detach(ln net.Listener) (bool, error) {
	var next string
	var setsid bool
	switch b.Stage {
	case StageLaunch:
		next, setsid = StageSession, true
	case StageSession:
		next = StageServe
	case StageServe:
		return false, nil
	default:
		return false, fmt.Errorf("unknown daemon stage %q", b.Stage)
	}

	f, err := sock.File(ln)
	if err != nil {
		return false, fmt.Errorf("listener descriptor: %w", err)
	}
	defer f.Close()

	start := b.Start
	if start == nil {
		start = Start
	}
	pid, err := start(Command{
		Path:       b.Path,
		Args:       b.Args,
		Env:        stageEnv(os.Environ(), next),
		Dir:        "/",
		ExtraFiles: []*os.File{f},
		Setsid:     setsid,
	})
	if err != nil {
		return false, err
	}

	if b.Logger != nil {
		b.Logger.Info("detached into background",
			ports.String("stage", next),
			ports.Int("pid", pid),
		)
	}
	return true, nil
}

// stageEnv returns env with the stage and inherited descriptor set, dropping
// any previous values.
func stageEnv(env []string, stage string) []string {
	out := make([]string, 0, len(env)+2)
	for _, kv := range env {
		if strings.HasPrefix(kv, EnvDaemonStage+"=") || strings.HasPrefix(kv, sock.EnvListenFD+"=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out,
		EnvDaemonStage+"="+stage,
		fmt.Sprintf("%s=%d", sock.EnvListenFD, sock.InheritedFD),
	)
}
