package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/aesdsocket/internal/domain"
	"github.com/bft-labs/aesdsocket/internal/metrics"
	"github.com/bft-labs/aesdsocket/internal/ports"
)

// DefaultChunkSize is the size of a single receive or replay read.
const DefaultChunkSize = 60000

// ConnectionHandler services one client at a time: receive one frame, append
// it to the store, replay the whole store, close.
type ConnectionHandler struct {
	store     ports.LogStore
	chunkSize int
	state     *ShutdownState
	logger    ports.Logger
}

// NewConnectionHandler creates a handler backed by store.
func NewConnectionHandler(store ports.LogStore, chunkSize int, state *ShutdownState, logger ports.Logger) *ConnectionHandler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ConnectionHandler{
		store:     store,
		chunkSize: chunkSize,
		state:     state,
		logger:    logger,
	}
}

// connection is the per-client state. It exists only while Handle runs.
type connection struct {
	conn     net.Conn
	peer     string
	id       string
	phase    domain.Phase
	frame    domain.FrameBuffer
	received int
	logger   ports.Logger
}

func (c *connection) enter(p domain.Phase) {
	c.logger.Debug("phase",
		ports.String("from", c.phase.String()),
		ports.String("to", p.String()),
	)
	c.phase = p
}

// Handle runs the full exchange on conn and always closes it. Failures are
// logged and counted; none escape to the accept loop.
func (h *ConnectionHandler) Handle(conn net.Conn) {
	start := time.Now()
	c := &connection{
		conn:  conn,
		peer:  peerIP(conn.RemoteAddr()),
		id:    uuid.NewString(),
		phase: domain.PhaseReceiving,
	}
	c.logger = &sessionLogger{id: c.id, Logger: h.logger}

	metrics.ConnectionsTotal.Inc()
	c.logger.Info(fmt.Sprintf("Accepted connection from %s", c.peer))

	defer func() {
		c.enter(domain.PhaseDone)
		if err := conn.Close(); err != nil {
			c.logger.Debug("close failed", ports.Err(err))
		}
		metrics.ConnectionDuration.Observe(time.Since(start).Seconds())
		c.logger.Info(fmt.Sprintf("Closed connection from %s", c.peer))
	}()

	handle, err := h.store.Open()
	if err != nil {
		h.fail(c, "File open failed", domain.ResourceError("open store", err))
		return
	}
	defer func() {
		if err := handle.Close(); err != nil {
			c.logger.Warn("store close failed", ports.Err(err))
		}
	}()

	h.state.trackConn(conn)
	frame, err := h.receive(c)
	h.state.untrackConn()
	if err != nil {
		if errors.Is(err, domain.ErrPeerClosed) {
			c.logger.Debug("peer closed before delimiter", ports.Int("discarded_bytes", c.frame.Len()))
			return
		}
		if h.state.Requested() {
			c.logger.Info("receive interrupted by shutdown", ports.Int("discarded_bytes", c.frame.Len()))
			return
		}
		h.fail(c, "Receive failed", err)
		return
	}
	if n := c.frame.Trailing(); n > 0 {
		c.logger.Debug("dropping bytes after delimiter", ports.Int("bytes", n))
	}

	c.enter(domain.PhaseWriting)
	if err := handle.Append(frame); err != nil {
		// The reply still goes out with whatever the store holds.
		h.fail(c, "Write failed", domain.ResourceError("append", err))
	} else {
		metrics.FramesTotal.Inc()
		metrics.FrameBytesTotal.Add(float64(len(frame)))
	}

	c.enter(domain.PhaseReadingBack)
	if err := h.replay(c, handle); err != nil {
		h.fail(c, "Send failed", err)
	}
}

// receive reads chunks until the first delimiter. Bytes after it are dropped.
func (h *ConnectionHandler) receive(c *connection) (frame []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if r != bytes.ErrTooLarge {
				panic(r)
			}
			frame, err = nil, domain.ResourceError("grow frame buffer", bytes.ErrTooLarge)
		}
	}()

	chunk := make([]byte, h.chunkSize)
	for {
		n, rerr := c.conn.Read(chunk)
		if n > 0 {
			c.received += n
			if c.frame.Append(chunk[:n]) {
				return c.frame.Contents(), nil
			}
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil, domain.ConnectionError("receive", domain.ErrPeerClosed)
			}
			return nil, domain.ConnectionError("receive", rerr)
		}
	}
}

// replay streams the entire store content back in chunk-sized writes.
func (h *ConnectionHandler) replay(c *connection, handle ports.LogHandle) error {
	r, err := handle.Reader()
	if err != nil {
		return domain.ResourceError("rewind", err)
	}
	if size, err := handle.Size(); err == nil {
		metrics.StoreBytes.Set(float64(size))
	}

	buf := make([]byte, h.chunkSize)
	var sent int64
	defer func() { metrics.ReplayBytesTotal.Add(float64(sent)) }()
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := c.conn.Write(buf[:n]); werr != nil {
				return domain.ConnectionError("send", werr)
			}
			sent += int64(n)
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return domain.ResourceError("read store", rerr)
		}
	}
}

func (h *ConnectionHandler) fail(c *connection, msg string, err error) {
	metrics.ErrorsTotal.WithLabelValues(domain.KindOf(err).String()).Inc()
	c.logger.Error(msg, ports.String("peer", c.peer), ports.Err(err))
}

// peerIP returns the textual IP of addr without the port.
func peerIP(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// sessionLogger tags every entry with the connection's session id.
type sessionLogger struct {
	id string
	ports.Logger
}

func (l *sessionLogger) Debug(msg string, fields ...ports.Field) {
	l.Logger.Debug(msg, l.with(fields)...)
}

func (l *sessionLogger) Info(msg string, fields ...ports.Field) {
	l.Logger.Info(msg, l.with(fields)...)
}

func (l *sessionLogger) Warn(msg string, fields ...ports.Field) {
	l.Logger.Warn(msg, l.with(fields)...)
}

func (l *sessionLogger) Error(msg string, fields ...ports.Field) {
	l.Logger.Error(msg, l.with(fields)...)
}

func (l *sessionLogger) with(fields []ports.Field) []ports.Field {
	return append([]ports.Field{ports.String("session", l.id)}, fields...)
}
