package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/aesdsocket/internal/ports"
)

// Server serves /metrics on its own listener, separate from the frame port.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Handler returns the metrics HTTP handler.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Listen binds addr and starts serving in the background.
func Listen(addr string, logger ports.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		srv: &http.Server{Handler: Handler(), ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", ports.Err(err))
		}
	}()
	logger.Info("metrics endpoint listening", ports.String("addr", ln.Addr().String()))
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// Close stops the server.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
