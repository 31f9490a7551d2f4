// Package metrics exposes the server's prometheus collectors.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesdsocket_connections_total",
		Help: "Connections accepted",
	})

	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesdsocket_frames_total",
		Help: "Complete frames appended to the log store",
	})

	FrameBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesdsocket_frame_bytes_total",
		Help: "Bytes appended to the log store",
	})

	ReplayBytesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aesdsocket_replay_bytes_total",
		Help: "Bytes sent back to clients",
	})

	ErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aesdsocket_errors_total",
		Help: "Failures by error kind",
	}, []string{"kind"})

	StoreBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aesdsocket_store_bytes",
		Help: "Current size of the log store",
	})

	ConnectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aesdsocket_connection_seconds",
		Help:    "Time to service one connection end to end",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(FramesTotal)
	prometheus.MustRegister(FrameBytesTotal)
	prometheus.MustRegister(ReplayBytesTotal)
	prometheus.MustRegister(ErrorsTotal)
	prometheus.MustRegister(StoreBytes)
	prometheus.MustRegister(ConnectionDuration)
}
