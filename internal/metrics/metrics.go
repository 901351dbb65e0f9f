// Package metrics exposes Prometheus instrumentation for poll cycles and exports.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

var (
	pollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rxconsole_poll_duration_seconds",
		Help:    "Duration of poll cycles (messages and stats reads) grouped by outcome",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"result"})

	pollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxconsole_poll_cycles_total",
		Help: "Total poll cycles grouped by outcome",
	}, []string{"result"})

	messagesInView = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rxconsole_messages_in_view",
		Help: "Number of messages held after the most recent successful poll",
	})

	exportTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rxconsole_csv_exports_total",
		Help: "CSV exports grouped by outcome (written, empty, failed)",
	}, []string{"result"})
)

// ObservePoll records the duration and outcome of one poll cycle.
func ObservePoll(duration time.Duration, messages int, success bool) {
	result := ResultSuccess
	if !success {
		result = ResultFailed
	}
	pollDuration.WithLabelValues(result).Observe(duration.Seconds())
	pollTotal.WithLabelValues(result).Inc()
	if success {
		messagesInView.Set(float64(messages))
	}
}

// ObserveExport records a CSV export attempt.
func ObserveExport(result string) {
	if result == "" {
		result = "unknown"
	}
	exportTotal.WithLabelValues(result).Inc()
}

// Serve exposes /metrics on addr until ctx is done. An empty addr is a no-op.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return serve(ctx, listener)
}

func serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
