// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"OroswapBot/internal/recorder"
)

const namespace = "oroswap_bot"

// Metrics holds all Prometheus metrics for the bot. It also satisfies
// recorder.Recorder so it can sit next to the in-memory history.
type Metrics struct {
	registry *prometheus.Registry

	ActionsTotal     *prometheus.CounterVec
	CyclesTotal      *prometheus.CounterVec
	RoundsTotal      prometheus.Counter
	WalletPoints     *prometheus.GaugeVec
	ChainCallSeconds *prometheus.HistogramVec
	LastRound        prometheus.Gauge
}

// NewMetrics creates a Metrics instance on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Executor attempts by action and result",
		}, []string{"action", "result"}),
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Wallet cycles by result",
		}, []string{"result"}),
		RoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Completed rounds over all wallets",
		}),
		WalletPoints: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "wallet_points",
			Help:      "Last points value reported for a wallet",
		}, []string{"wallet"}),
		ChainCallSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_call_seconds",
			Help:      "CometBFT RPC call latency by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		LastRound: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_round_timestamp",
			Help:      "Unix time the last round finished",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveChainCall records RPC call latency. Its signature matches chain.Observer.
func (m *Metrics) ObserveChainCall(method string, d time.Duration, _ error) {
	m.ChainCallSeconds.WithLabelValues(method).Observe(d.Seconds())
}

func result(evt *recorder.ActionEvent) string {
	switch {
	case evt.Skipped:
		return "skipped"
	case evt.Success:
		return "success"
	default:
		return "failure"
	}
}

func (m *Metrics) RecordAction(evt *recorder.ActionEvent) error {
	m.ActionsTotal.WithLabelValues(evt.Action, result(evt)).Inc()
	return nil
}

func (m *Metrics) RecordCycle(evt *recorder.CycleEvent) error {
	res := "success"
	if evt.Error != "" {
		res = "failure"
	}
	m.CyclesTotal.WithLabelValues(res).Inc()
	return nil
}

func (m *Metrics) RecordRound(evt *recorder.RoundEvent) error {
	m.RoundsTotal.Inc()
	m.LastRound.Set(float64(evt.Finished.Unix()))
	return nil
}

func (m *Metrics) RecordPoints(evt *recorder.PointsEvent) error {
	m.WalletPoints.WithLabelValues(evt.Wallet).Set(evt.Record.Points)
	return nil
}

func (m *Metrics) Close() error { return nil }

// Serve exposes /metrics and /health on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[INFO] metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
