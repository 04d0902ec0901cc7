// Package metrics exposes Prometheus counters for engine runs, crossovers and data fetches.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EngineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ma_engine_runs_total", Help: "Crossover engine runs per trigger"},
		[]string{"trigger"},
	)
	CrossoversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ma_crossovers_total", Help: "New crossover events detected by watchlist scans"},
		[]string{"symbol", "side"},
	)
	FetchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ma_fetch_errors_total", Help: "Price history fetch failures per data source"},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(EngineRunsTotal, CrossoversTotal, FetchErrorsTotal)
}

// Serve starts the /metrics endpoint in the background and returns the server for shutdown.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
