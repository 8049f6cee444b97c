// Package metrics exposes Prometheus instrumentation for the m2m
// runtime: frame codec throughput and errors, key/crypto operations,
// and session lifecycle counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "m2m"

// Registry is the registry all m2m metrics are registered into. A
// dedicated registry (rather than prometheus.DefaultRegisterer) keeps
// m2m's metrics isolated from whatever else shares the process.
var Registry = prometheus.NewRegistry()

// Handler returns an HTTP handler serving Registry in the Prometheus
// exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// StartServer runs a standalone metrics HTTP server on addr, serving
// /metrics. It blocks until the server stops.
func StartServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
