package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetricsHandler serves the process-wide metrics together with the
// collectors of one server instance.
type PrometheusMetricsHandler struct {
	registry *prometheus.Registry
}

func NewPrometheusMetricsHandler(collectors ...prometheus.Collector) *PrometheusMetricsHandler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors...)
	return &PrometheusMetricsHandler{registry: registry}
}

func (h *PrometheusMetricsHandler) Registerer() prometheus.Registerer {
	return h.registry
}

func (h *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, h.registry},
		promhttp.HandlerOpts{},
	)
}
