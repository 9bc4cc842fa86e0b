package endpoint

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsEndpoint serves the metrics in gatherer in the Prometheus and OpenMetrics formats.
func MetricsEndpoint(gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.NewRegistry()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:          zap.NewStdLog(logger),
		EnableOpenMetrics: true,
	})
}
