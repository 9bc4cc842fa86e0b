// Package endpoint implements the HTTP pages of klimozawr.
package endpoint

import (
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// New creates the handler of every page.
func New(s Store, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := http.NewServeMux()

	m.HandleFunc("/healthz", HealthzEndpoint(s))

	m.Handle("/status", http.RedirectHandler("/status.json", http.StatusMovedPermanently))
	m.HandleFunc("/status.json", StatusJSONEndpoint(s, logger))
	m.HandleFunc("/alerts.json", AlertsJSONEndpoint(s, logger))

	m.HandleFunc("/ack", AckEndpoint(s, logger))

	m.Handle("/metrics", MetricsEndpoint(gatherer, logger))

	m.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/status.json", http.StatusFound)
		} else {
			http.NotFound(w, r)
		}
	})

	return gziphandler.GzipHandler(m)
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, scope string, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.String("scope", scope), zap.Error(err))
	}
}
