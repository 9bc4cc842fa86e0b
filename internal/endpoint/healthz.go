package endpoint

import (
	"fmt"
	"net/http"
)

// HealthzEndpoint reports the health of klimozawr itself, not of the monitored endpoints.
// It responds 503 with the reasons if the engine is not running or the host seems offline.
func HealthzEndpoint(s Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
		w.Header().Set("Cache-Control", "no-store")

		healthy, messages := s.Errors()
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "FAILURE")
		} else {
			fmt.Fprintln(w, "HEALTHY")
		}

		for _, msg := range messages {
			fmt.Fprintln(w, msg)
		}
	}
}
