package endpoint

import (
	"net/http"

	"github.com/klimozawr/klimozawr/internal/engine"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"go.uber.org/zap"
)

// EndpointStatus is an entry of /status.json.
type EndpointStatus struct {
	engine.Snapshot

	// Latest is nil until the first tick of the endpoint completes.
	Latest *api.TickResult `json:"latest"`
}

func StatusJSONEndpoint(s Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.Snapshot()

		result := make([]EndpointStatus, 0, len(snapshot))
		for _, sn := range snapshot {
			es := EndpointStatus{Snapshot: sn}
			if t, ok := s.Latest(sn.Endpoint.ID); ok {
				es.Latest = &t
			}
			result = append(result, es)
		}

		writeJSON(w, logger, "status.json", http.StatusOK, result)
	}
}

func AlertsJSONEndpoint(s Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts := s.Alerts()
		if alerts == nil {
			alerts = []api.Alert{}
		}
		writeJSON(w, logger, "alerts.json", http.StatusOK, alerts)
	}
}
