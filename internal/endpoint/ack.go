package endpoint

import (
	"net/http"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"go.uber.org/zap"
)

type ackResponse struct {
	ID    string    `json:"id,omitempty"`
	Level api.Level `json:"level,omitempty"`
	Error string    `json:"error,omitempty"`
}

// AckEndpoint acknowledges the alerts of an endpoint by `POST /ack?id=...&level=degraded|down`.
func AckEndpoint(s Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, logger, "ack", http.StatusMethodNotAllowed, ackResponse{Error: "method not allowed"})
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			writeJSON(w, logger, "ack", http.StatusBadRequest, ackResponse{Error: "id is required"})
			return
		}

		level, err := api.ParseLevel(r.URL.Query().Get("level"))
		if err != nil {
			writeJSON(w, logger, "ack", http.StatusBadRequest, ackResponse{ID: id, Error: err.Error()})
			return
		}

		if !s.Acknowledge(id, level) {
			writeJSON(w, logger, "ack", http.StatusNotFound, ackResponse{ID: id, Level: level, Error: "no such endpoint"})
			return
		}

		writeJSON(w, logger, "ack", http.StatusOK, ackResponse{ID: id, Level: level})
	}
}
