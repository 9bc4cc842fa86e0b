package endpoint

import (
	"github.com/klimozawr/klimozawr/internal/engine"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// Store is the source of the pages.
type Store interface {
	// Snapshot returns the monitored endpoints and their runtime states.
	Snapshot() []engine.Snapshot

	// Latest returns the latest tick result of the endpoint.
	Latest(id string) (api.TickResult, bool)

	// Alerts returns the recent alerts, oldest first.
	Alerts() []api.Alert

	// Acknowledge silences the alerts of level for the current episode of the endpoint.
	Acknowledge(id string, level api.Level) bool

	// Errors returns a list of internal (critical) errors.
	Errors() (healthy bool, messages []string)
}
