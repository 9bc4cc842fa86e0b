package reporter

import (
	"sync"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// DefaultAlertHistory is the number of alerts a Board keeps by default.
const DefaultAlertHistory = 100

// Board keeps the latest tick result of each endpoint and the recent alerts, for the status pages.
type Board struct {
	mu     sync.RWMutex
	ticks  map[string]api.TickResult
	alerts []api.Alert
	limit  int
}

// NewBoard creates a Board that keeps up to limit alerts.
func NewBoard(limit int) *Board {
	if limit <= 0 {
		limit = DefaultAlertHistory
	}
	return &Board{
		ticks: make(map[string]api.TickResult),
		limit: limit,
	}
}

// ReportTick implements engine.Reporter.
func (b *Board) ReportTick(t api.TickResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ticks[t.EndpointID] = t
}

// ReportAlert implements engine.Reporter.
func (b *Board) ReportAlert(a api.Alert) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.alerts = append(b.alerts, a)
	if len(b.alerts) > b.limit {
		b.alerts = append(b.alerts[:0:0], b.alerts[len(b.alerts)-b.limit:]...)
	}
}

// Latest returns the latest tick result of the endpoint.
func (b *Board) Latest(id string) (api.TickResult, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.ticks[id]
	return t, ok
}

// Alerts returns the recent alerts, oldest first.
func (b *Board) Alerts() []api.Alert {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return append([]api.Alert(nil), b.alerts...)
}

// Retain implements Retainer. Alerts of removed endpoints are kept as history.
func (b *Board) Retain(ids []string) {
	set := idSet(ids)

	b.mu.Lock()
	defer b.mu.Unlock()

	for id := range b.ticks {
		if _, ok := set[id]; !ok {
			delete(b.ticks, id)
		}
	}
}
