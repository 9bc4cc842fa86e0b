// Package reporter implements the consumers of the engine's tick results and alerts.
package reporter

import (
	"github.com/klimozawr/klimozawr/internal/engine"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// Multi is a Reporter that reports to every reporter in order.
type Multi []engine.Reporter

// ReportTick implements engine.Reporter.
func (m Multi) ReportTick(t api.TickResult) {
	for _, r := range m {
		r.ReportTick(t)
	}
}

// ReportAlert implements engine.Reporter.
func (m Multi) ReportAlert(a api.Alert) {
	for _, r := range m {
		r.ReportAlert(a)
	}
}

// Retainer is a reporter that keeps per-endpoint data.
type Retainer interface {
	// Retain drops the data of the endpoints not in ids.
	Retain(ids []string)
}

// Retain calls Retain of every reporter in m that implements Retainer.
func (m Multi) Retain(ids []string) {
	for _, r := range m {
		if x, ok := r.(Retainer); ok {
			x.Retain(ids)
		}
	}
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
