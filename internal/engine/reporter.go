package engine

import (
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// Reporter receives the outputs of the Engine.
//
// The methods are called from the worker goroutine that finished the probe, without holding the engine's lock.
// Calls for different endpoints may run at the same time, so implementations have to synchronize by themselves,
// and have to move the values to another goroutine if they need a specific one, such as a UI thread.
// Calls for the same endpoint never overlap, and come in the order of the ticks.
type Reporter interface {
	// ReportTick is called once per endpoint per completed probe cycle.
	ReportTick(api.TickResult)

	// ReportAlert is called whenever an alert fires.
	ReportAlert(api.Alert)
}

// ReporterFuncs is a Reporter made of functions. Nil functions are ignored.
type ReporterFuncs struct {
	OnTick  func(api.TickResult)
	OnAlert func(api.Alert)
}

// ReportTick implements Reporter.
func (r ReporterFuncs) ReportTick(t api.TickResult) {
	if r.OnTick != nil {
		r.OnTick(t)
	}
}

// ReportAlert implements Reporter.
func (r ReporterFuncs) ReportAlert(a api.Alert) {
	if r.OnAlert != nil {
		r.OnAlert(a)
	}
}
