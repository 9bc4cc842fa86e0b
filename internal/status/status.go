// Package status classifies a tick into healthy, degraded or down.
//
// The functions here know nothing about episodes; the engine keeps the episode bookkeeping on top of them.
package status

import (
	"time"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// Derive returns the status of a tick.
//
// A tick with any successful echo is always healthy.
// Otherwise the endpoint is degraded until it has been silent for longer than degradedToDown since the last success, or since firstSeen if it has never succeeded, and down after that.
// A zero lastSuccess means no success yet.
func Derive(now time.Time, hasSuccess bool, lastSuccess, firstSeen time.Time, degradedToDown time.Duration) api.Status {
	if hasSuccess {
		return api.StatusHealthy
	}

	anchor := lastSuccess
	if anchor.IsZero() {
		anchor = firstSeen
	}

	if now.Sub(anchor) <= degradedToDown {
		return api.StatusDegraded
	}
	return api.StatusDown
}

// ShouldEscalate reports whether a degraded episode that started at degradedSince has lasted long enough to be down.
func ShouldEscalate(now, degradedSince time.Time, degradedToDown time.Duration) bool {
	if degradedSince.IsZero() {
		return false
	}
	return now.Sub(degradedSince) >= degradedToDown
}
