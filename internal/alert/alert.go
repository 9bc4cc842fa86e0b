// Package alert decides when a degraded or down alert should be raised.
package alert

import (
	"time"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

const (
	// DegradedRepeat is the minimum interval between two degraded alerts of one episode.
	DegradedRepeat = 2 * time.Minute

	// DownRepeat is the minimum interval between two down alerts of one episode.
	DownRepeat = 5 * time.Minute
)

// Decision is the result of an alert evaluation.
type Decision struct {
	Fire   bool
	Level  api.Level
	Reason string
}

func fire(level api.Level, reason string) Decision {
	return Decision{Fire: true, Level: level, Reason: reason}
}

// Degraded decides whether a degraded alert should fire now.
//
// episodeStart and lastFired are zero when there is no active episode or no alert fired yet.
// The first alert waits notifyAfter since the start of the episode, and the following alerts repeat every DegradedRepeat until acked.
func Degraded(now, episodeStart time.Time, notifyAfter time.Duration, lastFired time.Time, acked bool) Decision {
	if acked || episodeStart.IsZero() {
		return Decision{}
	}

	if now.Sub(episodeStart) < notifyAfter {
		return Decision{}
	}

	if lastFired.IsZero() {
		return fire(api.LevelDegraded, "degraded notify threshold reached")
	}

	if now.Sub(lastFired) >= DegradedRepeat {
		return fire(api.LevelDegraded, "degraded repeat interval reached")
	}

	return Decision{}
}

// Down decides whether a down alert should fire now.
//
// Down has no initial delay: the first evaluation of an episode fires immediately.
func Down(now, episodeStart, lastFired time.Time, acked bool) Decision {
	if acked || episodeStart.IsZero() {
		return Decision{}
	}

	if lastFired.IsZero() {
		return fire(api.LevelDown, "down entered")
	}

	if now.Sub(lastFired) >= DownRepeat {
		return fire(api.LevelDown, "down repeat interval reached")
	}

	return Decision{}
}
