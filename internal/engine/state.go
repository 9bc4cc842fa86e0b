package engine

import (
	"time"

	"github.com/klimozawr/klimozawr/internal/alert"
	"github.com/klimozawr/klimozawr/internal/status"
	"github.com/klimozawr/klimozawr/internal/tick"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// State is the runtime state of a monitored endpoint.
//
// Zero time values mean "not set": no success yet, no active episode, or no alert fired in the episode.
type State struct {
	FirstSeen   time.Time `json:"first_seen"`
	LastSuccess time.Time `json:"last_success"`

	DegradedSince time.Time `json:"degraded_since"`
	DownSince     time.Time `json:"down_since"`

	DegradedAcked bool `json:"degraded_acked"`
	DownAcked     bool `json:"down_acked"`

	LastDegradedAlert time.Time `json:"last_degraded_alert"`
	LastDownAlert     time.Time `json:"last_down_alert"`

	Status   api.Status `json:"status"`
	Unstable bool       `json:"unstable"`
}

func (s *State) clearDegraded() {
	s.DegradedSince = time.Time{}
	s.DegradedAcked = false
	s.LastDegradedAlert = time.Time{}
}

func (s *State) clearDown() {
	s.DownSince = time.Time{}
	s.DownAcked = false
	s.LastDownAlert = time.Time{}
}

// apply updates the state by the metrics of a tick at now, and returns the resulting status and the alerts to fire.
func (s *State) apply(now time.Time, ep api.Endpoint, m tick.Metrics) (api.Status, []alert.Decision) {
	prev := s.Status
	threshold := ep.DegradedToDown()

	st := status.Derive(now, m.HasSuccess(), s.LastSuccess, s.FirstSeen, threshold)

	if st == api.StatusDegraded {
		if prev != api.StatusDegraded {
			if s.DegradedSince.IsZero() {
				s.DegradedSince = now
			}
			if prev == api.StatusHealthy || prev == api.StatusUnknown {
				s.DegradedAcked = false
				s.LastDegradedAlert = time.Time{}
			}
			s.clearDown()
		}

		if status.ShouldEscalate(now, s.DegradedSince, threshold) {
			st = api.StatusDown
		}
	}

	switch st {
	case api.StatusDown:
		if prev != api.StatusDown {
			s.DownAcked = false
			s.LastDownAlert = time.Time{}
		}
		if s.DownSince.IsZero() {
			s.DownSince = now
		}
	case api.StatusHealthy:
		s.clearDegraded()
		s.clearDown()
		s.LastSuccess = now
	}

	s.Status = st
	s.Unstable = m.Unstable

	var fired []alert.Decision

	var degradedStart time.Time
	if st == api.StatusDegraded {
		degradedStart = s.DegradedSince
	}
	if d := alert.Degraded(now, degradedStart, ep.DegradedNotifyAfter(), s.LastDegradedAlert, s.DegradedAcked); d.Fire {
		s.LastDegradedAlert = now
		fired = append(fired, d)
	}

	var downStart time.Time
	if st == api.StatusDown {
		downStart = s.DownSince
	}
	if d := alert.Down(now, downStart, s.LastDownAlert, s.DownAcked); d.Fire {
		s.LastDownAlert = now
		fired = append(fired, d)
	}

	return st, fired
}

// acknowledge silences the alerts of level for the current episode.
func (s *State) acknowledge(level api.Level) {
	switch level {
	case api.LevelDegraded:
		s.DegradedAcked = true
	case api.LevelDown:
		s.DownAcked = true
	}
}
