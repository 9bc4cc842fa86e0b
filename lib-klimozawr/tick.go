package klimozawr

import (
	"time"
)

// Sample is the outcome of a single echo request.
type Sample struct {
	OK  bool
	RTT time.Duration
}

// TickResult is the outcome of one probe cycle of one endpoint.
type TickResult struct {
	EndpointID string    `json:"endpoint_id"`
	Time       time.Time `json:"time"`

	// LossPct is one of 0, 33, 66 or 100.
	LossPct int `json:"loss_pct"`

	// LastRTT is the round-trip time of the last successful echo in milliseconds, or nil if every echo failed.
	LastRTT *int64 `json:"rtt_last_ms"`

	// AvgRTT is the mean round-trip time of the successful echoes in milliseconds, or nil if every echo failed.
	AvgRTT *int64 `json:"rtt_avg_ms"`

	Unstable bool   `json:"unstable"`
	Status   Status `json:"status"`
}

// Alert is an alert event raised by the engine.
type Alert struct {
	ID         string    `json:"id"`
	EndpointID string    `json:"endpoint_id"`
	Level      Level     `json:"level"`
	Time       time.Time `json:"time"`
	Reason     string    `json:"reason"`
}
