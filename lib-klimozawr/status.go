package klimozawr

const (
	// StatusUnknown means the endpoint has not completed any tick yet.
	StatusUnknown Status = iota

	// StatusHealthy means at least one echo of the latest tick came back.
	StatusHealthy

	// StatusDegraded means the latest tick lost every echo, but the endpoint has not been silent for longer than its degraded-to-down threshold.
	StatusDegraded

	// StatusDown means the endpoint has been silent for longer than its degraded-to-down threshold.
	// System administrator have to do something to the endpoint on this status.
	StatusDown
)

// Status is the health status of an endpoint.
type Status int8

// ParseStatus parses status string.
//
// If passed unsupported status, it will returns StatusUnknown.
func ParseStatus(raw string) Status {
	switch raw {
	case "HEALTHY":
		return StatusHealthy
	case "DEGRADED":
		return StatusDegraded
	case "DOWN":
		return StatusDown
	default:
		return StatusUnknown
	}
}

// UnmarshalText is unmarshal text as status.
//
// This function always returns nil.
// This parses as StatusUnknown instead of returns error if unsupported status passed.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// String makes Status a string.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "HEALTHY"
	case StatusDegraded:
		return "DEGRADED"
	case StatusDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText marshals Status as text.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Failing reports whether the status is degraded or down.
func (s Status) Failing() bool {
	return s == StatusDegraded || s == StatusDown
}
