package klimozawr

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultDegradedToDownSecs      = 120
	DefaultDegradedNotifyAfterSecs = 30
	DefaultTimeoutMs               = 1000
)

var (
	ErrInvalidEndpoint = errors.New("invalid endpoint")
)

// Endpoint is the monitoring configuration of a single endpoint.
//
// The engine treats it as an immutable value; updating an endpoint means replacing the whole set.
type Endpoint struct {
	ID      string `json:"id" yaml:"id"`
	Address string `json:"address" yaml:"address"`

	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Owner    string `json:"owner,omitempty" yaml:"owner,omitempty"`

	// DegradedToDownSecs is how long an endpoint may fail continuously before it escalates to down.
	DegradedToDownSecs int `json:"degraded_to_down_secs" yaml:"degraded_to_down_secs"`

	// DegradedNotifyAfterSecs is how long an endpoint may stay degraded before the first degraded alert.
	DegradedNotifyAfterSecs int `json:"degraded_notify_after_secs" yaml:"degraded_notify_after_secs"`

	// TimeoutMs is the timeout of a single echo request.
	TimeoutMs int `json:"timeout_ms" yaml:"timeout_ms"`
}

// DegradedToDown returns DegradedToDownSecs as a time.Duration.
func (e Endpoint) DegradedToDown() time.Duration {
	return time.Duration(e.DegradedToDownSecs) * time.Second
}

// DegradedNotifyAfter returns DegradedNotifyAfterSecs as a time.Duration.
func (e Endpoint) DegradedNotifyAfter() time.Duration {
	return time.Duration(e.DegradedNotifyAfterSecs) * time.Second
}

// Timeout returns TimeoutMs as a time.Duration.
func (e Endpoint) Timeout() time.Duration {
	return time.Duration(e.TimeoutMs) * time.Millisecond
}

// WithDefaults fills zero-valued timing parameters with the default values.
func (e Endpoint) WithDefaults() Endpoint {
	if e.DegradedToDownSecs == 0 {
		e.DegradedToDownSecs = DefaultDegradedToDownSecs
	}
	if e.DegradedNotifyAfterSecs == 0 {
		e.DegradedNotifyAfterSecs = DefaultDegradedNotifyAfterSecs
	}
	if e.TimeoutMs == 0 {
		e.TimeoutMs = DefaultTimeoutMs
	}
	return e
}

// Validate checks the endpoint against the limits the device editor accepts.
func (e Endpoint) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidEndpoint)
	case !IsValidTarget(e.Address):
		return fmt.Errorf("%w: %s: invalid address: %q", ErrInvalidEndpoint, e.ID, e.Address)
	case e.DegradedToDownSecs < 5 || e.DegradedToDownSecs > 3600:
		return fmt.Errorf("%w: %s: degraded_to_down_secs must be between 5 and 3600: %d", ErrInvalidEndpoint, e.ID, e.DegradedToDownSecs)
	case e.DegradedNotifyAfterSecs < 1 || e.DegradedNotifyAfterSecs > 3600:
		return fmt.Errorf("%w: %s: degraded_notify_after_secs must be between 1 and 3600: %d", ErrInvalidEndpoint, e.ID, e.DegradedNotifyAfterSecs)
	case e.TimeoutMs < 100 || e.TimeoutMs > 5000:
		return fmt.Errorf("%w: %s: timeout_ms must be between 100 and 5000: %d", ErrInvalidEndpoint, e.ID, e.TimeoutMs)
	}
	return nil
}

// String returns a short human readable name of the endpoint.
func (e Endpoint) String() string {
	if e.Name != "" {
		return fmt.Sprintf("%s(%s %s)", e.ID, e.Name, e.Address)
	}
	return fmt.Sprintf("%s(%s)", e.ID, e.Address)
}
