package klimozawr

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownLevel = errors.New("unknown alert level")
)

const (
	// LevelDegraded is the alert level raised while an endpoint stays degraded.
	LevelDegraded Level = iota + 1

	// LevelDown is the alert level raised while an endpoint stays down.
	LevelDown
)

// Level is the level of an alert.
type Level int8

// ParseLevel parses "degraded" or "down".
func ParseLevel(raw string) (Level, error) {
	switch raw {
	case "degraded", "DEGRADED":
		return LevelDegraded, nil
	case "down", "DOWN":
		return LevelDown, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, raw)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDegraded:
		return "degraded"
	case LevelDown:
		return "down"
	default:
		return "unknown"
	}
}

// MarshalText marshals Level as text.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText unmarshals text as Level.
func (l *Level) UnmarshalText(text []byte) error {
	v, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Status returns the endpoint status that corresponds to this level.
func (l Level) Status() Status {
	switch l {
	case LevelDegraded:
		return StatusDegraded
	case LevelDown:
		return StatusDown
	default:
		return StatusUnknown
	}
}
