// Package tick derives the per-tick metrics from the echo samples of one probe cycle.
package tick

import (
	"math"
	"time"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
)

// Metrics is the summary of the samples of one tick.
type Metrics struct {
	LossPct  int
	LastRTT  *int64
	AvgRTT   *int64
	Unstable bool
}

// HasSuccess reports whether at least one echo came back.
func (m Metrics) HasSuccess() bool {
	return m.LossPct < 100
}

// LossPct maps the count of successful echoes to the loss bucket 0, 33, 66 or 100.
//
// The buckets are made for three samples; more lost samples than two are always 100.
func LossPct(successes, total int) int {
	if total <= 0 {
		return 100
	}

	switch lost := total - successes; {
	case lost <= 0:
		return 0
	case lost == 1:
		return 33
	case lost == 2:
		return 66
	default:
		return 100
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Derive calculates Metrics from samples.
func Derive(samples []api.Sample) Metrics {
	var (
		ok   int
		sum  float64
		last float64
	)
	for _, s := range samples {
		if s.OK {
			ok++
			last = millis(s.RTT)
			sum += last
		}
	}

	m := Metrics{
		LossPct: LossPct(ok, len(samples)),
	}
	m.Unstable = m.LossPct > 0 && m.LossPct < 100

	if ok > 0 {
		l := int64(math.Round(last))
		a := int64(math.Round(sum / float64(ok)))
		m.LastRTT = &l
		m.AvgRTT = &a
	}

	return m
}
