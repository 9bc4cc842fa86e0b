package reporter

import (
	"sync"

	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "klimozawr_"

var statusLabels = []api.Status{api.StatusHealthy, api.StatusDegraded, api.StatusDown}

// Metrics exports tick results and alerts as Prometheus metrics.
type Metrics struct {
	status   *prometheus.GaugeVec
	loss     *prometheus.GaugeVec
	rtt      *prometheus.GaugeVec
	unstable *prometheus.GaugeVec
	ticks    *prometheus.CounterVec
	alerts   *prometheus.CounterVec

	mu    sync.Mutex
	known map[string]struct{}
}

// NewMetrics creates Metrics and registers them to reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		known: make(map[string]struct{}),
		status: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "status",
				Help: "Current status of the endpoint, 1 for the active status",
			},
			[]string{"endpoint", "status"},
		),
		loss: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "loss_percent",
				Help: "Packet loss of the latest tick",
			},
			[]string{"endpoint"},
		),
		rtt: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "rtt_avg_seconds",
				Help: "Average round-trip time of the successful echoes in the latest tick",
			},
			[]string{"endpoint"},
		),
		unstable: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "unstable",
				Help: "1 if the latest tick lost some but not all echoes",
			},
			[]string{"endpoint"},
		),
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ticks_total",
				Help: "Total completed probe cycles by status",
			},
			[]string{"endpoint", "status"},
		),
		alerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_total",
				Help: "Total fired alerts by level",
			},
			[]string{"endpoint", "level"},
		),
	}

	for _, c := range []prometheus.Collector{m.status, m.loss, m.rtt, m.unstable, m.ticks, m.alerts} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ReportTick implements engine.Reporter.
func (m *Metrics) ReportTick(t api.TickResult) {
	m.mu.Lock()
	m.known[t.EndpointID] = struct{}{}
	m.mu.Unlock()

	for _, s := range statusLabels {
		v := 0.0
		if s == t.Status {
			v = 1
		}
		m.status.WithLabelValues(t.EndpointID, s.String()).Set(v)
	}

	m.loss.WithLabelValues(t.EndpointID).Set(float64(t.LossPct))

	if t.AvgRTT != nil {
		m.rtt.WithLabelValues(t.EndpointID).Set(float64(*t.AvgRTT) / 1000)
	} else {
		m.rtt.DeleteLabelValues(t.EndpointID)
	}

	if t.Unstable {
		m.unstable.WithLabelValues(t.EndpointID).Set(1)
	} else {
		m.unstable.WithLabelValues(t.EndpointID).Set(0)
	}

	m.ticks.WithLabelValues(t.EndpointID, t.Status.String()).Inc()
}

// ReportAlert implements engine.Reporter.
func (m *Metrics) ReportAlert(a api.Alert) {
	m.alerts.WithLabelValues(a.EndpointID, a.Level.String()).Inc()
}

// Retain implements Retainer.
func (m *Metrics) Retain(ids []string) {
	set := idSet(ids)

	m.mu.Lock()
	var stale []string
	for id := range m.known {
		if _, ok := set[id]; !ok {
			stale = append(stale, id)
			delete(m.known, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		labels := prometheus.Labels{"endpoint": id}
		m.status.DeletePartialMatch(labels)
		m.loss.DeletePartialMatch(labels)
		m.rtt.DeletePartialMatch(labels)
		m.unstable.DeletePartialMatch(labels)
		m.ticks.DeletePartialMatch(labels)
		m.alerts.DeletePartialMatch(labels)
	}
}
