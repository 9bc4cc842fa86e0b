package engine

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klimozawr/klimozawr/internal/icmp"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	sync.Mutex
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.Lock()
	defer c.Unlock()
	c.t = t
}

type recorder struct {
	sync.Mutex
	ticks  []api.TickResult
	alerts []api.Alert
}

func (r *recorder) ReportTick(t api.TickResult) {
	r.Lock()
	defer r.Unlock()
	r.ticks = append(r.ticks, t)
}

func (r *recorder) ReportAlert(a api.Alert) {
	r.Lock()
	defer r.Unlock()
	r.alerts = append(r.alerts, a)
}

var lost = []api.Sample{{}, {}, {}}

func currentState(e *Engine, id string) *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[id]
}

func observeCurrent(e *Engine, id string, ts time.Time, samples []api.Sample) {
	e.observe(id, currentState(e, id), ts, samples)
}

func TestNextDeadline(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		Name   string
		Now    time.Duration
		Output time.Duration
	}{
		{"on-time", 100 * time.Millisecond, time.Second},
		{"late", 1500 * time.Millisecond, time.Second},
		{"just-one-behind", 2 * time.Second, 2 * time.Second},
		{"far-behind", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got := nextDeadline(base, base.Add(tt.Now), time.Second)
			if !got.Equal(base.Add(tt.Output)) {
				t.Errorf("unexpected deadline: expected +%s but got +%s", tt.Output, got.Sub(base))
			}
		})
	}
}

func TestEngine_observe_degradedThenDown(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := &fakeClock{t: base}
	rec := &recorder{}

	e := New(nil, rec, WithClock(clock.Now))
	e.SetEndpoints([]api.Endpoint{
		{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 1, TimeoutMs: 1000},
	})

	observeCurrent(e, "a", base, lost)
	observeCurrent(e, "a", base.Add(2*time.Second), lost)

	var statuses []api.Status
	for _, r := range rec.ticks {
		statuses = append(statuses, r.Status)
	}
	if diff := cmp.Diff([]api.Status{api.StatusDegraded, api.StatusDown}, statuses); diff != "" {
		t.Errorf("unexpected statuses\n%s", diff)
	}

	var levels []string
	for _, a := range rec.alerts {
		levels = append(levels, a.Level.String())
		if a.EndpointID != "a" {
			t.Errorf("unexpected endpoint id: %s", a.EndpointID)
		}
		if a.ID == "" {
			t.Errorf("alert id is empty")
		}
	}
	if diff := cmp.Diff([]string{"degraded", "down"}, levels); diff != "" {
		t.Errorf("unexpected alerts\n%s", diff)
	}

	if !rec.alerts[1].Time.Equal(base.Add(2 * time.Second)) {
		t.Errorf("unexpected alert time: %s", rec.alerts[1].Time)
	}
	if rec.ticks[0].LossPct != 100 || rec.ticks[0].AvgRTT != nil || rec.ticks[0].LastRTT != nil {
		t.Errorf("unexpected tick: %#v", rec.ticks[0])
	}
}

func TestEngine_observe_healthyTick(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &recorder{}

	e := New(nil, rec, WithClock(func() time.Time { return base }))
	e.SetEndpoints([]api.Endpoint{
		{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 120, DegradedNotifyAfterSecs: 30, TimeoutMs: 1000},
	})

	observeCurrent(e, "a", base.Add(time.Second), []api.Sample{
		{OK: true, RTT: 10 * time.Millisecond},
		{},
		{OK: true, RTT: 21 * time.Millisecond},
	})

	if len(rec.ticks) != 1 {
		t.Fatalf("unexpected number of ticks: %d", len(rec.ticks))
	}
	r := rec.ticks[0]
	if r.Status != api.StatusHealthy || r.LossPct != 33 || !r.Unstable {
		t.Errorf("unexpected tick: %#v", r)
	}
	if r.LastRTT == nil || *r.LastRTT != 21 {
		t.Errorf("unexpected last rtt: %v", r.LastRTT)
	}
	if r.AvgRTT == nil || *r.AvgRTT != 16 {
		t.Errorf("unexpected average rtt: %v", r.AvgRTT)
	}
	if len(rec.alerts) != 0 {
		t.Errorf("unexpected alerts: %v", rec.alerts)
	}

	st, ok := e.State("a")
	if !ok {
		t.Fatalf("state not found")
	}
	if !st.LastSuccess.Equal(base.Add(time.Second)) {
		t.Errorf("unexpected last success: %s", st.LastSuccess)
	}
}

func TestEngine_SetEndpoints(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := &fakeClock{t: base}
	rec := &recorder{}

	e := New(nil, rec, WithClock(clock.Now))

	a := api.Endpoint{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 120, DegradedNotifyAfterSecs: 30, TimeoutMs: 1000}
	b := api.Endpoint{ID: "b", Address: "192.0.2.2", DegradedToDownSecs: 120, DegradedNotifyAfterSecs: 30, TimeoutMs: 1000}

	e.SetEndpoints([]api.Endpoint{a, b, a})

	if diff := cmp.Diff([]api.Endpoint{a, b}, e.Endpoints()); diff != "" {
		t.Errorf("duplicated endpoint is not ignored\n%s", diff)
	}

	observeCurrent(e, "a", base.Add(10*time.Second), lost)
	stale := currentState(e, "a")

	clock.Set(base.Add(time.Minute))
	e.SetEndpoints([]api.Endpoint{b})

	if _, ok := e.State("a"); ok {
		t.Errorf("state of removed endpoint still exists")
	}
	if st, ok := e.State("b"); !ok || !st.FirstSeen.Equal(base) {
		t.Errorf("state of kept endpoint is changed: %v", st)
	}

	// a probe that was in flight when the endpoint was removed.
	e.observe("a", stale, base.Add(61*time.Second), lost)
	if _, ok := e.State("a"); ok {
		t.Errorf("state of removed endpoint is resurrected")
	}
	if len(rec.ticks) != 1 {
		t.Errorf("tick of removed endpoint is reported: %d ticks", len(rec.ticks))
	}

	clock.Set(base.Add(2 * time.Minute))
	e.SetEndpoints([]api.Endpoint{a, b})

	st, ok := e.State("a")
	if !ok {
		t.Fatalf("state of re-added endpoint not found")
	}
	if diff := cmp.Diff(State{FirstSeen: base.Add(2 * time.Minute)}, st); diff != "" {
		t.Errorf("re-added endpoint does not start fresh\n%s", diff)
	}

	// a probe that was scheduled before the removal finishes after the re-adding.
	e.observe("a", stale, base.Add(119*time.Second), lost)
	if st, _ := e.State("a"); !cmp.Equal(State{FirstSeen: base.Add(2 * time.Minute)}, st) {
		t.Errorf("stale result is applied to re-added endpoint: %#v", st)
	}
	if len(rec.ticks) != 1 || len(rec.alerts) != 0 {
		t.Errorf("stale result is reported: %v %v", rec.ticks, rec.alerts)
	}

	snapshot := e.Snapshot()
	if len(snapshot) != 2 || snapshot[0].Endpoint.ID != "a" || snapshot[1].Endpoint.ID != "b" {
		t.Errorf("unexpected snapshot: %v", snapshot)
	}
}

func TestEngine_Acknowledge(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &recorder{}

	e := New(nil, rec, WithClock(func() time.Time { return base }))
	e.SetEndpoints([]api.Endpoint{
		{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 5, DegradedNotifyAfterSecs: 30, TimeoutMs: 1000},
	})

	if e.Acknowledge("unknown", api.LevelDown) {
		t.Errorf("acknowledge of unknown endpoint succeeded")
	}

	observeCurrent(e, "a", base.Add(10*time.Second), lost)
	if len(rec.alerts) != 1 {
		t.Fatalf("unexpected alerts: %v", rec.alerts)
	}

	if !e.Acknowledge("a", api.LevelDown) {
		t.Fatalf("failed to acknowledge")
	}

	observeCurrent(e, "a", base.Add(10*time.Minute), lost)
	if len(rec.alerts) != 1 {
		t.Errorf("acknowledged alert fired again: %v", rec.alerts)
	}

	st, _ := e.State("a")
	if st.Status != api.StatusDown || !st.DownAcked {
		t.Errorf("unexpected state: %#v", st)
	}
}

func TestEngine_observe_afterStop(t *testing.T) {
	rec := &recorder{}

	e := New(nil, rec)
	e.SetEndpoints([]api.Endpoint{
		{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 5, DegradedNotifyAfterSecs: 30, TimeoutMs: 1000},
	})

	e.mu.Lock()
	e.closing = true
	e.mu.Unlock()

	observeCurrent(e, "a", time.Now(), lost)

	if len(rec.ticks) != 0 || len(rec.alerts) != 0 {
		t.Errorf("reported after shutdown: %v %v", rec.ticks, rec.alerts)
	}
	if st, _ := e.State("a"); st.Status != api.StatusUnknown {
		t.Errorf("state is changed after shutdown: %s", st.Status)
	}
}

func TestEngine_waitsForReportsInProgress(t *testing.T) {
	tests := []struct {
		Name   string
		Action func(e *Engine)
	}{
		{"closing", func(e *Engine) { e.markClosing() }},
		{"removing", func(e *Engine) { e.SetEndpoints(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			entered := make(chan struct{})
			release := make(chan struct{})
			var once sync.Once

			logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.Hooks(func(ent zapcore.Entry) error {
				if ent.Message == "status transition" {
					once.Do(func() {
						close(entered)
						<-release
					})
				}
				return nil
			})))

			base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			rec := &recorder{}

			e := New(nil, rec, WithLogger(logger), WithClock(func() time.Time { return base }))
			e.SetEndpoints([]api.Endpoint{
				{ID: "a", Address: "192.0.2.1", DegradedToDownSecs: 1, TimeoutMs: 1000},
			})
			st := currentState(e, "a")

			observed := make(chan struct{})
			go func() {
				e.observe("a", st, base, lost)
				close(observed)
			}()
			<-entered

			acted := make(chan struct{})
			go func() {
				tt.Action(e)
				close(acted)
			}()

			select {
			case <-acted:
				t.Fatalf("%s did not wait for the report in progress", tt.Name)
			case <-time.After(50 * time.Millisecond):
			}

			close(release)
			<-observed
			<-acted

			if len(rec.ticks) != 1 || len(rec.alerts) != 1 {
				t.Fatalf("report in progress is not completed: %v %v", rec.ticks, rec.alerts)
			}

			e.observe("a", st, base.Add(2*time.Second), lost)

			if len(rec.ticks) != 1 || len(rec.alerts) != 1 {
				t.Errorf("reported after %s: %v %v", tt.Name, rec.ticks, rec.alerts)
			}
		})
	}
}

func TestEngine_probe_resolve(t *testing.T) {
	prober := &recordProber{}

	e := New(prober, nil, WithResolver(icmp.Resolver{
		LookupIP: func(ctx context.Context, network, host string) ([]net.IP, error) {
			if host == "example.com" {
				return []net.IP{net.ParseIP("192.0.2.10")}, nil
			}
			return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
		},
	}))

	samples := e.probe(context.Background(), api.Endpoint{ID: "a", Address: "example.com", TimeoutMs: 500})
	if !samples[0].OK {
		t.Errorf("unexpected samples: %v", samples)
	}
	if diff := cmp.Diff([]string{"192.0.2.10"}, prober.addresses); diff != "" {
		t.Errorf("unexpected probed addresses\n%s", diff)
	}

	samples = e.probe(context.Background(), api.Endpoint{ID: "b", Address: "missing.example.com", TimeoutMs: 500})
	if samples != [icmp.SamplesPerTick]api.Sample{} {
		t.Errorf("unresolvable endpoint has samples: %v", samples)
	}
	if len(prober.addresses) != 1 {
		t.Errorf("unresolvable endpoint is probed: %v", prober.addresses)
	}
}

type recordProber struct {
	addresses []string
}

func (p *recordProber) Start() error { return nil }
func (p *recordProber) Close()       {}

func (p *recordProber) ProbeThree(ctx context.Context, address string, timeout time.Duration) [icmp.SamplesPerTick]api.Sample {
	p.addresses = append(p.addresses, address)
	return [icmp.SamplesPerTick]api.Sample{{OK: true, RTT: time.Millisecond}, {OK: true, RTT: time.Millisecond}, {OK: true, RTT: time.Millisecond}}
}
