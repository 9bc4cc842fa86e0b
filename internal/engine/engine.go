// Package engine is the scheduler of the monitoring: it probes every endpoint once per tick on a worker pool,
// keeps the runtime state of the endpoints, and reports tick results and alerts.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/klimozawr/klimozawr/internal/icmp"
	"github.com/klimozawr/klimozawr/internal/kzerr"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const (
	DefaultWorkers     = 8
	DefaultInterval    = time.Second
	DefaultStopTimeout = 2 * time.Second
)

var (
	ErrAlreadyRunning = errors.New("engine is already running")
	ErrFailedToStart  = errors.New("failed to start engine")
	ErrCrashed        = errors.New("engine crashed")
)

// Prober sends the echo requests of one tick. *icmp.Client implements it.
type Prober interface {
	Start() error
	Close()
	ProbeThree(ctx context.Context, address string, timeout time.Duration) [icmp.SamplesPerTick]api.Sample
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the size of the probe worker pool.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithInterval sets the tick period.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithStopTimeout sets how long Stop waits for the loop and the workers.
func WithStopTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.stopTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithResolver sets the resolver for hostname endpoints.
func WithResolver(r icmp.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine is the monitor engine.
type Engine struct {
	prober   Prober
	reporter Reporter
	resolver icmp.Resolver
	logger   *zap.Logger
	now      func() time.Time

	workers     int
	interval    time.Duration
	stopTimeout time.Duration

	// reportMu is read-locked while a tick is applied and reported.
	// Writers take it to make sure no report is in progress nor will be for the removed endpoints or after closing.
	// It is always taken before mu.
	reportMu sync.RWMutex

	// mu guards the fields below. It is never held while probing or reporting.
	mu        sync.Mutex
	endpoints []api.Endpoint
	configs   map[string]api.Endpoint
	states    map[string]*State
	closing   bool
	crash     error

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	stopped   chan struct{}
}

// New creates an Engine. A nil reporter discards the outputs.
func New(prober Prober, reporter Reporter, opts ...Option) *Engine {
	if reporter == nil {
		reporter = ReporterFuncs{}
	}

	e := &Engine{
		prober:      prober,
		reporter:    reporter,
		logger:      zap.NewNop(),
		now:         time.Now,
		workers:     DefaultWorkers,
		interval:    DefaultInterval,
		stopTimeout: DefaultStopTimeout,
		configs:     make(map[string]api.Endpoint),
		states:      make(map[string]*State),
	}

	for _, o := range opts {
		o(e)
	}

	return e
}

// SetEndpoints replaces the monitored endpoints.
//
// The replacement is atomic for the tick loop. New endpoints get a fresh state that starts now,
// and the states of removed endpoints are deleted immediately.
// Duplicated IDs are ignored except the first one.
// After it returns, no tick results nor alerts of removed endpoints are reported.
func (e *Engine) SetEndpoints(endpoints []api.Endpoint) {
	now := e.now()

	e.reportMu.Lock()
	e.mu.Lock()

	list := make([]api.Endpoint, 0, len(endpoints))
	configs := make(map[string]api.Endpoint, len(endpoints))
	var added, removed []string

	for _, ep := range endpoints {
		if _, dup := configs[ep.ID]; dup {
			e.logger.Warn("duplicated endpoint id is ignored", zap.String("endpoint", ep.ID))
			continue
		}
		configs[ep.ID] = ep
		list = append(list, ep)

		if _, ok := e.states[ep.ID]; !ok {
			e.states[ep.ID] = &State{FirstSeen: now}
			added = append(added, ep.ID)
		}
	}

	for id := range e.states {
		if _, ok := configs[id]; !ok {
			delete(e.states, id)
			removed = append(removed, id)
		}
	}

	e.endpoints = list
	e.configs = configs

	e.mu.Unlock()
	e.reportMu.Unlock()

	e.logger.Info("endpoints updated",
		zap.Int("endpoints", len(list)),
		zap.Strings("added", added),
		zap.Strings("removed", removed))
}

// Endpoints returns the monitored endpoints.
func (e *Engine) Endpoints() []api.Endpoint {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]api.Endpoint(nil), e.endpoints...)
}

// Acknowledge silences the alerts of level for the current episode of the endpoint.
//
// It does not change the status nor the episode; the next new episode will alert again.
// It returns false if the endpoint is not monitored.
func (e *Engine) Acknowledge(id string, level api.Level) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[id]
	if !ok {
		return false
	}
	st.acknowledge(level)

	e.logger.Info("alert acknowledged", zap.String("endpoint", id), zap.Stringer("level", level))
	return true
}

// State returns a copy of the runtime state of the endpoint.
func (e *Engine) State(id string) (State, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Snapshot is an endpoint and a copy of its runtime state.
type Snapshot struct {
	Endpoint api.Endpoint `json:"endpoint"`
	State    State        `json:"state"`
}

// Snapshot returns the states of all monitored endpoints, in the order of SetEndpoints.
func (e *Engine) Snapshot() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := make([]Snapshot, 0, len(e.endpoints))
	for _, ep := range e.endpoints {
		if st, ok := e.states[ep.ID]; ok {
			result = append(result, Snapshot{Endpoint: ep, State: *st})
		}
	}
	return result
}

// Err returns the reason if the tick loop has crashed.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.crash
}

// Running reports whether the tick loop is running.
func (e *Engine) Running() bool {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	return e.runningWithoutLock()
}

func (e *Engine) runningWithoutLock() bool {
	if e.stopped == nil {
		return false
	}
	select {
	case <-e.stopped:
		return false
	default:
		return true
	}
}

// Start acquires the echo capability and starts the tick loop.
func (e *Engine) Start() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.runningWithoutLock() {
		return ErrAlreadyRunning
	}

	if err := e.prober.Start(); err != nil {
		return kzerr.New(ErrFailedToStart, err, "failed to open echo socket")
	}

	pool, err := ants.NewPool(e.workers, ants.WithNonblocking(true), ants.WithLogger(zap.NewStdLog(e.logger)))
	if err != nil {
		e.prober.Close()
		return kzerr.New(ErrFailedToStart, err, "failed to create worker pool")
	}

	ctx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	e.closing = false
	e.crash = nil
	e.mu.Unlock()

	e.cancel = cancel
	e.stopped = make(chan struct{})

	go e.run(ctx, cancel, pool, e.stopped)

	return nil
}

// markClosing makes observe drop every result from now on.
// It waits for the reports in progress.
func (e *Engine) markClosing() {
	e.reportMu.Lock()
	defer e.reportMu.Unlock()

	e.mu.Lock()
	e.closing = true
	e.mu.Unlock()
}

// Stop stops the tick loop, waits for it up to the stop timeout, and releases the workers and the echo capability.
// Reports already in progress are completed first, and no tick results nor alerts are reported after that.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.cancel == nil {
		return
	}

	e.markClosing()
	e.cancel()

	select {
	case <-e.stopped:
	case <-time.After(e.stopTimeout):
		e.logger.Warn("engine did not stop in time", zap.Duration("timeout", e.stopTimeout))
	}

	e.cancel = nil
}
