package engine

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/klimozawr/klimozawr/internal/icmp"
	"github.com/klimozawr/klimozawr/internal/kzerr"
	"github.com/klimozawr/klimozawr/internal/tick"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

var (
	ErrTaskPanicked = errors.New("probe task panicked")
	ErrTaskRejected = errors.New("probe task rejected")
)

// completion is sent by a probe task when it finished, whatever happened.
type completion struct {
	id  string
	err error
}

// loopState is owned by the loop goroutine.
type loopState struct {
	pool     *ants.Pool
	inFlight map[string]struct{}
	done     chan completion
	offset   int
}

// nextDeadline returns the deadline of the tick after the one at prev.
// If the loop is behind by one interval or more, the schedule is re-based on now instead of catching up.
func nextDeadline(prev, now time.Time, interval time.Duration) time.Time {
	next := prev.Add(interval)
	if now.Sub(next) >= interval {
		return now
	}
	return next
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, pool *ants.Pool, stopped chan struct{}) {
	defer close(stopped)

	defer func() {
		e.markClosing()

		cancel()

		if err := pool.ReleaseTimeout(e.stopTimeout); err != nil {
			e.logger.Warn("failed to release workers", zap.Error(err))
		}
		e.prober.Close()

		e.logger.Info("engine stopped")
	}()

	defer func() {
		if r := recover(); r != nil {
			err := kzerr.New(ErrCrashed, nil, "%v", r)
			e.logger.Error("engine crashed", zap.Error(err), zap.ByteString("stack", debug.Stack()))

			e.mu.Lock()
			e.crash = err
			e.mu.Unlock()
		}
	}()

	e.logger.Info("engine started", zap.Int("workers", e.workers), zap.Duration("interval", e.interval))

	ls := &loopState{
		pool:     pool,
		inFlight: make(map[string]struct{}),
		done:     make(chan completion, e.workers),
	}

	deadline := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-ls.done:
			e.complete(ls, c)
			continue
		case <-timer.C:
		}

		e.drain(ls)
		e.schedule(ctx, ls, e.now())

		deadline = nextDeadline(deadline, time.Now(), e.interval)
		timer.Reset(time.Until(deadline))
	}
}

// drain handles every completion that is already waiting.
func (e *Engine) drain(ls *loopState) {
	for {
		select {
		case c := <-ls.done:
			e.complete(ls, c)
		default:
			return
		}
	}
}

func (e *Engine) complete(ls *loopState, c completion) {
	delete(ls.inFlight, c.id)

	if c.err != nil {
		e.logger.Error("probe task failed", zap.String("endpoint", c.id), zap.Error(c.err))
	}
}

// schedule submits a probe task for every endpoint that has no task in flight.
//
// The order of submission rotates every tick, so that the same endpoints are not always the ones skipped when the pool is full.
func (e *Engine) schedule(ctx context.Context, ls *loopState, ts time.Time) {
	e.mu.Lock()
	endpoints := e.endpoints
	states := make([]*State, len(endpoints))
	for i, ep := range endpoints {
		states[i] = e.states[ep.ID]
	}
	e.mu.Unlock()

	n := len(endpoints)
	if n == 0 {
		return
	}
	ls.offset = (ls.offset + 1) % n

	skipped := 0
	for i := 0; i < n; i++ {
		ep, st := endpoints[(ls.offset+i)%n], states[(ls.offset+i)%n]
		if _, ok := ls.inFlight[ep.ID]; ok {
			continue
		}

		err := ls.pool.Submit(func() {
			e.runTask(ctx, ls.done, ep, st, ts)
		})
		if err != nil {
			if errors.Is(err, ants.ErrPoolOverload) {
				skipped++
				continue
			}
			e.logger.Error("failed to submit probe task", zap.String("endpoint", ep.ID), zap.Error(kzerr.New(ErrTaskRejected, err, "%s", ep.ID)))
			return
		}
		ls.inFlight[ep.ID] = struct{}{}
	}

	if skipped > 0 {
		e.logger.Debug("workers are busy; endpoints skipped in this tick", zap.Int("skipped", skipped))
	}
}

// runTask probes ep and reports the completion to the loop.
// st is the state of ep when the task was scheduled.
func (e *Engine) runTask(ctx context.Context, done chan<- completion, ep api.Endpoint, st *State, ts time.Time) {
	c := completion{id: ep.ID}

	defer func() {
		if r := recover(); r != nil {
			c.err = kzerr.New(ErrTaskPanicked, nil, "%v\n%s", r, debug.Stack())
		}
		select {
		case done <- c:
		case <-ctx.Done():
		}
	}()

	samples := e.probe(ctx, ep)
	e.observe(ep.ID, st, ts, samples[:])
}

func (e *Engine) probe(ctx context.Context, ep api.Endpoint) [icmp.SamplesPerTick]api.Sample {
	address, err := e.resolver.Resolve(ctx, ep.Address)
	if err != nil {
		e.logger.Debug("failed to resolve endpoint address", zap.String("endpoint", ep.ID), zap.Error(err))
		return [icmp.SamplesPerTick]api.Sample{}
	}
	return e.prober.ProbeThree(ctx, address, ep.Timeout())
}

// observe applies the samples of a tick to st, and reports the tick and the fired alerts.
//
// The result is dropped if the engine is closing, or if st is no longer the state of the endpoint
// because the endpoint was removed (and maybe re-added) while probing.
func (e *Engine) observe(id string, st *State, ts time.Time, samples []api.Sample) {
	m := tick.Derive(samples)

	e.reportMu.RLock()
	defer e.reportMu.RUnlock()

	e.mu.Lock()

	ep, ok := e.configs[id]
	if e.closing || !ok || st == nil || e.states[id] != st {
		e.mu.Unlock()
		return
	}

	prev := st.Status
	cur, decisions := st.apply(ts, ep, m)
	degradedSince, downSince := st.DegradedSince, st.DownSince

	e.mu.Unlock()

	if prev != cur {
		e.logger.Info("status transition",
			zap.String("endpoint", id),
			zap.Stringer("from", prev),
			zap.Stringer("to", cur),
			zap.String("degraded_since", formatAnchor(degradedSince)),
			zap.String("down_since", formatAnchor(downSince)))
	}

	e.reporter.ReportTick(api.TickResult{
		EndpointID: id,
		Time:       ts,
		LossPct:    m.LossPct,
		LastRTT:    m.LastRTT,
		AvgRTT:     m.AvgRTT,
		Unstable:   m.Unstable,
		Status:     cur,
	})

	for _, d := range decisions {
		a := api.Alert{
			ID:         uuid.NewString(),
			EndpointID: id,
			Level:      d.Level,
			Time:       ts,
			Reason:     d.Reason,
		}
		e.logger.Warn("alert", zap.String("endpoint", id), zap.Stringer("level", a.Level), zap.String("reason", a.Reason))
		e.reporter.ReportAlert(a)
	}
}

func formatAnchor(t time.Time) string {
	if t.IsZero() {
		return "none"
	}
	return t.UTC().Format(time.RFC3339)
}
