package main

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klimozawr/klimozawr/internal/config"
	"github.com/klimozawr/klimozawr/internal/engine"
	"github.com/klimozawr/klimozawr/internal/netcheck"
	"github.com/klimozawr/klimozawr/internal/reporter"
	api "github.com/klimozawr/klimozawr/lib-klimozawr"
	"go.uber.org/zap"
)

// app is the running engine with its consumers. It implements endpoint.Store.
type app struct {
	*engine.Engine
	board   *reporter.Board
	outputs reporter.Multi
	logger  *zap.Logger

	endpointsPath string
	reloadMu      sync.Mutex
	startedAt     time.Time

	online      atomic.Bool
	onlineCheck func(ctx context.Context) bool
}

func newApp(e *engine.Engine, board *reporter.Board, outputs reporter.Multi, logger *zap.Logger, endpointsPath string) *app {
	a := &app{
		Engine:        e,
		board:         board,
		outputs:       outputs,
		logger:        logger,
		endpointsPath: endpointsPath,
		startedAt:     time.Now(),
		onlineCheck: func(ctx context.Context) bool {
			return netcheck.Online(ctx, netcheck.DefaultAddress, netcheck.DefaultTimeout)
		},
	}
	a.online.Store(true)
	return a
}

// Latest implements endpoint.Store.
func (a *app) Latest(id string) (api.TickResult, bool) {
	return a.board.Latest(id)
}

// Alerts implements endpoint.Store.
func (a *app) Alerts() []api.Alert {
	return a.board.Alerts()
}

// Errors implements endpoint.Store.
func (a *app) Errors() (healthy bool, messages []string) {
	if err := a.Err(); err != nil {
		messages = append(messages, "engine crashed: "+err.Error())
	} else if !a.Running() {
		messages = append(messages, "engine is not running")
	}
	if !a.online.Load() {
		messages = append(messages, "host seems offline")
	}
	return len(messages) == 0, messages
}

// reload reads the endpoints file again and applies it.
// The current endpoints are kept if the file is broken.
func (a *app) reload() error {
	a.reloadMu.Lock()
	defer a.reloadMu.Unlock()

	endpoints, err := config.Load(a.endpointsPath)
	if err != nil {
		a.logger.Error("failed to reload endpoints; keep current endpoints", zap.String("path", a.endpointsPath), zap.Error(err))
		return err
	}

	a.SetEndpoints(endpoints)

	ids := make([]string, len(endpoints))
	for i, ep := range endpoints {
		ids[i] = ep.ID
	}
	a.outputs.Retain(ids)

	return nil
}

// checkOnline updates the online flag, and logs when it changed.
func (a *app) checkOnline(ctx context.Context) {
	online := a.onlineCheck(ctx)
	if a.online.Swap(online) == online {
		return
	}

	if online {
		a.logger.Info("host is back online")
	} else {
		a.logger.Warn("host seems offline; probe results may be misleading")
	}
}

// Summary is the count of endpoints per status.
type Summary struct {
	Healthy  int
	Degraded int
	Down     int
	Unknown  int
	Unstable int
}

func (a *app) summary() Summary {
	var s Summary
	for _, sn := range a.Snapshot() {
		switch sn.State.Status {
		case api.StatusHealthy:
			s.Healthy++
		case api.StatusDegraded:
			s.Degraded++
		case api.StatusDown:
			s.Down++
		default:
			s.Unknown++
		}
		if sn.State.Unstable {
			s.Unstable++
		}
	}
	return s
}

func (a *app) logSummary() {
	s := a.summary()
	a.logger.Info("summary",
		zap.Int("healthy", s.Healthy),
		zap.Int("degraded", s.Degraded),
		zap.Int("down", s.Down),
		zap.Int("unknown", s.Unknown),
		zap.Int("unstable", s.Unstable),
		zap.Bool("online", a.online.Load()),
		zap.String("running_for", strings.TrimSpace(humanize.RelTime(a.startedAt, time.Now(), "", ""))))
}
