package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klimozawr/klimozawr/internal/config"
	"github.com/klimozawr/klimozawr/internal/endpoint"
	"github.com/klimozawr/klimozawr/internal/engine"
	"github.com/klimozawr/klimozawr/internal/icmp"
	"github.com/klimozawr/klimozawr/internal/logging"
	"github.com/klimozawr/klimozawr/internal/meta"
	"github.com/klimozawr/klimozawr/internal/reporter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	onlineCheckSchedule = "@every 30s"
	shutdownTimeout     = 5 * time.Second
)

// setup builds the engine and its consumers. The returned function releases them.
func (cmd *KlimozawrCommand) setup(logger *zap.Logger, reg prometheus.Registerer) (*app, func(), error) {
	endpoints, err := config.Load(cmd.EndpointsPath)
	if err != nil {
		return nil, nil, err
	}

	metrics, err := reporter.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}

	output := reporter.OpenOutput(cmd.OutputPath)
	board := reporter.NewBoard(reporter.DefaultAlertHistory)
	outputs := reporter.Multi{board, metrics, reporter.NewJSONLines(output, logger)}

	prober := cmd.Prober
	if prober == nil {
		prober = icmp.New()
	}

	e := engine.New(prober, outputs, engine.WithWorkers(cmd.Workers), engine.WithLogger(logger))
	e.SetEndpoints(endpoints)

	closeFn := func() {
		if err := output.Close(); err != nil {
			logger.Warn("failed to close output", zap.Error(err))
		}
	}

	return newApp(e, board, outputs, logger, cmd.EndpointsPath), closeFn, nil
}

func (cmd *KlimozawrCommand) RunServer() (exitCode int) {
	if err := config.LoadEnv(cmd.EnvFile); err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}

	logger, closeLogger, err := logging.New(logging.Options{Level: cmd.LogLevel, File: cmd.LogFile, Console: cmd.ErrStream})
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}
	defer closeLogger()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, closeApp, err := cmd.setup(logger, reg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return 2
	}
	defer closeApp()

	if err := a.Start(); err != nil {
		logger.Error("failed to start engine", zap.Error(err))
		return 1
	}
	defer a.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	scheduler := cron.New()
	if err := addJobs(scheduler, cmd.Summary, a.logSummary, func() { a.checkOnline(ctx) }); err != nil {
		logger.Error("failed to schedule jobs", zap.Error(err))
		return 2
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()
	go a.checkOnline(ctx)

	listen := fmt.Sprintf("0.0.0.0:%d", cmd.ListenPort)
	srv := &http.Server{
		Addr:     listen,
		Handler:  endpoint.WithBasicAuth(endpoint.New(a, reg, logger), cmd.UserInfo),
		ErrorLog: zap.NewStdLog(logger),
	}

	served := make(chan error, 1)
	go func() {
		served <- srv.ListenAndServe()
	}()

	logger.Info("start klimozawr",
		zap.String("version", meta.Version),
		zap.String("url", "http://"+listen),
		zap.Int("endpoints", len(a.Endpoints())),
		zap.Int("workers", cmd.Workers))

loop:
	for {
		select {
		case <-hup:
			if a.reload() == nil {
				logger.Info("endpoints reloaded", zap.String("path", cmd.EndpointsPath))
			}
		case err := <-served:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("failed to serve HTTP", zap.Error(err))
				return 1
			}
			return 0
		case <-ctx.Done():
			break loop
		}
	}

	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("failed to shutdown HTTP server", zap.Error(err))
	}

	return 0
}

// addJobs registers the summary job and the online check job to c.
func addJobs(c *cron.Cron, summary string, logSummary, checkOnline func()) error {
	if _, err := c.AddFunc(summary, logSummary); err != nil {
		return fmt.Errorf("invalid summary schedule %q: %w", summary, err)
	}
	if _, err := c.AddFunc(onlineCheckSchedule, checkOnline); err != nil {
		return fmt.Errorf("invalid online check schedule %q: %w", onlineCheckSchedule, err)
	}
	return nil
}
