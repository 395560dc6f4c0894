package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"thermal-agent/internal/config"
	"thermal-agent/internal/hal"
	"thermal-agent/internal/monitor"
	"thermal-agent/internal/registry"
	"thermal-agent/internal/server"
	"thermal-agent/internal/sysfs"
)

// Agent ties the thermal service together: sysfs readers, the façade, the
// delivery shell and the optional monitor loop.
type Agent struct {
	cfg     config.Config
	logger  *slog.Logger
	svc     *hal.Service
	grpcSrv *server.GRPCServer
	httpSrv *server.HTTPServer
	monitor *monitor.Monitor
	health  *HealthStatus
}

func New(cfg config.Config, logger *slog.Logger) (*Agent, error) {
	tlsCfg, err := cfg.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("tls config: %w", err)
	}

	thermal := sysfs.NewThermalReader(cfg.ThermalDir, logger)
	cpustat := sysfs.NewCPUStatReader(cfg.CPUStatPath, cfg.CPUOnlineFormat, logger)
	reg := registry.New(logger)
	svc := hal.NewService(thermal, cpustat, reg, logger)

	health := NewHealthStatus()
	grpcSrv := server.NewGRPCServer(cfg.GRPCListenAddr, svc, tlsCfg, cfg.EventBufferSize, logger)
	httpSrv := server.NewHTTPServer(cfg.HTTPListenAddr, svc, tlsCfg, health.Snapshot, logger)
	mon := monitor.New(svc, cfg.MonitorInterval, health.MarkSample, logger)

	return &Agent{
		cfg:     cfg,
		logger:  logger,
		svc:     svc,
		grpcSrv: grpcSrv,
		httpSrv: httpSrv,
		monitor: mon,
		health:  health,
	}, nil
}

// Run blocks until the agent stops, either on its own or after a shutdown
// signal. A second signal or an expired grace period forces shutdown.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.Info("starting thermal-agent",
		"host", a.cfg.Hostname,
		"thermal_dir", a.cfg.ThermalDir,
		"grpc_addr", a.cfg.GRPCListenAddr,
		"http_addr", a.cfg.HTTPListenAddr,
	)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	runErrCh := make(chan error, 1)
	go func() {
		runErrCh <- a.run(runCtx)
	}()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case runErr = <-runErrCh:
		// Agent terminated by itself.
	case sig := <-sigCh:
		a.logger.Info("shutdown signal received, starting graceful shutdown", "signal", sig.String(), "timeout", a.cfg.ShutdownTimeout)
		cancelRun()

		graceTimer := time.NewTimer(a.cfg.ShutdownTimeout)
		defer graceTimer.Stop()

		select {
		case runErr = <-runErrCh:
			// graceful stop completed in time
		case sig2 := <-sigCh:
			a.logger.Warn("second signal received, forcing immediate shutdown", "signal", sig2.String())
			runErr = context.Canceled
		case <-graceTimer.C:
			a.logger.Warn("graceful shutdown timeout reached, forcing shutdown", "timeout", a.cfg.ShutdownTimeout)
			runErr = context.DeadlineExceeded
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return runErr
	}
	a.logger.Info("thermal-agent stopped")
	return nil
}

func (a *Agent) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := a.grpcSrv.Run(gctx)
		a.health.SetGRPCServing(false)
		return err
	})
	g.Go(func() error {
		return a.httpSrv.Run(gctx)
	})
	g.Go(func() error {
		return a.runProbeListener(gctx)
	})
	g.Go(func() error {
		return a.monitor.Run(gctx)
	})
	a.health.SetGRPCServing(true)
	return g.Wait()
}

// BuildLogger constructs the process logger from config.
func BuildLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	hOpts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stdout, hOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, hOpts))
}
