// Package monitor re-samples thermal zones on a fixed interval and pushes
// throttling events through the registry when a sensor crosses its
// throttling threshold. The loop is optional: queries stay request-driven
// and an interval of zero disables it entirely.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"thermal-agent/internal/hal"
	"thermal-agent/internal/model"
)

type Monitor struct {
	logger    *slog.Logger
	svc       *hal.Service
	interval  time.Duration
	onSample  func(time.Time)
	throttled map[string]bool
}

func New(svc *hal.Service, interval time.Duration, onSample func(time.Time), logger *slog.Logger) *Monitor {
	return &Monitor{
		logger:    logger,
		svc:       svc,
		interval:  interval,
		onSample:  onSample,
		throttled: make(map[string]bool),
	}
}

// Run ticks until the context is canceled. Sampling failures are logged
// and retried on the next tick; they never stop the loop.
func (m *Monitor) Run(ctx context.Context) error {
	if m.interval <= 0 {
		m.logger.Info("thermal monitor disabled")
		return nil
	}

	m.logger.Info("thermal monitor started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.sample(time.Now().UTC())
		}
	}
}

// sample fetches current readings and notifies observers about sensors
// whose throttling state changed since the previous tick.
func (m *Monitor) sample(now time.Time) {
	status, temps := m.svc.GetTemperatures()
	if status.Code != model.StatusSuccess {
		m.logger.Warn("monitor sample failed", "message", status.DebugMessage)
		return
	}
	if m.onSample != nil {
		m.onSample(now)
	}

	for _, t := range temps {
		// NaN never compares greater, so unknown values and unknown
		// thresholds both read as "not throttling".
		hot := float64(t.CurrentValue) >= float64(t.ThrottlingThreshold)
		if m.throttled[t.Name] == hot {
			continue
		}
		m.throttled[t.Name] = hot

		m.logger.Info("throttling state changed", "sensor", t.Name, "throttling", hot, "value", float64(t.CurrentValue))
		m.svc.Registry().Notify(model.ThrottlingEvent{IsThrottling: hot, Temperature: t})
	}
}
