// Package hal composes the sysfs readers, the threshold policy and the
// observer registry into the externally invoked thermal operations.
package hal

import (
	"log/slog"

	"thermal-agent/internal/model"
	"thermal-agent/internal/registry"
	"thermal-agent/internal/sysfs"
)

const coolingUnsupportedMsg = "cooling devices are not supported on this hardware"

// Service is the stateless query façade. Every operation re-samples current
// kernel state and folds hard failures into a Status instead of returning
// an error.
type Service struct {
	thermal  *sysfs.ThermalReader
	cpustat  *sysfs.CPUStatReader
	registry *registry.Registry
	logger   *slog.Logger
}

func NewService(thermal *sysfs.ThermalReader, cpustat *sysfs.CPUStatReader, reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{thermal: thermal, cpustat: cpustat, registry: reg, logger: logger}
}

// Registry exposes the observer registry for event producers.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// GetTemperatures samples every thermal zone and returns normalized
// readings with their static thresholds.
func (s *Service) GetTemperatures() (model.Status, []model.Temperature) {
	sensors, err := s.thermal.ListSensors()
	if err != nil {
		s.logger.Error("list thermal sensors failed", "error", err)
		return model.Failure(err.Error()), []model.Temperature{}
	}
	out := make([]model.Temperature, 0, len(sensors))
	for _, sn := range sensors {
		out = append(out, cpuTemperature(sn.Label, sn.Value))
	}
	return model.OK(), out
}

// GetCPUUsages samples the per-core cycle counters and online state.
func (s *Service) GetCPUUsages() (model.Status, []model.CPUUsage) {
	usages, err := s.cpustat.ListCPUUsage()
	if err != nil {
		s.logger.Error("list cpu usage failed", "error", err)
		return model.Failure(err.Error()), []model.CPUUsage{}
	}
	if usages == nil {
		usages = []model.CPUUsage{}
	}
	return model.OK(), usages
}

// GetCoolingDevices always reports an empty list: this hardware class has
// no cooling actuators.
func (s *Service) GetCoolingDevices() (model.Status, []model.CoolingDevice) {
	return model.Failure(coolingUnsupportedMsg), []model.CoolingDevice{}
}

// GetCurrentCoolingDevices mirrors GetCoolingDevices for the filtered
// variant of the call.
func (s *Service) GetCurrentCoolingDevices(bool, string) (model.Status, []model.CoolingDevice) {
	return model.Failure(coolingUnsupportedMsg), []model.CoolingDevice{}
}

// GetCurrentTemperatures samples instantaneous readings with a severity
// tag. No crossing history is tracked, so the severity is always NONE. Only
// the CPU type can be filtered for; any other filter yields an empty
// failure result.
func (s *Service) GetCurrentTemperatures(filterByType bool, t model.SensorType) (model.Status, []model.CurrentTemperature) {
	if filterByType && t != model.SensorCPU {
		return model.Failure("unsupported sensor type filter: " + string(t)), []model.CurrentTemperature{}
	}
	sensors, err := s.thermal.ListSensors()
	if err != nil {
		s.logger.Error("list thermal sensors failed", "error", err)
		return model.Failure(err.Error()), []model.CurrentTemperature{}
	}
	out := make([]model.CurrentTemperature, 0, len(sensors))
	for _, sn := range sensors {
		out = append(out, model.CurrentTemperature{
			Type:             model.SensorCPU,
			Name:             sn.Label,
			Value:            model.FinalizeTemperature(sn.Value),
			ThrottlingStatus: model.SeverityNone,
		})
	}
	return model.OK(), out
}

// GetTemperatureThresholds returns the static threshold table for every
// discovered sensor. The policy only knows about CPU sensors, so a filter
// for any other type yields an empty failure result.
func (s *Service) GetTemperatureThresholds(filterByType bool, t model.SensorType) (model.Status, []model.TemperatureThreshold) {
	if filterByType && t != model.SensorCPU {
		return model.Failure("unsupported sensor type filter: " + string(t)), []model.TemperatureThreshold{}
	}
	sensors, err := s.thermal.ListSensors()
	if err != nil {
		s.logger.Error("list thermal sensors failed", "error", err)
		return model.Failure(err.Error()), []model.TemperatureThreshold{}
	}
	out := make([]model.TemperatureThreshold, 0, len(sensors))
	for _, sn := range sensors {
		out = append(out, cpuThreshold(sn.Label))
	}
	return model.OK(), out
}

// RegisterObserver adds the observer to the registry and, on success,
// delivers an informational not-throttling event carrying the static
// thresholds so a fresh subscriber learns them without a separate query.
func (s *Service) RegisterObserver(h registry.Handle, obs registry.Observer, filterByType bool, t model.SensorType) model.Status {
	if err := s.registry.Register(h, obs, filterByType, t); err != nil {
		return model.Failure(err.Error())
	}
	obs.OnThrottlingEvent(model.ThrottlingEvent{
		IsThrottling: false,
		Temperature:  cpuTemperature("thermal", model.UnknownTemperature),
	})
	return model.OK()
}

// UnregisterObserver removes the observer registered under the handle.
func (s *Service) UnregisterObserver(h registry.Handle) model.Status {
	if err := s.registry.Unregister(h); err != nil {
		return model.Failure(err.Error())
	}
	return model.OK()
}
