package hal

import (
	"thermal-agent/internal/model"
)

// Static engineering constants for the supported silicon. These are not
// read from hardware at runtime.
const (
	throttlingThresholdC = 100.0
	shutdownThresholdC   = 120.0
)

// unknownLadder returns a severity ladder with every slot unpopulated.
func unknownLadder() [model.SeverityCount]model.Celsius {
	var ladder [model.SeverityCount]model.Celsius
	for i := range ladder {
		ladder[i] = model.FinalizeTemperature(model.UnknownTemperature)
	}
	return ladder
}

// cpuThreshold builds the static threshold table for one CPU sensor. The
// throttling point sits at the SEVERE slot and the shutdown point at the
// SHUTDOWN slot; the cold ladder is unpopulated on this hardware.
func cpuThreshold(name string) model.TemperatureThreshold {
	hot := unknownLadder()
	hot[model.SeveritySevere] = model.FinalizeTemperature(throttlingThresholdC)
	hot[model.SeverityShutdown] = model.FinalizeTemperature(shutdownThresholdC)
	return model.TemperatureThreshold{
		Type:                     model.SensorCPU,
		Name:                     name,
		HotThrottlingThresholds:  hot,
		ColdThrottlingThresholds: unknownLadder(),
		VRThrottlingThreshold:    model.FinalizeTemperature(model.UnknownTemperature),
	}
}

// cpuTemperature builds a normalized reading for one CPU sensor.
func cpuTemperature(name string, value float64) model.Temperature {
	return model.Temperature{
		Type:                  model.SensorCPU,
		Name:                  name,
		CurrentValue:          model.FinalizeTemperature(value),
		ThrottlingThreshold:   model.FinalizeTemperature(throttlingThresholdC),
		ShutdownThreshold:     model.FinalizeTemperature(shutdownThresholdC),
		VRThrottlingThreshold: model.FinalizeTemperature(model.UnknownTemperature),
	}
}
