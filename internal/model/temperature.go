package model

import (
	"encoding/json"
	"math"
)

// SensorType identifies the hardware class a reading belongs to.
type SensorType string

const (
	SensorUnknown SensorType = "UNKNOWN"
	SensorCPU     SensorType = "CPU"
	SensorGPU     SensorType = "GPU"
	SensorBattery SensorType = "BATTERY"
	SensorSkin    SensorType = "SKIN"
)

// UnknownTemperature is the raw sentinel the kernel-facing layer uses for
// "no data". It never reaches consumers: every value is passed through
// FinalizeTemperature before it leaves the value model.
const UnknownTemperature = -math.MaxFloat32

// Celsius is a temperature in degrees. NaN means "not specified" and is
// marshaled as JSON null, since encoding/json rejects NaN.
type Celsius float64

func (c Celsius) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(c)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(c))
}

func (c *Celsius) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Celsius(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Celsius(v)
	return nil
}

// IsUnknown reports whether the value carries no data.
func (c Celsius) IsUnknown() bool {
	return math.IsNaN(float64(c))
}

// FinalizeTemperature maps the raw unknown sentinel to NaN and passes every
// other value through unchanged.
func FinalizeTemperature(v float64) Celsius {
	if v == UnknownTemperature {
		return Celsius(math.NaN())
	}
	return Celsius(v)
}

// Temperature is one normalized sensor reading with its static thresholds.
type Temperature struct {
	Type                  SensorType `json:"type"`
	Name                  string     `json:"name"`
	CurrentValue          Celsius    `json:"current_value"`
	ThrottlingThreshold   Celsius    `json:"throttling_threshold"`
	ShutdownThreshold     Celsius    `json:"shutdown_threshold"`
	VRThrottlingThreshold Celsius    `json:"vr_throttling_threshold"`
}

// CurrentTemperature is the instantaneous reading variant that carries a
// severity tag instead of the threshold triple.
type CurrentTemperature struct {
	Type             SensorType         `json:"type"`
	Name             string             `json:"name"`
	Value            Celsius            `json:"value"`
	ThrottlingStatus ThrottlingSeverity `json:"throttling_status"`
}
