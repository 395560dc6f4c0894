package model

// ThrottlingSeverity is the fixed seven-level ladder used to classify how
// far past its thresholds a sensor is. The integer value doubles as the
// index into a threshold ladder.
type ThrottlingSeverity int

const (
	SeverityNone ThrottlingSeverity = iota
	SeverityLight
	SeverityModerate
	SeveritySevere
	SeverityCritical
	SeverityEmergency
	SeverityShutdown

	SeverityCount = int(SeverityShutdown) + 1
)

func (s ThrottlingSeverity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityLight:
		return "LIGHT"
	case SeverityModerate:
		return "MODERATE"
	case SeveritySevere:
		return "SEVERE"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityEmergency:
		return "EMERGENCY"
	case SeverityShutdown:
		return "SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

// TemperatureThreshold is the per-sensor static threshold table. Each ladder
// slot is indexed by ThrottlingSeverity; unpopulated slots are NaN.
type TemperatureThreshold struct {
	Type                     SensorType             `json:"type"`
	Name                     string                 `json:"name"`
	HotThrottlingThresholds  [SeverityCount]Celsius `json:"hot_throttling_thresholds"`
	ColdThrottlingThresholds [SeverityCount]Celsius `json:"cold_throttling_thresholds"`
	VRThrottlingThreshold    Celsius                `json:"vr_throttling_threshold"`
}

// ThrottlingEvent is what observers receive when a sensor changes
// throttling state.
type ThrottlingEvent struct {
	IsThrottling bool        `json:"is_throttling"`
	Temperature  Temperature `json:"temperature"`
}
