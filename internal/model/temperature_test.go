package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFinalizeTemperature(t *testing.T) {
	if got := FinalizeTemperature(UnknownTemperature); !math.IsNaN(float64(got)) {
		t.Errorf("unknown sentinel: got %v, want NaN", got)
	}
	for _, v := range []float64{0, -40, 45.5, 100, 120} {
		if got := FinalizeTemperature(v); float64(got) != v {
			t.Errorf("finalize(%v): got %v, want unchanged", v, got)
		}
	}
}

func TestCelsiusJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Celsius(math.NaN()))
	if err != nil {
		t.Fatalf("marshal NaN: %v", err)
	}
	if string(b) != "null" {
		t.Errorf("NaN marshal: got %s, want null", b)
	}

	var c Celsius
	if err := json.Unmarshal([]byte("null"), &c); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !c.IsUnknown() {
		t.Errorf("null unmarshal: got %v, want NaN", c)
	}

	if err := json.Unmarshal([]byte("45.5"), &c); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if float64(c) != 45.5 {
		t.Errorf("number unmarshal: got %v, want 45.5", c)
	}
}

func TestTemperatureMarshalsUnknownsAsNull(t *testing.T) {
	temp := Temperature{
		Type:                  SensorCPU,
		Name:                  "cpu-thermal",
		CurrentValue:          Celsius(45),
		ThrottlingThreshold:   Celsius(100),
		ShutdownThreshold:     Celsius(120),
		VRThrottlingThreshold: FinalizeTemperature(UnknownTemperature),
	}
	b, err := json.Marshal(temp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["vr_throttling_threshold"] != nil {
		t.Errorf("vr threshold: got %v, want null", decoded["vr_throttling_threshold"])
	}
	if decoded["current_value"] != 45.0 {
		t.Errorf("current value: got %v, want 45", decoded["current_value"])
	}
}

func TestSeverityStrings(t *testing.T) {
	if SeverityCount != 7 {
		t.Fatalf("severity ladder must have 7 levels, has %d", SeverityCount)
	}
	if SeverityNone.String() != "NONE" || SeverityShutdown.String() != "SHUTDOWN" {
		t.Error("severity endpoints misnamed")
	}
}
