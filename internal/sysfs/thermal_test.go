package sysfs

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeZone(t *testing.T, root, zone, temp, typ string) {
	t.Helper()
	dir := filepath.Join(root, zone)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if temp != "" {
		if err := os.WriteFile(filepath.Join(dir, "temp"), []byte(temp), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if typ != "" {
		if err := os.WriteFile(filepath.Join(dir, "type"), []byte(typ), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestListSensorsConvertsMillidegrees(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "45000\n", "cpu-thermal\n")

	sensors, err := NewThermalReader(root, testLogger()).ListSensors()
	if err != nil {
		t.Fatalf("ListSensors: %v", err)
	}
	if len(sensors) != 1 {
		t.Fatalf("expected 1 sensor, got %d", len(sensors))
	}
	if sensors[0].Label != "cpu-thermal" {
		t.Errorf("label: got %q, want cpu-thermal", sensors[0].Label)
	}
	if sensors[0].Value != 45.0 {
		t.Errorf("value: got %v, want 45.0", sensors[0].Value)
	}
}

func TestListSensorsSkipsBrokenZones(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "45000", "cpu-thermal")
	writeZone(t, root, "thermal_zone1", "", "orphan-type")      // missing temp file
	writeZone(t, root, "thermal_zone2", "not-a-number", "junk") // malformed temp
	writeZone(t, root, "thermal_zone3", "51000", "")            // missing type file
	writeZone(t, root, "cooling_device0", "1", "fan")           // wrong prefix

	sensors, err := NewThermalReader(root, testLogger()).ListSensors()
	if err != nil {
		t.Fatalf("ListSensors: %v", err)
	}
	if len(sensors) != 1 {
		t.Fatalf("expected 1 usable sensor, got %d", len(sensors))
	}
	if sensors[0].Zone != "thermal_zone0" {
		t.Errorf("zone: got %q, want thermal_zone0", sensors[0].Zone)
	}
}

func TestListSensorsLabelIsFirstToken(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "30000", "soc thermal extra words\n")

	sensors, err := NewThermalReader(root, testLogger()).ListSensors()
	if err != nil {
		t.Fatalf("ListSensors: %v", err)
	}
	if sensors[0].Label != "soc" {
		t.Errorf("label: got %q, want soc", sensors[0].Label)
	}
}

func TestListSensorsZeroUsableIsHardFailure(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, "thermal_zone0", "garbage", "cpu-thermal")

	_, err := NewThermalReader(root, testLogger()).ListSensors()
	if !errors.Is(err, ErrNoSensors) {
		t.Fatalf("expected ErrNoSensors, got %v", err)
	}
}

func TestListSensorsEmptyDirIsHardFailure(t *testing.T) {
	_, err := NewThermalReader(t.TempDir(), testLogger()).ListSensors()
	if !errors.Is(err, ErrNoSensors) {
		t.Fatalf("expected ErrNoSensors, got %v", err)
	}
}

func TestListSensorsMissingDirIsHardFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")
	_, err := NewThermalReader(root, testLogger()).ListSensors()
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if errors.Is(err, ErrNoSensors) {
		t.Fatal("missing directory must not read as the not-found kind")
	}
}
