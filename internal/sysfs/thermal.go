package sysfs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	thermalZonePrefix = "thermal_zone"
	tempFileName      = "temp"
	typeFileName      = "type"
)

// ErrNoSensors is returned when the thermal directory opens fine but not a
// single zone yields a usable reading. Empty output is itself a symptom of
// a broken sensor subsystem, so it is reported as a hard failure.
var ErrNoSensors = errors.New("no usable thermal zones found")

// Sensor is one raw thermal zone reading, already converted to degrees.
type Sensor struct {
	Zone  string
	Label string
	Value float64
}

// ThermalReader enumerates kernel thermal zones under a sysfs root.
type ThermalReader struct {
	root   string
	logger *slog.Logger
}

func NewThermalReader(root string, logger *slog.Logger) *ThermalReader {
	return &ThermalReader{root: root, logger: logger}
}

// ListSensors reads every thermal_zone* entry under the root. Zones whose
// temp or type file is missing or malformed are skipped; sensors come and
// go at runtime, so a partial read is still a good read. An unreadable root
// directory is a hard failure, as is a read that produces zero sensors.
func (r *ThermalReader) ListSensors() ([]Sensor, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("open thermal directory %s: %w", r.root, err)
	}

	sensors := make([]Sensor, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, thermalZonePrefix) {
			continue
		}
		rawTemp, err := os.ReadFile(filepath.Join(r.root, name, tempFileName))
		if err != nil {
			r.logger.Debug("skipping thermal zone", "zone", name, "error", err)
			continue
		}
		milli, err := strconv.ParseFloat(strings.TrimSpace(string(rawTemp)), 64)
		if err != nil {
			r.logger.Debug("skipping thermal zone", "zone", name, "error", err)
			continue
		}
		rawType, err := os.ReadFile(filepath.Join(r.root, name, typeFileName))
		if err != nil {
			r.logger.Debug("skipping thermal zone", "zone", name, "error", err)
			continue
		}
		label := firstToken(string(rawType))
		if label == "" {
			r.logger.Debug("skipping thermal zone with empty type", "zone", name)
			continue
		}
		sensors = append(sensors, Sensor{
			Zone:  name,
			Label: label,
			Value: milli / 1000.0,
		})
	}

	if len(sensors) == 0 {
		return nil, fmt.Errorf("%s: %w", r.root, ErrNoSensors)
	}
	return sensors, nil
}

// firstToken mirrors a single %s scan: everything up to the first
// whitespace.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
