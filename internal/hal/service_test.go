package hal

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"thermal-agent/internal/model"
	"thermal-agent/internal/registry"
	"thermal-agent/internal/sysfs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc *Service
	dir string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	thermalDir := filepath.Join(dir, "thermal")
	zone := filepath.Join(thermalDir, "thermal_zone0")
	if err := os.MkdirAll(zone, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(zone, "temp"), []byte("45000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(zone, "type"), []byte("cpu-thermal\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	statPath := filepath.Join(dir, "stat")
	if err := os.WriteFile(statPath, []byte("cpu  12 0 5 983\ncpu0 10 0 2 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := testLogger()
	thermal := sysfs.NewThermalReader(thermalDir, logger)
	cpustat := sysfs.NewCPUStatReader(statPath, filepath.Join(dir, "cpu%d.online"), logger)
	reg := registry.New(logger)
	return fixture{svc: NewService(thermal, cpustat, reg, logger), dir: dir}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []model.ThrottlingEvent
}

func (o *eventRecorder) OnThrottlingEvent(ev model.ThrottlingEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *eventRecorder) last() (model.ThrottlingEvent, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.events) == 0 {
		return model.ThrottlingEvent{}, false
	}
	return o.events[len(o.events)-1], true
}

func TestGetTemperatures(t *testing.T) {
	f := newFixture(t)
	status, temps := f.svc.GetTemperatures()
	if status.Code != model.StatusSuccess {
		t.Fatalf("status: %+v", status)
	}
	if len(temps) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(temps))
	}
	got := temps[0]
	if got.Type != model.SensorCPU || got.Name != "cpu-thermal" {
		t.Errorf("identity: got %+v", got)
	}
	if float64(got.CurrentValue) != 45.0 {
		t.Errorf("current value: got %v, want 45.0", got.CurrentValue)
	}
	if float64(got.ThrottlingThreshold) != 100.0 {
		t.Errorf("throttling threshold: got %v, want 100", got.ThrottlingThreshold)
	}
	if float64(got.ShutdownThreshold) != 120.0 {
		t.Errorf("shutdown threshold: got %v, want 120", got.ShutdownThreshold)
	}
	if !got.VRThrottlingThreshold.IsUnknown() {
		t.Errorf("vr threshold: got %v, want NaN", got.VRThrottlingThreshold)
	}
}

func TestGetTemperaturesMissingDirReportsFailure(t *testing.T) {
	f := newFixture(t)
	if err := os.RemoveAll(filepath.Join(f.dir, "thermal")); err != nil {
		t.Fatal(err)
	}
	status, temps := f.svc.GetTemperatures()
	if status.Code != model.StatusFailure {
		t.Fatalf("status: got %v, want FAILURE", status.Code)
	}
	if status.DebugMessage == "" {
		t.Error("failure status must carry a message")
	}
	if len(temps) != 0 {
		t.Errorf("expected empty result, got %d readings", len(temps))
	}
}

func TestGetCPUUsages(t *testing.T) {
	f := newFixture(t)
	status, usages := f.svc.GetCPUUsages()
	if status.Code != model.StatusSuccess {
		t.Fatalf("status: %+v", status)
	}
	if len(usages) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(usages))
	}
	got := usages[0]
	if got.Name != "CPU0" || got.Active != 12 || got.Total != 512 || !got.IsOnline {
		t.Errorf("sample: got %+v", got)
	}
}

func TestCoolingDevicesAlwaysUnsupported(t *testing.T) {
	f := newFixture(t)
	status, devices := f.svc.GetCoolingDevices()
	if status.Code != model.StatusFailure || len(devices) != 0 {
		t.Errorf("GetCoolingDevices: status %+v, %d devices", status, len(devices))
	}
	status, devices = f.svc.GetCurrentCoolingDevices(true, "FAN")
	if status.Code != model.StatusFailure || len(devices) != 0 {
		t.Errorf("GetCurrentCoolingDevices: status %+v, %d devices", status, len(devices))
	}
}

func TestGetCurrentTemperaturesSeverityIsAlwaysNone(t *testing.T) {
	f := newFixture(t)
	status, temps := f.svc.GetCurrentTemperatures(false, model.SensorUnknown)
	if status.Code != model.StatusSuccess {
		t.Fatalf("status: %+v", status)
	}
	if len(temps) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(temps))
	}
	if temps[0].ThrottlingStatus != model.SeverityNone {
		t.Errorf("severity: got %v, want NONE", temps[0].ThrottlingStatus)
	}
}

func TestThresholdFilterOnlyAcceptsCPU(t *testing.T) {
	f := newFixture(t)
	for _, typ := range []model.SensorType{model.SensorGPU, model.SensorBattery, model.SensorSkin, model.SensorUnknown} {
		status, thresholds := f.svc.GetTemperatureThresholds(true, typ)
		if status.Code != model.StatusFailure {
			t.Errorf("filter %s: status %v, want FAILURE", typ, status.Code)
		}
		if len(thresholds) != 0 {
			t.Errorf("filter %s: %d thresholds, want 0", typ, len(thresholds))
		}
	}

	status, thresholds := f.svc.GetTemperatureThresholds(true, model.SensorCPU)
	if status.Code != model.StatusSuccess || len(thresholds) != 1 {
		t.Fatalf("cpu filter: status %+v, %d thresholds", status, len(thresholds))
	}
	ladder := thresholds[0].HotThrottlingThresholds
	if float64(ladder[model.SeveritySevere]) != 100.0 {
		t.Errorf("severe slot: got %v, want 100", ladder[model.SeveritySevere])
	}
	if float64(ladder[model.SeverityShutdown]) != 120.0 {
		t.Errorf("shutdown slot: got %v, want 120", ladder[model.SeverityShutdown])
	}
	if !ladder[model.SeverityLight].IsUnknown() {
		t.Errorf("light slot: got %v, want NaN", ladder[model.SeverityLight])
	}
	for _, cold := range thresholds[0].ColdThrottlingThresholds {
		if !cold.IsUnknown() {
			t.Errorf("cold ladder slot populated: %v", cold)
		}
	}
}

func TestRegisterObserverSendsInitialEvent(t *testing.T) {
	f := newFixture(t)
	obs := &eventRecorder{}

	status := f.svc.RegisterObserver("client-1", obs, false, model.SensorUnknown)
	if status.Code != model.StatusSuccess {
		t.Fatalf("register: %+v", status)
	}

	ev, ok := obs.last()
	if !ok {
		t.Fatal("expected an initial event on registration")
	}
	if ev.IsThrottling {
		t.Error("initial event must not report throttling")
	}
	if ev.Temperature.Name != "thermal" || ev.Temperature.Type != model.SensorCPU {
		t.Errorf("initial event identity: %+v", ev.Temperature)
	}
	if !math.IsNaN(float64(ev.Temperature.CurrentValue)) {
		t.Errorf("initial event value: got %v, want NaN", ev.Temperature.CurrentValue)
	}
	if float64(ev.Temperature.ThrottlingThreshold) != 100.0 {
		t.Errorf("initial event threshold: got %v, want 100", ev.Temperature.ThrottlingThreshold)
	}
}

func TestRegisterObserverDuplicateFails(t *testing.T) {
	f := newFixture(t)
	obs := &eventRecorder{}

	if status := f.svc.RegisterObserver("client-1", obs, false, model.SensorUnknown); status.Code != model.StatusSuccess {
		t.Fatalf("first register: %+v", status)
	}
	status := f.svc.RegisterObserver("client-1", obs, true, model.SensorCPU)
	if status.Code != model.StatusFailure {
		t.Fatal("duplicate register must fail")
	}
	if !strings.Contains(status.DebugMessage, "already registered") {
		t.Errorf("message: %q", status.DebugMessage)
	}
	if f.svc.Registry().Len() != 1 {
		t.Errorf("registry size: got %d, want 1", f.svc.Registry().Len())
	}
}

func TestUnregisterObserver(t *testing.T) {
	f := newFixture(t)
	obs := &eventRecorder{}

	if status := f.svc.RegisterObserver("client-1", obs, false, model.SensorUnknown); status.Code != model.StatusSuccess {
		t.Fatal("register failed")
	}
	if status := f.svc.UnregisterObserver("client-1"); status.Code != model.StatusSuccess {
		t.Fatalf("unregister: %+v", status)
	}
	if status := f.svc.UnregisterObserver("client-1"); status.Code != model.StatusFailure {
		t.Fatal("unregistering an absent handle must fail")
	}
	if f.svc.Registry().Len() != 0 {
		t.Errorf("registry size: got %d, want 0", f.svc.Registry().Len())
	}
}
