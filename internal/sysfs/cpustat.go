package sysfs

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"thermal-agent/internal/model"
)

// coreLineRE captures the core index and the user, nice, system and idle
// counters. Trailing fields (iowait, irq, ...) are intentionally ignored.
var coreLineRE = regexp.MustCompile(`^cpu(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)`)

// CPUStatReader parses the global counter file and cross-references the
// per-core online state files.
type CPUStatReader struct {
	statPath     string
	onlineFormat string // printf-style format with a single %d core index
	logger       *slog.Logger
}

func NewCPUStatReader(statPath, onlineFormat string, logger *slog.Logger) *CPUStatReader {
	return &CPUStatReader{statPath: statPath, onlineFormat: onlineFormat, logger: logger}
}

// ListCPUUsage returns one sample per "cpu<N>" line in the counter file.
// Lines that are not per-core counter lines (the aggregate "cpu " line,
// intr, ctxt, ...) are skipped. A line that does look like a per-core line
// but does not carry the four required counters aborts the whole call: that
// shape means the file format changed under us, not that a core went away.
func (r *CPUStatReader) ListCPUUsage() ([]model.CPUUsage, error) {
	f, err := os.Open(r.statPath)
	if err != nil {
		return nil, fmt.Errorf("open counter file %s: %w", r.statPath, err)
	}
	defer f.Close()

	var usages []model.CPUUsage
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if !isCoreLine(line) {
			continue
		}
		m := coreLineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("malformed counter line %q: %w", line, syscall.EIO)
		}
		core, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("parse core index %q: %w", m[1], err)
		}
		user := mustUint(m[2])
		nice := mustUint(m[3])
		system := mustUint(m[4])
		idle := mustUint(m[5])

		active := user + nice + system
		total := active + idle

		online, err := r.readOnline(core)
		if err != nil {
			return nil, err
		}

		usages = append(usages, model.CPUUsage{
			Name:     fmt.Sprintf("CPU%d", core),
			Active:   active,
			Total:    total,
			IsOnline: online,
		})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan counter file %s: %w", r.statPath, err)
	}
	return usages, nil
}

// isCoreLine reports whether the line is a per-core counter line: the
// literal "cpu" prefix immediately followed by a digit. The aggregate
// "cpu " totals line fails this test and is skipped.
func isCoreLine(line string) bool {
	return len(line) >= 4 && strings.HasPrefix(line, "cpu") && line[3] >= '0' && line[3] <= '9'
}

// readOnline looks up the core's hotplug state. A missing state file means
// the kernel does not expose one for that core; core 0 cannot be offlined,
// so it defaults to online and every other core to offline. A state file
// that exists but does not hold an integer is a hard failure.
func (r *CPUStatReader) readOnline(core int) (bool, error) {
	path := fmt.Sprintf(r.onlineFormat, core)
	raw, err := os.ReadFile(path)
	if err != nil {
		r.logger.Debug("cpu online file unavailable", "path", path, "error", err)
		return core == 0, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return false, fmt.Errorf("parse online state %s: %w", path, syscall.EIO)
	}
	return v != 0, nil
}

// mustUint converts a digits-only regex capture.
func mustUint(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
