package collector

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openmesh/xmon/internal/errors"
)

// parseOutput parses the batched command output into a fully populated
// sample. Any malformed section fails the whole collection.
func parseOutput(nodeID, output string) (ResourceMetrics, error) {
	sections := strings.Split(output, OutputSeparator+"\n")
	if len(sections) < 4 {
		return ResourceMetrics{}, parseErr(nodeID, "output", fmt.Errorf("expected 4 sections, got %d", len(sections)))
	}

	cpu, err := parseCPU(strings.TrimSpace(sections[0]))
	if err != nil {
		return ResourceMetrics{}, parseErr(nodeID, "cpu", err)
	}

	mem, err := parseMemory(strings.TrimSpace(sections[1]))
	if err != nil {
		return ResourceMetrics{}, parseErr(nodeID, "memory", err)
	}

	disk, err := parseDisk(strings.TrimSpace(sections[2]))
	if err != nil {
		return ResourceMetrics{}, parseErr(nodeID, "disk", err)
	}

	load1, load5, load15, err := parseLoadAvg(strings.TrimSpace(sections[3]))
	if err != nil {
		return ResourceMetrics{}, parseErr(nodeID, "loadavg", err)
	}

	return ResourceMetrics{
		NodeID:        nodeID,
		Timestamp:     time.Now().UTC(),
		CPUPercent:    cpu,
		MemoryPercent: mem,
		DiskPercent:   disk,
		Load1:         load1,
		Load5:         load5,
		Load15:        load15,
	}, nil
}

// parseCPU extracts total CPU usage from the top summary line:
//
//	%Cpu(s):  1.7 us,  0.3 sy,  0.0 ni, 97.7 id,  0.2 wa, ...
//
// Usage is 100 minus the idle field.
func parseCPU(line string) (float64, error) {
	if line == "" {
		return 0, fmt.Errorf("empty cpu line")
	}

	colonIdx := strings.Index(line, ":")
	if colonIdx < 0 {
		return 0, fmt.Errorf("no field list in cpu line: %s", line)
	}

	for _, part := range strings.Split(line[colonIdx+1:], ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 || fields[1] != "id" {
			continue
		}
		idle, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("bad idle value %q: %w", fields[0], err)
		}
		return 100 - idle, nil
	}

	return 0, fmt.Errorf("no idle field in cpu line: %s", line)
}

// parseMemory computes used-memory percentage from free(1) output using the
// available column: used = total - available.
func parseMemory(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}

		fields := strings.Fields(line)
		// Mem: total used free shared buff/cache available
		if len(fields) < 7 {
			return 0, fmt.Errorf("short Mem line: %s", line)
		}

		total, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, fmt.Errorf("bad total %q: %w", fields[1], err)
		}
		available, err := strconv.ParseFloat(fields[6], 64)
		if err != nil {
			return 0, fmt.Errorf("bad available %q: %w", fields[6], err)
		}
		if total <= 0 {
			return 0, fmt.Errorf("non-positive memory total: %s", fields[1])
		}

		return (total - available) / total * 100, nil
	}

	return 0, fmt.Errorf("no Mem line in free output")
}

// parseDisk extracts root filesystem usage from a df -P line:
//
//	/dev/sda1  41152832 16238452 22798236  42% /
func parseDisk(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, fmt.Errorf("short df line: %s", line)
	}

	pct := strings.TrimSuffix(fields[4], "%")
	val, err := strconv.ParseFloat(pct, 64)
	if err != nil {
		return 0, fmt.Errorf("bad usage %q: %w", fields[4], err)
	}

	return val, nil
}

// parseLoadAvg extracts the three load averages from /proc/loadavg.
func parseLoadAvg(line string) (load1, load5, load15 float64, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, 0, fmt.Errorf("short loadavg line: %s", line)
	}

	vals := make([]float64, 3)
	for i := 0; i < 3; i++ {
		vals[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bad loadavg field %q: %w", fields[i], err)
		}
	}

	return vals[0], vals[1], vals[2], nil
}

func parseErr(nodeID, section string, err error) *errors.Error {
	return errors.WrapWithCode(err, errors.ErrCollect,
		fmt.Sprintf("Couldn't parse %s metrics from '%s'", section, nodeID),
		"The node's diagnostic command output has an unexpected format")
}
