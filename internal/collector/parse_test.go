package collector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmesh/xmon/internal/errors"
)

const sampleOutput = `%Cpu(s):  12.5 us,  3.2 sy,  0.0 ni, 82.3 id,  1.8 wa,  0.0 hi,  0.2 si,  0.0 st
---
              total        used        free      shared  buff/cache   available
Mem:       16384000     9830400     1000000      200000     5553600     4096000
Swap:       2097152           0     2097152
---
/dev/sda1  41152832 16238452 22798236  42% /
---
1.23 2.34 3.45 1/234 5678
`

func TestParseOutput(t *testing.T) {
	m, err := parseOutput("worker-1", sampleOutput)
	require.NoError(t, err)

	assert.Equal(t, "worker-1", m.NodeID)
	assert.InDelta(t, 17.7, m.CPUPercent, 0.01)
	assert.InDelta(t, 75.0, m.MemoryPercent, 0.01)
	assert.InDelta(t, 42.0, m.DiskPercent, 0.01)
	assert.InDelta(t, 1.23, m.Load1, 0.001)
	assert.InDelta(t, 2.34, m.Load5, 0.001)
	assert.InDelta(t, 3.45, m.Load15, 0.001)
	assert.False(t, m.Timestamp.IsZero())
}

func TestParseOutputMissingSection(t *testing.T) {
	// Truncated output must fail the whole collection, not yield a partial sample.
	truncated := strings.Join(strings.Split(sampleOutput, "---\n")[:3], "---\n")

	_, err := parseOutput("worker-1", truncated)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCollect))
}

func TestParseOutputBadSectionFailsAll(t *testing.T) {
	corrupted := strings.Replace(sampleOutput, "82.3 id", "junk id", 1)

	_, err := parseOutput("worker-1", corrupted)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCollect))
}

func TestParseCPU(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    float64
		wantErr bool
	}{
		{"typical top line", "%Cpu(s):  1.7 us,  0.3 sy,  0.0 ni, 97.7 id,  0.2 wa", 2.3, false},
		{"fully busy", "%Cpu(s): 99.0 us,  1.0 sy,  0.0 ni,  0.0 id,  0.0 wa", 100.0, false},
		{"idle machine", "%Cpu(s):  0.0 us,  0.0 sy,  0.0 ni,100.0 id,  0.0 wa", 0.0, false},
		{"empty line", "", 0, true},
		{"no colon", "completely wrong", 0, true},
		{"no idle field", "%Cpu(s): 1.0 us, 2.0 sy", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCPU(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestParseMemory(t *testing.T) {
	out := "              total        used\nMem:       1000  600  100  50  300  400\nSwap: 0 0 0"

	got, err := parseMemory(out)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, got, 0.01)
}

func TestParseMemoryErrors(t *testing.T) {
	_, err := parseMemory("Swap: 0 0 0")
	assert.Error(t, err)

	_, err = parseMemory("Mem: 1000 600")
	assert.Error(t, err)

	_, err = parseMemory("Mem: 0 0 0 0 0 0")
	assert.Error(t, err)
}

func TestParseDisk(t *testing.T) {
	got, err := parseDisk("/dev/sda1  41152832 16238452 22798236  42% /")
	require.NoError(t, err)
	assert.InDelta(t, 42.0, got, 0.01)

	_, err = parseDisk("/dev/sda1 bad")
	assert.Error(t, err)

	_, err = parseDisk("/dev/sda1  1 2 3  n/a% /")
	assert.Error(t, err)
}

func TestParseLoadAvg(t *testing.T) {
	l1, l5, l15, err := parseLoadAvg("0.52 0.58 0.59 1/467 12345")
	require.NoError(t, err)
	assert.InDelta(t, 0.52, l1, 0.001)
	assert.InDelta(t, 0.58, l5, 0.001)
	assert.InDelta(t, 0.59, l15, 0.001)

	_, _, _, err = parseLoadAvg("0.52 0.58")
	assert.Error(t, err)

	_, _, _, err = parseLoadAvg("a b c")
	assert.Error(t, err)
}
