package proctable

import (
	"strconv"
	"strings"
)

// ParseRow splits a listing line into a Row. Header lines, summary lines and
// rows whose layout is off return ErrShortRow or ErrMalformedRow.
func ParseRow(line string) (Row, error) {
	fields := strings.Fields(line)
	if len(fields) < MinColumns {
		return Row{}, ErrShortRow
	}

	pid := fields[colPID]
	if _, err := strconv.ParseUint(pid, 10, 64); err != nil {
		return Row{}, ErrMalformedRow
	}

	cpu, err := parsePercent(fields[colCPU])
	if err != nil {
		return Row{}, ErrMalformedRow
	}
	mem, err := parsePercent(fields[colMem])
	if err != nil {
		return Row{}, ErrMalformedRow
	}

	return Row{
		PID:     pid,
		User:    fields[colUser],
		CPU:     cpu,
		Mem:     mem,
		Command: strings.Join(fields[colCommand:], " "),
	}, nil
}

// some locales print a decimal comma even with LC_ALL unset
func parsePercent(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// Lines splits raw listing output into lines, dropping blank ones.
func Lines(out []byte) []string {
	raw := strings.Split(string(out), "\n")
	lines := raw[:0]
	for _, l := range raw {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
