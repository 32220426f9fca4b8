package monitor

import "time"

// Series holds one entry per tick in which a matching process was listed.
// The three slices always have the same length.
type Series struct {
	CPU        []float64   `json:"cpu"`
	Mem        []float64   `json:"mem"`
	Timestamps []time.Time `json:"timestamps"`
}

func (s *Series) Append(cpu, mem float64, at time.Time) {
	s.CPU = append(s.CPU, cpu)
	s.Mem = append(s.Mem, mem)
	s.Timestamps = append(s.Timestamps, at)
}

func (s *Series) Len() int { return len(s.Timestamps) }
