package stats

// Figure is one computed statistic. Err is set when the value could not be
// computed; Value is then meaningless.
type Figure struct {
	Value float64
	Err   error
}

func (f Figure) OK() bool { return f.Err == nil }

// Description holds every statistic the summary reports for one series.
// NonZeroMedian is only populated when the plain median is zero.
type Description struct {
	Samples       int
	Max           Figure
	Min           Figure
	Mean          Figure
	Median        Figure
	NonZeroMedian *Figure
	Mode          Figure
	StdDev        Figure
}

// Describe computes every figure independently so one failure leaves the
// others intact. An empty series returns ErrEmpty.
func Describe(s []float64) (Description, error) {
	if len(s) == 0 {
		return Description{}, ErrEmpty
	}

	d := Description{
		Samples: len(s),
		Max:     figure(Max(s)),
		Min:     figure(Min(s)),
		Mean:    figure(Mean(s)),
		Median:  figure(Median(s)),
		Mode:    figure(Mode(s)),
		StdDev:  figure(PopulationStdDev(s)),
	}
	if d.Median.OK() && d.Median.Value == 0 {
		nz := figure(NonZeroMedian(s))
		d.NonZeroMedian = &nz
	}
	return d, nil
}

func figure(v float64, err error) Figure {
	return Figure{Value: v, Err: err}
}
