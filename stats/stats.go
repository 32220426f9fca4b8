// Package stats computes descriptive statistics over utilization series.
package stats

import (
	"emperror.dev/errors"
	mstats "github.com/montanaflynn/stats"
)

var (
	// ErrEmpty is returned for an empty series. Callers report "no data" instead.
	ErrEmpty = errors.NewPlain("series is empty")
	// ErrUndefined marks a statistic that has no well-defined value for a series.
	ErrUndefined = errors.NewPlain("statistic is undefined")
)

// UndefinedError reports which statistic could not be computed and why.
type UndefinedError struct {
	Statistic string
	Reason    string
}

func (e *UndefinedError) Error() string {
	return e.Statistic + " is undefined: " + e.Reason
}

func (e *UndefinedError) Is(target error) bool {
	return target == ErrUndefined
}

func Max(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Max(s)
}

func Min(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Min(s)
}

func Mean(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Mean(s)
}

// Median averages the two middle elements for even lengths.
func Median(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	return mstats.Median(s)
}

// NonZeroMedian returns the median of s, or, when that median is zero, the
// median of the non-zero samples. An all-zero series keeps the zero median.
// The result is rounded to 3 decimals.
func NonZeroMedian(s []float64) (float64, error) {
	m, err := Median(s)
	if err != nil {
		return 0, err
	}
	if m == 0 {
		active := make([]float64, 0, len(s))
		for _, v := range s {
			if v != 0 {
				active = append(active, v)
			}
		}
		if len(active) > 0 {
			if m, err = Median(active); err != nil {
				return 0, err
			}
		}
	}
	return Round(m, 3), nil
}

// Mode returns the single most frequent value. A series without a unique
// winner (all distinct, or several values tied) yields an *UndefinedError.
func Mode(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	modes, err := mstats.Mode(s)
	if err != nil {
		return 0, errors.Wrap(err, "mode")
	}
	switch len(modes) {
	case 1:
		return modes[0], nil
	case 0:
		return 0, &UndefinedError{Statistic: "mode", Reason: "no value repeats"}
	default:
		return 0, &UndefinedError{Statistic: "mode", Reason: "no unique most common value"}
	}
}

// PopulationStdDev divides by N.
func PopulationStdDev(s []float64) (float64, error) {
	if len(s) == 0 {
		return 0, ErrEmpty
	}
	return mstats.StandardDeviationPopulation(s)
}

// Round rounds half away from zero. NaN is returned unchanged.
func Round(v float64, places int) float64 {
	r, err := mstats.Round(v, places)
	if err != nil {
		return v
	}
	return r
}

// ToMB converts a memory percentage into megabytes of totalMB.
func ToMB(totalMB int64, pct float64) float64 {
	return Round(float64(totalMB)*pct/100, 3)
}
