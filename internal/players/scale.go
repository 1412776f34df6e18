package players

import (
	"errors"
	"math"
	"sort"
)

// OutlierFactor is the IQR multiplier used to flag outliers.
const OutlierFactor = 1.5

// ErrConstantSeries is returned by MinMax when a series has no spread, so
// min-max normalization would divide by zero.
var ErrConstantSeries = errors.New("constant series cannot be min-max normalized")

// Quantile returns the q-th quantile of the non-missing values using linear
// interpolation between closest ranks. It returns NaN for an empty series.
func Quantile(values []float64, q float64) float64 {
	sorted := present(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median is Quantile(values, 0.5).
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// HasOutliers reports whether any value falls outside
// [Q1 - factor*IQR, Q3 + factor*IQR].
func HasOutliers(values []float64, factor float64) bool {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	lower := q1 - factor*iqr
	upper := q3 + factor*iqr
	for _, v := range values {
		if v < lower || v > upper {
			return true
		}
	}
	return false
}

// MinMax maps values linearly onto [0, 1]. Missing values stay NaN.
func MinMax(values []float64) ([]float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !(hi > lo) {
		return nil, ErrConstantSeries
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out, nil
}

// LogScale clamps negatives to zero, fills missing values with zero, applies
// log1p and then min-max normalizes.
func LogScale(values []float64) ([]float64, error) {
	logged := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		logged[i] = math.Log1p(v)
	}
	return MinMax(logged)
}

// SmartScale log-scales a series when the IQR rule finds an outlier and
// min-max normalizes it otherwise. The boolean reports which path was taken.
func SmartScale(values []float64, factor float64) ([]float64, bool, error) {
	if HasOutliers(values, factor) {
		scaled, err := LogScale(values)
		return scaled, true, err
	}
	scaled, err := MinMax(values)
	return scaled, false, err
}

func present(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
