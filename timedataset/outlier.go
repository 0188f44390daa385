package timedataset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrInvalidPercentile = errors.New("percentiles must satisfy 0 <= lower <= upper <= 1")

// DetectOutliers returns the indices of values outside the tukey fence built from the lower and
// upper percentiles, lower - k*range and upper + k*range. Missing values are never outliers.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) ([]int, error) {
	if lowerPerc < 0 || upperPerc > 1 || lowerPerc > upperPerc {
		return nil, fmt.Errorf("lower %.3f, upper %.3f, %w", lowerPerc, upperPerc, ErrInvalidPercentile)
	}
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := make([]float64, 0, len(y))
	for _, val := range y {
		if !math.IsNaN(val) {
			sorted = append(sorted, val)
		}
	}
	if len(sorted) == 0 {
		return nil, nil
	}
	sort.Float64s(sorted)

	last := len(sorted) - 1
	lowerIdx := min(int(math.Floor(float64(len(sorted))*lowerPerc)), last)
	upperIdx := min(int(math.Ceil(float64(len(sorted))*upperPerc)), last)

	lower := sorted[lowerIdx]
	upper := sorted[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, val := range y {
		if math.IsNaN(val) {
			continue
		}
		if val > upper || val < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx, nil
}

// MaskOutliers returns a copy of the dataset with every outlier replaced by NaN
func (td *TimeDataset) MaskOutliers(lowerPerc, upperPerc, tukeyFactor float64) (*TimeDataset, error) {
	idx, err := DetectOutliers(td.Y, lowerPerc, upperPerc, tukeyFactor)
	if err != nil {
		return nil, err
	}
	res := td.Copy()
	for _, i := range idx {
		res.Y[i] = math.NaN()
	}
	return res, nil
}
