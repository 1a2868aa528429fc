package raster

import (
	"encoding/json"
	"math"
)

// Statistics holds the summary statistics of one band.
type Statistics struct {
	Count  int64
	Sum    float64
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Values returns the statistics as the ordered tuple
// (count, sum, mean, stddev, min, max).
func (s Statistics) Values() [6]float64 {
	return [6]float64{float64(s.Count), s.Sum, s.Mean, s.StdDev, s.Min, s.Max}
}

// MarshalJSON encodes NaN fields as null.
func (s Statistics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Count  int64    `json:"count"`
		Sum    *float64 `json:"sum"`
		Mean   *float64 `json:"mean"`
		StdDev *float64 `json:"stddev"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
	}{s.Count, finite(s.Sum), finite(s.Mean), finite(s.StdDev), finite(s.Min), finite(s.Max)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// emptyStatistics is the result for a band with no qualifying samples.
func emptyStatistics() Statistics {
	nan := math.NaN()
	return Statistics{Count: 0, Sum: nan, Mean: nan, StdDev: nan, Min: nan, Max: nan}
}

// BandNoDataValue returns the band's no-data sentinel.
func BandNoDataValue(r *Raster, band int) (NoData, error) {
	b, err := r.Band(band)
	if err != nil {
		return NoData{}, err
	}
	return b.NoData, nil
}

// BandType returns the name of the band's pixel type.
func BandType(r *Raster, band int) (string, error) {
	b, err := r.Band(band)
	if err != nil {
		return "", err
	}
	return b.Type.String(), nil
}

// Count returns the number of samples in the band. With excludeNoData the
// samples equal to the band's sentinel are skipped.
func Count(r *Raster, band int, excludeNoData bool) (int64, error) {
	b, err := r.Band(band)
	if err != nil {
		return 0, err
	}
	if !excludeNoData {
		return int64(r.width) * int64(r.height), nil
	}
	return SampleCount(b.samples, b.NoData, true), nil
}

// SummaryStats returns the band's summary statistics.
func SummaryStats(r *Raster, band int, excludeNoData bool) (Statistics, error) {
	b, err := r.Band(band)
	if err != nil {
		return Statistics{}, err
	}
	return SampleStats(b.samples, b.NoData, excludeNoData), nil
}

// SampleCount counts the samples that pass the inclusion predicate.
func SampleCount(samples []float64, noData NoData, excludeNoData bool) int64 {
	if !excludeNoData {
		return int64(len(samples))
	}
	var n int64
	for _, v := range samples {
		if !noData.Excludes(v) {
			n++
		}
	}
	return n
}

// SampleStats reduces samples to summary statistics in two passes: the first
// accumulates count, sum, min and max, the second the squared deviations from
// the mean. The standard deviation is the population one.
//
// When excludeNoData is false the count is the total sample count rather than
// an incremental tally.
func SampleStats(samples []float64, noData NoData, excludeNoData bool) Statistics {
	included := func(v float64) bool {
		return !excludeNoData || !noData.Excludes(v)
	}

	var count int64
	sum := 0.0
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, v := range samples {
		if !included(v) {
			continue
		}
		if excludeNoData {
			count++
		} else {
			count = int64(len(samples))
		}
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if count == 0 {
		return emptyStatistics()
	}

	mean := sum / float64(count)
	ssd := 0.0
	for _, v := range samples {
		if included(v) {
			ssd += math.Pow(v-mean, 2)
		}
	}

	return Statistics{
		Count:  count,
		Sum:    sum,
		Mean:   mean,
		StdDev: math.Sqrt(ssd / float64(count)),
		Min:    lo,
		Max:    hi,
	}
}
