package raster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bucket is one histogram interval. The upper bound is exclusive except for
// the last bucket, which includes Max.
type Bucket struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int64   `json:"count"`
}

// MaxBuckets is the largest bucket count Histogram accepts.
const MaxBuckets = 1 << 16

// HistogramResult is the histogram of one band.
type HistogramResult struct {
	Band       int      `json:"band"`
	Buckets    []Bucket `json:"buckets"`
	Counted    int64    `json:"counted"`
	OutOfRange int64    `json:"out_of_range"`
}

// Histogram buckets the band's samples into equal-width intervals between lo
// and hi. A nil bound defaults to the band's minimum or maximum. NaN samples
// and samples outside [lo, hi] are not bucketed.
func Histogram(r *Raster, band, buckets int, lo, hi *float64, excludeNoData bool) (*HistogramResult, error) {
	b, err := r.Band(band)
	if err != nil {
		return nil, err
	}
	if buckets < 1 || buckets > MaxBuckets {
		return nil, fmt.Errorf("bucket count must be in 1..%d, got %d", MaxBuckets, buckets)
	}

	st := SampleStats(b.samples, b.NoData, excludeNoData)
	res := &HistogramResult{Band: band, Buckets: []Bucket{}}
	if st.Count == 0 {
		return res, nil
	}

	min, max := st.Min, st.Max
	if lo != nil {
		min = *lo
	}
	if hi != nil {
		max = *hi
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, fmt.Errorf("histogram range must be finite, got [%v, %v]", min, max)
	}
	if min > max {
		return nil, fmt.Errorf("invalid histogram range: min %v > max %v", min, max)
	}
	if min == max {
		buckets = 1
	}

	x := make([]float64, 0, len(b.samples))
	for _, v := range b.samples {
		if excludeNoData && b.NoData.Excludes(v) {
			continue
		}
		if math.IsNaN(v) || v < min || v > max {
			res.OutOfRange++
			continue
		}
		x = append(x, v)
	}
	sort.Float64s(x)

	dividers := make([]float64, buckets+1)
	if buckets == 1 {
		dividers[0], dividers[1] = min, max
	} else {
		floats.Span(dividers, min, max)
	}
	// stat.Histogram treats the last divider as exclusive.
	dividers[buckets] = math.Nextafter(max, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	res.Buckets = make([]Bucket, buckets)
	for i, c := range counts {
		res.Buckets[i] = Bucket{Min: dividers[i], Max: dividers[i+1], Count: int64(c)}
		res.Counted += int64(c)
	}
	res.Buckets[buckets-1].Max = max
	return res, nil
}
