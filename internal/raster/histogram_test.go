package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func histogramRaster(t *testing.T, noData NoData) *Raster {
	t.Helper()
	r, err := MakeEmptyRaster(0, Real64, 10, 1, PixelGrid, 0)
	require.NoError(t, err)
	r, err = AddBandFromArray(r, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, noData)
	require.NoError(t, err)
	return r
}

func bucketCounts(h *HistogramResult) []int64 {
	counts := make([]int64, len(h.Buckets))
	for i, b := range h.Buckets {
		counts[i] = b.Count
	}
	return counts
}

func TestHistogram(t *testing.T) {
	r := histogramRaster(t, NoData{})

	h, err := Histogram(r, 1, 5, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2, 2, 2, 2}, bucketCounts(h))
	assert.Equal(t, int64(10), h.Counted)
	assert.Equal(t, int64(0), h.OutOfRange)
	assert.Equal(t, 0.0, h.Buckets[0].Min)
	assert.Equal(t, 9.0, h.Buckets[4].Max)
	assert.InDelta(t, 1.8, h.Buckets[0].Max, 1e-12)
}

func TestHistogramExcludesNoData(t *testing.T) {
	r := histogramRaster(t, NoDataOf(0))

	h, err := Histogram(r, 1, 5, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 2, 1, 2, 2}, bucketCounts(h))
	assert.Equal(t, int64(9), h.Counted)
	assert.Equal(t, 1.0, h.Buckets[0].Min)

	h, err = Histogram(r, 1, 5, nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.Counted)
}

func TestHistogramRange(t *testing.T) {
	r := histogramRaster(t, NoData{})
	lo, hi := 2.0, 5.0

	h, err := Histogram(r, 1, 3, &lo, &hi, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 2}, bucketCounts(h))
	assert.Equal(t, int64(4), h.Counted)
	assert.Equal(t, int64(6), h.OutOfRange)
}

func TestHistogramConstantBand(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 3, 3, PixelGrid, 0)
	require.NoError(t, err)

	h, err := Histogram(r, 1, 8, nil, nil, true)
	require.NoError(t, err)
	require.Len(t, h.Buckets, 1)
	assert.Equal(t, int64(9), h.Buckets[0].Count)
}

func TestHistogramAllNoData(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 3, 3, PixelGrid, 0)
	require.NoError(t, err)
	r, err = SetBandNoDataValue(r, 1, NoDataOf(0))
	require.NoError(t, err)

	h, err := Histogram(r, 1, 4, nil, nil, true)
	require.NoError(t, err)
	assert.Empty(t, h.Buckets)
	assert.Equal(t, int64(0), h.Counted)
}

func TestHistogramErrors(t *testing.T) {
	r := histogramRaster(t, NoData{})

	_, err := Histogram(r, 2, 4, nil, nil, true)
	assert.ErrorIs(t, err, ErrBandOutOfRange)

	for _, buckets := range []int{0, -1, MaxBuckets + 1, 1 << 62} {
		_, err = Histogram(r, 1, buckets, nil, nil, true)
		assert.Error(t, err, "buckets=%d", buckets)
	}

	res, err := Histogram(r, 1, MaxBuckets, nil, nil, true)
	require.NoError(t, err)
	assert.Len(t, res.Buckets, MaxBuckets)

	lo, hi := 5.0, 1.0
	_, err = Histogram(r, 1, 4, &lo, &hi, true)
	assert.Error(t, err)
}
