package raster

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i + 1)
	}
	return values
}

func TestParsePixelType(t *testing.T) {
	tests := []struct {
		in   string
		want PixelType
	}{
		{"", Real64},
		{"B", Unsigned8},
		{"s", Signed16},
		{"US", Unsigned16},
		{"I", Signed32},
		{"F", Real32},
		{"D", Real64},
		{"unsigned_16bits", Unsigned16},
		{"REAL_32BITS", Real32},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePixelType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePixelType("X")
	assert.Error(t, err)
}

func TestPixelTypeConvert(t *testing.T) {
	assert.Equal(t, 1.2, Real64.Convert(1.2))
	assert.Equal(t, float64(float32(1.2)), Real32.Convert(1.2))
	assert.Equal(t, 32.0, Signed32.Convert(32.7))
	assert.Equal(t, -32.0, Signed32.Convert(-32.7))
	assert.Equal(t, 43.0, Unsigned8.Convert(43.2))
	assert.Equal(t, 0.0, Unsigned8.Convert(256))
	assert.Equal(t, -1.0, Signed16.Convert(-1.2))
	assert.Equal(t, 65535.0, Unsigned16.Convert(-1.2))
	assert.Equal(t, 65504.0, Unsigned16.Convert(-32.2))
	assert.Equal(t, 0.0, Signed32.Convert(math.NaN()))
	assert.True(t, math.IsNaN(Real64.Convert(math.NaN())))
}

func TestNoData(t *testing.T) {
	assert.False(t, NoData{}.Valid)
	assert.Nil(t, NoData{}.Ptr())
	assert.False(t, NoDataOf(math.NaN()).Valid)

	nd := NoDataOf(0)
	assert.True(t, nd.Valid)
	assert.True(t, nd.Excludes(0))
	assert.False(t, nd.Excludes(1))
	require.NotNil(t, nd.Ptr())
	assert.Equal(t, 0.0, *nd.Ptr())

	v := -9999.0
	assert.Equal(t, NoDataOf(v), NoDataFromPtr(&v))
	assert.Equal(t, NoData{}, NoDataFromPtr(nil))
	assert.False(t, NoData{}.Excludes(0))
}

func TestEnsureBand(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 5, 10, GeoTransform{UpperLeftX: 53, UpperLeftY: 51, ScaleX: 1, ScaleY: 1}, 4326)
	require.NoError(t, err)

	assert.NoError(t, r.EnsureBand(1))
	for _, band := range []int{0, 2, -1} {
		err := r.EnsureBand(band)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBandOutOfRange))
		var bie *BandIndexError
		require.True(t, errors.As(err, &bie))
		assert.Equal(t, band, bie.Index)
		assert.Equal(t, 1, bie.NumBands)
	}
	assert.EqualError(t, r.EnsureBand(2), "provided band index 2 is not present in the raster (valid range 1..1)")
}

func TestMakeEmptyRaster(t *testing.T) {
	r, err := MakeEmptyRaster(2, Signed16, 4, 3, PixelGrid, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Width())
	assert.Equal(t, 3, r.Height())
	assert.Equal(t, 2, r.NumBands())
	assert.Equal(t, 0, r.SRID())
	assert.Equal(t, PixelGrid, r.GeoTransform())

	values, err := BandAsArray(r, 2)
	require.NoError(t, err)
	assert.Equal(t, make([]float64, 12), values)

	_, err = MakeEmptyRaster(1, Real64, 0, 3, PixelGrid, 0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = MakeEmptyRaster(-1, Real64, 2, 2, PixelGrid, 0)
	assert.Error(t, err)
}

func TestAddBandFromArray(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 5, 10, PixelGrid, 4326)
	require.NoError(t, err)

	appended, err := AddBandFromArray(r, sequence(50), 2, NoDataOf(1))
	require.NoError(t, err)
	assert.Equal(t, 2, appended.NumBands())
	assert.Equal(t, 1, r.NumBands(), "source raster must not change")

	replaced, err := AddBandFromArray(appended, sequence(50), 1, NoData{})
	require.NoError(t, err)
	values, err := BandAsArray(replaced, 1)
	require.NoError(t, err)
	assert.Equal(t, sequence(50), values)

	_, err = AddBandFromArray(r, sequence(50), 3, NoData{})
	assert.ErrorIs(t, err, ErrBandOutOfRange)
	_, err = AddBandFromArray(r, sequence(49), 1, NoData{})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestBandAsArrayCopies(t *testing.T) {
	r, err := MakeEmptyRaster(0, Real64, 2, 2, PixelGrid, 0)
	require.NoError(t, err)
	r, err = AddBandFromArray(r, []float64{1, 2, 3, 4}, 1, NoData{})
	require.NoError(t, err)

	values, err := BandAsArray(r, 1)
	require.NoError(t, err)
	values[0] = 100

	again, err := BandAsArray(r, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0])

	_, err = BandAsArray(r, 2)
	assert.ErrorIs(t, err, ErrBandOutOfRange)
}

func TestSetBandNoDataValue(t *testing.T) {
	r, err := MakeEmptyRaster(2, Real64, 2, 2, PixelGrid, 0)
	require.NoError(t, err)

	set, err := SetBandNoDataValue(r, 2, NoDataOf(-9999))
	require.NoError(t, err)
	nd, err := BandNoDataValue(set, 2)
	require.NoError(t, err)
	assert.Equal(t, NoDataOf(-9999), nd)

	nd, err = BandNoDataValue(r, 2)
	require.NoError(t, err)
	assert.False(t, nd.Valid, "source raster must not change")

	cleared, err := SetBandNoDataValue(set, 2, NoData{})
	require.NoError(t, err)
	nd, err = BandNoDataValue(cleared, 2)
	require.NoError(t, err)
	assert.False(t, nd.Valid)

	_, err = SetBandNoDataValue(r, 3, NoData{})
	assert.ErrorIs(t, err, ErrBandOutOfRange)
}

func TestEnvelope(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 5, 5, GeoTransform{UpperLeftX: 23, UpperLeftY: -25, ScaleX: 1, ScaleY: -1, SkewX: 2, SkewY: 2}, 0)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{23, -30}, Max: orb.Point{38, -15}}, r.Envelope())

	r, err = MakeEmptyRaster(1, Real64, 4, 2, PixelGrid, 0)
	require.NoError(t, err)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, -2}, Max: orb.Point{4, 0}}, r.Envelope())
}

func TestNewRejectsBadBands(t *testing.T) {
	_, err := New(2, 2, PixelGrid, 0, NewBand(Real64, NoData{}, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, err = New(0, 2, PixelGrid, 0)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestDimensionLimits(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"wraps to zero", 1 << 32, 1 << 32},
		{"wraps negative", math.MaxInt/2 + 1, 2},
		{"above cap", MaxPixels, 2},
		{"negative height", 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MakeEmptyRaster(1, Real64, tt.width, tt.height, PixelGrid, 0)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
			_, err = New(tt.width, tt.height, PixelGrid, 0)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}

	r, err := New(MaxPixels/2, 2, PixelGrid, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxPixels, r.Width()*r.Height())
}
