package raster

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// PixelType describes the storage width and signedness of a band's samples.
type PixelType int

const (
	Unsigned8 PixelType = iota
	Signed16
	Unsigned16
	Signed32
	Real32
	Real64
)

var pixelTypeNames = map[PixelType]string{
	Unsigned8:  "UNSIGNED_8BITS",
	Signed16:   "SIGNED_16BITS",
	Unsigned16: "UNSIGNED_16BITS",
	Signed32:   "SIGNED_32BITS",
	Real32:     "REAL_32BITS",
	Real64:     "REAL_64BITS",
}

var pixelTypeCodes = map[string]PixelType{
	"B":  Unsigned8,
	"S":  Signed16,
	"US": Unsigned16,
	"I":  Signed32,
	"F":  Real32,
	"D":  Real64,
}

// String returns the sample dimension name, e.g. "REAL_64BITS".
func (p PixelType) String() string {
	if name, ok := pixelTypeNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PixelType(%d)", int(p))
}

// ParsePixelType accepts a short code ("B", "S", "US", "I", "F", "D") or a
// full name ("UNSIGNED_8BITS", ...). Matching is case-insensitive and the
// empty string selects Real64.
func ParsePixelType(s string) (PixelType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Real64, nil
	}
	if p, ok := pixelTypeCodes[s]; ok {
		return p, nil
	}
	for p, name := range pixelTypeNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel type: %q", s)
}

// Convert narrows v to a value representable by the pixel type. Integer types
// truncate toward zero and wrap to their width; NaN becomes 0.
func (p PixelType) Convert(v float64) float64 {
	switch p {
	case Real64:
		return v
	case Real32:
		return float64(float32(v))
	}

	var i int64
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt64:
		i = math.MaxInt64
	case v <= math.MinInt64:
		i = math.MinInt64
	default:
		i = int64(v)
	}

	switch p {
	case Unsigned8:
		return float64(uint8(i))
	case Signed16:
		return float64(int16(i))
	case Unsigned16:
		return float64(uint16(i))
	default:
		return float64(int32(i))
	}
}

// NoData is an optional no-data sentinel. The zero value means no sentinel.
type NoData struct {
	Value float64
	Valid bool
}

// NoDataOf returns a defined sentinel. A NaN sentinel is treated as undefined.
func NoDataOf(v float64) NoData {
	if math.IsNaN(v) {
		return NoData{}
	}
	return NoData{Value: v, Valid: true}
}

// NoDataFromPtr converts a nullable value to a NoData.
func NoDataFromPtr(v *float64) NoData {
	if v == nil {
		return NoData{}
	}
	return NoDataOf(*v)
}

// Ptr returns the sentinel as a nullable value.
func (n NoData) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Excludes reports whether sample v is the no-data sentinel.
func (n NoData) Excludes(v float64) bool {
	return n.Valid && v == n.Value
}

// GeoTransform maps pixel (col, row) to world coordinates.
type GeoTransform struct {
	UpperLeftX float64 `json:"upper_left_x"`
	UpperLeftY float64 `json:"upper_left_y"`
	ScaleX     float64 `json:"scale_x"`
	ScaleY     float64 `json:"scale_y"`
	SkewX      float64 `json:"skew_x"`
	SkewY      float64 `json:"skew_y"`
}

// PixelGrid is the geotransform of a raster without georeferencing.
var PixelGrid = GeoTransform{ScaleX: 1, ScaleY: -1}

// Apply returns the world coordinate of pixel corner (col, row).
func (g GeoTransform) Apply(col, row float64) orb.Point {
	return orb.Point{
		g.UpperLeftX + col*g.ScaleX + row*g.SkewX,
		g.UpperLeftY + col*g.SkewY + row*g.ScaleY,
	}
}

// Band is a single numeric layer of a raster.
type Band struct {
	Type    PixelType
	NoData  NoData
	samples []float64
}

// Raster is an immutable grid of bands sharing the same dimensions.
type Raster struct {
	width     int
	height    int
	transform GeoTransform
	srid      int
	bands     []Band
}

var (
	// ErrBandOutOfRange is matched by every *BandIndexError.
	ErrBandOutOfRange = errors.New("band index out of range")

	// ErrDimensionMismatch reports a sample array whose length differs from
	// width*height.
	ErrDimensionMismatch = errors.New("sample count does not match raster dimensions")

	// ErrInvalidDimensions reports a non-positive width or height, or a
	// pixel count above MaxPixels.
	ErrInvalidDimensions = errors.New("invalid raster dimensions")
)

// MaxPixels bounds width*height of any raster.
const MaxPixels = 1 << 28

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxPixels/height {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return nil
}

// BandIndexError reports a band index absent from a raster.
type BandIndexError struct {
	Index    int
	NumBands int
}

func (e *BandIndexError) Error() string {
	return fmt.Sprintf("provided band index %d is not present in the raster (valid range 1..%d)", e.Index, e.NumBands)
}

func (e *BandIndexError) Unwrap() error {
	return ErrBandOutOfRange
}

// New builds a raster from prepared bands. Each band's samples must have
// width*height entries, and width*height may not exceed MaxPixels.
func New(width, height int, transform GeoTransform, srid int, bands ...Band) (*Raster, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	r := &Raster{
		width:     width,
		height:    height,
		transform: transform,
		srid:      srid,
		bands:     make([]Band, len(bands)),
	}
	for i, b := range bands {
		if len(b.samples) != width*height {
			return nil, fmt.Errorf("band %d: %w: got %d, want %d", i+1, ErrDimensionMismatch, len(b.samples), width*height)
		}
		r.bands[i] = b
	}
	return r, nil
}

// NewBand builds a band, narrowing samples to the pixel type. The input slice
// is not retained.
func NewBand(pt PixelType, noData NoData, samples []float64) Band {
	s := make([]float64, len(samples))
	for i, v := range samples {
		s[i] = pt.Convert(v)
	}
	return Band{Type: pt, NoData: noData, samples: s}
}

// Width returns the number of columns.
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows.
func (r *Raster) Height() int { return r.height }

// NumBands returns the number of bands.
func (r *Raster) NumBands() int { return len(r.bands) }

// GeoTransform returns the pixel-to-world transform.
func (r *Raster) GeoTransform() GeoTransform { return r.transform }

// SRID returns the spatial reference identifier, 0 when unknown.
func (r *Raster) SRID() int { return r.srid }

// EnsureBand fails with a *BandIndexError unless band is in [1, NumBands].
func (r *Raster) EnsureBand(band int) error {
	if band < 1 || band > len(r.bands) {
		return &BandIndexError{Index: band, NumBands: len(r.bands)}
	}
	return nil
}

// Band returns the 1-based band.
func (r *Raster) Band(band int) (Band, error) {
	if err := r.EnsureBand(band); err != nil {
		return Band{}, err
	}
	return r.bands[band-1], nil
}

// Envelope returns the bounding box of the raster's four corners in world
// coordinates.
func (r *Raster) Envelope() orb.Bound {
	w, h := float64(r.width), float64(r.height)
	b := r.transform.Apply(0, 0).Bound()
	for _, p := range []orb.Point{r.transform.Apply(w, 0), r.transform.Apply(0, h), r.transform.Apply(w, h)} {
		b = b.Extend(p)
	}
	return b
}

// pixelType is the type new bands inherit.
func (r *Raster) pixelType() PixelType {
	if len(r.bands) == 0 {
		return Real64
	}
	return r.bands[0].Type
}

func (r *Raster) withBands(bands []Band) *Raster {
	return &Raster{
		width:     r.width,
		height:    r.height,
		transform: r.transform,
		srid:      r.srid,
		bands:     bands,
	}
}

// MakeEmptyRaster creates a raster whose bands are all zero and declare no
// no-data sentinel.
func MakeEmptyRaster(numBands int, pt PixelType, width, height int, transform GeoTransform, srid int) (*Raster, error) {
	if numBands < 0 {
		return nil, fmt.Errorf("invalid band count: %d", numBands)
	}
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	bands := make([]Band, numBands)
	for i := range bands {
		bands[i] = Band{Type: pt, samples: make([]float64, width*height)}
	}
	return New(width, height, transform, srid, bands...)
}

// AddBandFromArray returns a copy of r in which the given band is replaced by
// values, or appended when band is NumBands()+1. Values are narrowed to the
// raster's pixel type.
func AddBandFromArray(r *Raster, values []float64, band int, noData NoData) (*Raster, error) {
	if band < 1 || band > len(r.bands)+1 {
		return nil, &BandIndexError{Index: band, NumBands: len(r.bands)}
	}
	if len(values) != r.width*r.height {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), r.width*r.height)
	}

	bands := make([]Band, len(r.bands), len(r.bands)+1)
	copy(bands, r.bands)
	nb := NewBand(r.pixelType(), noData, values)
	if band == len(bands)+1 {
		bands = append(bands, nb)
	} else {
		bands[band-1] = nb
	}
	return r.withBands(bands), nil
}

// SetBandNoDataValue returns a copy of r with the band's sentinel replaced.
// Passing the zero NoData removes the sentinel.
func SetBandNoDataValue(r *Raster, band int, noData NoData) (*Raster, error) {
	if err := r.EnsureBand(band); err != nil {
		return nil, err
	}
	bands := make([]Band, len(r.bands))
	copy(bands, r.bands)
	bands[band-1].NoData = noData
	return r.withBands(bands), nil
}

// BandAsArray returns a copy of the band's samples in row-major order.
func BandAsArray(r *Raster, band int) ([]float64, error) {
	b, err := r.Band(band)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out, nil
}
