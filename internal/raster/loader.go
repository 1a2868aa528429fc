package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// MemPrefix marks references to rasters held only in a Cache.
const MemPrefix = "mem:"

// ErrUnknownHandle reports a mem: reference that is not in the cache.
var ErrUnknownHandle = errors.New("unknown raster handle")

// Decode reads an image file and converts it to a raster.
//
// Gray images become a single UNSIGNED_8BITS band and Gray16 images a single
// UNSIGNED_16BITS band. Colour images become R, G, B bands, plus an A band
// when the decoded model is non-premultiplied with alpha (NRGBA, NRGBA64) or
// is a palette with a transparent entry.
// 16-bit colour images use UNSIGNED_16BITS, all others UNSIGNED_8BITS.
//
// A GDAL_NODATA tag in a TIFF file is applied to every band. The returned
// raster uses the PixelGrid geotransform.
func Decode(r io.ReaderAt, size int64) (*Raster, error) {
	noData := readGDALNoData(r)

	img, err := imaging.Decode(io.NewSectionReader(r, 0, size), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var bands []Band

	switch src := img.(type) {
	case *image.Gray:
		s := make([]float64, w*h)
		for y := 0; y < h; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+w]
			for x, v := range row {
				s[y*w+x] = float64(v)
			}
		}
		bands = []Band{{Type: Unsigned8, NoData: noData, samples: s}}

	case *image.Gray16:
		s := make([]float64, w*h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*src.Stride + x*2
				s[y*w+x] = float64(uint16(src.Pix[i])<<8 | uint16(src.Pix[i+1]))
			}
		}
		bands = []Band{{Type: Unsigned16, NoData: noData, samples: s}}

	case *image.RGBA64, *image.NRGBA64:
		_, hasAlpha := src.(*image.NRGBA64)
		bands = splitChannels(w, h, Unsigned16, noData, hasAlpha, func(x, y int) [4]float64 {
			c := color.NRGBA64Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA64)
			return [4]float64{float64(c.R), float64(c.G), float64(c.B), float64(c.A)}
		})

	default:
		hasAlpha := false
		switch m := src.(type) {
		case *image.NRGBA:
			hasAlpha = true
		case *image.Paletted:
			hasAlpha = paletteHasAlpha(m.Palette)
		}
		nrgba := imaging.Clone(img)
		bands = splitChannels(w, h, Unsigned8, noData, hasAlpha, func(x, y int) [4]float64 {
			i := y*nrgba.Stride + x*4
			p := nrgba.Pix[i : i+4 : i+4]
			return [4]float64{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])}
		})
	}

	return New(w, h, PixelGrid, 0, bands...)
}

// paletteHasAlpha reports whether any palette entry is not fully opaque.
func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}

func splitChannels(w, h int, pt PixelType, noData NoData, hasAlpha bool, at func(x, y int) [4]float64) []Band {
	n := 3
	if hasAlpha {
		n = 4
	}
	bands := make([]Band, n)
	for i := range bands {
		bands[i] = Band{Type: pt, NoData: noData, samples: make([]float64, w*h)}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := at(x, y)
			for i := range bands {
				bands[i].samples[y*w+x] = px[i]
			}
		}
	}
	return bands
}

// Cache provides thread-safe storage of rasters.
//
// File rasters are keyed by the exact path used to load them. In-memory
// rasters are stored with Put and addressed by the returned mem: handle.
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or decodes it from disk.
func (c *Cache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat raster: %w", err)
	}

	r, err := Decode(f, st.Size())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Put stores an in-memory raster and returns its handle.
func (c *Cache) Put(r *Raster) string {
	ref := MemPrefix + uuid.NewString()
	c.mu.Lock()
	c.rasters[ref] = r
	c.mu.Unlock()
	return ref
}

// Get resolves a mem: handle or a file path.
func (c *Cache) Get(ref string) (*Raster, error) {
	if !strings.HasPrefix(ref, MemPrefix) {
		return c.Load(ref)
	}
	c.mu.RLock()
	r, ok := c.rasters[ref]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, ref)
	}
	return r, nil
}

// Evict removes a raster by path or handle. Unknown references are ignored.
func (c *Cache) Evict(ref string) {
	c.mu.Lock()
	delete(c.rasters, ref)
	c.mu.Unlock()
}

// Clear removes every raster.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Len returns the number of cached rasters.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// BandInfo describes one band.
type BandInfo struct {
	Band      int      `json:"band"`
	PixelType string   `json:"pixel_type"`
	NoData    *float64 `json:"nodata"`
}

// Info contains raster metadata.
type Info struct {
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	NumBands     int               `json:"num_bands"`
	Bands        []BandInfo        `json:"bands"`
	GeoTransform GeoTransform      `json:"geotransform"`
	SRID         int               `json:"srid"`
	Envelope     [4]float64        `json:"envelope"`
	Footprint    *geojson.Geometry `json:"footprint"`
}

// Describe returns the raster's metadata. Envelope is
// [minX, minY, maxX, maxY].
func Describe(r *Raster) *Info {
	env := r.Envelope()
	info := &Info{
		Width:        r.width,
		Height:       r.height,
		NumBands:     len(r.bands),
		Bands:        make([]BandInfo, len(r.bands)),
		GeoTransform: r.transform,
		SRID:         r.srid,
		Envelope:     [4]float64{env.Min[0], env.Min[1], env.Max[0], env.Max[1]},
		Footprint:    geojson.NewGeometry(env.ToPolygon()),
	}
	for i, b := range r.bands {
		info.Bands[i] = BandInfo{Band: i + 1, PixelType: b.Type.String(), NoData: b.NoData.Ptr()}
	}
	return info
}
