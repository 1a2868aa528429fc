// Package raster provides the raster model and band-level accessors used by
// the MCP server.
//
// A Raster is a width × height grid with one or more bands. Each band stores
// its samples as float64 values already narrowed to the band's PixelType, and
// may declare a no-data sentinel. Rasters are immutable: editing functions
// such as AddBandFromArray and SetBandNoDataValue return a new Raster.
//
// # Band Indexes
//
// Bands are addressed with 1-based indexes. Every accessor validates the index
// with Raster.EnsureBand before reading any pixel; an invalid index yields a
// *BandIndexError that matches ErrBandOutOfRange with errors.Is.
//
// # Statistics
//
// SummaryStats and Count reduce one band to (count, sum, mean, stddev, min,
// max) or to a count alone. Statistics use two passes over the samples and
// the population standard deviation. A band with no qualifying samples yields
// a count of zero and NaN for every other field; this is a result, not an
// error.
//
// # Coordinate System
//
// Pixel (column, row) addresses use (0,0) as the top-left pixel. World
// coordinates follow the GDAL-style geotransform stored in GeoTransform:
//
//	x = UpperLeftX + col*ScaleX + row*SkewX
//	y = UpperLeftY + col*SkewY + row*ScaleY
//
// # Thread Safety
//
// Raster values are safe to share between goroutines. Cache is safe for
// concurrent use.
package raster
