package raster

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePreview(t *testing.T, res *PreviewResult) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(res.ImageBase64)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestPreviewStretch(t *testing.T) {
	r, err := MakeEmptyRaster(0, Real64, 2, 2, PixelGrid, 0)
	require.NoError(t, err)
	r, err = AddBandFromArray(r, []float64{0, 10, 20, 30}, 1, NoDataOf(0))
	require.NoError(t, err)

	res, err := Preview(r, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MimeType)
	assert.Equal(t, 2, res.Width)
	assert.Equal(t, 2, res.Height)

	gray, ok := decodePreview(t, res).(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []uint8{0, 0, 128, 255}, gray.Pix)
}

func TestPreviewFit(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 100, 50, PixelGrid, 0)
	require.NoError(t, err)

	res, err := Preview(r, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, res.Width)
	assert.Equal(t, 10, res.Height)

	img := decodePreview(t, res)
	assert.Equal(t, 20, img.Bounds().Dx())
}

func TestPreviewIllegalBand(t *testing.T) {
	r, err := MakeEmptyRaster(1, Real64, 2, 2, PixelGrid, 0)
	require.NoError(t, err)
	_, err = Preview(r, 2, 0)
	assert.ErrorIs(t, err, ErrBandOutOfRange)
}

func TestParseRamp(t *testing.T) {
	ramp, err := ParseRamp("#000000", "#ff0000")
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", ramp.To.Hex())

	_, err = ParseRamp("black", "#ff0000")
	assert.Error(t, err)
	_, err = ParseRamp("#000000", "#zz0000")
	assert.Error(t, err)
}

func TestPreviewRamp(t *testing.T) {
	r, err := MakeEmptyRaster(0, Real64, 3, 1, PixelGrid, 0)
	require.NoError(t, err)
	r, err = AddBandFromArray(r, []float64{-1, 5, 15}, 1, NoDataOf(-1))
	require.NoError(t, err)
	ramp, err := ParseRamp("#0000ff", "#ffff00")
	require.NoError(t, err)

	res, err := PreviewRamp(r, 1, 0, ramp)
	require.NoError(t, err)

	img, ok := decodePreview(t, res).(*image.NRGBA)
	require.True(t, ok)
	// No-data is transparent; the ends of the stretch take the ramp's colours.
	assert.Equal(t, []uint8{0, 0, 0, 0}, img.Pix[0:4])
	assert.Equal(t, []uint8{0, 0, 0xff, 0xff}, img.Pix[4:8])
	assert.Equal(t, []uint8{0xff, 0xff, 0, 0xff}, img.Pix[8:12])
}
