package raster

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// PreviewResult contains a rendered band image
type PreviewResult struct {
	Band        int    `json:"band"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Ramp is a colour gradient for band previews. Stretched values are blended
// from From to To in CIE L*a*b* space.
type Ramp struct {
	From colorful.Color
	To   colorful.Color
}

// ParseRamp builds a ramp from two hex colours such as "#440154".
func ParseRamp(from, to string) (*Ramp, error) {
	f, err := colorful.Hex(from)
	if err != nil {
		return nil, fmt.Errorf("invalid ramp colour %q: %w", from, err)
	}
	t, err := colorful.Hex(to)
	if err != nil {
		return nil, fmt.Errorf("invalid ramp colour %q: %w", to, err)
	}
	return &Ramp{From: f, To: t}, nil
}

// Preview renders a band as a grayscale PNG. Values are stretched linearly
// between the band's minimum and maximum, excluding no-data. No-data and NaN
// pixels are black. Images larger than maxSize on either side are shrunk to
// fit; maxSize <= 0 keeps the native size.
func Preview(r *Raster, band, maxSize int) (*PreviewResult, error) {
	return PreviewRamp(r, band, maxSize, nil)
}

// PreviewRamp is Preview with the stretched values mapped through ramp.
// No-data and NaN pixels are transparent. A nil ramp renders grayscale.
func PreviewRamp(r *Raster, band, maxSize int, ramp *Ramp) (*PreviewResult, error) {
	b, err := r.Band(band)
	if err != nil {
		return nil, err
	}

	st := SampleStats(b.samples, b.NoData, true)
	span := st.Max - st.Min

	// levels[i] is in [0, 1], or NaN for pixels that are not drawn
	levels := make([]float64, len(b.samples))
	for i, v := range b.samples {
		levels[i] = math.NaN()
		if st.Count == 0 || b.NoData.Excludes(v) || math.IsNaN(v) {
			continue
		}
		level := 1.0
		if span > 0 {
			level = (v - st.Min) / span
		}
		if math.IsNaN(level) {
			continue
		}
		levels[i] = math.Max(0, math.Min(1, level))
	}

	var img image.Image
	if ramp == nil {
		img = grayLevels(levels, r.width, r.height)
	} else {
		img = rampLevels(levels, r.width, r.height, ramp)
	}

	out := img
	if maxSize > 0 && (r.width > maxSize || r.height > maxSize) {
		out = imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Band:        band,
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

func grayLevels(levels []float64, width, height int) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for i, l := range levels {
		if !math.IsNaN(l) {
			gray.Pix[i] = uint8(math.Round(l * 255))
		}
	}
	return gray
}

func rampLevels(levels []float64, width, height int, ramp *Ramp) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, l := range levels {
		if math.IsNaN(l) {
			continue
		}
		cr, cg, cb := ramp.From.BlendLab(ramp.To, l).Clamped().RGB255()
		img.Pix[i*4] = cr
		img.Pix[i*4+1] = cg
		img.Pix[i*4+2] = cb
		img.Pix[i*4+3] = 0xff
	}
	return img
}
