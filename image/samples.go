package image

import (
	"image"
	"image/color"
	"math"
)

// Samples is a single-channel frame buffer in row-major order. Values start
// as intensities in [0,255]; dithering writes exactly 0 or 255. Diffused
// error may push a sample outside [0,255] before it is visited, which
// float64 storage absorbs.
type Samples struct {
	Width, Height int
	Pix           []float64
}

// SamplesFromGray copies a grayscale image into a new buffer.
func SamplesFromGray(img *image.Gray) *Samples {
	b := img.Bounds()
	s := &Samples{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]float64, b.Dx()*b.Dy()),
	}
	for y := 0; y < s.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+s.Width]
		for x, v := range row {
			s.Pix[y*s.Width+x] = float64(v)
		}
	}
	return s
}

func (s *Samples) At(x, y int) float64 {
	return s.Pix[y*s.Width+x]
}

func (s *Samples) Set(x, y int, v float64) {
	s.Pix[y*s.Width+x] = v
}

// Gray returns a rounded, clamped copy of the buffer.
func (s *Samples) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, s.Width, s.Height))
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: clamp8(s.At(x, y))})
		}
	}
	return img
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
