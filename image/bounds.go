package image

import "math"

// Bounds constrains the printed size of an image, in dots.
type Bounds struct {
	// The maximum line width of the printer
	MaxWidth int
	// Tallest image sent in one raster block
	MaxHeight int
	// Narrow images are scaled up to this width while height allows
	MinWidth int
}

// DefaultBounds suits a 203 dpi, 48mm print head.
var DefaultBounds = Bounds{MaxWidth: 384, MaxHeight: 150, MinWidth: 256}

// Fit returns the printed size of a w x h source. Each clamp can push the
// other axis back out of range, so the order of the steps matters.
//
// A narrow image that already sits at MaxHeight is never scaled up, even
// when it is far below MinWidth.
func (b Bounds) Fit(w, h int) (int, int) {
	fitHeight := func() {
		if h > b.MaxHeight {
			w = scale(w, b.MaxHeight, h)
			h = b.MaxHeight
		}
	}

	fitHeight()
	if w > b.MaxWidth {
		h = scale(h, b.MaxWidth, w)
		w = b.MaxWidth
	}
	fitHeight()

	if w < b.MinWidth && h < b.MaxHeight {
		h = scale(h, b.MinWidth, w)
		w = b.MinWidth
		fitHeight()
	}
	return w, h
}

// scale returns round(v*num/den), never less than one dot.
func scale(v, num, den int) int {
	if den <= 0 {
		return 1
	}
	r := int(math.Floor(float64(v)*float64(num)/float64(den) + 0.5))
	if r < 1 {
		return 1
	}
	return r
}
