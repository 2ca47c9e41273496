package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Filter resamples img to exactly w x h.
type Filter func(img image.Image, w, h int) image.Image

func nfntFilter(interp resize.InterpolationFunction) Filter {
	return func(img image.Image, w, h int) image.Image {
		return resize.Resize(uint(w), uint(h), img, interp)
	}
}

func drawFilter(s draw.Scaler) Filter {
	return func(img image.Image, w, h int) image.Image {
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		s.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		return dst
	}
}

var filters = map[string]Filter{
	"nearest":     nfntFilter(resize.NearestNeighbor),
	"bilinear":    nfntFilter(resize.Bilinear),
	"bicubic":     nfntFilter(resize.Bicubic),
	"mitchell":    nfntFilter(resize.MitchellNetravali),
	"lanczos2":    nfntFilter(resize.Lanczos2),
	"lanczos3":    nfntFilter(resize.Lanczos3),
	"catmull-rom": drawFilter(draw.CatmullRom),
	"approx":      drawFilter(draw.ApproxBiLinear),
}

// DefaultFilter is the resampling filter used when none is configured.
const DefaultFilter = "lanczos3"

// LookupFilter returns the named resampling filter.
func LookupFilter(name string) (Filter, error) {
	if name == "" {
		name = DefaultFilter
	}
	f, ok := filters[name]
	if !ok {
		return nil, fmt.Errorf("unknown resampling filter %q (want one of %v)", name, FilterNames())
	}
	return f, nil
}

// FilterNames lists the known resampling filters.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode reads a JPEG, PNG, GIF, BMP, TIFF or WebP image, applying its EXIF
// orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Err: errors.New("image has no pixels")}
	}
	return img, nil
}

// Normalize resamples img to the size bounds allow and returns its grayscale
// samples. Transparent areas are flattened onto white paper.
func Normalize(img image.Image, bounds Bounds, filter Filter) *Samples {
	if filter == nil {
		filter = filters[DefaultFilter]
	}
	src := img.Bounds()
	w, h := bounds.Fit(src.Dx(), src.Dy())

	var scaled image.Image = img
	if w != src.Dx() || h != src.Dy() {
		scaled = filter(img, w, h)
	}

	paper := imaging.New(w, h, color.White)
	flat := imaging.Overlay(paper, scaled, image.Pt(0, 0), 1.0)
	gray := imaging.Grayscale(flat)

	s := &Samples{
		Width:  w,
		Height: h,
		Pix:    make([]float64, w*h),
	}
	// imaging.Grayscale sets R=G=B; read the red channel.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s.Pix[y*w+x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}
	return s
}
