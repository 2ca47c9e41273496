package image

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/makeworld-the-better-one/dither/v2"
)

// DefaultThreshold splits samples into black (below) and white.
const DefaultThreshold = 128

// Method binarizes a sample buffer in place.
type Method func(s *Samples, threshold float64)

var methods = map[string]Method{
	"atkinson":        Atkinson,
	"floyd-steinberg": matrixMethod(dither.FloydSteinberg),
	"stucki":          matrixMethod(dither.Stucki),
	"bayer":           bayerMethod,
	"threshold":       Threshold,
}

// DefaultMethod is the dithering method used when none is configured.
const DefaultMethod = "atkinson"

// LookupMethod returns the named dithering method.
func LookupMethod(name string) (Method, error) {
	if name == "" {
		name = DefaultMethod
	}
	m, ok := methods[name]
	if !ok {
		return nil, fmt.Errorf("unknown dither method %q (want one of %v)", name, MethodNames())
	}
	return m, nil
}

// MethodNames lists the known dithering methods.
func MethodNames() []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Atkinson dithers s in place, scanning rows top to bottom and each row left
// to right. An eighth of the quantization error goes to each of six unvisited
// neighbours; the remaining quarter is dropped.
//
//	    *  1  1
//	 1  1  1
//	    1
//
// Neighbours are updated in the same buffer ahead of their visit, so the
// result depends on the exact scan order.
func Atkinson(s *Samples, threshold float64) {
	w, h := s.Width, s.Height
	pix := s.Pix
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			old := pix[i]
			var v float64
			if old >= threshold {
				v = 255
			}
			pix[i] = v

			e := (old - v) / 8
			if x+1 < w {
				pix[i+1] += e
			}
			if x+2 < w {
				pix[i+2] += e
			}
			if y+1 < h {
				if x-1 >= 0 {
					pix[i+w-1] += e
				}
				pix[i+w] += e
				if x+1 < w {
					pix[i+w+1] += e
				}
			}
			if y+2 < h {
				pix[i+2*w] += e
			}
		}
	}
}

// Threshold binarizes s without diffusing any error.
func Threshold(s *Samples, threshold float64) {
	for i, v := range s.Pix {
		if v < threshold {
			s.Pix[i] = 0
		} else {
			s.Pix[i] = 255
		}
	}
}

var blackAndWhite = []color.Color{color.Black, color.White}

func matrixMethod(m dither.ErrorDiffusionMatrix) Method {
	return func(s *Samples, threshold float64) {
		d := dither.NewDitherer(blackAndWhite)
		d.Matrix = m
		drawDithered(d, s, threshold)
	}
}

func bayerMethod(s *Samples, threshold float64) {
	d := dither.NewDitherer(blackAndWhite)
	d.Mapper = dither.Bayer(8, 8, 1.0)
	drawDithered(d, s, threshold)
}

// drawDithered runs a library ditherer over s. The palette has two entries,
// so threshold only has to separate them again on the way back.
func drawDithered(d *dither.Ditherer, s *Samples, threshold float64) {
	src := s.Gray()
	dst := image.NewGray(src.Bounds())
	d.Draw(dst, dst.Bounds(), src, image.Point{})
	copy(s.Pix, SamplesFromGray(dst).Pix)
	Threshold(s, threshold)
}
