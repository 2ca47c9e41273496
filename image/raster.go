package image

import (
	"bytes"
	"fmt"

	"github.com/AlexStarov/escpos-raster/util"
)

// Mode selects the ESC/POS command family a raster is sent with.
type Mode string

const (
	// BitImage is GS v 0: a single block, header plus payload.
	BitImage Mode = "bit-image"
	// Graphics is GS 8 L followed by GS ( L print, in bands.
	Graphics Mode = "graphics"
)

// ParseMode validates a raster mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case BitImage, Graphics:
		return m, nil
	case "":
		return BitImage, nil
	}
	return "", fmt.Errorf("unknown raster mode %q", s)
}

const (
	// Sample value that prints as a dot.
	black = 0

	maxDimension = 0xffff

	// Rows per GS 8 L band
	gs8lMaxY = 831
)

// Raster is a packed 1-bit image: each row is WidthBytes bytes, the leftmost
// dot in the most significant bit, 1 meaning black.
type Raster struct {
	Width, Height int
	WidthBytes    int
	Data          []byte
}

// Encode packs a dithered buffer. Dots past Width in the last byte of each
// row stay 0.
func Encode(s *Samples) (*Raster, error) {
	widthBytes := (s.Width + 7) >> 3
	if s.Width <= 0 || s.Height <= 0 || s.Width > maxDimension ||
		s.Height > maxDimension || widthBytes > maxDimension {
		return nil, &EncodingError{Width: s.Width, Height: s.Height}
	}

	data := make([]byte, widthBytes*s.Height)
	for y := 0; y < s.Height; y++ {
		row := s.Pix[y*s.Width : (y+1)*s.Width]
		for x, v := range row {
			if v == black {
				// position in data is: line_start + x / 8
				// then 8 bits per byte
				data[y*widthBytes+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}

	return &Raster{
		Width:      s.Width,
		Height:     s.Height,
		WidthBytes: widthBytes,
		Data:       data,
	}, nil
}

// Header returns the GS v 0 header: 1D 76 30 m xL xH yL yH, with m = 0
// (normal density).
func (r *Raster) Header() []byte {
	header := []byte{0x1d, 0x76, 0x30, 0}
	header = append(header, util.Uint16LowHigh(uint16(r.WidthBytes))...)
	header = append(header, util.Uint16LowHigh(uint16(r.Height))...)
	return header
}

// BitImage returns header and payload as one GS v 0 block.
func (r *Raster) BitImage() []byte {
	out := make([]byte, 0, 8+len(r.Data))
	out = append(out, r.Header()...)
	return append(out, r.Data...)
}

// Graphics returns the raster as GS 8 L store commands of at most gs8lMaxY
// rows, each followed by a GS ( L print command.
func (r *Raster) Graphics() []byte {
	var buf bytes.Buffer
	for l := 0; l < r.Height; {
		lines := gs8lMaxY
		if lines > r.Height-l {
			lines = r.Height - l
		}

		// p1 p2 p3 p4; a band of at most 831 rows of 0xffff bytes fits
		p, _ := util.IntLowHigh(10+lines*r.WidthBytes, 4)

		buf.Write([]byte{0x1d, 0x38, 0x4c}) // GS 8 L, store the graphics data in the print buffer (raster format)
		buf.Write(p)
		buf.Write([]byte{
			0x30, 0x70, 0x30, // function 112
			0x01, 0x01, // bx, by -- zoom
			0x31, // c -- single-color printing model
		})
		buf.Write(util.Uint16LowHigh(uint16(r.Width))) // xl, xh -- number of dots in the horizontal direction
		buf.Write(util.Uint16LowHigh(uint16(lines)))   // yl, yh -- number of dots in the vertical direction
		buf.Write(r.Data[l*r.WidthBytes : (l+lines)*r.WidthBytes])
		buf.Write([]byte{
			0x1d, 0x28, 0x4c, 0x02, 0x00, 0x30,
			0x32, // Fn 50
		})

		l += lines
	}
	return buf.Bytes()
}

// Bytes returns the raster encoded for mode.
func (r *Raster) Bytes(mode Mode) []byte {
	if mode == Graphics {
		return r.Graphics()
	}
	return r.BitImage()
}
