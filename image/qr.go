package image

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// Side of the rendered code before it is fitted to the bounds
	qrSourceSize = 300

	// QR codes print narrower than photos
	qrMaxWidth = 256
)

// ErrEmptyQRText is returned when there is nothing to encode.
var ErrEmptyQRText = errors.New("qr code: no text to encode")

// QRCode encodes text as a QR code and converts it like any other image,
// capped at 256 dots wide.
func (c *Converter) QRCode(text string) (*Raster, error) {
	if text == "" {
		return nil, ErrEmptyQRText
	}
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	qc := *c
	qc.Bounds = c.bounds()
	if qc.Bounds.MaxWidth > qrMaxWidth {
		qc.Bounds.MaxWidth = qrMaxWidth
	}
	if qc.Bounds.MinWidth > qc.Bounds.MaxWidth {
		qc.Bounds.MinWidth = qc.Bounds.MaxWidth
	}
	return qc.ConvertImage(q.Image(qrSourceSize))
}
