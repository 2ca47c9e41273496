package image

import (
	"errors"
	"strings"
	"testing"
)

func TestQRCode(t *testing.T) {
	c := &Converter{}
	r, err := c.QRCode("https://example.com/some/long/path?with=query")
	if err != nil {
		t.Fatal(err)
	}
	// 300x300 is held to the 150 dot height limit
	if r.Width != 150 || r.Height != 150 {
		t.Fatalf("raster size %dx%d, want 150x150", r.Width, r.Height)
	}

	var black, white int
	for _, b := range r.Data {
		switch b {
		case 0xff:
			black++
		case 0x00:
			white++
		}
	}
	if black == 0 || white == 0 {
		t.Errorf("raster has %d black and %d white bytes, want both", black, white)
	}
}

func TestQRCodeWidthCap(t *testing.T) {
	c := &Converter{Bounds: Bounds{MaxWidth: 576, MaxHeight: 1000, MinWidth: 384}}
	r, err := c.QRCode("cap")
	if err != nil {
		t.Fatal(err)
	}
	if r.Width != qrMaxWidth || r.Height != qrMaxWidth {
		t.Errorf("raster size %dx%d, want %dx%d", r.Width, r.Height, qrMaxWidth, qrMaxWidth)
	}
	if c.Bounds.MaxWidth != 576 {
		t.Error("QRCode changed the converter's bounds")
	}
}

func TestQRCodeErrors(t *testing.T) {
	c := &Converter{}
	if _, err := c.QRCode(""); !errors.Is(err, ErrEmptyQRText) {
		t.Errorf("QRCode(\"\"): got %v, want ErrEmptyQRText", err)
	}
	// more than a version 40 code holds
	if _, err := c.QRCode(strings.Repeat("x", 8000)); err == nil {
		t.Error("QRCode(8000 bytes): expected error")
	}
}
