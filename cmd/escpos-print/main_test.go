package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunTemplate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "doc.bin")
	args := []string{"--template", "shopping", "--items", "milk,eggs", "--out", out}
	if err := run(context.Background(), args, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte{0x1b, 0x40}) {
		t.Errorf("document does not start with ESC @: % x", got[:2])
	}
	if !bytes.HasSuffix(got, []byte{0x1d, 0x56, 0x00}) {
		t.Error("document does not end with GS V 0")
	}
	if !bytes.Contains(got, []byte("[ ] 2. eggs")) {
		t.Error("items missing")
	}
}

func TestRunImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(0, 0, color.Gray{})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "doc.bin")
	if err := run(context.Background(), []string{"--image", src, "--out", out, "--raster", "bit-image"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	// 64x32 is upscaled to 256x128: 32 bytes per row
	if !bytes.Contains(got, []byte{0x1d, 0x76, 0x30, 0x00, 32, 0, 128, 0}) {
		t.Error("raster header missing")
	}
	if !bytes.Contains(got, []byte("256 x 128 pixels")) {
		t.Error("size annotation missing")
	}
}

func TestRunQRCode(t *testing.T) {
	out := filepath.Join(t.TempDir(), "qr.bin")
	args := []string{"--template", "qrcode", "--text", "https://example.com", "--out", out}
	if err := run(context.Background(), args, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(got, []byte("QR CODE")) || !bytes.Contains(got, []byte("https://example.com\n")) {
		t.Error("banner or caption missing")
	}
	if !bytes.Contains(got, []byte{0x1d, 0x76, 0x30, 0x00, 19, 0, 150, 0}) {
		t.Error("raster header missing")
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		name string
		args []string
		want string
	}{
		{name: "no job", args: nil, want: "exactly one of"},
		{name: "both jobs", args: []string{"--image", "a.png", "--template", "quote"}, want: "exactly one of"},
		{name: "empty qrcode", args: []string{"--template", "qrcode", "--out", filepath.Join(dir, "x")}, want: "no text"},
		{name: "unknown template", args: []string{"--template", "poem", "--out", filepath.Join(dir, "x")}, want: "unknown template"},
		{name: "bad dither", args: []string{"--image", garbage, "--dither", "sparkle", "--out", filepath.Join(dir, "x")}, want: "sparkle"},
		{name: "undecodable image", args: []string{"--image", garbage, "--out", filepath.Join(dir, "x")}, want: "decode"},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := run(context.Background(), test.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Errorf("run(%q): got %v, want an error containing %q", test.args, err, test.want)
			}
		})
	}
}
