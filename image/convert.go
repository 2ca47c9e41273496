package image

import (
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-raster/config"
	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// Target receives finished rasters, e.g. a document being assembled.
type Target interface {
	Raster(r *Raster, mode Mode) error
}

// Converter turns source images into printable rasters. A Converter holds no
// per-image state and may be shared; every call owns its own sample buffer.
type Converter struct {
	Bounds Bounds

	// Tone curve exponent applied before dithering
	Gamma float64

	// The threshold between black and white dots, 0-255
	Threshold float64

	Method Method
	Filter Filter
	Logger *zap.Logger
}

// NewConverter builds a Converter from printer configuration.
func NewConverter(cfg config.PrinterConfig, logger *zap.Logger) (*Converter, error) {
	method, err := LookupMethod(cfg.Dither)
	if err != nil {
		return nil, err
	}
	filter, err := LookupFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	return &Converter{
		Bounds: Bounds{
			MaxWidth:  cfg.MaxWidthDots,
			MaxHeight: cfg.MaxHeightSafety,
			MinWidth:  cfg.MinUpscaleWidth,
		},
		Gamma:     cfg.Gamma,
		Threshold: float64(cfg.Threshold),
		Method:    method,
		Filter:    filter,
		Logger:    logger,
	}, nil
}

// Convert decodes r and converts the image. A corrupt source yields a
// *DecodeError.
func (c *Converter) Convert(r io.Reader) (*Raster, error) {
	img, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return c.ConvertImage(img)
}

// ConvertImage runs normalize, gamma, dither and encode on img.
func (c *Converter) ConvertImage(img image.Image) (*Raster, error) {
	log := logInternal.OrNop(c.Logger)
	sz := img.Bounds().Size()

	s := Normalize(img, c.bounds(), c.Filter)
	log.Debug("normalized image",
		zap.Int("source_width", sz.X),
		zap.Int("source_height", sz.Y),
		zap.Int("width", s.Width),
		zap.Int("height", s.Height),
	)

	ApplyGamma(s, c.gamma())
	c.method()(s, c.threshold())

	r, err := Encode(s)
	if err != nil {
		log.Error("raster encoding failed", zap.Error(err))
		return nil, err
	}
	log.Debug("raster encoded",
		zap.Int("width_bytes", r.WidthBytes),
		zap.Int("height", r.Height),
		zap.Int("payload", len(r.Data)),
	)
	return r, nil
}

// Print converts img and hands the raster to target.
func (c *Converter) Print(img image.Image, target Target, mode Mode) error {
	r, err := c.ConvertImage(img)
	if err != nil {
		return err
	}
	return target.Raster(r, mode)
}

func (c *Converter) bounds() Bounds {
	if c.Bounds == (Bounds{}) {
		return DefaultBounds
	}
	return c.Bounds
}

func (c *Converter) gamma() float64 {
	if c.Gamma <= 0 {
		return DefaultGamma
	}
	return c.Gamma
}

func (c *Converter) threshold() float64 {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

func (c *Converter) method() Method {
	if c.Method == nil {
		return Atkinson
	}
	return c.Method
}
