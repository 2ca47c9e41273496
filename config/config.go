package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete configuration of a print run.
type Config struct {
	Printer   PrinterConfig   `mapstructure:"printer"`
	Transport TransportConfig `mapstructure:"transport"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// PrinterConfig holds the printable bounds and the tuning of the image
// pipeline and the document layouts.
type PrinterConfig struct {
	MaxWidthDots    int     `mapstructure:"max_width_dots"`
	MaxHeightSafety int     `mapstructure:"max_height_safety"`
	MinUpscaleWidth int     `mapstructure:"min_upscale_width"`
	Gamma           float64 `mapstructure:"gamma"`
	Threshold       int     `mapstructure:"threshold"`
	Dither          string  `mapstructure:"dither"`
	Filter          string  `mapstructure:"filter"`
	RasterMode      string  `mapstructure:"raster_mode"`
	FeedLines       int     `mapstructure:"feed_lines"`
	BoxedColumns    int     `mapstructure:"boxed_columns"`
	ProseColumns    int     `mapstructure:"prose_columns"`
	Encoding        string  `mapstructure:"encoding"`
}

// TransportConfig selects and configures the link to the printer.
type TransportConfig struct {
	Type     string        `mapstructure:"type"`
	Address  string        `mapstructure:"address"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LPDQueue string        `mapstructure:"lpd_queue"`
	Path     string        `mapstructure:"path"`
	Spooler  string        `mapstructure:"spooler"`
	USB      USBConfig     `mapstructure:"usb"`
	Serial   SerialConfig  `mapstructure:"serial"`
}

// USBConfig identifies a USB printer.
type USBConfig struct {
	VendorID  uint16 `mapstructure:"vendor_id"`
	ProductID uint16 `mapstructure:"product_id"`
	Endpoint  int    `mapstructure:"endpoint"`
}

// SerialConfig represents serial port configuration
type SerialConfig struct {
	Port     string `mapstructure:"port"`
	BaudRate int    `mapstructure:"baud_rate"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

const envPrefix = "ESCPOS"

// Load reads configuration from path (optional), the environment and flags.
// An empty path means defaults plus environment only.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, fmt.Errorf("unable to bind flags: %w", err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	c, err := Load("", nil)
	if err != nil {
		// defaults always validate
		panic(err)
	}
	return c
}

// flagKeys maps CLI flag names onto configuration keys.
var flagKeys = map[string]string{
	"max-width":  "printer.max_width_dots",
	"max-height": "printer.max_height_safety",
	"min-width":  "printer.min_upscale_width",
	"gamma":      "printer.gamma",
	"dither":     "printer.dither",
	"filter":     "printer.filter",
	"raster":     "printer.raster_mode",
	"encoding":   "printer.encoding",
	"transport":  "transport.type",
	"address":    "transport.address",
	"log-level":  "logging.level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Printer defaults, sized for a 58mm/80mm head at 203 dpi
	v.SetDefault("printer.max_width_dots", 384)
	v.SetDefault("printer.max_height_safety", 150)
	v.SetDefault("printer.min_upscale_width", 256)
	v.SetDefault("printer.gamma", 0.7)
	v.SetDefault("printer.threshold", 128)
	v.SetDefault("printer.dither", "atkinson")
	v.SetDefault("printer.filter", "lanczos3")
	v.SetDefault("printer.raster_mode", "bit-image")
	v.SetDefault("printer.feed_lines", 5)
	v.SetDefault("printer.boxed_columns", 28)
	v.SetDefault("printer.prose_columns", 32)
	v.SetDefault("printer.encoding", "")

	// Transport defaults
	v.SetDefault("transport.type", "raw")
	v.SetDefault("transport.address", "localhost:9100")
	v.SetDefault("transport.timeout", "10s")
	v.SetDefault("transport.lpd_queue", "lp")
	v.SetDefault("transport.usb.endpoint", 1)
	v.SetDefault("transport.serial.baud_rate", 9600)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

var (
	validTransports = []string{"raw", "lpd", "usb", "serial", "file", "spooler"}
	validLevels     = []string{"debug", "info", "warn", "error"}
	validRaster     = []string{"bit-image", "graphics"}
)

func validate(config *Config) error {
	p := config.Printer
	if p.MaxWidthDots <= 0 || p.MaxHeightSafety <= 0 || p.MinUpscaleWidth <= 0 {
		return errors.New("printer bounds must be positive")
	}
	if p.MaxWidthDots > 0xffff || p.MaxHeightSafety > 0xffff {
		return errors.New("printer bounds must fit in 16 bits")
	}
	if p.MinUpscaleWidth > p.MaxWidthDots {
		return fmt.Errorf("printer.min_upscale_width (%d) exceeds printer.max_width_dots (%d)",
			p.MinUpscaleWidth, p.MaxWidthDots)
	}
	if p.Gamma <= 0 {
		return fmt.Errorf("printer.gamma must be positive, got %v", p.Gamma)
	}
	if p.Threshold < 1 || p.Threshold > 255 {
		return fmt.Errorf("printer.threshold must be in [1,255], got %d", p.Threshold)
	}
	if p.BoxedColumns <= 0 || p.ProseColumns <= 0 {
		return errors.New("printer column counts must be positive")
	}
	if p.FeedLines < 0 {
		return errors.New("printer.feed_lines must not be negative")
	}
	if !oneOf(p.RasterMode, validRaster) {
		return fmt.Errorf("printer.raster_mode must be one of: %v", validRaster)
	}
	if !oneOf(config.Transport.Type, validTransports) {
		return fmt.Errorf("transport.type must be one of: %v", validTransports)
	}
	if !oneOf(config.Logging.Level, validLevels) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}
	return nil
}

func oneOf(s string, valid []string) bool {
	for _, v := range valid {
		if s == v {
			return true
		}
	}
	return false
}
