// Command escpos-print renders an image or a text template as ESC/POS and
// sends it to a thermal printer, or writes the bytes to a file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-raster/config"
	imgInternal "github.com/AlexStarov/escpos-raster/image"
	logInternal "github.com/AlexStarov/escpos-raster/log"
	"github.com/AlexStarov/escpos-raster/printer"
)

// options are the flags that describe the job rather than the printer.
type options struct {
	configPath string
	image      string
	template   string
	text       string
	title      string
	from       string
	icon       string
	items      []string
	out        string
}

func newFlagSet(o *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("escpos-print", pflag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&o.image, "image", "", "image file to print")
	fs.StringVar(&o.template, "template", "", "text template: reminder, message, notification, quote, shopping, qrcode")
	fs.StringVar(&o.text, "text", "", "template text, or the qrcode contents")
	fs.StringVar(&o.title, "title", "", "notification title")
	fs.StringVar(&o.from, "from", "", "message sender or quote author")
	fs.StringVar(&o.icon, "icon", "", "notification icon line")
	fs.StringSliceVar(&o.items, "items", nil, "shopping list items, comma separated")
	fs.StringVar(&o.out, "out", "", "write the document to this file instead of printing")

	// bound into the configuration
	fs.Int("max-width", 0, "printable width in dots")
	fs.Int("max-height", 0, "maximum image height in dots")
	fs.Int("min-width", 0, "upscale images narrower than this")
	fs.Float64("gamma", 0, "tone curve exponent")
	fs.String("dither", "", "dithering method")
	fs.String("filter", "", "resampling filter")
	fs.String("raster", "", "raster mode: bit-image or graphics")
	fs.String("encoding", "", "text code page")
	fs.String("transport", "", "transport: raw, lpd, usb, serial, file, spooler")
	fs.String("address", "", "printer host:port for raw and lpd")
	fs.String("log-level", "", "debug, info, warn or error")
	return fs
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "escpos-print: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet(&o)
	fs.SetOutput(stdout)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (o.image == "") == (o.template == "") {
		return errors.New("exactly one of --image and --template is required")
	}

	cfg, err := config.Load(o.configPath, fs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logInternal.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	converter, err := imgInternal.NewConverter(cfg.Printer, logger)
	if err != nil {
		return err
	}
	assembler, err := printer.NewAssembler(cfg.Printer)
	if err != nil {
		return err
	}
	assembler.Converter = converter

	doc, err := buildDocument(o, assembler)
	if err != nil {
		return err
	}
	if err := doc.Err(); err != nil {
		return err
	}

	if o.out != "" {
		if err := os.WriteFile(o.out, doc.Bytes(), 0644); err != nil {
			return err
		}
		logger.Info("document written", zap.String("path", o.out), zap.Int("bytes", doc.Len()))
		return nil
	}

	t, err := printer.NewTransport(cfg.Transport, logger)
	if err != nil {
		return fmt.Errorf("failed to open transport: %w", err)
	}
	p := printer.NewPrinter(t, logger)
	defer p.CloseConnection()

	timeout := cfg.Transport.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Print(ctx, doc)
}

func buildDocument(o options, a *printer.Assembler) (*printer.Document, error) {
	if o.template != "" {
		return a.Render(printer.TextJob{
			Template: o.template,
			Title:    o.title,
			Text:     o.text,
			From:     o.from,
			Icon:     o.icon,
			Items:    o.items,
		})
	}

	f, err := os.Open(o.image)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := a.Converter.Convert(f)
	if err != nil {
		return nil, err
	}
	return a.Image(r), nil
}
