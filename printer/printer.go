package printer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	imgInternal "github.com/AlexStarov/escpos-raster/image"
	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// ErrEmptyDocument is returned when there is nothing to print.
var ErrEmptyDocument = errors.New("empty document")

// Printer sends finished documents to one physical printer, one job at a
// time.
type Printer struct {
	t      Transport
	logger *zap.Logger

	sync.Mutex
}

// NewPrinter creates a printer that sends jobs through t.
func NewPrinter(t Transport, logger *zap.Logger) *Printer {
	return &Printer{
		t:      t,
		logger: logInternal.OrNop(logger),
	}
}

// NewPrinterConn creates a printer on an already open connection; see
// TransportFor.
func NewPrinterConn(w io.ReadWriter, logger *zap.Logger) *Printer {
	return NewPrinter(TransportFor(w), logger)
}

// Print sends doc as a single job. The document is complete before any byte
// reaches the transport; a document with an encoding error is not sent.
func (p *Printer) Print(ctx context.Context, doc *Document) error {
	if err := doc.Err(); err != nil {
		return err
	}
	return p.Send(ctx, doc.Bytes())
}

// Send sends raw ESC/POS bytes as a single job.
func (p *Printer) Send(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyDocument
	}

	p.Lock()
	defer p.Unlock()

	start := time.Now()
	err := p.t.Send(ctx, data)
	fields := []zap.Field{
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		p.logger.Error("print job failed", append(fields, zap.Error(err))...)
		return err
	}
	p.logger.Debug("print job completed", fields...)
	return nil
}

// PrintImage converts the image read from r and prints it with the image
// template. Nothing is sent if conversion fails.
func (p *Printer) PrintImage(ctx context.Context, r io.Reader, c *imgInternal.Converter, a *Assembler) error {
	raster, err := c.Convert(r)
	if err != nil {
		return err
	}
	return p.Print(ctx, a.Image(raster))
}

// CloseConnection closes the underlying transport.
func (p *Printer) CloseConnection() error {
	return p.t.Close()
}
