//go:build windows

package printer

import (
	"context"
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// SpoolerTransport submits each job as a RAW document to a Windows printer
// queue.
type SpoolerTransport struct {
	name   string
	logger *zap.Logger
}

// NewSpoolerTransport checks that the named printer can be opened.
func NewSpoolerTransport(printerName string, logger *zap.Logger) (*SpoolerTransport, error) {
	h, err := openPrinter(printerName)
	if err != nil {
		return nil, err
	}
	procClosePrinter.Call(uintptr(h))
	return &SpoolerTransport{name: printerName, logger: logInternal.OrNop(logger)}, nil
}

func (s *SpoolerTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	h, err := openPrinter(s.name)
	if err != nil {
		return err
	}
	defer procClosePrinter.Call(uintptr(h))

	// DOC_INFO_1
	docName, _ := windows.UTF16PtrFromString("ESC/POS RAW Document")
	dataType, _ := windows.UTF16PtrFromString("RAW")
	di := docInfo1{
		pDocName:    docName,
		pOutputFile: nil,
		pDatatype:   dataType,
	}

	r1, _, err := procStartDocPrinter.Call(uintptr(h), 1, uintptr(unsafe.Pointer(&di)))
	if r1 == 0 {
		return fmt.Errorf("StartDocPrinter failed: %w", err)
	}
	defer procEndDocPrinter.Call(uintptr(h))

	procStartPagePrinter.Call(uintptr(h))
	defer procEndPagePrinter.Call(uintptr(h))

	var written uint32
	r1, _, err = procWritePrinter.Call(
		uintptr(h),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&written)),
	)
	if r1 == 0 || int(written) != len(data) {
		s.logger.Error("spooler print job failed", zap.String("printer", s.name), zap.Error(err))
		return fmt.Errorf("WritePrinter to %q: wrote %d of %d bytes: %v", s.name, written, len(data), err)
	}
	s.logger.Info("print job sent", zap.String("printer", s.name), zap.Int("bytes", len(data)))
	return nil
}

func (s *SpoolerTransport) Close() error { return nil }

func openPrinter(name string) (windows.Handle, error) {
	var h windows.Handle
	pname, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	r1, _, err := procOpenPrinter.Call(
		uintptr(unsafe.Pointer(pname)),
		uintptr(unsafe.Pointer(&h)),
		0,
	)
	if r1 == 0 {
		return 0, fmt.Errorf("failed to open printer %q: %w", name, err)
	}
	return h, nil
}

// --- WinAPI binding ---
var (
	modwinspool          = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinter      = modwinspool.NewProc("OpenPrinterW")
	procClosePrinter     = modwinspool.NewProc("ClosePrinter")
	procStartDocPrinter  = modwinspool.NewProc("StartDocPrinterW")
	procEndDocPrinter    = modwinspool.NewProc("EndDocPrinter")
	procStartPagePrinter = modwinspool.NewProc("StartPagePrinter")
	procEndPagePrinter   = modwinspool.NewProc("EndPagePrinter")
	procWritePrinter     = modwinspool.NewProc("WritePrinter")
)

type docInfo1 struct {
	pDocName    *uint16
	pOutputFile *uint16
	pDatatype   *uint16
}
