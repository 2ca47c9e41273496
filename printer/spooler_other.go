//go:build !windows

package printer

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var errNoSpooler = errors.New("Windows spooler printing is only supported on Windows")

// SpoolerTransport is only available on Windows.
type SpoolerTransport struct{}

func NewSpoolerTransport(printerName string, logger *zap.Logger) (*SpoolerTransport, error) {
	return nil, errNoSpooler
}

func (s *SpoolerTransport) Send(ctx context.Context, data []byte) error { return errNoSpooler }
func (s *SpoolerTransport) Close() error                                  { return nil }
