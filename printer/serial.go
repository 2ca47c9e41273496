package printer

import (
	"context"
	"fmt"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-raster/config"
	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// SerialTransport writes jobs to a printer on a serial port (COM3,
// /dev/ttyUSB0, /dev/cu.usbmodem*).
type SerialTransport struct {
	port   serial.Port
	logger *zap.Logger
}

// NewSerialTransport opens the configured port at 8N1.
func NewSerialTransport(c config.SerialConfig, logger *zap.Logger) (*SerialTransport, error) {
	logger = logInternal.OrNop(logger)

	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	if !contains(ports, c.Port) {
		logger.Warn("serial port not found", zap.String("port", c.Port), zap.Strings("available", ports))
		return nil, fmt.Errorf("serial port %s not found", c.Port)
	}

	baud := c.BaudRate
	if baud == 0 {
		baud = 9600
	}
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(c.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", c.Port, err)
	}
	logger.Info("serial port opened", zap.String("port", c.Port), zap.Int("baud_rate", baud))

	return &SerialTransport{port: port, logger: logger}, nil
}

func (s *SerialTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAll(s.port, data); err != nil {
		s.logger.Error("serial print job failed", zap.Error(err))
		return fmt.Errorf("serial: write: %w", err)
	}
	s.logger.Info("print job sent", zap.Int("bytes", len(data)))
	return nil
}

func (s *SerialTransport) Close() error {
	return s.port.Close()
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
