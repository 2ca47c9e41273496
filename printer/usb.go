package printer

import (
	"context"
	"fmt"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-raster/config"
	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// USBTransport writes jobs to the bulk OUT endpoint of a USB printer.
type USBTransport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface
	out  *gousb.OutEndpoint

	logger *zap.Logger
}

// NewUSBTransport claims the first interface of the printer with the
// configured vendor and product IDs.
func NewUSBTransport(c config.USBConfig, logger *zap.Logger) (*USBTransport, error) {
	ctx := gousb.NewContext()
	dev, err := ctx.OpenDeviceWithVIDPID(gousb.ID(c.VendorID), gousb.ID(c.ProductID))
	if err != nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: open %04x:%04x: %w", c.VendorID, c.ProductID, err)
	}
	if dev == nil {
		ctx.Close()
		return nil, fmt.Errorf("usb: printer %04x:%04x not found", c.VendorID, c.ProductID)
	}

	dev.SetAutoDetach(true)
	cfg, err := dev.Config(1)
	if err != nil {
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: config: %w", err)
	}

	intf, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: interface: %w", err)
	}

	endpoint := c.Endpoint
	if endpoint == 0 {
		endpoint = 1
	}
	out, err := intf.OutEndpoint(endpoint)
	if err != nil {
		intf.Close()
		cfg.Close()
		dev.Close()
		ctx.Close()
		return nil, fmt.Errorf("usb: endpoint %d: %w", endpoint, err)
	}

	return &USBTransport{
		ctx:    ctx,
		dev:    dev,
		cfg:    cfg,
		intf:   intf,
		out:    out,
		logger: logInternal.OrNop(logger),
	}, nil
}

func (u *USBTransport) Send(ctx context.Context, data []byte) error {
	sent := 0
	for sent < len(data) {
		n, err := u.out.WriteContext(ctx, data[sent:])
		if err != nil {
			u.logger.Error("usb print job failed", zap.Int("sent", sent), zap.Error(err))
			return fmt.Errorf("usb: write: %w", err)
		}
		sent += n
	}
	u.logger.Info("print job sent", zap.Int("bytes", len(data)))
	return nil
}

func (u *USBTransport) Close() error {
	if u.intf != nil {
		u.intf.Close()
	}
	if u.cfg != nil {
		u.cfg.Close()
	}
	if u.dev != nil {
		u.dev.Close()
	}
	if u.ctx != nil {
		u.ctx.Close()
	}
	return nil
}
