// Package adapter provides can.Device implementations for the supported
// bus interfaces.
package adapter

import (
	"context"
	"strings"

	"github.com/ecudiag/fwscan/can"
	"github.com/pkg/errors"
)

// Config carries the settings shared by the serial adapters.
type Config struct {
	// Port is the serial port name, e.g. /dev/ttyUSB0 or COM3.
	Port string
	// PortBaudrate is the serial link speed in bits/s.
	PortBaudrate int
	// BitRate is the CAN bus speed in kbit/s.
	BitRate float64
}

// NewDeviceFunc creates and opens a device from a config.
type NewDeviceFunc func(context.Context, *Config) (can.Device, error)

type Info struct {
	Name               string
	Description        string
	RequiresSerialPort bool
	New                NewDeviceFunc
}

var adapters = []Info{
	{
		Name:               "slcan",
		Description:        "Lawicel SLCAN compatible serial adapter (CANable, CANUSB, ...)",
		RequiresSerialPort: true,
		New:                NewSLCAN,
	},
}

// List returns the registered adapters.
func List() []Info {
	return adapters
}

// New opens the named adapter.
func New(ctx context.Context, name string, cfg *Config) (can.Device, error) {
	for _, a := range adapters {
		if strings.EqualFold(a.Name, name) {
			return a.New(ctx, cfg)
		}
	}
	return nil, errors.Errorf("unknown adapter %q", name)
}
