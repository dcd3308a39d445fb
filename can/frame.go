// Package can holds the frame type and device contract shared by the
// adapters and the protocol layers.
package can

import (
	"fmt"
	"strings"
)

// MaxExtendedID is the highest valid 29-bit identifier. Identifiers above
// the 11-bit range are always sent as extended frames.
const (
	MaxStandardID uint32 = 0x7FF
	MaxExtendedID uint32 = 0x1FFFFFFF
)

// Frame is a single classical CAN frame.
type Frame struct {
	ID       uint32
	Data     []byte
	Extended bool
}

// NewFrame returns a frame for the given identifier, marking it extended
// when the identifier doesn't fit in 11 bits.
func NewFrame(id uint32, data []byte) Frame {
	return Frame{
		ID:       id,
		Data:     data,
		Extended: id > MaxStandardID,
	}
}

func (f Frame) String() string {
	var hexView strings.Builder
	for i, b := range f.Data {
		hexView.WriteString(fmt.Sprintf("%02X", b))
		if i != len(f.Data)-1 {
			hexView.WriteString(" ")
		}
	}
	if f.Extended {
		return fmt.Sprintf("0x%08X [%d] %s", f.ID, len(f.Data), hexView.String())
	}
	return fmt.Sprintf("0x%03X [%d] %s", f.ID, len(f.Data), hexView.String())
}

// Device is a connected CAN bus endpoint. Frames() delivers every frame seen
// on the bus; filtering is the consumer's job. A device error is fatal and
// delivered once on Err().
type Device interface {
	Send(Frame) error
	Frames() <-chan Frame
	Err() <-chan error
	Close() error
}
