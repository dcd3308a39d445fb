package adapter

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ecudiag/fwscan/can"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
)

const slcanCR = 0x0D

// SLCAN talks the Lawicel ASCII protocol to CANable/CANUSB style adapters
// over a serial port.
type SLCAN struct {
	cfg    *Config
	port   serial.Port
	sendCh chan can.Frame
	recvCh chan can.Frame
	errCh  chan error

	g         *errgroup.Group
	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    bool
}

var slcanBitrates = map[float64]string{
	10.0:   "S0",
	20.0:   "S1",
	50.0:   "S2",
	100.0:  "S3",
	125.0:  "S4",
	250.0:  "S5",
	500.0:  "S6",
	800.0:  "S7",
	1000.0: "S8",
}

// NewSLCAN opens the port, configures the bus speed and starts the send and
// receive managers.
func NewSLCAN(ctx context.Context, cfg *Config) (can.Device, error) {
	speed, ok := slcanBitrates[cfg.BitRate]
	if !ok {
		return nil, errors.Errorf("unsupported CAN bitrate: %g", cfg.BitRate)
	}

	mode := &serial.Mode{
		BaudRate: cfg.PortBaudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "opening serial port %q", cfg.Port)
	}
	if err := p.SetReadTimeout(3 * time.Millisecond); err != nil {
		p.Close()
		return nil, errors.Wrap(err, "setting serial port read timeout")
	}
	p.ResetOutputBuffer()
	p.ResetInputBuffer()

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	sl := &SLCAN{
		cfg:    cfg,
		port:   p,
		sendCh: make(chan can.Frame, 16),
		recvCh: make(chan can.Frame, 32),
		errCh:  make(chan error, 1),
		g:      g,
		cancel: cancel,
	}

	p.Write([]byte("C\r")) // close a possibly stale channel first
	p.Write([]byte(speed + "\r"))
	time.Sleep(10 * time.Millisecond)
	p.Write([]byte("O\r"))

	g.Go(func() error { return sl.sendManager(ctx) })
	g.Go(func() error { return sl.recvManager(ctx) })
	go func() {
		if err := g.Wait(); err != nil && !sl.closed {
			select {
			case sl.errCh <- err:
			default:
			}
		}
	}()

	return sl, nil
}

func (sl *SLCAN) Send(f can.Frame) error {
	select {
	case sl.sendCh <- f:
		return nil
	default:
		return errors.New("slcan: send queue full")
	}
}

func (sl *SLCAN) Frames() <-chan can.Frame {
	return sl.recvCh
}

func (sl *SLCAN) Err() <-chan error {
	return sl.errCh
}

func (sl *SLCAN) Close() error {
	var err error
	sl.closeOnce.Do(func() {
		sl.closed = true
		sl.cancel()
		time.Sleep(5 * time.Millisecond)
		sl.port.Write([]byte("C\r"))
		time.Sleep(5 * time.Millisecond)
		err = sl.port.Close()
	})
	return err
}

func (sl *SLCAN) sendManager(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-sl.sendCh:
			if _, err := sl.port.Write(encodeSLCAN(f)); err != nil {
				return errors.Wrap(err, "writing to serial port")
			}
		}
	}
}

func (sl *SLCAN) recvManager(ctx context.Context) error {
	buf := make([]byte, 0, 1024)
	readBuf := make([]byte, 16)
	for ctx.Err() == nil {
		n, err := sl.port.Read(readBuf)
		if err != nil {
			if sl.closed {
				return nil
			}
			return errors.Wrap(err, "reading from serial port")
		}
		if n == 0 {
			continue
		}
		buf = sl.parse(ctx, append(buf, readBuf[:n]...))
	}
	return nil
}

// parse consumes completed CR-terminated SLCAN lines from buf and returns
// the remainder.
func (sl *SLCAN) parse(ctx context.Context, buf []byte) []byte {
	for {
		idx := -1
		for i, b := range buf {
			if b == slcanCR || b == 0x07 { // bell terminates an error reply
				idx = i
				break
			}
		}
		if idx < 0 {
			return buf
		}
		line := buf[:idx]
		buf = buf[idx+1:]
		f, err := decodeSLCAN(line)
		if err != nil {
			continue // status replies and garbage are not frames
		}
		select {
		case sl.recvCh <- f:
		case <-ctx.Done():
			return buf
		default:
			// receiver not keeping up, drop the frame
		}
	}
}

func encodeSLCAN(f can.Frame) []byte {
	if f.Extended {
		return []byte(fmt.Sprintf("T%08X%d%X\r", f.ID, len(f.Data), f.Data))
	}
	return []byte(fmt.Sprintf("t%03X%d%X\r", f.ID, len(f.Data), f.Data))
}

func decodeSLCAN(line []byte) (can.Frame, error) {
	if len(line) == 0 {
		return can.Frame{}, errors.New("empty line")
	}
	var idLen int
	var extended bool
	switch line[0] {
	case 't':
		idLen = 3
	case 'T':
		idLen = 8
		extended = true
	default:
		return can.Frame{}, errors.Errorf("not a frame line: %q", line)
	}
	if len(line) < 1+idLen+1 {
		return can.Frame{}, errors.Errorf("short frame line: %q", line)
	}
	id, err := strconv.ParseUint(string(line[1:1+idLen]), 16, 32)
	if err != nil {
		return can.Frame{}, errors.Wrap(err, "parsing identifier")
	}
	dlc, err := strconv.Atoi(string(line[1+idLen : 1+idLen+1]))
	if err != nil || dlc > 8 {
		return can.Frame{}, errors.Errorf("bad DLC in frame line: %q", line)
	}
	hexData := line[1+idLen+1:]
	if len(hexData) < dlc*2 {
		return can.Frame{}, errors.Errorf("truncated frame line: %q", line)
	}
	data, err := hex.DecodeString(string(hexData[:dlc*2]))
	if err != nil {
		return can.Frame{}, errors.Wrap(err, "parsing frame data")
	}
	return can.Frame{ID: uint32(id), Data: data, Extended: extended}, nil
}
