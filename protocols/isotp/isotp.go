// Package isotp implements the ISO 15765-2 transport used to exchange
// segmented diagnostic requests and responses over a CAN device, including
// the parallel multi-address query the fingerprint scanner is built on.
package isotp

import (
	"github.com/ecudiag/fwscan/can"
	"github.com/pkg/errors"
)

// NoSubAddress marks an endpoint on a shared (non-subaddressed) channel.
const NoSubAddress = -1

// FunctionalID is the 11-bit OBD-II functional request identifier.
const FunctionalID uint32 = 0x7DF

// Endpoint is one diagnostic peer: the identifier we transmit on, the
// identifier it answers on, and an optional extended-addressing byte that
// prefixes every frame payload.
type Endpoint struct {
	TxID       uint32
	RxID       uint32
	SubAddress int
}

// ResponseID derives the identifier an ECU answers on from the identifier it
// is addressed with: 0x7DF functional requests are answered on 0x7E8, 11-bit
// physical addressing answers on tx+8, and 29-bit normal fixed addressing
// 0x18DAttF1 answers on 0x18DAF1tt.
func ResponseID(txID uint32) (uint32, error) {
	switch {
	case txID == FunctionalID:
		return 0x7E8, nil
	case txID <= can.MaxStandardID:
		return txID + 8, nil
	case txID&0xFFFF00FF == 0x18DA00F1:
		return 0x18DAF100 | (txID>>8)&0xFF, nil
	}
	return 0, errors.Errorf("no known response identifier for 0x%X", txID)
}

// NewEndpoint builds an endpoint for a transmit identifier, deriving the
// receive identifier.
func NewEndpoint(txID uint32, subAddress int) (Endpoint, error) {
	rx, err := ResponseID(txID)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{TxID: txID, RxID: rx, SubAddress: subAddress}, nil
}

// Frame type nibbles.
const (
	frameSingle      byte = 0x0
	frameFirst       byte = 0x1
	frameConsecutive byte = 0x2
	frameFlowControl byte = 0x3
)

var (
	errSequence   = errors.New("consecutive frame out of sequence")
	errOverflow   = errors.New("payload exceeds 4095 bytes")
	errUnderrun   = errors.New("frame shorter than its PCI requires")
	errUnexpected = errors.New("unexpected frame type")
)

// message drives ISO-TP segmentation for a single endpoint.
type message struct {
	ep Endpoint
	d  can.Device

	// receive state
	rxBuf  []byte
	rxSize int
	rxSeq  byte
	rxOpen bool

	// transmit state, populated when a first frame is waiting for flow control
	txBuf []byte
	txSeq byte
}

func newMessage(d can.Device, ep Endpoint) *message {
	return &message{ep: ep, d: d}
}

// frameSize returns the usable payload bytes per frame for this endpoint.
func (m *message) frameSize() int {
	if m.ep.SubAddress != NoSubAddress {
		return 7
	}
	return 8
}

func (m *message) sendRaw(data []byte) error {
	buf := make([]byte, 0, 8)
	if m.ep.SubAddress != NoSubAddress {
		buf = append(buf, byte(m.ep.SubAddress))
	}
	buf = append(buf, data...)
	for len(buf) < 8 {
		buf = append(buf, 0x00)
	}
	return m.d.Send(can.NewFrame(m.ep.TxID, buf))
}

// send transmits a payload, segmenting into first/consecutive frames when it
// doesn't fit a single frame. Consecutive frames are held back until the
// peer's flow control arrives.
func (m *message) send(payload []byte) error {
	if len(payload) > 0xFFF {
		return errOverflow
	}
	m.rxBuf = nil
	m.rxOpen = false

	max := m.frameSize() - 1 // one byte of PCI
	if len(payload) <= max {
		return m.sendRaw(append([]byte{frameSingle<<4 | byte(len(payload))}, payload...))
	}

	first := make([]byte, 0, max+1)
	first = append(first, frameFirst<<4|byte(len(payload)>>8), byte(len(payload)))
	n := max - 1
	first = append(first, payload[:n]...)
	m.txBuf = payload[n:]
	m.txSeq = 1
	return m.sendRaw(first)
}

// flushTx sends the buffered consecutive frames after a continue-to-send
// flow control. Block size and STmin from the peer are not honored; the
// exchanges here are short enough that ECUs accept back-to-back frames.
func (m *message) flushTx() error {
	max := m.frameSize() - 1
	for len(m.txBuf) > 0 {
		n := max
		if n > len(m.txBuf) {
			n = len(m.txBuf)
		}
		cf := append([]byte{frameConsecutive<<4 | m.txSeq&0x0F}, m.txBuf[:n]...)
		if err := m.sendRaw(cf); err != nil {
			return err
		}
		m.txBuf = m.txBuf[n:]
		m.txSeq++
	}
	return nil
}

// recv consumes one frame addressed to this endpoint and returns the
// completed payload, if any.
func (m *message) recv(data []byte) ([]byte, bool, error) {
	if m.ep.SubAddress != NoSubAddress {
		if len(data) == 0 || data[0] != byte(m.ep.SubAddress) {
			return nil, false, nil // someone else's traffic on the shared identifier
		}
		data = data[1:]
	}
	if len(data) == 0 {
		return nil, false, errUnderrun
	}

	switch data[0] >> 4 {
	case frameSingle:
		n := int(data[0] & 0x0F)
		if n == 0 || n > len(data)-1 {
			return nil, false, errUnderrun
		}
		return data[1 : 1+n], true, nil

	case frameFirst:
		m.rxSize = int(data[0]&0x0F)<<8 | int(data[1])
		m.rxBuf = append([]byte(nil), data[2:]...)
		m.rxSeq = 1
		m.rxOpen = true
		if err := m.sendRaw([]byte{frameFlowControl << 4, 0x00, 0x00}); err != nil {
			return nil, false, err
		}
		return nil, false, nil

	case frameConsecutive:
		if !m.rxOpen {
			return nil, false, errUnexpected
		}
		if data[0]&0x0F != m.rxSeq&0x0F {
			return nil, false, errSequence
		}
		m.rxSeq++
		m.rxBuf = append(m.rxBuf, data[1:]...)
		if len(m.rxBuf) >= m.rxSize {
			m.rxOpen = false
			return m.rxBuf[:m.rxSize], true, nil
		}
		return nil, false, nil

	case frameFlowControl:
		return nil, false, m.flushTx()
	}
	return nil, false, errUnexpected
}
