package adapter

import (
	"sync"

	"github.com/ecudiag/fwscan/can"
)

// Loopback is one end of an in-memory bus. Frames sent on one end come out
// of the other end's Frames channel. Used in tests and demos where no
// hardware is attached.
type Loopback struct {
	peer      *Loopback
	recvCh    chan can.Frame
	errCh     chan error
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// NewLoopback returns two connected bus endpoints.
func NewLoopback() (*Loopback, *Loopback) {
	a := &Loopback{recvCh: make(chan can.Frame, 256), errCh: make(chan error, 1)}
	b := &Loopback{recvCh: make(chan can.Frame, 256), errCh: make(chan error, 1)}
	a.peer = b
	b.peer = a
	return a, b
}

func (l *Loopback) Send(f can.Frame) error {
	l.peer.mu.Lock()
	defer l.peer.mu.Unlock()
	if l.peer.closed {
		return nil // nobody listening, same as an unacknowledged frame
	}
	select {
	case l.peer.recvCh <- f:
	default:
	}
	return nil
}

func (l *Loopback) Frames() <-chan can.Frame {
	return l.recvCh
}

func (l *Loopback) Err() <-chan error {
	return l.errCh
}

func (l *Loopback) Close() error {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.recvCh)
		l.mu.Unlock()
	})
	return nil
}
