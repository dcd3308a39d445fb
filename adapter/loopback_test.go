package adapter

import (
	"reflect"
	"testing"
	"time"

	"github.com/ecudiag/fwscan/can"
)

func TestLoopbackDelivery(t *testing.T) {
	a, b := NewLoopback()
	defer a.Close()
	defer b.Close()

	f := can.NewFrame(0x7E0, []byte{0x02, 0x3E, 0x00})
	if err := a.Send(f); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case got := <-b.Frames():
		if !reflect.DeepEqual(got, f) {
			t.Errorf("got %+v, want %+v", got, f)
		}
	case <-time.After(time.Second):
		t.Fatal("frame never arrived at the peer")
	}

	// traffic flows both ways
	g := can.NewFrame(0x7E8, []byte{0x02, 0x7E, 0x00})
	if err := b.Send(g); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case got := <-a.Frames():
		if !reflect.DeepEqual(got, g) {
			t.Errorf("got %+v, want %+v", got, g)
		}
	case <-time.After(time.Second):
		t.Fatal("frame never arrived at the peer")
	}
}

func TestLoopbackClose(t *testing.T) {
	a, b := NewLoopback()
	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	// a frame sent to a closed peer is silently dropped
	if err := a.Send(can.NewFrame(0x100, []byte{0x00})); err != nil {
		t.Errorf("Send to closed peer: %v", err)
	}
	select {
	case _, ok := <-b.Frames():
		if ok {
			t.Error("expected the frame channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("frame channel not closed after Close")
	}
	a.Close()
}
