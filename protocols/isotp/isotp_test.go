package isotp_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ecudiag/fwscan/adapter"
	"github.com/ecudiag/fwscan/can"
	"github.com/ecudiag/fwscan/protocols/isotp"
)

// ecuSim emulates a single ECU on the far end of a loopback bus, speaking
// just enough ISO-TP to answer queries.
type ecuSim struct {
	dev    can.Device
	listen uint32
	reply  uint32
	sub    int // -1 when not subaddressed
	handle func(req []byte) [][]byte

	rxBuf  []byte
	rxSize int
	txBuf  []byte
	txSeq  byte
}

func (e *ecuSim) sendRaw(data []byte) {
	buf := make([]byte, 0, 8)
	if e.sub >= 0 {
		buf = append(buf, byte(e.sub))
	}
	buf = append(buf, data...)
	for len(buf) < 8 {
		buf = append(buf, 0x00)
	}
	e.dev.Send(can.NewFrame(e.reply, buf))
}

func (e *ecuSim) send(payload []byte) {
	max := 7
	if e.sub >= 0 {
		max = 6
	}
	if len(payload) <= max {
		e.sendRaw(append([]byte{byte(len(payload))}, payload...))
		return
	}
	ff := append([]byte{0x10 | byte(len(payload)>>8), byte(len(payload))}, payload[:max-1]...)
	e.txBuf = payload[max-1:]
	e.txSeq = 1
	e.sendRaw(ff)
}

func (e *ecuSim) flush() {
	max := 7
	if e.sub >= 0 {
		max = 6
	}
	for len(e.txBuf) > 0 {
		n := max
		if n > len(e.txBuf) {
			n = len(e.txBuf)
		}
		e.sendRaw(append([]byte{0x20 | e.txSeq&0x0F}, e.txBuf[:n]...))
		e.txBuf = e.txBuf[n:]
		e.txSeq++
	}
}

func (e *ecuSim) respond(req []byte) {
	for _, p := range e.handle(req) {
		e.send(p)
	}
}

func (e *ecuSim) run() {
	for f := range e.dev.Frames() {
		if f.ID != e.listen {
			continue
		}
		data := f.Data
		if e.sub >= 0 {
			if len(data) == 0 || data[0] != byte(e.sub) {
				continue
			}
			data = data[1:]
		}
		switch data[0] >> 4 {
		case 0x0:
			n := int(data[0] & 0x0F)
			e.respond(data[1 : 1+n])
		case 0x1:
			e.rxSize = int(data[0]&0x0F)<<8 | int(data[1])
			e.rxBuf = append([]byte(nil), data[2:]...)
			e.sendRaw([]byte{0x30, 0x00, 0x00})
		case 0x2:
			e.rxBuf = append(e.rxBuf, data[1:]...)
			if len(e.rxBuf) >= e.rxSize {
				e.respond(e.rxBuf[:e.rxSize])
			}
		case 0x3:
			e.flush()
		}
	}
}

func startSim(t *testing.T, listen uint32, sub int, handle func(req []byte) [][]byte) can.Device {
	t.Helper()
	tester, ecu := adapter.NewLoopback()
	t.Cleanup(func() {
		tester.Close()
		ecu.Close()
	})

	reply, err := isotp.ResponseID(listen)
	if err != nil {
		t.Fatalf("ResponseID(0x%X): %v", listen, err)
	}
	sim := &ecuSim{dev: ecu, listen: listen, reply: reply, sub: sub, handle: handle}
	go sim.run()
	return tester
}

func TestResponseID(t *testing.T) {
	tests := []struct {
		tx      uint32
		want    uint32
		wantErr bool
	}{
		{0x7DF, 0x7E8, false},
		{0x7E0, 0x7E8, false},
		{0x700, 0x708, false},
		{0x750, 0x758, false},
		{0x18DA10F1, 0x18DAF110, false},
		{0x18DAB0F1, 0x18DAF1B0, false},
		{0x12345678, 0, true},
	}
	for _, tt := range tests {
		got, err := isotp.ResponseID(tt.tx)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResponseID(0x%X) error = %v, wantErr %v", tt.tx, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResponseID(0x%X) = 0x%X, want 0x%X", tt.tx, got, tt.want)
		}
	}
}

func TestQuerySingleFrame(t *testing.T) {
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		if bytes.Equal(req, []byte{0x22, 0xF1, 0x81}) {
			return [][]byte{{0x62, 0xF1, 0x81, 'A', 'B'}}
		}
		return nil
	})

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{{0x22, 0xF1, 0x81}}, [][]byte{{0x62, 0xF1, 0x81}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(got[ep], []byte("AB")) {
		t.Errorf("payload = %q, want AB", got[ep])
	}
}

func TestQueryMultiFrameResponse(t *testing.T) {
	version := []byte("\x018965B4208200000000000000")
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		return [][]byte{append([]byte{0x62, 0xF1, 0x81}, version...)}
	})

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{{0x22, 0xF1, 0x81}}, [][]byte{{0x62, 0xF1, 0x81}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(got[ep], version) {
		t.Errorf("payload = % X, want % X", got[ep], version)
	}
}

func TestQueryMultiFrameRequest(t *testing.T) {
	// the nine-byte multi-identifier read doesn't fit a single frame, so the
	// request itself needs first/consecutive framing
	request := []byte{0x22, 0xF1, 0x87, 0xF1, 0x81, 0xF1, 0x00, 0xF1, 0xA0}
	var seen []byte
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		seen = append([]byte(nil), req...)
		return [][]byte{{0x62, 0x01}}
	})

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{request}, [][]byte{{0x62}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(seen, request) {
		t.Errorf("ECU saw request % X, want % X", seen, request)
	}
	if !bytes.Equal(got[ep], []byte{0x01}) {
		t.Errorf("payload = % X, want 01", got[ep])
	}
}

func TestQueryMultiStep(t *testing.T) {
	var order [][]byte
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		order = append(order, append([]byte(nil), req...))
		switch {
		case bytes.Equal(req, []byte{0x3E}):
			return [][]byte{{0x7E}}
		case bytes.Equal(req, []byte{0x1A, 0x88, 0x01}):
			return [][]byte{{0x5A, 0x88, 0x01, 0xDE, 0xAD}}
		}
		return nil
	})

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{{0x3E}, {0x1A, 0x88, 0x01}},
		[][]byte{{0x7E}, {0x5A, 0x88, 0x01}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(got[ep], []byte{0xDE, 0xAD}) {
		t.Errorf("payload = % X, want DE AD", got[ep])
	}
	if len(order) != 2 || !bytes.Equal(order[0], []byte{0x3E}) {
		t.Errorf("steps arrived out of order: % X", order)
	}
}

func TestQuerySubAddress(t *testing.T) {
	dev := startSim(t, 0x750, 0x6D, func(req []byte) [][]byte {
		return [][]byte{{0x5A, 0x88, 0x01, 0xCA, 0xFE}}
	})

	ep, _ := isotp.NewEndpoint(0x750, 0x6D)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{{0x1A, 0x88, 0x01}}, [][]byte{{0x5A, 0x88, 0x01}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(got[ep], []byte{0xCA, 0xFE}) {
		t.Errorf("payload = % X, want CA FE", got[ep])
	}
}

func TestQueryTimeoutReturnsPartialResults(t *testing.T) {
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		return [][]byte{{0x62, 0xF1, 0x81, 0x01}}
	})

	answering, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	silent, _ := isotp.NewEndpoint(0x7E1, isotp.NoSubAddress)

	start := time.Now()
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{answering, silent},
		[][]byte{{0x22, 0xF1, 0x81}}, [][]byte{{0x62, 0xF1, 0x81}}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Error("query returned before the timeout with an endpoint still pending")
	}
	if len(got) != 1 || !bytes.Equal(got[answering], []byte{0x01}) {
		t.Errorf("results = %v, want only the answering endpoint", got)
	}
}

func TestQueryNegativeResponse(t *testing.T) {
	calls := 0
	dev := startSim(t, 0x7E0, -1, func(req []byte) [][]byte {
		calls++
		if calls == 1 {
			return [][]byte{{0x7F, 0x22, 0x78}, {0x62, 0xF1, 0x81, 0x05}} // pending, then the answer
		}
		return [][]byte{{0x7F, 0x22, 0x11}}
	})

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	got, err := isotp.Query(context.Background(), dev, []isotp.Endpoint{ep},
		[][]byte{{0x22, 0xF1, 0x81}}, [][]byte{{0x62, 0xF1, 0x81}}, time.Second)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !bytes.Equal(got[ep], []byte{0x05}) {
		t.Errorf("payload = % X, want 05 (answer after response pending)", got[ep])
	}
}

func TestQueryRejectsMismatchedSteps(t *testing.T) {
	tester, _ := adapter.NewLoopback()
	defer tester.Close()

	ep, _ := isotp.NewEndpoint(0x7E0, isotp.NoSubAddress)
	_, err := isotp.Query(context.Background(), tester, []isotp.Endpoint{ep},
		[][]byte{{0x3E}, {0x22}}, [][]byte{{0x7E}}, time.Second)
	if err == nil {
		t.Fatal("expected an error for mismatched request/response step counts")
	}
}
