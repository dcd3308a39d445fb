package adapter

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/ecudiag/fwscan/can"
)

func TestEncodeSLCAN(t *testing.T) {
	tests := []struct {
		name  string
		frame can.Frame
		want  string
	}{
		{
			"standard",
			can.NewFrame(0x7E0, []byte{0x02, 0x3E, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}),
			"t7E0" + "8" + "023E000000000000" + "\r",
		},
		{
			"extended",
			can.NewFrame(0x18DAB0F1, []byte{0x03, 0x22, 0xF1, 0x81, 0x00, 0x00, 0x00, 0x00}),
			"T18DAB0F1" + "8" + "0322F18100000000" + "\r",
		},
		{
			"short data",
			can.NewFrame(0x123, []byte{0xAB}),
			"t123" + "1" + "AB" + "\r",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := encodeSLCAN(tt.frame); !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeSLCAN(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    can.Frame
		wantErr bool
	}{
		{"truncated", "t7E88062F181DEADBEEF", can.Frame{}, true},
		{
			"roundtrip standard",
			"t7E88023E000000000000",
			can.Frame{ID: 0x7E8, Data: []byte{0x02, 0x3E, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
			false,
		},
		{
			"roundtrip extended",
			"T18DAF1B080362F1810000000000",
			can.Frame{ID: 0x18DAF1B0, Data: []byte{0x03, 0x62, 0xF1, 0x81, 0x00, 0x00, 0x00, 0x00}, Extended: true},
			false,
		},
		{"status reply", "z", can.Frame{}, true},
		{"empty", "", can.Frame{}, true},
		{"short", "t7E", can.Frame{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeSLCAN([]byte(tt.line))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	frames := []can.Frame{
		can.NewFrame(0x750, []byte{0x0F, 0x02, 0x1A, 0x88, 0x00, 0x00, 0x00, 0x00}),
		can.NewFrame(0x18DA10F1, []byte{0x02, 0x09, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00}),
	}
	for _, f := range frames {
		line := encodeSLCAN(f)
		got, err := decodeSLCAN(bytes.TrimSuffix(line, []byte{slcanCR}))
		if err != nil {
			t.Fatalf("decode(%q): %v", line, err)
		}
		if !reflect.DeepEqual(got, f) {
			t.Errorf("roundtrip %q: got %+v, want %+v", line, got, f)
		}
	}
}
