package fingerprint_test

import (
	"bytes"
	"testing"

	"github.com/ecudiag/fwscan/fingerprint"
)

func TestRequestsAreWellFormed(t *testing.T) {
	if len(fingerprint.Requests) == 0 {
		t.Fatal("empty request catalog")
	}
	for i, r := range fingerprint.Requests {
		if len(r.Request) == 0 {
			t.Errorf("entry %d (%s): no request steps", i, r.Brand)
		}
		if len(r.Request) != len(r.Response) {
			t.Errorf("entry %d (%s): %d requests but %d response prefixes",
				i, r.Brand, len(r.Request), len(r.Response))
		}
	}
}

// The payloads are wire-exact; a response prefix for a UDS-style step is the
// request's service identifier plus 0x40 followed by the echoed parameters.
func TestRequestWirePayloads(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		step     int
		request  []byte
		response []byte
	}{
		{"hyundai short read", 0, 0, []byte{0x22, 0xF1, 0xA0}, []byte{0x62}},
		{"hyundai long read", 1, 0, []byte{0x22, 0xF1, 0x00}, []byte{0x62}},
		{"hyundai multi read", 2, 0,
			[]byte{0x22, 0xF1, 0x87, 0xF1, 0x81, 0xF1, 0x00, 0xF1, 0xA0}, []byte{0x62}},
		{"honda uds read", 3, 0, []byte{0x22, 0xF1, 0x81}, []byte{0x62, 0xF1, 0x81}},
		{"toyota short tester present", 4, 0, []byte{0x3E}, []byte{0x7E}},
		{"toyota legacy read", 4, 1, []byte{0x1A, 0x88, 0x01}, []byte{0x5A, 0x88, 0x01}},
		{"toyota obd read", 5, 1, []byte{0x09, 0x04}, []byte{0x49, 0x04}},
		{"toyota tester present", 6, 0, []byte{0x3E, 0x00}, []byte{0x7E, 0x00}},
		{"toyota default session", 6, 1,
			[]byte{0x10, 0x01}, []byte{0x50, 0x01, 0x00, 0x32, 0x01, 0xF4}},
		{"toyota extended session", 6, 2,
			[]byte{0x10, 0x03}, []byte{0x50, 0x03, 0x00, 0x32, 0x01, 0xF4}},
		{"toyota uds read", 6, 3, []byte{0x22, 0xF1, 0x81}, []byte{0x62, 0xF1, 0x81}},
		{"subaru read", 7, 1, []byte{0x22, 0xF1, 0x82}, []byte{0x62, 0xF1, 0x82}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fingerprint.Requests[tt.index]
			if !bytes.Equal(r.Request[tt.step], tt.request) {
				t.Errorf("request = % X, want % X", r.Request[tt.step], tt.request)
			}
			if !bytes.Equal(r.Response[tt.step], tt.response) {
				t.Errorf("response prefix = % X, want % X", r.Response[tt.step], tt.response)
			}
		})
	}
}
