package fingerprint

import (
	"context"
	"time"

	"github.com/ecudiag/fwscan/can"
	"github.com/ecudiag/fwscan/protocols/isotp"
	"github.com/pkg/errors"
)

type isotpTransport struct {
	device can.Device
}

// NewIsoTpTransport wraps a CAN device in the ISO-TP parallel query,
// deriving response identifiers from the addressing conventions the
// dialects use.
func NewIsoTpTransport(d can.Device) Transport {
	return &isotpTransport{device: d}
}

func (t *isotpTransport) Query(ctx context.Context, addrs []Addr, requests [][]byte,
	responsePrefixes [][]byte, timeout time.Duration) (map[Addr][]byte, error) {

	eps := make([]isotp.Endpoint, 0, len(addrs))
	byEndpoint := make(map[isotp.Endpoint]Addr, len(addrs))
	for _, addr := range addrs {
		sub := addr.SubAddress
		if sub == NoSubAddress {
			sub = isotp.NoSubAddress
		}
		ep, err := isotp.NewEndpoint(addr.Address, sub)
		if err != nil {
			return nil, errors.Wrapf(err, "address %s", addr)
		}
		eps = append(eps, ep)
		byEndpoint[ep] = addr
	}

	payloads, err := isotp.Query(ctx, t.device, eps, requests, responsePrefixes, timeout)
	if err != nil {
		return nil, err
	}

	versions := make(map[Addr][]byte, len(payloads))
	for ep, payload := range payloads {
		versions[byEndpoint[ep]] = payload
	}
	return versions, nil
}
