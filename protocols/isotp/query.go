package isotp

import (
	"bytes"
	"context"
	"time"

	"github.com/ecudiag/fwscan/can"
	"github.com/ecudiag/fwscan/protocols/uds"
	"github.com/pkg/errors"
)

// Query drives an ordered request/response sequence against many endpoints
// in one pass. Every endpoint gets the first request at once; as each
// response arrives and matches the step's expected prefix, that endpoint is
// advanced to the next request. Endpoints that answer the final step
// contribute their payload (prefix stripped) to the result.
//
// Endpoints that stay silent, answer with an unexpected payload, or reply
// with a negative response are dropped from the result; they are not errors.
// The returned error is reserved for device failure or context cancellation.
func Query(ctx context.Context, d can.Device, eps []Endpoint,
	requests [][]byte, responsePrefixes [][]byte, timeout time.Duration) (map[Endpoint][]byte, error) {

	if len(requests) != len(responsePrefixes) {
		return nil, errors.Errorf("query has %d requests but %d response prefixes",
			len(requests), len(responsePrefixes))
	}
	if len(requests) == 0 || len(eps) == 0 {
		return map[Endpoint][]byte{}, nil
	}

	type pending struct {
		msg  *message
		step int
	}
	msgs := make(map[uint32]*pending, len(eps))
	for _, ep := range eps {
		msgs[ep.RxID] = &pending{msg: newMessage(d, ep)}
	}

	for _, p := range msgs {
		if err := p.msg.send(requests[0]); err != nil {
			return nil, errors.Wrap(err, "sending initial request")
		}
	}

	results := make(map[Endpoint][]byte)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for len(msgs) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case err := <-d.Err():
			return nil, errors.Wrap(err, "bus device failed")
		case <-timer.C:
			return results, nil
		case f, ok := <-d.Frames():
			if !ok {
				return nil, errors.New("bus device closed")
			}
			p, want := msgs[f.ID]
			if !want {
				continue
			}
			payload, complete, err := p.msg.recv(f.Data)
			if err != nil {
				delete(msgs, f.ID) // this peer is confused, give up on it
				continue
			}
			if !complete {
				continue
			}

			if payload[0] == uds.ServiceNegativeResponse {
				if len(payload) >= 3 && payload[2] == uds.NRCResponsePending {
					continue // ECU asked for more time
				}
				delete(msgs, f.ID)
				continue
			}

			if !bytes.HasPrefix(payload, responsePrefixes[p.step]) {
				delete(msgs, f.ID)
				continue
			}

			if p.step == len(requests)-1 {
				results[p.msg.ep] = append([]byte(nil), payload[len(responsePrefixes[p.step]):]...)
				delete(msgs, f.ID)
				continue
			}

			p.step++
			if err := p.msg.send(requests[p.step]); err != nil {
				return nil, errors.Wrap(err, "sending followup request")
			}
		}
	}
	return results, nil
}
