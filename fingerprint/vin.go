package fingerprint

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/ecudiag/fwscan/protocols/isotp"
	"github.com/pkg/errors"
)

// OBD-II mode 9 PID 2, the VIN.
var (
	vinRequest  = []byte{0x09, 0x02}
	vinResponse = []byte{0x49, 0x02, 0x01}
)

// VINLength is the length of a well-formed vehicle identification number.
const VINLength = 17

// GetVIN reads the vehicle identification number through the functional
// request address, retrying up to attempts times. Returns the address that
// answered along with the VIN.
func GetVIN(ctx context.Context, tp Transport, timeout time.Duration, attempts uint) (Addr, string, error) {
	var addr Addr
	var vin string
	err := retry.Do(
		func() error {
			versions, err := tp.Query(ctx,
				[]Addr{{Address: isotp.FunctionalID, SubAddress: NoSubAddress}},
				[][]byte{vinRequest}, [][]byte{vinResponse}, timeout)
			if err != nil {
				return errors.Wrap(err, "querying vin")
			}
			for a, v := range versions {
				addr = a
				vin = string(v)
				return nil
			}
			return errors.New("no response to vin request")
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
	)
	if err != nil {
		return Addr{}, "", err
	}
	if len(vin) != VINLength {
		return addr, vin, errors.Errorf("malformed vin %q", vin)
	}
	return addr, vin, nil
}
