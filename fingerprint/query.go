package fingerprint

import (
	"context"
	"sort"
	"time"
)

// Transport performs one segmented request/response exchange against a set
// of addresses within a timeout, returning whatever subset answered. It is
// expected to parallelize the addresses internally; an error means the
// exchange as a whole failed, not that an address stayed silent.
type Transport interface {
	Query(ctx context.Context, addrs []Addr, requests [][]byte,
		responsePrefixes [][]byte, timeout time.Duration) (map[Addr][]byte, error)
}

// DefaultBaseTimeout bounds a single exchange when ScanOptions doesn't say
// otherwise.
const DefaultBaseTimeout = 100 * time.Millisecond

// ScanOptions tunes a discovery run. The zero value scans the given table
// with default timeouts and no logging.
type ScanOptions struct {
	// BaseTimeout is the per-exchange budget. The first plan group gets
	// twice this, since it typically wakes ECUs out of sleep.
	BaseTimeout time.Duration
	// Extra adds probes beyond the reference table, merged by identity.
	Extra Table
	// Logger receives query warnings. Defaults to NopLogger.
	Logger Logger
	// Progress, when set, is called after each plan group completes.
	Progress func(done, total int)
}

// GetVersions runs the full discovery: plans the probes, drives every
// catalog dialect through the transport, and returns the firmware versions
// that were observed. Individual query failures are logged and skipped; the
// run itself never fails.
func GetVersions(ctx context.Context, tp Transport, table Table, opts *ScanOptions) []Firmware {
	if opts == nil {
		opts = &ScanOptions{}
	}
	base := opts.BaseTimeout
	if base <= 0 {
		base = DefaultBaseTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger
	}

	groups, ecuTypes := PlanQueries(table, opts.Extra)

	observations := make(map[Addr][]byte)
	for i, group := range groups {
		timeout := base
		if i == 0 {
			timeout = 2 * base
		}

		for _, chunk := range chunkAddrs(group, MaxParallelAddrs) {
			for _, req := range Requests {
				var addrs []Addr
				for _, ba := range chunk {
					if req.matches(ba.Brand) {
						addrs = append(addrs, ba.Addr)
					}
				}
				if len(addrs) == 0 {
					continue
				}

				versions, err := tp.Query(ctx, addrs, req.Request, req.Response, timeout)
				if err != nil {
					logger.Warnf("firmware query failed: brand=%s addrs=%d steps=%d: %v",
						req.Brand, len(addrs), len(req.Request), err)
					continue
				}
				for addr, version := range versions {
					observations[addr] = version
				}
			}
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(groups))
		}
	}

	return firmwareList(observations, ecuTypes)
}

// firmwareList flattens the observation map, resolving each address back to
// its ECU type. Sorted for stable output.
func firmwareList(observations map[Addr][]byte, ecuTypes map[Addr]EcuType) []Firmware {
	addrs := make([]Addr, 0, len(observations))
	for addr := range observations {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Address != addrs[j].Address {
			return addrs[i].Address < addrs[j].Address
		}
		return addrs[i].SubAddress < addrs[j].SubAddress
	})

	firmwares := make([]Firmware, 0, len(addrs))
	for _, addr := range addrs {
		firmwares = append(firmwares, Firmware{
			Ecu:        ecuTypes[addr],
			Address:    addr.Address,
			SubAddress: addr.SubAddress,
			Version:    observations[addr],
		})
	}
	return firmwares
}
