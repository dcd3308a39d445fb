package fingerprint

import "sort"

// MaxParallelAddrs is the transport's addressing capacity: the most
// addresses one exchange may carry.
const MaxParallelAddrs = 128

// BrandAddr is one probe in a query plan. The brand is provenance metadata
// used only to pick dialects; identity is the Addr.
type BrandAddr struct {
	Brand Brand
	Addr  Addr
}

// PlanQueries turns a reference table (plus an optional extra probe table)
// into a query plan. ECUs without a sub-address go into a single parallel
// group, first in the plan; subaddressed ECUs collide behind their shared
// identifier and each get a singleton group. The returned ecuTypes map
// resolves every planned address back to its semantic role, first writer
// wins.
func PlanQueries(table Table, extra Table) (groups [][]BrandAddr, ecuTypes map[Addr]EcuType) {
	ecuTypes = make(map[Addr]EcuType)

	var parallel []BrandAddr
	var exclusive [][]BrandAddr
	seenParallel := make(map[BrandAddr]bool)
	seenExclusive := make(map[BrandAddr]bool)

	walk := func(t Table) {
		for _, brand := range sortedBrands(t) {
			byModel := t[brand]
			for _, model := range sortedModels(byModel) {
				for _, key := range sortedKeys(byModel[model]) {
					addr := key.Addr()
					if _, ok := ecuTypes[addr]; !ok {
						ecuTypes[addr] = key.Type
					}

					ba := BrandAddr{Brand: brand, Addr: addr}
					if addr.SubAddress == NoSubAddress {
						if !seenParallel[ba] {
							seenParallel[ba] = true
							parallel = append(parallel, ba)
						}
					} else if !seenExclusive[ba] {
						seenExclusive[ba] = true
						exclusive = append(exclusive, []BrandAddr{ba})
					}
				}
			}
		}
	}
	walk(table)
	walk(extra)

	if len(parallel) == 0 && len(exclusive) == 0 {
		return nil, ecuTypes
	}
	groups = append(groups, parallel)
	groups = append(groups, exclusive...)
	return groups, ecuTypes
}

// chunkAddrs slices a group into chunks of at most n probes.
func chunkAddrs(addrs []BrandAddr, n int) [][]BrandAddr {
	var chunks [][]BrandAddr
	for i := 0; i < len(addrs); i += n {
		end := i + n
		if end > len(addrs) {
			end = len(addrs)
		}
		chunks = append(chunks, addrs[i:end])
	}
	return chunks
}

// Map iteration order is random; the plan is sorted so two runs over the
// same table probe in the same order.

func sortedBrands(t Table) []Brand {
	brands := make([]Brand, 0, len(t))
	for b := range t {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool { return brands[i] < brands[j] })
	return brands
}

func sortedModels(byModel map[Model]Fingerprint) []Model {
	models := make([]Model, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool { return models[i] < models[j] })
	return models
}

func sortedKeys(fp Fingerprint) []EcuKey {
	keys := make([]EcuKey, 0, len(fp))
	for k := range fp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Address != keys[j].Address {
			return keys[i].Address < keys[j].Address
		}
		if keys[i].SubAddress != keys[j].SubAddress {
			return keys[i].SubAddress < keys[j].SubAddress
		}
		return keys[i].Type < keys[j].Type
	})
	return keys
}
