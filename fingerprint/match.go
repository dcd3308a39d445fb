package fingerprint

import "bytes"

// MissingEcuAllowance tolerates a missing reading for one ECU type on one
// model. These encode known bus topology quirks, kept as data so the
// exception set stays auditable.
type MissingEcuAllowance struct {
	Ecu   EcuType
	Model Model
}

// MatchOptions carries the policy tables applied while matching.
type MatchOptions struct {
	// EssentialEcus must be observed (or explicitly allowed missing) for a
	// model to stay a candidate. A missing reading for any other ECU type
	// is uninformative.
	EssentialEcus []EcuType
	// MissingAllowed tolerates absent readings for specific (ecu, model)
	// pairs even when the ECU type is essential.
	MissingAllowed []MissingEcuAllowance
}

// DefaultMatchOptions returns the standard policy: the essential-ECU set
// plus the Toyota exceptions. Some Toyotas keep the stability control off
// this bus, and some expose the engine ECU on an alternate address.
func DefaultMatchOptions() *MatchOptions {
	return &MatchOptions{
		EssentialEcus: []EcuType{
			EcuEngine, EcuEps, EcuEsp, EcuFwdRadar, EcuFwdCamera, EcuVsa, EcuElectricBrakeBooster,
		},
		MissingAllowed: []MissingEcuAllowance{
			{EcuEsp, ModelToyotaRAV4},
			{EcuEsp, ModelToyotaCorolla},
			{EcuEsp, ModelToyotaHighlander},
			{EcuEngine, ModelToyotaCorollaTSS2},
			{EcuEngine, ModelToyotaCHR},
		},
	}
}

// CandidateSet is the set of models not yet disproven.
type CandidateSet map[Model]struct{}

// Has reports membership.
func (c CandidateSet) Has(m Model) bool {
	_, ok := c[m]
	return ok
}

// Match reduces the table's models to those consistent with the observed
// firmware versions. A model is eliminated at its first entry whose
// observation (or absence, after the leniency rules) falls outside the
// expected version set; a model with no fingerprint entries is vacuously
// consistent. A nil opts applies DefaultMatchOptions.
func Match(firmwares []Firmware, table Table, opts *MatchOptions) CandidateSet {
	if opts == nil {
		opts = DefaultMatchOptions()
	}

	observed := make(map[Addr][]byte, len(firmwares))
	for _, fw := range firmwares {
		observed[fw.Addr()] = fw.Version
	}

	candidates := make(CandidateSet)
	for _, m := range table.Models() {
		candidates[m] = struct{}{}
	}

	for _, byModel := range table {
		for model, fp := range byModel {
			for key, expected := range fp {
				version, found := observed[key.Addr()]

				if !found {
					if opts.missingAllowed(key.Type, model) {
						continue
					}
					if !opts.essential(key.Type) {
						continue
					}
				}

				if !versionIn(expected, version, found) {
					delete(candidates, model)
					break
				}
			}
		}
	}
	return candidates
}

func (o *MatchOptions) essential(t EcuType) bool {
	for _, e := range o.EssentialEcus {
		if e == t {
			return true
		}
	}
	return false
}

func (o *MatchOptions) missingAllowed(t EcuType, m Model) bool {
	for _, a := range o.MissingAllowed {
		if a.Ecu == t && a.Model == m {
			return true
		}
	}
	return false
}

func versionIn(expected [][]byte, version []byte, found bool) bool {
	if !found {
		return false
	}
	for _, e := range expected {
		if bytes.Equal(e, version) {
			return true
		}
	}
	return false
}
