package fingerprint

import (
	"encoding/hex"
	"io"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The YAML form of a table nests brand → model → entries, with versions
// hex-encoded so NUL-ridden firmware bytes survive the trip:
//
//	toyota:
//	  "TOYOTA RAV4 2017":
//	    - ecu: engine
//	      address: 0x7e0
//	      versions: ["023334325131..."]
//	    - ecu: fwdCamera
//	      address: 0x750
//	      subAddress: 0x6d
//	      versions: ["38363436..."]

type tableEntry struct {
	Ecu        string   `yaml:"ecu"`
	Address    uint32   `yaml:"address"`
	SubAddress *int     `yaml:"subAddress,omitempty"`
	Versions   []string `yaml:"versions"`
}

// LoadTable reads a reference table from YAML.
func LoadTable(r io.Reader) (Table, error) {
	var raw map[Brand]map[Model][]tableEntry
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding fingerprint table")
	}

	table := make(Table, len(raw))
	for brand, byModel := range raw {
		table[brand] = make(map[Model]Fingerprint, len(byModel))
		for model, entries := range byModel {
			fp := make(Fingerprint, len(entries))
			for _, e := range entries {
				ecu, err := ParseEcuType(e.Ecu)
				if err != nil {
					return nil, errors.Wrapf(err, "model %q", model)
				}
				sub := NoSubAddress
				if e.SubAddress != nil {
					sub = *e.SubAddress
				}
				versions := make([][]byte, 0, len(e.Versions))
				for _, v := range e.Versions {
					b, err := hex.DecodeString(v)
					if err != nil {
						return nil, errors.Wrapf(err, "model %q: version %q", model, v)
					}
					versions = append(versions, b)
				}
				fp[EcuKey{Type: ecu, Address: e.Address, SubAddress: sub}] = versions
			}
			table[brand][model] = fp
		}
	}
	return table, nil
}

// WriteTable writes a reference table as YAML, sorted for stable diffs.
func WriteTable(w io.Writer, table Table) error {
	raw := make(map[Brand]map[Model][]tableEntry, len(table))
	for _, brand := range sortedBrands(table) {
		byModel := table[brand]
		raw[brand] = make(map[Model][]tableEntry, len(byModel))
		for _, model := range sortedModels(byModel) {
			entries := make([]tableEntry, 0, len(byModel[model]))
			for _, key := range sortedKeys(byModel[model]) {
				e := tableEntry{
					Ecu:     key.Type.String(),
					Address: key.Address,
				}
				if key.SubAddress != NoSubAddress {
					sub := key.SubAddress
					e.SubAddress = &sub
				}
				for _, v := range byModel[model][key] {
					e.Versions = append(e.Versions, hex.EncodeToString(v))
				}
				entries = append(entries, e)
			}
			raw[brand][model] = entries
		}
	}
	return errors.Wrap(yaml.NewEncoder(w).Encode(raw), "encoding fingerprint table")
}

type firmwareEntry struct {
	Ecu        string `yaml:"ecu"`
	Address    uint32 `yaml:"address"`
	SubAddress *int   `yaml:"subAddress,omitempty"`
	Version    string `yaml:"version"`
}

// WriteFirmwares writes a discovery result as YAML, so a scan can be matched
// offline later.
func WriteFirmwares(w io.Writer, firmwares []Firmware) error {
	entries := make([]firmwareEntry, 0, len(firmwares))
	for _, fw := range firmwares {
		e := firmwareEntry{
			Ecu:     fw.Ecu.String(),
			Address: fw.Address,
			Version: hex.EncodeToString(fw.Version),
		}
		if fw.SubAddress != NoSubAddress {
			sub := fw.SubAddress
			e.SubAddress = &sub
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Address != entries[j].Address {
			return entries[i].Address < entries[j].Address
		}
		return entries[i].SubAddress != nil && entries[j].SubAddress != nil &&
			*entries[i].SubAddress < *entries[j].SubAddress
	})
	return errors.Wrap(yaml.NewEncoder(w).Encode(entries), "encoding firmware list")
}

// LoadFirmwares reads a discovery result written by WriteFirmwares.
func LoadFirmwares(r io.Reader) ([]Firmware, error) {
	var entries []firmwareEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "decoding firmware list")
	}

	firmwares := make([]Firmware, 0, len(entries))
	for _, e := range entries {
		ecu, err := ParseEcuType(e.Ecu)
		if err != nil {
			return nil, err
		}
		version, err := hex.DecodeString(e.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "version %q", e.Version)
		}
		sub := NoSubAddress
		if e.SubAddress != nil {
			sub = *e.SubAddress
		}
		firmwares = append(firmwares, Firmware{Ecu: ecu, Address: e.Address, SubAddress: sub, Version: version})
	}
	return firmwares, nil
}
