// Package fingerprint identifies a vehicle by querying the firmware versions
// of the ECUs on its diagnostic bus and matching them against a reference
// table of known models.
package fingerprint

import (
	"fmt"

	"github.com/pkg/errors"
)

// Brand selects which diagnostic dialects apply to an address. BrandAny
// matches every dialect.
type Brand string

const (
	BrandAny     Brand = "any"
	BrandHonda   Brand = "honda"
	BrandHyundai Brand = "hyundai"
	BrandSubaru  Brand = "subaru"
	BrandToyota  Brand = "toyota"
)

// Model names a vehicle model and trim in the reference table.
type Model string

// EcuType is the semantic role of an ECU, independent of brand.
type EcuType int

const (
	EcuUnknown EcuType = iota
	EcuEngine
	EcuTransmission
	EcuEps
	EcuEsp
	EcuFwdRadar
	EcuFwdCamera
	EcuVsa
	EcuElectricBrakeBooster
	EcuDsu
	EcuSrs
	EcuGateway
)

var ecuTypeNames = map[EcuType]string{
	EcuUnknown:              "unknown",
	EcuEngine:               "engine",
	EcuTransmission:         "transmission",
	EcuEps:                  "eps",
	EcuEsp:                  "esp",
	EcuFwdRadar:             "fwdRadar",
	EcuFwdCamera:            "fwdCamera",
	EcuVsa:                  "vsa",
	EcuElectricBrakeBooster: "electricBrakeBooster",
	EcuDsu:                  "dsu",
	EcuSrs:                  "srs",
	EcuGateway:              "gateway",
}

func (e EcuType) String() string {
	if n, ok := ecuTypeNames[e]; ok {
		return n
	}
	return fmt.Sprintf("EcuType(%d)", int(e))
}

// ParseEcuType is the inverse of String.
func ParseEcuType(s string) (EcuType, error) {
	for t, n := range ecuTypeNames {
		if n == s {
			return t, nil
		}
	}
	return EcuUnknown, errors.Errorf("unknown ECU type %q", s)
}

// NoSubAddress marks an ECU that answers on a shared channel and can be
// queried alongside others.
const NoSubAddress = -1

// Addr identifies an ECU on the bus: a CAN identifier plus an optional
// sub-address for ECUs behind a shared identifier.
type Addr struct {
	Address    uint32
	SubAddress int
}

func (a Addr) String() string {
	if a.SubAddress == NoSubAddress {
		return fmt.Sprintf("0x%X", a.Address)
	}
	return fmt.Sprintf("0x%X/0x%X", a.Address, a.SubAddress)
}

// EcuKey identifies an ECU inside the reference table.
type EcuKey struct {
	Type       EcuType
	Address    uint32
	SubAddress int
}

// Addr strips the ECU type, leaving the bus identity.
func (k EcuKey) Addr() Addr {
	return Addr{Address: k.Address, SubAddress: k.SubAddress}
}

// Firmware is one observed ECU firmware version.
type Firmware struct {
	Ecu        EcuType
	Address    uint32
	SubAddress int
	Version    []byte
}

func (f Firmware) Addr() Addr {
	return Addr{Address: f.Address, SubAddress: f.SubAddress}
}

// Fingerprint maps each ECU of a model to its accepted firmware versions.
// Version bytes are opaque and compared by exact equality.
type Fingerprint map[EcuKey][][]byte

// Table is the reference database: per brand, per model, the expected
// firmware versions. The brand grouping decides which dialects are used to
// reach a model's ECUs.
type Table map[Brand]map[Model]Fingerprint

// Models returns every model in the table.
func (t Table) Models() []Model {
	var models []Model
	for _, byModel := range t {
		for m := range byModel {
			models = append(models, m)
		}
	}
	return models
}
