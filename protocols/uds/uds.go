// Package uds holds the ISO 14229 constants and request builders used by the
// diagnostic dialects.
package uds

// Service identifiers.
const (
	ServiceDiagnosticSessionControl byte = 0x10
	ServiceEcuReset                 byte = 0x11
	ServiceSecurityAccess           byte = 0x27
	ServiceTesterPresent            byte = 0x3E
	ServiceReadDataByIdentifier     byte = 0x22
	ServiceNegativeResponse         byte = 0x7F
)

// A positive response echoes the service identifier plus 0x40.
const ResponseOffset byte = 0x40

// Session types for DiagnosticSessionControl.
const (
	SessionDefault            byte = 0x01
	SessionProgramming        byte = 0x02
	SessionExtendedDiagnostic byte = 0x03
)

// Data identifiers for ReadDataByIdentifier.
const (
	DataIDBootSoftwareIdentification         uint16 = 0xF180
	DataIDApplicationSoftwareIdentification  uint16 = 0xF181
	DataIDVehicleManufacturerSparePartNumber uint16 = 0xF187
	DataIDVehicleManufacturerECUSoftware     uint16 = 0xF188
	DataIDVIN                                uint16 = 0xF190
)

// Negative response codes.
const (
	NRCServiceNotSupported               byte = 0x11
	NRCConditionsNotCorrect              byte = 0x22
	NRCRequestOutOfRange                 byte = 0x31
	NRCResponsePending                   byte = 0x78
	NRCServiceNotSupportedInActiveSession byte = 0x7F
)

// ResponseID returns the positive response service identifier for a request
// service identifier.
func ResponseID(service byte) byte {
	return service + ResponseOffset
}

// ReadDataByIdentifierRequest builds a 0x22 request for one or more data
// identifiers, packed big-endian.
func ReadDataByIdentifierRequest(ids ...uint16) []byte {
	b := make([]byte, 0, 1+2*len(ids))
	b = append(b, ServiceReadDataByIdentifier)
	for _, id := range ids {
		b = append(b, byte(id>>8), byte(id))
	}
	return b
}

// SessionControlRequest builds a 0x10 request for the given session type.
func SessionControlRequest(session byte) []byte {
	return []byte{ServiceDiagnosticSessionControl, session}
}

// SessionControlResponse builds the full positive response for a 0x10
// request, including the P2/P2* timing parameters ECUs report (50 ms, 5 s).
func SessionControlResponse(session byte) []byte {
	return []byte{ResponseID(ServiceDiagnosticSessionControl), session, 0x00, 0x32, 0x01, 0xF4}
}

// TesterPresentRequest builds a 0x3E keep-alive with the zero sub-function.
func TesterPresentRequest() []byte {
	return []byte{ServiceTesterPresent, 0x00}
}

// TesterPresentResponse is the matching positive response.
func TesterPresentResponse() []byte {
	return []byte{ResponseID(ServiceTesterPresent), 0x00}
}
