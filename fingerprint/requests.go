package fingerprint

import "github.com/ecudiag/fwscan/protocols/uds"

// Request is one brand dialect: the ordered payloads to send and the prefix
// each response must carry. The remainder after the final step's prefix is
// the firmware version. Entries are pure data; the orchestrator drives them.
type Request struct {
	Brand    Brand
	Request  [][]byte
	Response [][]byte
}

var (
	testerPresentRequest  = uds.TesterPresentRequest()
	testerPresentResponse = uds.TesterPresentResponse()

	shortTesterPresentRequest  = []byte{uds.ServiceTesterPresent}
	shortTesterPresentResponse = []byte{uds.ResponseID(uds.ServiceTesterPresent)}

	defaultDiagnosticRequest  = uds.SessionControlRequest(uds.SessionDefault)
	defaultDiagnosticResponse = uds.SessionControlResponse(uds.SessionDefault)

	extendedDiagnosticRequest  = uds.SessionControlRequest(uds.SessionExtendedDiagnostic)
	extendedDiagnosticResponse = uds.SessionControlResponse(uds.SessionExtendedDiagnostic)

	udsVersionRequest  = uds.ReadDataByIdentifierRequest(uds.DataIDApplicationSoftwareIdentification)
	udsVersionResponse = []byte{uds.ResponseID(uds.ServiceReadDataByIdentifier), 0xF1, 0x81}

	// Hyundai serves a 4-byte version under 0xF1A0, a long description under
	// 0xF100, and a combined record under the multi-identifier read. All
	// answer with a bare positive response code.
	hyundaiVersionRequestShort = uds.ReadDataByIdentifierRequest(0xF1A0)
	hyundaiVersionRequestLong  = uds.ReadDataByIdentifierRequest(0xF100)
	hyundaiVersionRequestMulti = uds.ReadDataByIdentifierRequest(
		uds.DataIDVehicleManufacturerSparePartNumber,
		uds.DataIDApplicationSoftwareIdentification,
		0xF100,
		0xF1A0,
	)
	hyundaiVersionResponse = []byte{uds.ResponseID(uds.ServiceReadDataByIdentifier)}

	// Toyota's pre-UDS read by local identifier.
	toyotaVersionRequest  = []byte{0x1A, 0x88, 0x01}
	toyotaVersionResponse = []byte{0x5A, 0x88, 0x01}

	// OBD-II mode 9, calibration identifications.
	obdVersionRequest  = []byte{0x09, 0x04}
	obdVersionResponse = []byte{0x49, 0x04}

	subaruVersionRequest  = uds.ReadDataByIdentifierRequest(0xF182)
	subaruVersionResponse = []byte{uds.ResponseID(uds.ServiceReadDataByIdentifier), 0xF1, 0x82}
)

// Requests is the dialect catalog, tried in order against every matching
// chunk. A chunk may succeed under one entry and fail under another.
var Requests = []Request{
	{
		Brand:    BrandHyundai,
		Request:  [][]byte{hyundaiVersionRequestShort},
		Response: [][]byte{hyundaiVersionResponse},
	},
	{
		Brand:    BrandHyundai,
		Request:  [][]byte{hyundaiVersionRequestLong},
		Response: [][]byte{hyundaiVersionResponse},
	},
	{
		Brand:    BrandHyundai,
		Request:  [][]byte{hyundaiVersionRequestMulti},
		Response: [][]byte{hyundaiVersionResponse},
	},
	{
		Brand:    BrandHonda,
		Request:  [][]byte{udsVersionRequest},
		Response: [][]byte{udsVersionResponse},
	},
	{
		Brand:    BrandToyota,
		Request:  [][]byte{shortTesterPresentRequest, toyotaVersionRequest},
		Response: [][]byte{shortTesterPresentResponse, toyotaVersionResponse},
	},
	{
		Brand:    BrandToyota,
		Request:  [][]byte{shortTesterPresentRequest, obdVersionRequest},
		Response: [][]byte{shortTesterPresentResponse, obdVersionResponse},
	},
	{
		Brand:    BrandToyota,
		Request:  [][]byte{testerPresentRequest, defaultDiagnosticRequest, extendedDiagnosticRequest, udsVersionRequest},
		Response: [][]byte{testerPresentResponse, defaultDiagnosticResponse, extendedDiagnosticResponse, udsVersionResponse},
	},
	{
		Brand:    BrandSubaru,
		Request:  [][]byte{testerPresentRequest, subaruVersionRequest},
		Response: [][]byte{testerPresentResponse, subaruVersionResponse},
	},
}

// matches reports whether a catalog entry applies to an address tagged with
// the given brand.
func (r Request) matches(b Brand) bool {
	return r.Brand == b || b == BrandAny
}
