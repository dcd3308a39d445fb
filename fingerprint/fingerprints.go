package fingerprint

// Models covered by the builtin reference table.
const (
	ModelHondaAccord       Model = "HONDA ACCORD 2018"
	ModelHondaCivic        Model = "HONDA CIVIC 2016"
	ModelHyundaiElantra    Model = "HYUNDAI ELANTRA 2017"
	ModelHyundaiSonata     Model = "HYUNDAI SONATA 2020"
	ModelSubaruForester    Model = "SUBARU FORESTER 2019"
	ModelSubaruImpreza     Model = "SUBARU IMPREZA LIMITED 2019"
	ModelToyotaCHR         Model = "TOYOTA C-HR 2017"
	ModelToyotaCorolla     Model = "TOYOTA COROLLA 2017"
	ModelToyotaCorollaTSS2 Model = "TOYOTA COROLLA TSS2 2019"
	ModelToyotaHighlander  Model = "TOYOTA HIGHLANDER 2017"
	ModelToyotaRAV4        Model = "TOYOTA RAV4 2017"
)

// Fingerprints is the builtin reference table. Version strings are the raw
// bytes ECUs return, quirks included: NUL padding, vendor part numbers,
// multi-field records. An external table loaded with LoadTable can be used
// in its place or merged over it.
var Fingerprints = Table{
	BrandHonda: {
		ModelHondaCivic: {
			{EcuEngine, 0x18DA10F1, NoSubAddress}: {
				[]byte("37805-5AA-L660\x00\x00"),
				[]byte("37805-5AA-L680\x00\x00"),
			},
			{EcuVsa, 0x18DA28F1, NoSubAddress}: {
				[]byte("57114-TBA-A550\x00\x00"),
			},
			{EcuEps, 0x18DA30F1, NoSubAddress}: {
				[]byte("39990-TBA-A030\x00\x00"),
			},
			{EcuFwdRadar, 0x18DAB0F1, NoSubAddress}: {
				[]byte("36161-TBA-A030\x00\x00"),
			},
			{EcuTransmission, 0x18DA1EF1, NoSubAddress}: {
				[]byte("28101-5CG-A050\x00\x00"),
			},
		},
		ModelHondaAccord: {
			{EcuEngine, 0x18DA10F1, NoSubAddress}: {
				[]byte("37805-6A0-A640\x00\x00"),
				[]byte("37805-6A0-A650\x00\x00"),
			},
			{EcuVsa, 0x18DA28F1, NoSubAddress}: {
				[]byte("57114-TVA-A060\x00\x00"),
			},
			{EcuEps, 0x18DA30F1, NoSubAddress}: {
				[]byte("39990-TVA-A150\x00\x00"),
			},
			{EcuFwdRadar, 0x18DAB0F1, NoSubAddress}: {
				[]byte("36802-TVA-A150\x00\x00"),
			},
			{EcuFwdCamera, 0x18DAB5F1, NoSubAddress}: {
				[]byte("36161-TVA-A060\x00\x00"),
			},
		},
	},
	BrandHyundai: {
		ModelHyundaiElantra: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\xf1\x816U2V8051\x00\x00\xf1\x006U2V0_C2\x00\x006U2V8051\x00\x00"),
			},
			{EcuEsp, 0x7D1, NoSubAddress}: {
				[]byte("\xf1\x00AD ESC \x11 104\x08\x103\x00\x58B50"),
			},
			{EcuEps, 0x7D4, NoSubAddress}: {
				[]byte("\xf1\x00AD  MDPS C 1.00 1.03"),
			},
			{EcuFwdRadar, 0x7D0, NoSubAddress}: {
				[]byte("\xf1\x00ADhe SCC H-CUP      1.01"),
			},
		},
		ModelHyundaiSonata: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\xf1\x81HM6M2_0a0_BD0"),
				[]byte("\xf1\x81HM6M2_0a0_CD0"),
			},
			{EcuTransmission, 0x7E1, NoSubAddress}: {
				[]byte("\xf1\x00T02601BL  T02900A1  VDN8T25XXX900"),
			},
			{EcuEsp, 0x7D1, NoSubAddress}: {
				[]byte("\xf1\x00DN ESC \x07 106 \x08\x01 58910-L0100"),
			},
			{EcuEps, 0x7D4, NoSubAddress}: {
				[]byte("\xf1\x00DN8 MDPS C 1.00 1.01 56310L0010\x00 4DNAC101"),
			},
			{EcuFwdRadar, 0x7D0, NoSubAddress}: {
				[]byte("\xf1\x00DN8_ SCC F-CUP      1.00 1.00 99110-L0000"),
			},
		},
	},
	BrandSubaru: {
		ModelSubaruImpreza: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\xaa\x61\x66\x73\x07"),
				[]byte("\xf1\xe0\xa0\x73\x07"),
			},
			{EcuTransmission, 0x7E1, NoSubAddress}: {
				[]byte("\xe3\xe5\x46\x31\x00"),
			},
			{EcuEps, 0x746, NoSubAddress}: {
				[]byte("\x7a\xc0\x10\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("\x7a\x94\x3f\x90\x00"),
			},
			{EcuFwdCamera, 0x787, NoSubAddress}: {
				[]byte("\x00\x00\x64\xb5\x1f\x40\x20\x0e"),
			},
		},
		ModelSubaruForester: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\xb6\xa2\x70\x07"),
			},
			{EcuTransmission, 0x7E1, NoSubAddress}: {
				[]byte("\x1a\xe6\xf5\x41\x00"),
			},
			{EcuEps, 0x746, NoSubAddress}: {
				[]byte("\x8d\xc0\x04\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("\xa5\x20\x19\x02\x00"),
			},
			{EcuFwdCamera, 0x787, NoSubAddress}: {
				[]byte("\x00\x00\x64\xdc\x1f\x40\x20\x0e"),
			},
		},
	},
	BrandToyota: {
		ModelToyotaCorolla: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\x0230ZC2000\x00\x00\x00\x00\x00\x00\x00\x0050212000\x00\x00\x00\x00\x00\x00\x00\x00"),
				[]byte("\x0230ZC3000\x00\x00\x00\x00\x00\x00\x00\x0050212000\x00\x00\x00\x00\x00\x00\x00\x00"),
			},
			{EcuDsu, 0x791, NoSubAddress}: {
				[]byte("881510201100\x00\x00\x00\x00"),
				[]byte("881510201200\x00\x00\x00\x00"),
			},
			{EcuEps, 0x7A1, NoSubAddress}: {
				[]byte("8965B02181\x00\x00\x00\x00\x00\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("F152602190\x00\x00\x00\x00\x00\x00"),
			},
			{EcuFwdRadar, 0x750, 0x0F}: {
				[]byte("8821F4702100\x00\x00\x00\x00"),
			},
			{EcuFwdCamera, 0x750, 0x6D}: {
				[]byte("8646F0201101\x00\x00\x00\x00"),
			},
		},
		ModelToyotaCorollaTSS2: {
			{EcuEngine, 0x700, NoSubAddress}: {
				[]byte("\x01896630ZG2000\x00\x00\x00\x00"),
				[]byte("\x01896630ZG5000\x00\x00\x00\x00"),
			},
			{EcuEps, 0x7A1, NoSubAddress}: {
				[]byte("\x028965B1255000\x00\x00\x00\x008965B1257000\x00\x00\x00\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("\x01F152602280\x00\x00\x00\x00\x00\x00"),
			},
			{EcuFwdRadar, 0x750, 0x0F}: {
				[]byte("\x018821F3301100\x00\x00\x00\x00"),
			},
			{EcuFwdCamera, 0x750, 0x6D}: {
				[]byte("\x028646F1201100\x00\x00\x00\x008646G26011A0\x00\x00\x00\x00"),
			},
		},
		ModelToyotaRAV4: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\x02342Q1000\x00\x00\x00\x00\x00\x00\x00\x0054212000\x00\x00\x00\x00\x00\x00\x00\x00"),
			},
			{EcuDsu, 0x791, NoSubAddress}: {
				[]byte("881510201100\x00\x00\x00\x00"),
			},
			{EcuEps, 0x7A1, NoSubAddress}: {
				[]byte("8965B42082\x00\x00\x00\x00\x00\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("F15260R102\x00\x00\x00\x00\x00\x00"),
			},
			{EcuFwdRadar, 0x750, 0x0F}: {
				[]byte("8821F4702300\x00\x00\x00\x00"),
			},
			{EcuFwdCamera, 0x750, 0x6D}: {
				[]byte("8646F4201200\x00\x00\x00\x00"),
			},
		},
		ModelToyotaHighlander: {
			{EcuEngine, 0x7E0, NoSubAddress}: {
				[]byte("\x01896630E09000\x00\x00\x00\x00"),
			},
			{EcuDsu, 0x791, NoSubAddress}: {
				[]byte("881510E01100\x00\x00\x00\x00"),
			},
			{EcuEps, 0x7A1, NoSubAddress}: {
				[]byte("8965B48140\x00\x00\x00\x00\x00\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("F152648541\x00\x00\x00\x00\x00\x00"),
			},
			{EcuFwdRadar, 0x750, 0x0F}: {
				[]byte("8821F4702100\x00\x00\x00\x00"),
			},
			{EcuFwdCamera, 0x750, 0x6D}: {
				[]byte("8646F0E01200\x00\x00\x00\x00"),
			},
		},
		ModelToyotaCHR: {
			{EcuEngine, 0x700, NoSubAddress}: {
				[]byte("\x0189663F4100\x00\x00\x00\x00\x00\x00"),
			},
			{EcuEps, 0x7A1, NoSubAddress}: {
				[]byte("8965B10091\x00\x00\x00\x00\x00\x00"),
			},
			{EcuEsp, 0x7B0, NoSubAddress}: {
				[]byte("F152610020\x00\x00\x00\x00\x00\x00"),
			},
			{EcuFwdRadar, 0x750, 0x0F}: {
				[]byte("8821F4702000\x00\x00\x00\x00"),
			},
			{EcuFwdCamera, 0x750, 0x6D}: {
				[]byte("8646FF401700\x00\x00\x00\x00"),
			},
		},
	},
}

// ScanProbes returns an extra probe table that sweeps the whole bus: every
// 11-bit identifier in the diagnostic range, the 29-bit normal fixed
// addressing range, and all sub-addresses behind 0x750. No versions are
// expected; the probes only exist so the planner will query them.
func ScanProbes() Table {
	fp := make(Fingerprint, 3*256)
	for i := uint32(0); i < 256; i++ {
		fp[EcuKey{EcuUnknown, 0x18DA00F1 + (i << 8), NoSubAddress}] = nil
		fp[EcuKey{EcuUnknown, 0x700 + i, NoSubAddress}] = nil
		fp[EcuKey{EcuUnknown, 0x750, int(i)}] = nil
	}
	return Table{BrandAny: {"debug": fp}}
}
