package quest

// Build identifies a specific release variant of the target game. It
// governs header layout, C-string text encoding, and which opcode
// dictionary rows are active.
type Build int

const (
	BuildUnknown Build = iota
	BuildDCNTE
	BuildDCProto
	BuildDCV1
	BuildDCV2
	BuildPCNTE
	BuildPCV2
	BuildGCNTE
	BuildGCV3
	BuildGCEp3
	BuildGCXB
	BuildBBV4
	// BuildPatch1 and BuildPatch2 are reserved placeholders: they have a
	// versionBit but no opcode rows, header variant, or text encoding of
	// their own. BuildPatch2's bit (1<<12) lies above the 12-bit version
	// field of OpDef.Flags.
	BuildPatch1
	BuildPatch2

	buildCount
)

func (b Build) String() string {
	switch b {
	case BuildDCNTE:
		return "DC_NTE"
	case BuildDCProto:
		return "DC_PROTO"
	case BuildDCV1:
		return "DC_V1"
	case BuildDCV2:
		return "DC_V2"
	case BuildPCNTE:
		return "PC_NTE"
	case BuildPCV2:
		return "PC_V2"
	case BuildGCNTE:
		return "GC_NTE"
	case BuildGCV3:
		return "GC_V3"
	case BuildGCEp3:
		return "GC_EP3"
	case BuildGCXB:
		return "GC_XB"
	case BuildBBV4:
		return "BB_V4"
	case BuildPatch1:
		return "PATCH1"
	case BuildPatch2:
		return "PATCH2"
	default:
		return "UNKNOWN"
	}
}

// ParseBuild resolves the .version directive spelling to a Build. It
// never returns the reserved patch placeholders since those cannot be
// named by the textual format.
func ParseBuild(name string) (Build, bool) {
	for b := BuildDCNTE; b < BuildPatch1; b++ {
		if b.String() == name {
			return b, true
		}
	}
	return BuildUnknown, false
}

// versionBit returns this build's bit position in the 16-bit version mask.
func (b Build) versionBit() uint16 {
	if b <= BuildUnknown || b >= buildCount {
		return 0
	}
	return 1 << uint(b-1)
}

// Version mask composition constants, named by the range of builds they
// admit. These compose the Flags field of opcode dictionary rows.
const (
	maskDCNTE    = uint16(1) << uint(BuildDCNTE-1)
	maskDCProto  = uint16(1) << uint(BuildDCProto-1)
	maskDCV1     = uint16(1) << uint(BuildDCV1-1)
	maskDCV2     = uint16(1) << uint(BuildDCV2-1)
	maskPCNTE    = uint16(1) << uint(BuildPCNTE-1)
	maskPCV2     = uint16(1) << uint(BuildPCV2-1)
	maskGCNTE    = uint16(1) << uint(BuildGCNTE-1)
	maskGCV3     = uint16(1) << uint(BuildGCV3-1)
	maskGCEp3    = uint16(1) << uint(BuildGCEp3-1)
	maskGCXB     = uint16(1) << uint(BuildGCXB-1)
	maskBBV4     = uint16(1) << uint(BuildBBV4-1)

	// V0..V4: every active build.
	VAll = maskDCNTE | maskDCProto | maskDCV1 | maskDCV2 | maskPCNTE | maskPCV2 |
		maskGCNTE | maskGCV3 | maskGCEp3 | maskGCXB | maskBBV4

	// V2..V4: every build from DC V2 onward (excludes the earliest protos).
	V2ToV4 = maskDCV2 | maskPCV2 | maskGCNTE | maskGCV3 | maskGCEp3 | maskGCXB | maskBBV4

	// V3..V4: the push-args calling convention generation.
	V3ToV4 = maskGCV3 | maskGCEp3 | maskGCXB | maskBBV4

	// V4 only: Blue Burst.
	V4Only = maskBBV4

	// HasArgsBuilds is the set of builds that consume F_ARGS opcodes from
	// the argument-push stack rather than decoding them inline.
	HasArgsBuilds = V3ToV4
)

// HasArgs reports whether b decodes F_ARGS opcodes from the push-arg
// stack (the V3+ calling convention) rather than from inline bytes.
func (b Build) HasArgs() bool {
	return b.versionBit()&HasArgsBuilds != 0
}

// TextEncoding identifies the byte-level encoding used for CSTRING
// arguments and header description fields for a given build+language.
type TextEncoding int

const (
	EncodingShiftJIS TextEncoding = iota
	EncodingISO8859
	EncodingUTF16LE
)

// stringEncoding returns the wire text encoding for this build given an
// effective language byte (already clamped/defaulted by the caller).
func (b Build) stringEncoding(language uint8) TextEncoding {
	switch b {
	case BuildPCNTE, BuildPCV2, BuildBBV4:
		return EncodingUTF16LE
	case BuildDCNTE, BuildDCProto, BuildDCV1, BuildDCV2,
		BuildGCNTE, BuildGCV3, BuildGCEp3, BuildGCXB:
		if language == 0 {
			return EncodingShiftJIS
		}
		return EncodingISO8859
	default:
		return EncodingISO8859
	}
}

// HeaderVariant names one of the five packed header layouts.
type HeaderVariant int

const (
	HeaderNTE HeaderVariant = iota
	HeaderV1V2DC
	HeaderV2PC
	HeaderV3GCXB
	HeaderV4BB
)

// headerVariant returns the header layout used by this build.
func (b Build) headerVariant() HeaderVariant {
	switch b {
	case BuildDCNTE, BuildPCNTE, BuildGCNTE:
		return HeaderNTE
	case BuildDCProto, BuildDCV1, BuildDCV2:
		return HeaderV1V2DC
	case BuildPCV2:
		return HeaderV2PC
	case BuildGCV3, BuildGCEp3, BuildGCXB:
		return HeaderV3GCXB
	case BuildBBV4:
		return HeaderV4BB
	default:
		return HeaderV1V2DC
	}
}

// maxLanguage returns the highest valid language byte for this build's
// header family; language bytes beyond this are clamped to 1 per the
// decoder's tolerant-language rule (spec §4.2, §9c).
func (b Build) maxLanguage() uint8 {
	switch b.headerVariant() {
	case HeaderV4BB:
		return 7
	default:
		return 4
	}
}
