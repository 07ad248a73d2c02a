package quest

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// The annotated renderer's typed-data dumps use fixed-layout records.
// spec.md leaves the exact field layout of these structures
// unspecified (it only requires "field-by-field dump... with explicit
// offsets"); the layouts below are a reasonable, internally consistent
// choice documented here rather than reverse-engineered from a
// specific game build.

type fieldSpec struct {
	name string
	off  int
	size int
	kind string // "u16", "u8", "f32"
}

var playerStatsFields = []fieldSpec{
	{"ATP", 0, 2, "u16"}, {"MST", 2, 2, "u16"}, {"EVP", 4, 2, "u16"},
	{"HP", 6, 2, "u16"}, {"DFP", 8, 2, "u16"}, {"ATA", 10, 2, "u16"},
	{"LCK", 12, 2, "u16"},
}

const playerStatsSize = 14

var visualConfigFields = []fieldSpec{
	{"Costume", 0, 2, "u16"}, {"SkinColor", 2, 2, "u16"}, {"FaceShape", 4, 2, "u16"},
	{"HeadType", 6, 2, "u16"}, {"HairType", 8, 2, "u16"},
	{"HairR", 10, 4, "f32"}, {"HairG", 14, 4, "f32"}, {"HairB", 18, 4, "f32"},
	{"ProportionX", 22, 4, "f32"}, {"ProportionY", 26, 4, "f32"},
}

const visualConfigSize = 30

var resistDataFields = []fieldSpec{
	{"ResistNative", 0, 2, "u16"}, {"ResistAbeast", 2, 2, "u16"},
	{"ResistMachine", 4, 2, "u16"}, {"ResistDark", 6, 2, "u16"},
	{"ResistFire", 8, 2, "u16"}, {"ResistIce", 10, 2, "u16"},
	{"ResistThunder", 12, 2, "u16"}, {"ResistNone", 14, 2, "u16"},
}

const resistDataSize = 16

var attackDataFields = []fieldSpec{
	{"Type", 0, 2, "u16"}, {"Damage", 2, 2, "u16"},
	{"Accuracy", 4, 2, "u16"}, {"Flags", 6, 2, "u16"},
	{"Range", 8, 4, "f32"},
}

const attackDataSize = 16

var movementDataFields = []fieldSpec{
	{"WalkSpeed", 0, 4, "f32"}, {"RunSpeed", 4, 4, "f32"},
	{"Flags", 8, 2, "u16"},
}

const movementDataSize = 12

const unknownF8F2RecordSize = 16 // 4 x float32

func readField(data []byte, f fieldSpec) string {
	if f.off+f.size > len(data) {
		return "<truncated>"
	}
	switch f.kind {
	case "u16":
		return fmt.Sprintf("%d", binary.LittleEndian.Uint16(data[f.off:]))
	case "u8":
		return fmt.Sprintf("%d", data[f.off])
	case "f32":
		bits := binary.LittleEndian.Uint32(data[f.off:])
		return fmt.Sprintf("%g", math.Float32frombits(bits))
	default:
		return "?"
	}
}

// dumpStruct renders a field-by-field struct dump with explicit
// offsets, plus trailing raw data beyond structSize (spec §4.2
// annotated rendering).
func dumpStruct(label string, data []byte, fields []fieldSpec, structSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "    // %s (%d bytes)\n", label, len(data))
	for _, f := range fields {
		fmt.Fprintf(&b, "    // +%-3d %-14s %s\n", f.off, f.name, readField(data, f))
	}
	if len(data) > structSize {
		fmt.Fprintf(&b, "    // +%-3d %-14s %s\n", structSize, "(trailing)", dumpHex(data[structSize:]))
	}
	return b.String()
}

// dumpHexNoSpace renders data as a contiguous hex string, the form
// accepted back by the assembler's `.data HEX` directive.
func dumpHexNoSpace(data []byte) string {
	var b strings.Builder
	for _, by := range data {
		fmt.Fprintf(&b, "%02X", by)
	}
	return b.String()
}

func dumpHex(data []byte) string {
	var b strings.Builder
	for i, by := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", by)
	}
	return b.String()
}

// dumpUnknownF8F2 renders the UNKNOWN_F8F2_DATA interpretation: an
// array of 4xf32 records, with any remainder rendered as trailing raw
// data.
func dumpUnknownF8F2(data []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, "    // UNKNOWN_F8F2_DATA (%d bytes)\n", len(data))
	n := len(data) / unknownF8F2RecordSize
	for i := 0; i < n; i++ {
		rec := data[i*unknownF8F2RecordSize : (i+1)*unknownF8F2RecordSize]
		vals := make([]string, 4)
		for j := 0; j < 4; j++ {
			bits := binary.LittleEndian.Uint32(rec[j*4:])
			vals[j] = fmt.Sprintf("%g", math.Float32frombits(bits))
		}
		fmt.Fprintf(&b, "    // [%d] %s\n", i, strings.Join(vals, ", "))
	}
	if rem := len(data) % unknownF8F2RecordSize; rem != 0 {
		fmt.Fprintf(&b, "    // (trailing) %s\n", dumpHex(data[n*unknownF8F2RecordSize:]))
	}
	return b.String()
}
