package quest

import (
	"fmt"
	"strings"

	"github.com/questscript/questasm/internal/textenc"
)

func renderListing(d *disassembler, hdr *Header, opts DisassembleOptions) (string, error) {
	var b strings.Builder
	writeHeaderDirectives(&b, hdr)
	b.WriteString("\n")

	for _, off := range sortedOffsets(d) {
		l, hasLabel := d.labels.byOffset[off]
		instr, hasInstr := d.instrs[off]

		if hasLabel {
			if opts.Mode == Annotated && len(l.ReferencedBy) > 0 {
				fmt.Fprintf(&b, "// Referenced by %s\n", formatRefs(l.ReferencedBy))
			}
			if l.FunctionID >= 0 {
				fmt.Fprintf(&b, "%s@%d:\n", l.Name, l.FunctionID)
			} else {
				fmt.Fprintf(&b, "%s:\n", l.Name)
			}
		}

		if hasInstr && !(instr.isPushPrimitive && opts.Mode == RoundTrippable) {
			writeInstrLine(&b, d, instr, opts)
		}

		if hasLabel {
			writeLabelDataSections(&b, d, l, opts, hasInstr)
		}
	}

	return b.String(), nil
}

func writeHeaderDirectives(b *strings.Builder, hdr *Header) {
	layout := layoutFor(hdr.Build.headerVariant())
	fmt.Fprintf(b, ".version %s\n", hdr.Build)
	fmt.Fprintf(b, ".name %q\n", hdr.Name)
	fmt.Fprintf(b, ".short_desc %q\n", hdr.ShortDesc)
	fmt.Fprintf(b, ".long_desc %q\n", hdr.LongDesc)
	fmt.Fprintf(b, ".quest_num %d\n", hdr.QuestNum)
	fmt.Fprintf(b, ".language %d\n", hdr.Language)
	if layout.hasEpisode {
		fmt.Fprintf(b, ".episode %d\n", int(hdr.Episode))
	}
	if layout.hasMaxPlayers {
		fmt.Fprintf(b, ".max_players %d\n", hdr.MaxPlayers)
		fmt.Fprintf(b, ".joinable %t\n", hdr.Joinable)
	}
}

func writeInstrLine(b *strings.Builder, d *disassembler, instr *instrRecord, opts DisassembleOptions) {
	if opts.Mode == Annotated {
		hexBytes := d.code[instr.offset:instr.offset+instr.length]
		hexCol := dumpHex(hexBytes)
		const maxHex = 23 // 8 bytes of "XX " minus trailing space, rounded
		if len(hexCol) > maxHex {
			hexCol = hexCol[:maxHex] + "..."
		}
		fmt.Fprintf(b, "  %04X  %-26s", instr.offset, hexCol)
	}

	switch {
	case instr.unknown:
		fmt.Fprintf(b, "  .unknown %04X\n", instr.unkOpcode)
		return
	case instr.failed != "":
		fmt.Fprintf(b, "  .failed (%s)\n", instr.failed)
		return
	}

	if instr.argsText == "" {
		fmt.Fprintf(b, "  %s\n", instr.mnemonic)
	} else {
		fmt.Fprintf(b, "  %-20s %s\n", instr.mnemonic, instr.argsText)
	}
	if instr.warning != "" {
		fmt.Fprintf(b, "  // warning: %s\n", instr.warning)
	}
}

func formatRefs(offsets []uint32) string {
	parts := make([]string, len(offsets))
	for i, o := range offsets {
		parts[i] = fmt.Sprintf("%04X", o)
	}
	return strings.Join(parts, ", ")
}

// writeLabelDataSections renders the non-code interpretations of a
// label. Round-trippable mode only ever emits ".data" for a label that
// has no decoded instruction; annotated mode renders one structured
// dump per set type-flag bit (spec §4.2).
func writeLabelDataSections(b *strings.Builder, d *disassembler, l *label, opts DisassembleOptions, hasInstr bool) {
	if opts.Mode == RoundTrippable {
		if !hasInstr {
			data := d.dataRegion(l.Offset)
			fmt.Fprintf(b, "  .data %s\n", dumpHexNoSpace(data))
		}
		return
	}

	data := d.dataRegion(l.Offset)

	if l.TypeFlags&LabelCString != 0 {
		enc := toTextEnc(d.build.stringEncoding(d.lang))
		s, err := textenc.DecodeFixed(data, enc)
		if err == nil {
			fmt.Fprintf(b, "    // CSTRING: %q\n", s)
		}
	}
	if l.TypeFlags&LabelPlayerStats != 0 {
		b.WriteString(dumpStruct("PlayerStats", data, playerStatsFields, playerStatsSize))
	}
	if l.TypeFlags&LabelPlayerVisualConfig != 0 {
		b.WriteString(dumpStruct("PlayerVisualConfig", data, visualConfigFields, visualConfigSize))
	}
	if l.TypeFlags&LabelResistData != 0 {
		b.WriteString(dumpStruct("ResistData", data, resistDataFields, resistDataSize))
	}
	if l.TypeFlags&LabelAttackData != 0 {
		b.WriteString(dumpStruct("AttackData", data, attackDataFields, attackDataSize))
	}
	if l.TypeFlags&LabelMovementData != 0 {
		b.WriteString(dumpStruct("MovementData", data, movementDataFields, movementDataSize))
	}
	if l.TypeFlags&LabelUnknownF8F2Data != 0 {
		b.WriteString(dumpUnknownF8F2(data))
	}
	if l.TypeFlags&LabelImageData != 0 {
		writeImageDump(b, data, opts.ImageDecompressor)
	}
	if l.TypeFlags&LabelData != 0 && l.TypeFlags == LabelData {
		fmt.Fprintf(b, "    // raw: %s\n", dumpHex(data))
	}
}

func writeImageDump(b *strings.Builder, data []byte, decompress func([]byte) ([]byte, error)) {
	fmt.Fprintf(b, "    // IMAGE_DATA, %d compressed bytes\n", len(data))
	if decompress == nil {
		b.WriteString("    // (PRS decompression unavailable, showing compressed bytes)\n")
		fmt.Fprintf(b, "    // %s\n", truncatedHex(data, 64))
		return
	}
	raw, err := decompress(data)
	if err != nil {
		fmt.Fprintf(b, "    // PRS decompression failed: %v\n", err)
		return
	}
	fmt.Fprintf(b, "    // decompressed to %d bytes\n", len(raw))
	fmt.Fprintf(b, "    // %s\n", truncatedHex(raw, 64))
}

func truncatedHex(data []byte, max int) string {
	if len(data) <= max {
		return dumpHex(data)
	}
	return dumpHex(data[:max]) + " ..."
}

// dataRegion returns the bytes from offset up to (but not including)
// the next known label offset, or the end of code if none follows.
func (d *disassembler) dataRegion(offset uint32) []byte {
	next := uint32(len(d.code))
	for off := range d.labels.byOffset {
		if off > offset && off < next {
			next = off
		}
	}
	if offset >= uint32(len(d.code)) {
		return nil
	}
	if next > uint32(len(d.code)) {
		next = uint32(len(d.code))
	}
	return d.code[offset:next]
}
