package quest

import (
	"bytes"
	"strings"
	"testing"
)

// TestMinimalProgramRoundTrip is spec §8 scenario 1: assemble, then
// disassemble in round-trippable mode, then assemble again; the two
// binaries must match byte-for-byte and the listing must name both
// mnemonics.
func TestMinimalProgramRoundTrip(t *testing.T) {
	src := `.version BB_V4
.name "Hi"
.quest_num 1
start:
  nop
  ret
`
	bin1 := assembleOrFatal(t, src)

	listing, err := Disassemble(bin1, BuildBBV4, DisassembleOptions{Mode: RoundTrippable})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(listing, "nop") || !strings.Contains(listing, "ret") {
		t.Fatalf("listing missing expected mnemonics:\n%s", listing)
	}

	bin2, err := Assemble(listing, AssembleOptions{})
	if err != nil {
		t.Fatalf("reassembling listing failed: %v\nlisting:\n%s", err, listing)
	}
	if !bytes.Equal(bin1, bin2) {
		t.Fatalf("round-trip mismatch:\nbin1=% X\nbin2=% X\nlisting:\n%s", bin1, bin2, listing)
	}
}

// TestRoundTripWithLabelsAndStrings extends the round-trip property to
// a program with a forward jump, a pinned label, and a CSTRING operand.
func TestRoundTripWithLabelsAndStrings(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 7
start:
  jmp done
  print "hello world"
done@5:
  ret
`
	bin1 := assembleOrFatal(t, src)
	listing, err := Disassemble(bin1, BuildDCV2, DisassembleOptions{Mode: RoundTrippable})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	bin2, err := Assemble(listing, AssembleOptions{})
	if err != nil {
		t.Fatalf("reassembling listing failed: %v\nlisting:\n%s", err, listing)
	}
	if !bytes.Equal(bin1, bin2) {
		t.Fatalf("round-trip mismatch:\nbin1=% X\nbin2=% X\nlisting:\n%s", bin1, bin2, listing)
	}

	// done@5 pins a non-contiguous function-table slot; the listing
	// must carry that index back through so reassembly doesn't
	// auto-renumber it to the lowest free slot (1).
	hdr, err := parseHeader(bin1, BuildDCV2)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	table, err := readFunctionTable(bin1, hdr)
	if err != nil {
		t.Fatalf("readFunctionTable: %v", err)
	}
	if len(table) != 6 {
		t.Fatalf("function table length = %d, want 6 (sentinel gaps preserved)", len(table))
	}
}

// TestTwoByteOpcodeEncoding is spec §8 scenario 3.
func TestTwoByteOpcodeEncoding(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  get_difficulty_level_v2 r5
  ret
`
	bin := assembleOrFatal(t, src)
	hdr, err := parseHeader(bin, BuildDCV2)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	code := bin[hdr.CodeOffset:hdr.FunctionTableOffset]
	want := []byte{0xF8, 0x08, 0x05}
	if !bytes.Equal(code[:3], want) {
		t.Fatalf("code prefix = % X, want % X", code[:3], want)
	}
}

// TestPushArgsDispatch is spec §8 scenario 4.
func TestPushArgsDispatch(t *testing.T) {
	src := `.version GC_V3
.name "Q"
.quest_num 1
start:
  message 0x12, "hello"
  ret
`
	bin := assembleOrFatal(t, src)
	hdr, err := parseHeader(bin, BuildGCV3)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	code := bin[hdr.CodeOffset:hdr.FunctionTableOffset]

	pushbDef, err := lookupMnemonic(BuildGCV3, "arg_pushb")
	if err != nil {
		t.Fatalf("lookup arg_pushb: %v", err)
	}
	pushsDef, err := lookupMnemonic(BuildGCV3, "arg_pushs")
	if err != nil {
		t.Fatalf("lookup arg_pushs: %v", err)
	}
	messageDef, err := lookupMnemonic(BuildGCV3, "message")
	if err != nil {
		t.Fatalf("lookup message: %v", err)
	}

	want := []byte{byte(pushbDef.Opcode), 0x12}
	want = append(want, byte(pushsDef.Opcode))
	want = append(want, []byte("hello")...)
	want = append(want, 0x00)
	want = append(want, byte(messageDef.Opcode>>8), byte(messageDef.Opcode))

	if !bytes.Equal(code[:len(want)], want) {
		t.Fatalf("code prefix = % X, want % X", code[:len(want)], want)
	}
}

// TestPushArgsRoundTrip guards against the push-args listing
// double-counting its own operands: round-trippable disassembly must
// not emit both the arg_pushX primitives and the consumer's expanded
// operand text, or reassembling would push every operand twice.
func TestPushArgsRoundTrip(t *testing.T) {
	src := `.version GC_V3
.name "Q"
.quest_num 1
start:
  message 0x12, "hello"
  ret
`
	bin1 := assembleOrFatal(t, src)
	listing, err := Disassemble(bin1, BuildGCV3, DisassembleOptions{Mode: RoundTrippable})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if strings.Contains(listing, "arg_pushb") || strings.Contains(listing, "arg_pushs") {
		t.Fatalf("round-trippable listing must not name the push primitives directly:\n%s", listing)
	}
	if !strings.Contains(listing, "message") || !strings.Contains(listing, `0x12, "hello"`) {
		t.Fatalf("listing missing expanded message operands:\n%s", listing)
	}
	bin2, err := Assemble(listing, AssembleOptions{})
	if err != nil {
		t.Fatalf("reassembling listing failed: %v\nlisting:\n%s", err, listing)
	}
	if !bytes.Equal(bin1, bin2) {
		t.Fatalf("round-trip mismatch:\nbin1=% X\nbin2=% X\nlisting:\n%s", bin1, bin2, listing)
	}
}

// TestRegisterAdjacencyAssembly is spec §8 scenario 5.
func TestRegisterAdjacencyAssembly(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  foo r:a, (r:b, r:c, r:d)
  ret
`
	bin := assembleOrFatal(t, src)
	hdr, err := parseHeader(bin, BuildDCV2)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	code := bin[hdr.CodeOffset:hdr.FunctionTableOffset]

	fooDef, err := lookupMnemonic(BuildDCV2, "foo")
	if err != nil {
		t.Fatalf("lookup foo: %v", err)
	}
	if code[0] != byte(fooDef.Opcode) {
		t.Fatalf("opcode byte = %#x, want %#x", code[0], fooDef.Opcode)
	}
	aSlot := code[1]
	bSlot := code[2]
	// a is registered (and so placed) before the b-c-d chain, so the
	// allocator's lowest-free-window search seats a at slot 0 and the
	// 3-long chain immediately after at slot 1; the fixed-set operand
	// records only its head byte, so c/d (slots 2,3) are implied.
	if aSlot != 0 {
		t.Fatalf("a slot = %d, want 0", aSlot)
	}
	if bSlot != 1 {
		t.Fatalf("b slot = %d, want 1", bSlot)
	}
	if code[3] != 0x01 { // ret
		t.Fatalf("expected ret opcode at code[3], got %#x", code[3])
	}
}

// TestUnknownOpcodeToleranceDuringDisassembly is spec §8 scenario 6.
func TestUnknownOpcodeToleranceDuringDisassembly(t *testing.T) {
	layout := layoutFor(BuildDCV2.headerVariant())
	hdr := &Header{
		Build:    BuildDCV2,
		Language: 0,
		QuestNum: 1,
		Name:     "Q",
		Episode:  Ep1,
	}
	code := []byte{0xAB, 0x00, 0x00, 0x00}
	hdr.CodeOffset = uint32(layout.headerSize())
	hdr.FunctionTableOffset = hdr.CodeOffset + uint32(len(code))
	fnTable := writeFunctionTable(map[int]uint32{0: 0}, 0)
	hdr.TotalSize = hdr.FunctionTableOffset + uint32(len(fnTable))

	headerBytes, err := writeHeader(hdr)
	if err != nil {
		t.Fatalf("writeHeader: %v", err)
	}
	bin := append(append(append([]byte{}, headerBytes...), code...), fnTable...)

	listing, err := Disassemble(bin, BuildDCV2, DisassembleOptions{Mode: RoundTrippable})
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(listing, ".unknown 00AB") {
		t.Fatalf("listing missing unknown-opcode sentinel:\n%s", listing)
	}
}

// TestLabelSentinelInFunctionTable is spec §8's "Label sentinel"
// universal property: gaps between defined indices carry 0xFFFFFFFF.
func TestLabelSentinelInFunctionTable(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  jmp foo
foo@3:
  ret
`
	bin := assembleOrFatal(t, src)
	hdr, err := parseHeader(bin, BuildDCV2)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	table, err := readFunctionTable(bin, hdr)
	if err != nil {
		t.Fatalf("readFunctionTable: %v", err)
	}
	if len(table) != 4 {
		t.Fatalf("function table length = %d, want 4", len(table))
	}
	if table[1] != sentinelOffset || table[2] != sentinelOffset {
		t.Fatalf("expected sentinel at indices 1,2, got %#x %#x", table[1], table[2])
	}
	if table[0] == sentinelOffset || table[3] == sentinelOffset {
		t.Fatalf("indices 0 and 3 should be defined, got %#x %#x", table[0], table[3])
	}
}

func TestMissingNameDirectiveIsAnError(t *testing.T) {
	src := `.version DC_V2
.quest_num 1
start:
  ret
`
	_, err := Assemble(src, AssembleOptions{})
	if err == nil {
		t.Fatal("expected MissingDirectiveError for missing .name")
	}
}

func TestUnknownBuildIsAnError(t *testing.T) {
	src := `.version GC_V9000
.name "Q"
.quest_num 1
start:
  ret
`
	_, err := Assemble(src, AssembleOptions{})
	if err == nil {
		t.Fatal("expected UnknownBuildError")
	}
	if _, ok := err.(*UnknownBuildError); !ok {
		t.Fatalf("expected *UnknownBuildError, got %T", err)
	}
}

func TestMissingStartLabelIsAnError(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
begin:
  ret
`
	_, err := Assemble(src, AssembleOptions{})
	if err == nil {
		t.Fatal(`expected an error when "start" is undefined`)
	}
}

func TestDuplicateLabelIsAnError(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  ret
start:
  ret
`
	_, err := Assemble(src, AssembleOptions{})
	if err == nil {
		t.Fatal("expected DuplicateLabelError")
	}
}
