package quest

import (
	"fmt"
	"sort"
)

// DisassembleMode selects the textual rendering style.
type DisassembleMode int

const (
	RoundTrippable DisassembleMode = iota
	Annotated
)

// DisassembleOptions configures a single Disassemble call (spec §4.2
// "Input").
type DisassembleOptions struct {
	// LanguageOverride, if not 0xFF, forces the text-decoding language
	// instead of the header's own language byte.
	LanguageOverride uint8
	Mode             DisassembleMode
	MnemonicStyle    MnemonicStyle
	// ImageDecompressor decodes PRS-compressed IMAGE_DATA labels for
	// annotated rendering. It is an external collaborator (spec §1);
	// when nil, IMAGE_DATA labels render their raw compressed bytes
	// with a note that decompression was unavailable.
	ImageDecompressor func([]byte) ([]byte, error)
}

// instrRecord is one decoded instruction, ready to render.
type instrRecord struct {
	offset   uint32
	length   uint32 // bytes consumed, for the hex column and .failed detection
	mnemonic string
	argsText string
	isRet    bool
	failed   string // non-empty means rendering should show ".failed (message)"
	unknown  bool
	unkOpcode uint16
	warning  string // inline arity-mismatch warning, if any

	// isPushPrimitive marks every F_PASS arg_pushX opcode, whether or
	// not an F_ARGS consumer later pops its value. Its round-trippable
	// line is suppressed: a consumer already renders the full operand
	// text, and emitting both would make the assembler push the same
	// operands twice (spec §4.5).
	isPushPrimitive bool
}

type disassembler struct {
	code     []byte
	build    Build
	lang     uint8
	opts     DisassembleOptions
	labels   *labelTable
	done     map[uint32]bool
	worklist []uint32
	instrs   map[uint32]*instrRecord
	stack    argStack
	fnTable  []uint32
}

// Disassemble decodes a compiled quest binary into the textual listing
// form selected by opts.Mode (spec §4.2).
func Disassemble(data []byte, b Build, opts DisassembleOptions) (string, error) {
	hdr, err := parseHeader(data, b)
	if err != nil {
		return "", err
	}
	lang := effectiveLanguage(b, hdr.Language, opts.LanguageOverride)

	codeEnd := hdr.FunctionTableOffset
	if codeEnd > uint32(len(data)) || hdr.CodeOffset > codeEnd {
		return "", &MalformedBinaryError{Reason: "code region out of bounds"}
	}
	code := data[hdr.CodeOffset:codeEnd]

	fnTable, err := readFunctionTable(data, hdr)
	if err != nil {
		return "", err
	}

	d := &disassembler{
		code:    code,
		build:   b,
		lang:    lang,
		opts:    opts,
		labels:  newLabelTable(),
		done:    make(map[uint32]bool),
		instrs:  make(map[uint32]*instrRecord),
		fnTable: fnTable,
	}

	// Pass 1: every valid function-table slot seeds a pending decode;
	// slot 0 additionally gets the SCRIPT type-flag set eagerly (spec
	// §4.2 Pass 1). Other slots pick up SCRIPT only if something in
	// the code later references them with a SCRIPT-tagged argument,
	// but they are still decoded regardless since the table seeds them.
	for i, off := range fnTable {
		if off == sentinelOffset || off >= uint32(len(code)) {
			continue
		}
		l := d.labels.defineFunction(i, off)
		if i == 0 {
			d.labels.addTypeFlag(l, LabelScript)
		}
		d.worklist = append(d.worklist, off)
	}

	d.run()

	return renderListing(d, hdr, opts)
}

// run drains the reachability worklist, decoding each unvisited offset
// and following its control-flow/label targets (spec §4.2 Pass 2). The
// worklist only ever grows by offsets within code, and each offset is
// decoded at most once, so this always terminates within len(code)
// iterations (spec §8 Termination).
func (d *disassembler) run() {
	for len(d.worklist) > 0 {
		off := d.worklist[0]
		d.worklist = d.worklist[1:]
		d.decodeChainFrom(off)
	}
}

func (d *disassembler) decodeChainFrom(start uint32) {
	offset := start
	d.stack.clear()
	for {
		if d.done[offset] {
			return
		}
		if offset >= uint32(len(d.code)) {
			return
		}
		rec := d.decodeOne(offset)
		d.instrs[offset] = rec
		d.done[offset] = true
		if rec.failed != "" || rec.unknown {
			return
		}
		if rec.isRet {
			return
		}
		offset += rec.length
	}
}

func (d *disassembler) decodeOne(offset uint32) *instrRecord {
	r := newByteReader(d.code)
	r.seek(offset)

	opcode, def, err := decodeOpcodeHeader(r, d.build)
	if err != nil {
		return &instrRecord{offset: offset, length: r.tell() - offset, failed: err.Error()}
	}
	if def == nil {
		return &instrRecord{offset: offset, length: r.tell() - offset, unknown: true, unkOpcode: opcode}
	}

	var argsText string
	var warning string

	if readsArgsFromBytes(def, d.build) {
		parts := make([]string, 0, len(def.Args))
		for _, arg := range def.Args {
			text, pushVal, err := d.decodeArg(r, arg, offset)
			if err != nil {
				return &instrRecord{offset: offset, length: r.tell() - offset, failed: err.Error()}
			}
			parts = append(parts, text)
			if def.Flags&fPass != 0 {
				d.stack.push(stackValue{tag: pushTagFor(def, arg), text: pushVal})
			}
		}
		argsText = joinArgs(parts)
	} else {
		popped, ok := d.stack.popAll(len(def.Args))
		if !ok {
			warning = fmt.Sprintf("argument stack underflow: wanted %d, got %d", len(def.Args), len(popped))
		}
		parts := make([]string, 0, len(popped))
		for _, v := range popped {
			parts = append(parts, v.text)
		}
		argsText = joinArgs(parts)
	}

	if def.Flags&fPass == 0 {
		d.stack.clear()
	}

	mnemonic := mnemonicFor(def, d.opts.MnemonicStyle)
	return &instrRecord{
		offset:          offset,
		length:          r.tell() - offset,
		mnemonic:        mnemonic,
		argsText:        argsText,
		isRet:           def.Flags&fRet != 0,
		warning:         warning,
		isPushPrimitive: def.Flags&fPass != 0,
	}
}

func joinArgs(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// sortedOffsets returns every offset that needs a render line (label
// definitions and/or instructions), ascending.
func sortedOffsets(d *disassembler) []uint32 {
	set := map[uint32]bool{}
	for off := range d.instrs {
		set[off] = true
	}
	for off := range d.labels.byOffset {
		set[off] = true
	}
	out := make([]uint32, 0, len(set))
	for off := range set {
		out = append(out, off)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
