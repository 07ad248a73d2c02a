package quest

import (
	"fmt"
	"strconv"

	"github.com/questscript/questasm/internal/textenc"
)

// decodeArg decodes one argument of the given shape at the reader's
// current position. It registers label references/type-flags as a
// side effect and returns the source-form rendering of the value
// (used both for direct printing and, when the owning opcode is
// F_PASS, as the text pushed onto the argument stack).
func (d *disassembler) decodeArg(r *byteReader, arg OpArg, at uint32) (string, string, error) {
	switch arg.Type {
	case ArgLabel16:
		id, err := r.u16le()
		if err != nil {
			return "", "", err
		}
		name, err := d.resolveLabelRef(uint32(id), arg.DataType, at)
		if err != nil {
			return "", "", err
		}
		return name, name, nil

	case ArgLabel32:
		id, err := r.u32le()
		if err != nil {
			return "", "", err
		}
		name, err := d.resolveLabelRef(id, arg.DataType, at)
		if err != nil {
			return "", "", err
		}
		return name, name, nil

	case ArgLabel16Set:
		count, err := r.u8()
		if err != nil {
			return "", "", err
		}
		out := "["
		for i := uint8(0); i < count; i++ {
			id, err := r.u16le()
			if err != nil {
				return "", "", err
			}
			name, err := d.resolveLabelRef(uint32(id), arg.DataType, at)
			if err != nil {
				return "", "", err
			}
			if i > 0 {
				out += ", "
			}
			out += name
		}
		out += "]"
		return out, out, nil

	case ArgReg:
		n, err := r.u8()
		if err != nil {
			return "", "", err
		}
		text := fmt.Sprintf("r%d", n)
		return text, text, nil

	case ArgRegSet:
		count, err := r.u8()
		if err != nil {
			return "", "", err
		}
		if count == 0 {
			return "[]", "[]", nil
		}
		out := "["
		for i := uint8(0); i < count; i++ {
			n, err := r.u8()
			if err != nil {
				return "", "", err
			}
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("r%d", n)
		}
		out += "]"
		return out, out, nil

	case ArgRegSetFixed:
		start, err := r.u8()
		if err != nil {
			return "", "", err
		}
		text := regRangeText(int(start), arg.Count)
		return text, text, nil

	case ArgReg32:
		n, err := r.u32le()
		if err != nil {
			return "", "", err
		}
		text := fmt.Sprintf("r%d", n)
		return text, text, nil

	case ArgReg32SetFixed:
		start, err := r.u32le()
		if err != nil {
			return "", "", err
		}
		text := regRangeText(int(start), arg.Count)
		return text, text, nil

	case ArgInt8:
		v, err := r.u8()
		if err != nil {
			return "", "", err
		}
		text := fmt.Sprintf("0x%02X", v)
		return text, text, nil

	case ArgInt16:
		v, err := r.u16le()
		if err != nil {
			return "", "", err
		}
		text := fmt.Sprintf("0x%04X", v)
		return text, text, nil

	case ArgInt32:
		v, err := r.u32le()
		if err != nil {
			return "", "", err
		}
		text := fmt.Sprintf("0x%08X", v)
		return text, text, nil

	case ArgFloat32:
		v, err := r.f32le()
		if err != nil {
			return "", "", err
		}
		text := strconv.FormatFloat(float64(v), 'g', -1, 32)
		return text, text, nil

	case ArgCString:
		enc := toTextEnc(d.build.stringEncoding(d.lang))
		var raw []byte
		var err error
		if enc == textenc.UTF16LE {
			raw, err = r.cstringBytes16()
		} else {
			raw, err = r.cstringBytes8()
		}
		if err != nil {
			return "", "", err
		}
		s, err := textenc.DecodeCString(raw, enc)
		if err != nil {
			return "", "", err
		}
		text := `"` + textenc.EscapeForSource(s) + `"`
		return text, text, nil

	default:
		return "", "", fmt.Errorf("unsupported argument type %v", arg.Type)
	}
}

// resolveLabelRef resolves a function-table index to its label,
// registering the back-reference and merging the data-type flag
// implied by the consuming argument. If the flag is LabelScript, the
// label's offset is enqueued on the worklist (spec §4.2 Pass 2).
func (d *disassembler) resolveLabelRef(id uint32, dt LabelType, fromOffset uint32) (string, error) {
	if id >= uint32(len(d.fnTable)) || d.fnTable[id] == sentinelOffset {
		return "", fmt.Errorf("label id %d has no function-table entry", id)
	}
	off := d.fnTable[id]
	l, ok := d.labels.byOffset[off]
	if !ok {
		l = d.labels.defineFunction(int(id), off)
	}
	d.labels.addReference(l, fromOffset)
	if dt != 0 {
		d.labels.addTypeFlag(l, dt)
		if dt&LabelScript != 0 && off < uint32(len(d.code)) && !d.done[off] {
			d.worklist = append(d.worklist, off)
		}
	}
	return l.Name, nil
}

func regRangeText(start, count int) string {
	if count <= 1 {
		return fmt.Sprintf("r%d", start)
	}
	end := start + count - 1
	return fmt.Sprintf("r%d-r%d", start, end)
}
