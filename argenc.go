package quest

import (
	"fmt"
	"strings"

	"github.com/questscript/questasm/internal/textenc"
)

// asmLabel is a label discovered during assembly (spec §3 "Label
// (assembly)"). Offset is filled in once code emission reaches this
// label's definition site.
type asmLabel struct {
	name   string
	index  int
	pinned bool
	offset uint32
}

// asmCtx carries everything an argument encoder needs: the target
// build/language (for CSTRING and register width), the label table
// (indices are known up front; byte offsets are filled in as emission
// proceeds), the register allocator, and the code buffer being built.
type asmCtx struct {
	build  Build
	lang   uint8
	labels map[string]*asmLabel
	ra     *registerAllocator
	code   []byte
}

func (c *asmCtx) labelIndex(name string) (int, error) {
	l, ok := c.labels[name]
	if !ok {
		return 0, &UndefinedLabelError{Name: name}
	}
	return l.index, nil
}

// encodeDirectArg appends the direct-mode wire form of tok for arg to
// c.code (spec §4.5 "Direct mode").
func (c *asmCtx) encodeDirectArg(arg OpArg, tok string) error {
	switch arg.Type {
	case ArgLabel16:
		id, err := c.labelIndex(tok)
		if err != nil {
			return err
		}
		c.code = appendU16LE(c.code, uint16(id))
		return nil

	case ArgLabel32:
		id, err := c.labelIndex(tok)
		if err != nil {
			return err
		}
		c.code = appendU32LE(c.code, uint32(id))
		return nil

	case ArgLabel16Set:
		inner, ok := stripBrackets(tok)
		if !ok {
			return &ArgTypeMismatchError{Want: "[label, ...]", Got: tok}
		}
		names := splitOperands(inner)
		c.code = appendU8(c.code, uint8(len(names)))
		for _, n := range names {
			id, err := c.labelIndex(n)
			if err != nil {
				return err
			}
			c.code = appendU16LE(c.code, uint16(id))
		}
		return nil

	case ArgReg:
		return c.encodeSingleReg(tok, 1)

	case ArgReg32:
		return c.encodeSingleReg(tok, 4)

	case ArgRegSet:
		inner, ok := stripBrackets(tok)
		if !ok {
			return &ArgTypeMismatchError{Want: "[reg, ...]", Got: tok}
		}
		toks := splitOperands(inner)
		c.code = appendU8(c.code, uint8(len(toks)))
		for _, t := range toks {
			if err := c.encodeSingleReg(t, 1); err != nil {
				return err
			}
		}
		return nil

	case ArgRegSetFixed:
		return c.encodeFixedSet(tok, arg.Count, 1)

	case ArgReg32SetFixed:
		return c.encodeFixedSet(tok, arg.Count, 4)

	case ArgInt8:
		v, err := parseIntLiteral(tok)
		if err != nil {
			return err
		}
		c.code = appendU8(c.code, uint8(v))
		return nil

	case ArgInt16:
		v, err := parseIntLiteral(tok)
		if err != nil {
			return err
		}
		c.code = appendU16LE(c.code, uint16(v))
		return nil

	case ArgInt32:
		v, err := parseIntLiteral(tok)
		if err != nil {
			return err
		}
		c.code = appendU32LE(c.code, uint32(v))
		return nil

	case ArgFloat32:
		v, err := parseFloatLiteral(tok)
		if err != nil {
			return err
		}
		c.code = appendF32LE(c.code, v)
		return nil

	case ArgCString:
		s, isBin, err := parseStringLiteral(tok)
		if err != nil {
			return err
		}
		enc := toTextEnc(c.build.stringEncoding(c.lang))
		if isBin {
			c.code = append(c.code, []byte(s)...)
			c.code = append(c.code, make([]byte, enc.UnitSize())...)
			return nil
		}
		raw, err := textenc.EncodeCString(s, enc)
		if err != nil {
			return err
		}
		c.code = append(c.code, raw...)
		return nil

	default:
		return fmt.Errorf("unsupported argument type %v", arg.Type)
	}
}

// encodeSingleReg writes one REG/REG32 operand, patching later if tok
// names a register still awaiting allocation.
func (c *asmCtx) encodeSingleReg(tok string, width int) error {
	t, err := parseRegToken(tok)
	if err != nil {
		return err
	}
	if t.numeric {
		writeRegNumber(&c.code, t.number, width)
		return nil
	}
	r := c.ra.get(t.name)
	if t.pinned {
		if err := c.ra.pin(r, t.pin); err != nil {
			return err
		}
	}
	off := uint32(len(c.code))
	writeRegNumber(&c.code, 0, width)
	c.ra.addPatch(off, width, r)
	return nil
}

// encodeFixedSet writes the head register of a REG_SET_FIXED/
// REG32_SET_FIXED operand (spec §4.5: "write only the first register;
// constrain the whole parsed chain to be adjacent").
func (c *asmCtx) encodeFixedSet(tok string, count int, width int) error {
	toks, err := parseChainTokens(tok, count)
	if err != nil {
		return err
	}

	needsAlloc := false
	for _, t := range toks {
		if t.anon || !t.numeric {
			needsAlloc = true
			break
		}
	}

	if !needsAlloc {
		writeRegNumber(&c.code, toks[0].number, width)
		return nil
	}

	entries := make([]*namedReg, len(toks))
	for i, t := range toks {
		switch {
		case t.anon:
			entries[i] = c.ra.anonymous()
		case t.numeric:
			entries[i] = c.ra.anonymous()
			if err := c.ra.pin(entries[i], t.number); err != nil {
				return err
			}
		default:
			entries[i] = c.ra.get(t.name)
			if t.pinned {
				if err := c.ra.pin(entries[i], t.pin); err != nil {
					return err
				}
			}
		}
	}
	for i := 0; i+1 < len(entries); i++ {
		if err := c.ra.constrain(entries[i], entries[i+1]); err != nil {
			return err
		}
	}

	off := uint32(len(c.code))
	writeRegNumber(&c.code, 0, width)
	c.ra.addPatch(off, width, entries[0])
	return nil
}

func writeRegNumber(code *[]byte, n int, width int) {
	switch width {
	case 1:
		*code = appendU8(*code, uint8(n))
	case 4:
		*code = appendU32LE(*code, uint32(uint8(n)))
	}
}

// --- push-args mode (spec §4.5) ---

// pushKind says how to encode a push primitive's one payload value.
// The opcode dictionary's own Args entry for each push mnemonic (spec
// §9c: qedit/"historical" inconsistency) is declared for disassembly
// rendering only; assembly-time encoding is driven by the source
// token's actual shape, which this selection logic determines.
type pushKind int

const (
	pushReg pushKind = iota
	pushInt8
	pushInt16
	pushInt32
	pushLabel16
	pushCString
)

// pushOpcodeFor selects the push primitive mnemonic and payload kind
// for arg/tok per the rules in spec §4.5.
func pushOpcodeFor(arg OpArg, tok string) (mnemonic string, kind pushKind, payload string, err error) {
	tok = strings.TrimSpace(tok)

	if strings.HasPrefix(tok, "@r") || strings.HasPrefix(tok, "@f") {
		return "arg_pusha", pushReg, tok[1:], nil
	}
	if strings.HasPrefix(tok, "@") {
		return "arg_pusho", pushLabel16, tok[1:], nil
	}

	switch arg.Type {
	case ArgLabel16, ArgLabel32, ArgLabel16Set:
		return "arg_pushw", pushLabel16, tok, nil
	case ArgReg, ArgReg32, ArgRegSetFixed, ArgReg32SetFixed:
		return "arg_pushb", pushReg, tok, nil
	case ArgCString:
		return "arg_pushs", pushCString, tok, nil
	case ArgInt8, ArgInt16, ArgInt32:
		v, err := parseIntLiteral(tok)
		if err != nil {
			return "", 0, "", err
		}
		switch {
		case v > 0xFFFF || v < -0x8000_0000:
			return "arg_pushl", pushInt32, tok, nil
		case v > 0xFF:
			return "arg_pushw", pushInt16, tok, nil
		default:
			return "arg_pushb", pushInt8, tok, nil
		}
	default:
		return "arg_pushr", pushReg, tok, nil
	}
}

// encodePushArgs emits the push-primitive sequence for every operand of
// an F_ARGS instruction before the caller emits the real opcode bytes
// (spec §4.5 "Push-args mode").
func (c *asmCtx) encodePushArgs(build Build, args []OpArg, toks []string) error {
	for i, arg := range args {
		mnemonic, kind, payload, err := pushOpcodeFor(arg, toks[i])
		if err != nil {
			return argError(i+1, err)
		}
		def, err := lookupMnemonic(build, mnemonic)
		if err != nil {
			return argError(i+1, err)
		}
		if def.isTwoByte() {
			c.code = appendU16BE(c.code, def.Opcode)
		} else {
			c.code = appendU8(c.code, uint8(def.Opcode))
		}

		if err := c.encodePushPayload(kind, payload); err != nil {
			return argError(i+1, err)
		}
	}
	return nil
}

// encodePushRegPayload writes the register-number byte for an
// arg_pusha/arg_pushb/arg_pushr payload. The push-args calling
// convention lets an out-param register be written either with the
// usual `rN`/`r:name` register syntax or as a bare integer literal
// naming the register number directly (spec §4.5, §8 scenario 4:
// `message 0x12, "hello"` pushes 0x12 as a plain register number).
func (c *asmCtx) encodePushRegPayload(payload string) error {
	if _, err := parseRegToken(payload); err == nil {
		return c.encodeSingleReg(payload, 1)
	}
	v, err := parseIntLiteral(payload)
	if err != nil {
		return &ArgTypeMismatchError{Want: "register or integer literal", Got: payload}
	}
	writeRegNumber(&c.code, int(v), 1)
	return nil
}

func (c *asmCtx) encodePushPayload(kind pushKind, payload string) error {
	switch kind {
	case pushReg:
		return c.encodePushRegPayload(payload)
	case pushInt8:
		v, err := parseIntLiteral(payload)
		if err != nil {
			return err
		}
		c.code = appendU8(c.code, uint8(v))
		return nil
	case pushInt16:
		v, err := parseIntLiteral(payload)
		if err != nil {
			return err
		}
		c.code = appendU16LE(c.code, uint16(v))
		return nil
	case pushInt32:
		v, err := parseIntLiteral(payload)
		if err != nil {
			return err
		}
		c.code = appendU32LE(c.code, uint32(v))
		return nil
	case pushLabel16:
		id, err := c.labelIndex(payload)
		if err != nil {
			return err
		}
		c.code = appendU16LE(c.code, uint16(id))
		return nil
	case pushCString:
		s, isBin, err := parseStringLiteral(payload)
		if err != nil {
			return err
		}
		enc := toTextEnc(c.build.stringEncoding(c.lang))
		if isBin {
			c.code = append(c.code, []byte(s)...)
			c.code = append(c.code, make([]byte, enc.UnitSize())...)
			return nil
		}
		raw, err := textenc.EncodeCString(s, enc)
		if err != nil {
			return err
		}
		c.code = append(c.code, raw...)
		return nil
	default:
		return fmt.Errorf("unsupported push payload kind")
	}
}
