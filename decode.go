package quest

import "github.com/questscript/questasm/internal/textenc"

// decodeOpcodeHeader reads the 1- or 2-byte opcode prefix at the
// reader's current position (spec §4.2, §6): a byte 0x00..0xF7 is a
// one-byte opcode; a lead byte 0xF8/0xF9 forms a two-byte, big-endian
// opcode with the following byte. It returns the raw opcode value and
// its dictionary row for b (nil if unknown to that build).
func decodeOpcodeHeader(r *byteReader, b Build) (uint16, *OpDef, error) {
	lead, err := r.u8()
	if err != nil {
		return 0, nil, err
	}

	var opcode uint16
	if isTwoByteLeadByte(lead) {
		second, err := r.u8()
		if err != nil {
			return 0, nil, err
		}
		opcode = uint16(lead)<<8 | uint16(second)
	} else {
		opcode = uint16(lead)
	}

	def, err := lookupOpcode(b, opcode)
	if err != nil {
		return opcode, nil, err
	}
	return opcode, def, nil
}

// readsArgsFromBytes reports whether def's arguments should be decoded
// from the instruction stream. F_ARGS opcodes on a HasArgs build
// instead consume from the push-arg stack and read zero bytes here.
func readsArgsFromBytes(def *OpDef, b Build) bool {
	return !(def.Flags&fArgs != 0 && b.HasArgs())
}

// skipOneArg advances r past one argument of the given shape without
// building labels, returning the decoded value when it is a plain
// INT32 (needed by the episode detector to read F_SET_EPISODE
// operands) and zero otherwise. enc selects the CSTRING unit width
// (16-bit code units on UTF16LE builds, bytes otherwise), matching
// the disassembler's own decodeArg (spec §4.3 "same rules as the
// disassembler").
func skipOneArg(r *byteReader, arg OpArg, enc textenc.Encoding) (uint32, error) {
	switch arg.Type {
	case ArgLabel16:
		_, err := r.u16le()
		return 0, err
	case ArgLabel32:
		_, err := r.u32le()
		return 0, err
	case ArgLabel16Set:
		count, err := r.u8()
		if err != nil {
			return 0, err
		}
		for i := uint8(0); i < count; i++ {
			if _, err := r.u16le(); err != nil {
				return 0, err
			}
		}
		return 0, nil
	case ArgReg:
		_, err := r.u8()
		return 0, err
	case ArgRegSet:
		count, err := r.u8()
		if err != nil {
			return 0, err
		}
		return 0, r.skip(uint32(count))
	case ArgRegSetFixed:
		return 0, r.skip(1)
	case ArgReg32:
		_, err := r.u32le()
		return 0, err
	case ArgReg32SetFixed:
		_, err := r.u32le()
		return 0, err
	case ArgInt8:
		_, err := r.u8()
		return 0, err
	case ArgInt16:
		_, err := r.u16le()
		return 0, err
	case ArgInt32:
		return r.u32le()
	case ArgFloat32:
		_, err := r.u32le()
		return 0, err
	case ArgCString:
		var err error
		if enc == textenc.UTF16LE {
			_, err = r.cstringBytes16()
		} else {
			_, err = r.cstringBytes8()
		}
		return 0, err
	default:
		return 0, nil
	}
}

// skipArgsTrackingEpisode skips def's arguments per the episode
// detector's rules (spec §4.3): F_ARGS opcodes on a HasArgs build read
// nothing here since their operands live on the push-arg stack, not
// the byte stream. It reports the literal value of an F_SET_EPISODE
// opcode's INT32 operand, if any.
func skipArgsTrackingEpisode(r *byteReader, def *OpDef, b Build, enc textenc.Encoding) (uint32, bool, error) {
	if !readsArgsFromBytes(def, b) {
		return 0, false, nil
	}
	var episodeVal uint32
	hasEpisode := false
	for _, arg := range def.Args {
		v, err := skipOneArg(r, arg, enc)
		if err != nil {
			return 0, false, err
		}
		if def.Flags&fSetEpisode != 0 && arg.Type == ArgInt32 {
			episodeVal = v
			hasEpisode = true
		}
	}
	return episodeVal, hasEpisode, nil
}
