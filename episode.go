package quest

import "fmt"

// Episode identifies the game episode a quest targets.
type Episode int

const (
	Ep1 Episode = iota
	Ep2
	Ep4
)

func (e Episode) String() string {
	switch e {
	case Ep1:
		return "Episode 1"
	case Ep2:
		return "Episode 2"
	case Ep4:
		return "Episode 4"
	default:
		return "Episode ?"
	}
}

// episodeFromLiteral translates the INT32 operand of a F_SET_EPISODE
// opcode into an Episode. 0xFF and 0 both mean Ep1 per spec §3.
func episodeFromLiteral(v uint32) (Episode, error) {
	switch v {
	case 0, 0xFF:
		return Ep1, nil
	case 1:
		return Ep2, nil
	case 2:
		return Ep4, nil
	default:
		return 0, fmt.Errorf("invalid set_episode literal %d", v)
	}
}

// FindEpisode statically determines the episode a quest targets by
// linearly decoding function 0 up to a terminating ret, collecting the
// literal of every set_episode opcode on the way, per spec §4.3. More
// than one distinct episode is a MultipleEpisodesError.
//
// The walk never builds labels or renderings; it reuses the same
// opcode dictionary and argument-skipping rules as the disassembler.
// Any decode error is swallowed and the header's episode field is
// returned instead, with a non-empty warning message.
func FindEpisode(data []byte, b Build, langOverride uint8) (ep Episode, warning string, err error) {
	hdr, err := parseHeader(data, b)
	if err != nil {
		return 0, "", err
	}

	codeStart := hdr.CodeOffset
	codeEnd := hdr.FunctionTableOffset
	if codeEnd > uint32(len(data)) || codeStart > codeEnd {
		return 0, "", &MalformedBinaryError{Reason: "header code region out of bounds"}
	}
	code := data[codeStart:codeEnd]

	fnTable, err := readFunctionTable(data, hdr)
	if err != nil || len(fnTable) == 0 || fnTable[0] == sentinelOffset || fnTable[0] >= uint32(len(code)) {
		return hdr.Episode, "could not locate function 0", nil
	}

	lang := effectiveLanguage(b, hdr.Language, langOverride)
	enc := toTextEnc(b.stringEncoding(lang))

	found := map[Episode]bool{}
	offset := fnTable[0]
	r := newByteReader(code)
	r.seek(offset)

	for {
		op, def, derr := decodeOpcodeHeader(r, b)
		if derr != nil {
			return hdr.Episode, fmt.Sprintf("decode error: %v", derr), nil
		}
		if def == nil {
			return hdr.Episode, fmt.Sprintf("unknown opcode %04X", op), nil
		}

		setEpisodeVal, hasSetEpisode, serr := skipArgsTrackingEpisode(r, def, b, enc)
		if serr != nil {
			return hdr.Episode, fmt.Sprintf("decode error: %v", serr), nil
		}
		if hasSetEpisode {
			e, eerr := episodeFromLiteral(setEpisodeVal)
			if eerr != nil {
				return hdr.Episode, eerr.Error(), nil
			}
			found[e] = true
		}

		if def.Flags&fRet != 0 {
			break
		}
		if r.eof() {
			return hdr.Episode, "reached end of code without ret", nil
		}
	}

	switch len(found) {
	case 0:
		return hdr.Episode, "", nil
	case 1:
		for e := range found {
			return e, "", nil
		}
	}
	return 0, "", &MultipleEpisodesError{}
}
