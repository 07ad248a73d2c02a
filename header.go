package quest

import "github.com/questscript/questasm/internal/textenc"

const sentinelOffset = 0xFFFFFFFF

// Header holds the fields common to every header variant plus the
// per-family extras (spec §3). Fields not present in a given build's
// variant are left at their zero value.
type Header struct {
	Build               Build
	CodeOffset          uint32
	FunctionTableOffset uint32
	TotalSize           uint32
	Language            uint8
	QuestNum            uint16
	Episode             Episode
	MaxPlayers          uint8
	Joinable            bool
	Name                string
	ShortDesc           string
	LongDesc            string
}

type variantLayout struct {
	nameLen, shortLen, longLen int
	questNum16                 bool
	hasEpisode                 bool
	hasMaxPlayers              bool
}

func layoutFor(v HeaderVariant) variantLayout {
	switch v {
	case HeaderNTE:
		return variantLayout{nameLen: 32, shortLen: 128, longLen: 288}
	case HeaderV1V2DC:
		return variantLayout{nameLen: 32, shortLen: 128, longLen: 288}
	case HeaderV2PC:
		return variantLayout{nameLen: 64, shortLen: 256, longLen: 576, hasEpisode: true}
	case HeaderV3GCXB:
		return variantLayout{nameLen: 32, shortLen: 128, longLen: 288, hasEpisode: true}
	case HeaderV4BB:
		return variantLayout{nameLen: 64, shortLen: 256, longLen: 576,
			questNum16: true, hasEpisode: true, hasMaxPlayers: true}
	default:
		return variantLayout{nameLen: 32, shortLen: 128, longLen: 288}
	}
}

func (l variantLayout) headerSize() int {
	size := 4 + 4 + 4 + 1 // code_offset, function_table_offset, total_size, language
	if l.questNum16 {
		size += 2
	} else {
		size++
	}
	if l.hasEpisode {
		size++
	}
	if l.hasMaxPlayers {
		size += 2 // max_players + joinable
	}
	return size + l.nameLen + l.shortLen + l.longLen
}

func toTextEnc(e TextEncoding) textenc.Encoding {
	switch e {
	case EncodingShiftJIS:
		return textenc.ShiftJIS
	case EncodingUTF16LE:
		return textenc.UTF16LE
	default:
		return textenc.ISO8859
	}
}

// effectiveLanguage resolves the language byte per spec §4.2 Pass 0:
// override if not 0xFF, else the header language clamped to the
// build's supported range, else 1.
func effectiveLanguage(b Build, headerLang uint8, override uint8) uint8 {
	if override != 0xFF {
		return override
	}
	if headerLang > b.maxLanguage() {
		return 1
	}
	return headerLang
}

// parseHeader decodes the build-appropriate header variant at the
// start of data.
func parseHeader(data []byte, b Build) (*Header, error) {
	variant := b.headerVariant()
	layout := layoutFor(variant)
	if layout.headerSize() > len(data) {
		return nil, &MalformedBinaryError{Reason: "buffer shorter than header"}
	}

	r := newByteReader(data)
	h := &Header{Build: b}

	var err error
	if h.CodeOffset, err = r.u32le(); err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated code_offset"}
	}
	if h.FunctionTableOffset, err = r.u32le(); err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated function_table_offset"}
	}
	if h.TotalSize, err = r.u32le(); err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated total_size"}
	}
	lang, err := r.u8()
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated language byte"}
	}
	h.Language = lang

	if layout.questNum16 {
		qn, err := r.u16le()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated quest_num"}
		}
		h.QuestNum = qn
	} else {
		qn, err := r.u8()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated quest_num"}
		}
		h.QuestNum = uint16(qn)
	}

	if layout.hasEpisode {
		eb, err := r.u8()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated episode byte"}
		}
		switch eb {
		case 0, 0xFF:
			h.Episode = Ep1
		case 1:
			h.Episode = Ep2
		case 2:
			h.Episode = Ep4
		default:
			h.Episode = Ep1
		}
	} else {
		h.Episode = Ep1
	}

	if layout.hasMaxPlayers {
		mp, err := r.u8()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated max_players"}
		}
		j, err := r.u8()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated joinable flag"}
		}
		h.MaxPlayers = mp
		h.Joinable = j != 0
	}

	effLang := effectiveLanguage(b, h.Language, 0xFF)
	enc := toTextEnc(b.stringEncoding(effLang))

	nameRaw, err := r.sub(uint32(layout.nameLen))
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated name field"}
	}
	h.Name, err = textenc.DecodeFixed(nameRaw.buf, enc)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "undecodable name field: " + err.Error()}
	}

	shortRaw, err := r.sub(uint32(layout.shortLen))
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated short_desc field"}
	}
	h.ShortDesc, err = textenc.DecodeFixed(shortRaw.buf, enc)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "undecodable short_desc field: " + err.Error()}
	}

	longRaw, err := r.sub(uint32(layout.longLen))
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "truncated long_desc field"}
	}
	h.LongDesc, err = textenc.DecodeFixed(longRaw.buf, enc)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "undecodable long_desc field: " + err.Error()}
	}

	if h.FunctionTableOffset > h.TotalSize || h.CodeOffset > h.FunctionTableOffset {
		return nil, &MalformedBinaryError{Reason: "header offsets out of order"}
	}

	return h, nil
}

// writeHeader encodes h into its build-appropriate wire layout.
func writeHeader(h *Header) ([]byte, error) {
	variant := h.Build.headerVariant()
	layout := layoutFor(variant)

	buf := make([]byte, 0, layout.headerSize())
	buf = appendU32LE(buf, h.CodeOffset)
	buf = appendU32LE(buf, h.FunctionTableOffset)
	buf = appendU32LE(buf, h.TotalSize)
	buf = appendU8(buf, h.Language)

	if layout.questNum16 {
		buf = appendU16LE(buf, h.QuestNum)
	} else {
		buf = appendU8(buf, uint8(h.QuestNum))
	}

	if layout.hasEpisode {
		var eb uint8
		switch h.Episode {
		case Ep2:
			eb = 1
		case Ep4:
			eb = 2
		default:
			eb = 0
		}
		buf = appendU8(buf, eb)
	}

	if layout.hasMaxPlayers {
		buf = appendU8(buf, h.MaxPlayers)
		j := uint8(0)
		if h.Joinable {
			j = 1
		}
		buf = appendU8(buf, j)
	}

	effLang := effectiveLanguage(h.Build, h.Language, 0xFF)
	enc := toTextEnc(h.Build.stringEncoding(effLang))

	nameBytes, err := textenc.EncodeFixed(h.Name, enc, layout.nameLen)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "cannot encode name: " + err.Error()}
	}
	buf = append(buf, nameBytes...)

	shortBytes, err := textenc.EncodeFixed(h.ShortDesc, enc, layout.shortLen)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "cannot encode short_desc: " + err.Error()}
	}
	buf = append(buf, shortBytes...)

	longBytes, err := textenc.EncodeFixed(h.LongDesc, enc, layout.longLen)
	if err != nil {
		return nil, &MalformedBinaryError{Reason: "cannot encode long_desc: " + err.Error()}
	}
	buf = append(buf, longBytes...)

	return buf, nil
}

// readFunctionTable reads the u32LE function-table array following the
// header, per spec §6: length = (total_size - function_table_offset) / 4.
func readFunctionTable(data []byte, h *Header) ([]uint32, error) {
	if h.FunctionTableOffset > uint32(len(data)) || h.TotalSize > uint32(len(data)) {
		return nil, &MalformedBinaryError{Reason: "function table out of bounds"}
	}
	n := (h.TotalSize - h.FunctionTableOffset) / 4
	r := newByteReader(data)
	r.seek(h.FunctionTableOffset)
	table := make([]uint32, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := r.u32le()
		if err != nil {
			return nil, &MalformedBinaryError{Reason: "truncated function table"}
		}
		table = append(table, v)
	}
	return table, nil
}

// writeFunctionTable packs indices 0..maxIndex into a u32LE array,
// substituting the sentinel for indices with no defined offset.
func writeFunctionTable(offsets map[int]uint32, maxIndex int) []byte {
	buf := make([]byte, 0, (maxIndex+1)*4)
	for i := 0; i <= maxIndex; i++ {
		if off, ok := offsets[i]; ok {
			buf = appendU32LE(buf, off)
		} else {
			buf = appendU32LE(buf, sentinelOffset)
		}
	}
	return buf
}
