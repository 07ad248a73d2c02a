// Package textenc converts between the wire text encodings used by
// quest-script headers and C-strings (Shift-JIS, ISO-8859-1, and
// UTF-16LE) and Go's native UTF-8 strings.
package textenc

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies one of the three wire text encodings.
type Encoding int

const (
	ShiftJIS Encoding = iota
	ISO8859
	UTF16LE
)

func codec(e Encoding) encoding.Encoding {
	switch e {
	case ShiftJIS:
		return japanese.ShiftJIS
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	default:
		return charmap.ISO8859_1
	}
}

// Decode converts raw wire bytes (already stripped of any terminating
// NUL) to a UTF-8 Go string.
func Decode(raw []byte, e Encoding) (string, error) {
	out, err := codec(e).NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Encode converts a UTF-8 Go string to raw wire bytes, without any
// terminator.
func Encode(s string, e Encoding) ([]byte, error) {
	return codec(e).NewEncoder().Bytes([]byte(s))
}

// UnitSize returns the number of bytes per NUL terminator unit: 2 for
// UTF-16LE, 1 otherwise.
func (e Encoding) UnitSize() int {
	if e == UTF16LE {
		return 2
	}
	return 1
}

// EncodeFixed encodes s and pads/truncates the result to exactly
// byteLen bytes, NUL-padded, matching fixed-width header text fields.
func EncodeFixed(s string, e Encoding, byteLen int) ([]byte, error) {
	raw, err := Encode(s, e)
	if err != nil {
		return nil, err
	}
	out := make([]byte, byteLen)
	n := len(raw)
	if n > byteLen {
		n = byteLen
	}
	copy(out, raw[:n])
	return out, nil
}

// DecodeFixed decodes a fixed-width field, stopping at the first NUL
// terminator unit.
func DecodeFixed(raw []byte, e Encoding) (string, error) {
	unit := e.UnitSize()
	end := len(raw)
	for i := 0; i+unit <= len(raw); i += unit {
		if allZero(raw[i : i+unit]) {
			end = i
			break
		}
	}
	return Decode(raw[:end], e)
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// DecodeCString decodes a NUL-terminated byte sequence that has
// already had its terminator stripped by the caller (the disassembler
// reads the terminator itself to find the boundary).
func DecodeCString(raw []byte, e Encoding) (string, error) {
	return Decode(raw, e)
}

// EncodeCString encodes s and appends the encoding-appropriate NUL
// terminator (one zero byte, or two for UTF-16LE).
func EncodeCString(s string, e Encoding) ([]byte, error) {
	raw, err := Encode(s, e)
	if err != nil {
		return nil, err
	}
	term := make([]byte, e.UnitSize())
	return append(raw, term...), nil
}

// EscapeForSource re-escapes a decoded string for round-trippable
// source rendering: backslash, double-quote, newline, carriage return
// and tab. Other control characters are written unchanged.
func EscapeForSource(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UnescapeSource reverses EscapeForSource plus the \xHH and \' forms
// accepted by the assembler's string literal grammar.
func UnescapeSource(s string) (string, error) {
	var b bytes.Buffer
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case '\'':
			b.WriteByte('\'')
			i += 2
		case '"':
			b.WriteByte('"')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		case 'x':
			if i+3 < len(s) {
				hi := hexVal(s[i+2])
				lo := hexVal(s[i+3])
				if hi >= 0 && lo >= 0 {
					b.WriteByte(byte(hi<<4 | lo))
					i += 4
					continue
				}
			}
			b.WriteByte(s[i+1])
			i += 2
		default:
			b.WriteByte(s[i+1])
			i += 2
		}
	}
	return b.String(), nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}
