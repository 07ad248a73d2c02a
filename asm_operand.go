package quest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/questscript/questasm/internal/textenc"
)

// regToken is the parsed form of one register operand token, before it
// is resolved against the allocator (spec §6 "Registers").
type regToken struct {
	numeric bool
	number  int
	name    string
	pinned  bool
	pin     int
	anon    bool // a placeholder implied by a fixed-chain's count, never named by the user
}

// parseRegToken parses one of `rN`, `fN`, `r:name`, `r:name@N`.
func parseRegToken(tok string) (regToken, error) {
	tok = strings.TrimSpace(tok)
	if strings.HasPrefix(tok, "r:") {
		rest := tok[2:]
		name := rest
		var pinned bool
		var pin int
		if idx := strings.IndexByte(rest, '@'); idx >= 0 {
			name = rest[:idx]
			n, err := parseIntLiteral(rest[idx+1:])
			if err != nil {
				return regToken{}, fmt.Errorf("bad register pin in %q: %w", tok, err)
			}
			pinned = true
			pin = int(n)
		}
		if name == "" {
			return regToken{}, fmt.Errorf("empty register name in %q", tok)
		}
		return regToken{name: name, pinned: pinned, pin: pin}, nil
	}
	if len(tok) >= 2 && (tok[0] == 'r' || tok[0] == 'f') {
		if n, err := strconv.Atoi(tok[1:]); err == nil {
			return regToken{numeric: true, number: n}, nil
		}
	}
	return regToken{}, &ArgTypeMismatchError{Want: "register", Got: tok}
}

// parseIntLiteral parses a C-style integer literal: `0x`/`0X` hex, a
// leading `0` for octal, or plain decimal, with an optional sign.
func parseIntLiteral(tok string) (int64, error) {
	tok = strings.TrimSpace(tok)
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, &ArgTypeMismatchError{Want: "integer literal", Got: tok}
	}
	return v, nil
}

func parseFloatLiteral(tok string) (float32, error) {
	tok = strings.TrimSpace(tok)
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, &ArgTypeMismatchError{Want: "float literal", Got: tok}
	}
	return float32(v), nil
}

// parseStringLiteral parses a quoted string literal or a `bin:"..."`
// raw-bytes literal, applying the shared escape grammar to both
// (spec §6).
func parseStringLiteral(tok string) (data string, isBin bool, err error) {
	tok = strings.TrimSpace(tok)
	isBin = strings.HasPrefix(tok, "bin:")
	if isBin {
		tok = tok[len("bin:"):]
	}
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", false, &ArgTypeMismatchError{Want: "string literal", Got: tok}
	}
	inner := tok[1 : len(tok)-1]
	unescaped, err := textenc.UnescapeSource(inner)
	if err != nil {
		return "", false, err
	}
	return unescaped, isBin, nil
}

func stripBrackets(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 && tok[0] == '[' && tok[len(tok)-1] == ']' {
		return strings.TrimSpace(tok[1 : len(tok)-1]), true
	}
	return tok, false
}

func stripParens(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	if len(tok) >= 2 && tok[0] == '(' && tok[len(tok)-1] == ')' {
		return strings.TrimSpace(tok[1 : len(tok)-1]), true
	}
	return tok, false
}

// parseChainTokens parses one REG_SET_FIXED/REG32_SET_FIXED operand
// into exactly count register tokens, accepting the three syntaxes in
// spec §4.5: an explicit `(a, b, c)` tuple, a `rA-rZ` numeric range, or
// a single `rA` implying count-1 anonymous adjacent successors.
func parseChainTokens(text string, count int) ([]regToken, error) {
	text = strings.TrimSpace(text)

	if inner, ok := stripParens(text); ok {
		parts := splitOperands(inner)
		if len(parts) != count {
			return nil, &ArgCountMismatchError{Mnemonic: "register tuple", Want: count, Got: len(parts)}
		}
		out := make([]regToken, len(parts))
		for i, p := range parts {
			t, err := parseRegToken(p)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}

	if idx := strings.IndexByte(text, '-'); idx > 0 {
		startTok, err1 := parseRegToken(text[:idx])
		endTok, err2 := parseRegToken(text[idx+1:])
		if err1 == nil && err2 == nil && startTok.numeric && endTok.numeric {
			n := endTok.number - startTok.number + 1
			if n != count {
				return nil, &ArgCountMismatchError{Mnemonic: "register range", Want: count, Got: n}
			}
			out := make([]regToken, count)
			for i := 0; i < count; i++ {
				out[i] = regToken{numeric: true, number: startTok.number + i}
			}
			return out, nil
		}
	}

	first, err := parseRegToken(text)
	if err != nil {
		return nil, err
	}
	out := make([]regToken, count)
	out[0] = first
	for i := 1; i < count; i++ {
		out[i] = regToken{anon: true}
	}
	return out, nil
}
