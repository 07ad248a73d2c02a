package quest

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AssembleOptions configures a single Assemble call. IncludeBin and
// NativeAssembler are external collaborators (spec §1, §5, §9): file
// discovery and native-CPU assembly are caller-visible capabilities,
// never performed implicitly by the core.
type AssembleOptions struct {
	// IncludeBin reads the raw bytes named by a `.include_bin` directive.
	IncludeBin func(filename string) ([]byte, error)
	// NativeAssembler compiles the text named by `.include_native` for
	// the given CPU family ("ppc", "x86", "sh4"). nil means no native
	// backend is available.
	NativeAssembler func(family, filename string) ([]byte, error)
}

// Assemble compiles a textual quest-script source into a compiled
// binary (spec §4.4-4.6). The target build is taken entirely from the
// source's own `.version` directive.
func Assemble(src string, opts AssembleOptions) ([]byte, error) {
	stripped, err := stripComments(src)
	if err != nil {
		return nil, err
	}
	lines := tokenizeLines(stripped)

	hdr, versionName, seen, codeLines, err := collectHeaderDirectives(lines)
	if err != nil {
		return nil, err
	}

	build, ok := ParseBuild(versionName)
	if !ok {
		return nil, &UnknownBuildError{Name: versionName}
	}
	hdr.Build = build
	if !seen[".name"] {
		return nil, &MissingDirectiveError{Directive: ".name"}
	}
	if !seen[".quest_num"] {
		return nil, &MissingDirectiveError{Directive: ".quest_num"}
	}

	labels, err := collectLabels(codeLines)
	if err != nil {
		return nil, err
	}

	lang := effectiveLanguage(build, hdr.Language, 0xFF)
	ctx := &asmCtx{build: build, lang: lang, labels: labels, ra: newRegisterAllocator()}

	if err := emitCode(ctx, build, codeLines, opts); err != nil {
		return nil, err
	}

	for len(ctx.code)%4 != 0 {
		ctx.code = append(ctx.code, 0)
	}

	if err := ctx.ra.resolve(); err != nil {
		return nil, err
	}
	if err := ctx.ra.patchBytes(ctx.code); err != nil {
		return nil, err
	}

	offsets := make(map[int]uint32)
	maxIndex := 0
	for _, l := range labels {
		offsets[l.index] = l.offset
		if l.index > maxIndex {
			maxIndex = l.index
		}
	}
	fnTable := writeFunctionTable(offsets, maxIndex)

	variant := build.headerVariant()
	layout := layoutFor(variant)
	hdr.CodeOffset = uint32(layout.headerSize())
	hdr.FunctionTableOffset = hdr.CodeOffset + uint32(len(ctx.code))
	hdr.TotalSize = hdr.FunctionTableOffset + uint32(len(fnTable))

	headerBytes, err := writeHeader(hdr)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(headerBytes)+len(ctx.code)+len(fnTable))
	out = append(out, headerBytes...)
	out = append(out, ctx.code...)
	out = append(out, fnTable...)
	return out, nil
}

// collectHeaderDirectives separates the header metadata directives
// (spec §4.4 "First pass") from everything else (labels, code-section
// directives, instructions), which is returned in source order as
// codeLines for the later passes.
func collectHeaderDirectives(lines []sourceLine) (*Header, string, map[string]bool, []sourceLine, error) {
	hdr := &Header{Episode: Ep1}
	versionName := ""
	seen := make(map[string]bool)
	var codeLines []sourceLine

	for _, ln := range lines {
		name, rest := splitMnemonicAndOperands(ln.text)
		switch name {
		case ".version":
			versionName = rest
			seen[name] = true
		case ".name":
			s, _, err := parseStringLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.Name = s
			seen[name] = true
		case ".short_desc":
			s, _, err := parseStringLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.ShortDesc = s
			seen[name] = true
		case ".long_desc":
			s, _, err := parseStringLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.LongDesc = s
			seen[name] = true
		case ".quest_num":
			v, err := parseIntLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.QuestNum = uint16(v)
			seen[name] = true
		case ".language":
			v, err := parseIntLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.Language = uint8(v)
			seen[name] = true
		case ".episode":
			v, err := parseIntLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			ep, err := episodeFromLiteral(uint32(v))
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.Episode = ep
			seen[name] = true
		case ".max_players":
			v, err := parseIntLiteral(rest)
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, err)
			}
			hdr.MaxPlayers = uint8(v)
			seen[name] = true
		case ".joinable":
			b, err := strconv.ParseBool(strings.TrimSpace(rest))
			if err != nil {
				return nil, "", nil, nil, lineError(ln.no, fmt.Errorf("bad .joinable value %q", rest))
			}
			hdr.Joinable = b
			seen[name] = true
		default:
			codeLines = append(codeLines, ln)
		}
	}
	return hdr, versionName, seen, codeLines, nil
}

// collectLabels implements spec §4.4's "Second pass": identify label
// definitions, enforce unique names/indices, and auto-assign indices
// to unpinned labels (lowest unused nonnegative integer in ascending
// name order). `start` receives index 0 whether pinned explicitly or not.
func collectLabels(codeLines []sourceLine) (map[string]*asmLabel, error) {
	labels := make(map[string]*asmLabel)
	var order []string
	reserved := make(map[int]string)

	for _, ln := range codeLines {
		name, pin, isPin, ok := parseLabelDef(ln.text)
		if !ok {
			continue
		}
		if _, dup := labels[name]; dup {
			return nil, lineError(ln.no, &DuplicateLabelError{Name: name})
		}
		l := &asmLabel{name: name, index: -1}
		if isPin {
			if existing, taken := reserved[pin]; taken {
				return nil, lineError(ln.no, &DuplicateIndexError{Index: pin, First: existing, Second: name})
			}
			l.index = pin
			l.pinned = true
			reserved[pin] = name
		}
		labels[name] = l
		order = append(order, name)
	}

	if start, ok := labels["start"]; ok {
		if start.pinned && start.index != 0 {
			return nil, &DuplicateIndexError{Index: 0, First: "start", Second: start.name}
		}
		if !start.pinned {
			if existing, taken := reserved[0]; taken {
				return nil, &DuplicateIndexError{Index: 0, First: "start", Second: existing}
			}
			start.index = 0
			start.pinned = true
			reserved[0] = "start"
		}
	} else {
		return nil, fmt.Errorf(`label "start" must be defined`)
	}

	sort.Strings(order)
	next := 0
	for _, name := range order {
		l := labels[name]
		if l.pinned {
			continue
		}
		for {
			if _, taken := reserved[next]; !taken {
				break
			}
			next++
		}
		l.index = next
		reserved[next] = name
		next++
	}

	return labels, nil
}

// parseLabelDef recognizes a `name:` or `name@N:` label-definition line.
func parseLabelDef(text string) (name string, pin int, isPin bool, ok bool) {
	if !strings.HasSuffix(text, ":") {
		return "", 0, false, false
	}
	body := strings.TrimSuffix(text, ":")
	if body == "" || strings.ContainsAny(body, " \t") {
		return "", 0, false, false
	}
	if idx := strings.IndexByte(body, '@'); idx >= 0 {
		n, err := parseIntLiteral(body[idx+1:])
		if err != nil {
			return "", 0, false, false
		}
		return body[:idx], int(n), true, true
	}
	return body, 0, false, true
}

// emitCode implements spec §4.4's "Third pass": walk codeLines in
// order, recording each label's byte offset and emitting code-section
// directives and instructions.
func emitCode(ctx *asmCtx, build Build, codeLines []sourceLine, opts AssembleOptions) error {
	for _, ln := range codeLines {
		if name, _, _, ok := parseLabelDef(ln.text); ok {
			ctx.labels[name].offset = uint32(len(ctx.code))
			continue
		}

		directive, rest := splitMnemonicAndOperands(ln.text)
		switch directive {
		case ".data":
			b, err := decodeHexLiteral(rest)
			if err != nil {
				return lineError(ln.no, err)
			}
			ctx.code = append(ctx.code, b...)
			continue
		case ".zero":
			n, err := parseIntLiteral(rest)
			if err != nil {
				return lineError(ln.no, err)
			}
			ctx.code = append(ctx.code, make([]byte, n)...)
			continue
		case ".zero_until":
			n, err := parseIntLiteral(rest)
			if err != nil {
				return lineError(ln.no, err)
			}
			if uint32(n) < uint32(len(ctx.code)) {
				return lineError(ln.no, fmt.Errorf(".zero_until %d is behind current offset %d", n, len(ctx.code)))
			}
			ctx.code = append(ctx.code, make([]byte, uint32(n)-uint32(len(ctx.code)))...)
			continue
		case ".align":
			n, err := parseIntLiteral(rest)
			if err != nil {
				return lineError(ln.no, err)
			}
			for n > 0 && len(ctx.code)%int(n) != 0 {
				ctx.code = append(ctx.code, 0)
			}
			continue
		case ".include_bin":
			if opts.IncludeBin == nil {
				return lineError(ln.no, fmt.Errorf("no include_bin reader configured"))
			}
			b, err := opts.IncludeBin(unquoteFilename(rest))
			if err != nil {
				return lineError(ln.no, err)
			}
			ctx.code = append(ctx.code, b...)
			continue
		case ".include_native":
			family := nativeFamilyFor(build)
			if family == "" || opts.NativeAssembler == nil {
				return lineError(ln.no, &ExternalAssemblerMissingError{Family: family})
			}
			b, err := opts.NativeAssembler(family, unquoteFilename(rest))
			if err != nil {
				return lineError(ln.no, err)
			}
			ctx.code = append(ctx.code, b...)
			continue
		}

		if err := emitInstruction(ctx, build, ln); err != nil {
			return lineError(ln.no, err)
		}
	}
	return nil
}

func emitInstruction(ctx *asmCtx, build Build, ln sourceLine) error {
	mnemonic, operandText := splitMnemonicAndOperands(ln.text)
	def, err := lookupMnemonic(build, mnemonic)
	if err != nil {
		return err
	}
	operands := splitOperands(operandText)
	if len(operands) != len(def.Args) {
		return &ArgCountMismatchError{Mnemonic: mnemonic, Want: len(def.Args), Got: len(operands)}
	}

	// Push-args mode emits the push-primitive sequence for every operand
	// ahead of the consuming opcode (spec §4.5: "emits a push primitive
	// before emitting the consuming opcode afterwards").
	if build.HasArgs() && def.Flags&fArgs != 0 {
		if err := ctx.encodePushArgs(build, def.Args, operands); err != nil {
			return err
		}
	}

	if def.isTwoByte() {
		ctx.code = appendU16BE(ctx.code, def.Opcode)
	} else {
		ctx.code = appendU8(ctx.code, uint8(def.Opcode))
	}

	if build.HasArgs() && def.Flags&fArgs != 0 {
		return nil
	}
	for i, arg := range def.Args {
		if err := ctx.encodeDirectArg(arg, operands[i]); err != nil {
			return argError(i+1, err)
		}
	}
	return nil
}

func decodeHexLiteral(s string) ([]byte, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &ArgTypeMismatchError{Want: "hex byte string", Got: s}
	}
	return b, nil
}

func unquoteFilename(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// nativeFamilyFor selects the external CPU-family assembler for
// .include_native per build (spec §4.4): PPC for GC, x86 for XB, SH4
// for DC. Builds with no native family return "".
func nativeFamilyFor(b Build) string {
	switch b {
	case BuildGCXB:
		return "x86"
	case BuildGCNTE, BuildGCV3, BuildGCEp3:
		return "ppc"
	case BuildDCNTE, BuildDCProto, BuildDCV1, BuildDCV2:
		return "sh4"
	default:
		return ""
	}
}
