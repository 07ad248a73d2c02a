package quest

import "fmt"

// UnknownBuildError is returned when .version names an unsupported or
// reserved build.
type UnknownBuildError struct{ Name string }

func (e *UnknownBuildError) Error() string {
	return fmt.Sprintf("unknown or unsupported build %q", e.Name)
}

// MissingDirectiveError is returned when a required metadata directive
// (.quest_num, .name) is absent.
type MissingDirectiveError struct{ Directive string }

func (e *MissingDirectiveError) Error() string {
	return fmt.Sprintf("missing required directive %s", e.Directive)
}

// UnterminatedCommentError is returned when a /* */ block comment is
// never closed.
type UnterminatedCommentError struct{ Line int }

func (e *UnterminatedCommentError) Error() string {
	return fmt.Sprintf("unterminated block comment starting at line %d", e.Line)
}

// DuplicateLabelError is returned when two label definitions share a name.
type DuplicateLabelError struct{ Name string }

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("duplicate label %q", e.Name)
}

// DuplicateIndexError is returned when two labels are pinned to the
// same function-table index.
type DuplicateIndexError struct {
	Index       int
	First, Second string
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("labels %q and %q both pinned to index %d", e.First, e.Second, e.Index)
}

// UndefinedLabelError is returned when an instruction references a
// label that was never declared.
type UndefinedLabelError struct{ Name string }

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("undefined label %q", e.Name)
}

// UnknownMnemonicError is returned when a mnemonic is not valid for the
// selected build.
type UnknownMnemonicError struct {
	Build    Build
	Mnemonic string
}

func (e *UnknownMnemonicError) Error() string {
	return fmt.Sprintf("unknown mnemonic %q for build %s", e.Mnemonic, e.Build)
}

// ArgCountMismatchError is returned when the number of arguments
// disagrees with the opcode's row.
type ArgCountMismatchError struct {
	Mnemonic       string
	Want, Got int
}

func (e *ArgCountMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d argument(s), got %d", e.Mnemonic, e.Want, e.Got)
}

// ArgTypeMismatchError is returned when a register/string/number is
// required but a different kind of token was supplied. Callers wrap it
// with argError/lineError for position context, so it carries only the
// shape mismatch itself.
type ArgTypeMismatchError struct {
	Want string
	Got  string
}

func (e *ArgTypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %q", e.Want, e.Got)
}

// RegisterConflictError is returned when register pinning or adjacency
// cannot be satisfied, or the 256-slot space is exhausted.
type RegisterConflictError struct{ Reason string }

func (e *RegisterConflictError) Error() string {
	return fmt.Sprintf("register allocation conflict: %s", e.Reason)
}

// MalformedBinaryError is returned when header fields point outside
// the buffer, a CSTRING is unterminated, or an opcode prefix is invalid.
type MalformedBinaryError struct{ Reason string }

func (e *MalformedBinaryError) Error() string {
	return fmt.Sprintf("malformed binary: %s", e.Reason)
}

// MultipleEpisodesError is returned when the episode detector finds
// more than one distinct set_episode literal in function 0.
type MultipleEpisodesError struct{}

func (e *MultipleEpisodesError) Error() string {
	return "function 0 sets more than one distinct episode"
}

// ExternalAssemblerMissingError is returned when .include_native is
// used but no native backend was supplied for the required CPU family.
type ExternalAssemblerMissingError struct{ Family string }

func (e *ExternalAssemblerMissingError) Error() string {
	return fmt.Sprintf("no native assembler registered for CPU family %q", e.Family)
}

// DuplicateOpcodeError signals an opcode-dictionary construction
// failure: two rows active in the same build share an opcode number.
type DuplicateOpcodeError struct {
	Build         Build
	Opcode        uint16
	First, Second string
}

func (e *DuplicateOpcodeError) Error() string {
	return fmt.Sprintf("build %s: opcode %04X claimed by both %q and %q", e.Build, e.Opcode, e.First, e.Second)
}

// DuplicateMnemonicError signals an opcode-dictionary construction
// failure: two rows active in the same build share a mnemonic (Name or
// QeditName).
type DuplicateMnemonicError struct {
	Build         Build
	Mnemonic      string
	First, Second string
}

func (e *DuplicateMnemonicError) Error() string {
	return fmt.Sprintf("build %s: mnemonic %q claimed by both %q and %q", e.Build, e.Mnemonic, e.First, e.Second)
}

// lineError wraps err with "(line N)" context, per the assembler's
// propagation policy (spec §7).
func lineError(line int, err error) error {
	return fmt.Errorf("(line %d) %w", line, err)
}

// argError wraps err with "(arg K)" context.
func argError(arg int, err error) error {
	return fmt.Errorf("(arg %d) %w", arg, err)
}
