package quest

import (
	"fmt"
	"sync"
)

// buildIndex holds the per-build opcode->def and mnemonic->def lookup
// maps, lazily constructed once per build and thereafter read-only
// (spec §5).
type buildIndex struct {
	byOpcode   map[uint16]*OpDef
	byMnemonic map[string]*OpDef
}

var (
	indexMu    sync.Mutex
	indexCache = map[Build]*buildIndex{}
)

// indexFor returns (building it on first use) the lookup maps for b. It
// fails with a DuplicateOpcodeError/DuplicateMnemonicError if two rows
// active in b collide, enforcing the dispatch-uniqueness invariant
// (spec §8).
func indexFor(b Build) (*buildIndex, error) {
	indexMu.Lock()
	defer indexMu.Unlock()

	if idx, ok := indexCache[b]; ok {
		return idx, nil
	}

	idx := &buildIndex{
		byOpcode:   make(map[uint16]*OpDef),
		byMnemonic: make(map[string]*OpDef),
	}

	for i := range allOpcodes {
		def := &allOpcodes[i]
		if !def.activeIn(b) {
			continue
		}
		if existing, ok := idx.byOpcode[def.Opcode]; ok {
			return nil, &DuplicateOpcodeError{
				Build: b, Opcode: def.Opcode,
				First: existing.Name, Second: def.Name,
			}
		}
		idx.byOpcode[def.Opcode] = def

		names := []string{def.Name}
		if def.QeditName != "" {
			names = append(names, def.QeditName)
		}
		for _, n := range names {
			if existing, ok := idx.byMnemonic[n]; ok {
				return nil, &DuplicateMnemonicError{
					Build: b, Mnemonic: n,
					First: existing.Name, Second: def.Name,
				}
			}
			idx.byMnemonic[n] = def
		}
	}

	indexCache[b] = idx
	return idx, nil
}

// lookupOpcode resolves the opcode definition active for b, or nil if
// the opcode is unknown to that build.
func lookupOpcode(b Build, opcode uint16) (*OpDef, error) {
	idx, err := indexFor(b)
	if err != nil {
		return nil, err
	}
	return idx.byOpcode[opcode], nil
}

// lookupMnemonic resolves a mnemonic (either Name or QeditName) to its
// definition for b.
func lookupMnemonic(b Build, mnemonic string) (*OpDef, error) {
	idx, err := indexFor(b)
	if err != nil {
		return nil, err
	}
	def, ok := idx.byMnemonic[mnemonic]
	if !ok {
		return nil, &UnknownMnemonicError{Build: b, Mnemonic: mnemonic}
	}
	return def, nil
}

// mnemonicFor returns the mnemonic to render for def given the caller's
// style preference (spec §4.2, §9b: qedit_name is historical and
// partially inconsistent; the disassembler selects by caller flag).
func mnemonicFor(def *OpDef, style MnemonicStyle) string {
	if style == MnemonicQedit && def.QeditName != "" {
		return def.QeditName
	}
	return def.Name
}

// MnemonicStyle selects which mnemonic spelling the disassembler renders.
type MnemonicStyle int

const (
	MnemonicPrimary MnemonicStyle = iota
	MnemonicQedit
)

// ValidateDictionary builds the index for every active build and
// returns the first uniqueness violation found, if any. Intended for
// startup self-checks and tests (spec §8 "Opcode dispatch uniqueness").
func ValidateDictionary() error {
	for b := BuildDCNTE; b < BuildPatch1; b++ {
		if _, err := indexFor(b); err != nil {
			return fmt.Errorf("build %s: %w", b, err)
		}
	}
	return nil
}
