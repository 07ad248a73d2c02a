package quest

import "testing"

// TestOpcodeDispatchUniquenessAllBuilds is spec §8's "Opcode dispatch
// uniqueness" universal property: no two dictionary rows active in the
// same build may share an opcode or a mnemonic.
func TestOpcodeDispatchUniquenessAllBuilds(t *testing.T) {
	if err := ValidateDictionary(); err != nil {
		t.Fatalf("dictionary validation failed: %v", err)
	}
}

func TestLookupMnemonicAcceptsPrimaryAndQeditNames(t *testing.T) {
	def, err := lookupMnemonic(BuildDCV2, "get_difficulty_level_v2")
	if err != nil {
		t.Fatalf("lookup by primary name failed: %v", err)
	}
	if def.QeditName != "get_difficulty" {
		t.Fatalf("unexpected def: %+v", def)
	}
	defByQedit, err := lookupMnemonic(BuildDCV2, "get_difficulty")
	if err != nil {
		t.Fatalf("lookup by qedit name failed: %v", err)
	}
	if defByQedit != def {
		t.Fatalf("qedit lookup resolved a different row")
	}
}

func TestLookupMnemonicRejectsWrongBuild(t *testing.T) {
	if _, err := lookupMnemonic(BuildBBV4, "get_difficulty_level_v2"); err == nil {
		t.Fatalf("expected get_difficulty_level_v2 to be unknown on BB_V4")
	}
}

// TestOpcodePolymorphismSelectsByBuild exercises opcode 0x0009, which
// has two dictionary rows with different argument shapes gated into
// disjoint build sets (spec §9 "Opcode polymorphism across builds").
func TestOpcodePolymorphismSelectsByBuild(t *testing.T) {
	def, err := lookupOpcode(BuildGCV3, 0x0009)
	if err != nil || def == nil {
		t.Fatalf("lookupOpcode(GC_V3, 0x0009) = %v, %v", def, err)
	}
	if def.Args[0].Type != ArgReg {
		t.Errorf("GC_V3 row should take REG, got %v", def.Args[0].Type)
	}

	def, err = lookupOpcode(BuildBBV4, 0x0009)
	if err != nil || def == nil {
		t.Fatalf("lookupOpcode(BB_V4, 0x0009) = %v, %v", def, err)
	}
	if def.Args[0].Type != ArgReg32 {
		t.Errorf("BB_V4 row should take REG32, got %v", def.Args[0].Type)
	}
}
