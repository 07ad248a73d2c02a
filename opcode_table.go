package quest

// allOpcodes is the static opcode dictionary. It is a representative
// subset of the full ~350-row historical table: it exercises every
// ArgType, every LabelType except LabelData and LabelCString (no row
// targets those), every Flags bit, and the version-gated
// polymorphism rule (opcode 0x0009 has two rows with different
// argument shapes, selected by build) without attempting to reproduce
// per-opcode game semantics, which spec.md explicitly places out of
// scope (§1 Non-goals).
var allOpcodes = []OpDef{
	{Opcode: 0x0000, Name: "nop", Flags: VAll},
	{Opcode: 0x0001, Name: "ret", Flags: VAll | fRet},

	{Opcode: 0x0003, Name: "jmp", QeditName: "jump",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelScript, Name: "target"}},
		Flags: VAll},
	{Opcode: 0x0004, Name: "call", QeditName: "call_func",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelScript, Name: "target"}},
		Flags: VAll},
	{Opcode: 0x0005, Name: "jmp_on",
		Args:  []OpArg{{Type: ArgLabel16Set, DataType: LabelScript, Name: "targets"}},
		Flags: VAll},

	{Opcode: 0x0006, Name: "set_episode",
		Args:  []OpArg{{Type: ArgInt32, Name: "episode"}},
		Flags: VAll | fSetEpisode},
	{Opcode: 0x0007, Name: "set_mainwarp",
		Args:  []OpArg{{Type: ArgInt32, Name: "area"}},
		Flags: VAll},
	{Opcode: 0x0008, Name: "set_register",
		Args:  []OpArg{{Type: ArgReg, Name: "dst"}, {Type: ArgInt32, Name: "value"}},
		Flags: VAll},

	// opcode 0x0009 is reused across version families with different
	// argument shapes: DC/PC/GC encode a one-byte register, BB encodes
	// a four-byte register. Both rows share a mnemonic and opcode but
	// are gated into disjoint build sets, so per-build lookup resolves
	// exactly one.
	{Opcode: 0x0009, Name: "set_floor_handler",
		Args:  []OpArg{{Type: ArgReg, Name: "floor"}, {Type: ArgInt32, Name: "handler"}},
		Flags: maskDCV2 | maskPCV2 | maskGCNTE | maskGCV3 | maskGCEp3 | maskGCXB},
	{Opcode: 0x0009, Name: "set_floor_handler",
		Args:  []OpArg{{Type: ArgReg32, Name: "floor"}, {Type: ArgInt32, Name: "handler"}},
		Flags: maskBBV4},

	{Opcode: 0x000A, Name: "foo",
		Args: []OpArg{
			{Type: ArgReg, Name: "a"},
			{Type: ArgRegSetFixed, Count: 3, Name: "bcd"},
		},
		Flags: VAll},
	{Opcode: 0x000B, Name: "reg_list",
		Args:  []OpArg{{Type: ArgRegSet, Name: "regs"}},
		Flags: VAll},
	{Opcode: 0x000C, Name: "set_regs32",
		Args:  []OpArg{{Type: ArgReg32SetFixed, Count: 2, Name: "pair"}},
		Flags: VAll},
	{Opcode: 0x000D, Name: "set_float",
		Args:  []OpArg{{Type: ArgReg, Name: "dst"}, {Type: ArgFloat32, Name: "value"}},
		Flags: VAll},
	{Opcode: 0x000E, Name: "print",
		Args:  []OpArg{{Type: ArgCString, Name: "text"}},
		Flags: VAll},
	{Opcode: 0x000F, Name: "set_byte",
		Args:  []OpArg{{Type: ArgReg, Name: "dst"}, {Type: ArgInt8, Name: "value"}},
		Flags: VAll},
	{Opcode: 0x0010, Name: "set_word",
		Args:  []OpArg{{Type: ArgReg, Name: "dst"}, {Type: ArgInt16, Name: "value"}},
		Flags: VAll},

	// Labels reached as typed data (spec §3, §4.2 annotated rendering).
	{Opcode: 0x0011, Name: "give_stats",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelPlayerStats, Name: "stats"}},
		Flags: VAll},
	{Opcode: 0x0012, Name: "set_visual",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelPlayerVisualConfig, Name: "visual"}},
		Flags: VAll},
	{Opcode: 0x0013, Name: "set_resist",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelResistData, Name: "resist"}},
		Flags: VAll},
	{Opcode: 0x0014, Name: "set_attack",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelAttackData, Name: "attack"}},
		Flags: VAll},
	{Opcode: 0x0015, Name: "set_movement",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelMovementData, Name: "movement"}},
		Flags: VAll},
	{Opcode: 0x0016, Name: "load_image",
		Args:  []OpArg{{Type: ArgLabel32, DataType: LabelImageData, Name: "image"}},
		Flags: VAll},

	// Argument-push primitives (F_PASS), V3+ only (spec §4.2, §4.5, §9).
	{Opcode: 0x0048, Name: "arg_pushb",
		Args:  []OpArg{{Type: ArgInt8, Name: "value"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x0049, Name: "arg_pushw",
		Args:  []OpArg{{Type: ArgInt16, Name: "value"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x004A, Name: "arg_pushl",
		Args:  []OpArg{{Type: ArgInt32, Name: "value"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x004B, Name: "arg_pushr",
		Args:  []OpArg{{Type: ArgReg, Name: "reg"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x004C, Name: "arg_pusha",
		Args:  []OpArg{{Type: ArgReg, Name: "reg"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x004D, Name: "arg_pusho",
		Args:  []OpArg{{Type: ArgLabel16, DataType: LabelScript, Name: "label"}},
		Flags: V3ToV4 | fPass},
	{Opcode: 0x004E, Name: "arg_pushs",
		Args:  []OpArg{{Type: ArgCString, Name: "text"}},
		Flags: V3ToV4 | fPass},

	// unknown_f8f2: a two-byte (0xF8xx) opcode whose label target
	// accumulates an array-of-4xf32-record annotation.
	{Opcode: 0xF8F2, Name: "unknown_f8f2",
		Args:  []OpArg{{Type: ArgLabel32, DataType: LabelUnknownF8F2Data, Name: "records"}},
		Flags: VAll},

	// get_difficulty_level_v2: two-byte opcode specific to the DC/PC V2
	// generation (spec §8 scenario 3: bytes "F8 08 05").
	{Opcode: 0xF808, Name: "get_difficulty_level_v2", QeditName: "get_difficulty",
		Args:  []OpArg{{Type: ArgReg, Name: "dst"}},
		Flags: maskDCV2 | maskPCV2},

	// message: direct-decode on pre-V3 builds, push-args consumer on
	// V3+ (spec §8 scenario 4).
	{Opcode: 0xF80C, Name: "message", QeditName: "window_msg",
		Args: []OpArg{
			{Type: ArgReg, Name: "window"},
			{Type: ArgCString, Name: "text"},
		},
		Flags: V2ToV4 | fArgs},
}
