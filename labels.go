package quest

import "fmt"

// label is a named code or data position discovered during disassembly
// (spec §3). TypeFlags accumulates every LabelType a reference implied;
// a label may be reached both as code and as typed data.
type label struct {
	Name          string
	Offset        uint32
	FunctionID    int // -1 if this label is not a function-table entry
	TypeFlags     LabelType
	ReferencedBy  []uint32
}

// labelTable owns every label discovered during a disassembly pass,
// indexed by code offset so repeated references merge onto one label.
type labelTable struct {
	byOffset map[uint32]*label
	order    []uint32 // offsets in first-seen order, for stable rendering
}

func newLabelTable() *labelTable {
	return &labelTable{byOffset: make(map[uint32]*label)}
}

// getOrCreate returns the label at offset, creating it (named
// labelHHHH) if this is the first reference.
func (t *labelTable) getOrCreate(offset uint32) *label {
	if l, ok := t.byOffset[offset]; ok {
		return l
	}
	l := &label{
		Name:       fmt.Sprintf("label%04X", offset),
		Offset:     offset,
		FunctionID: -1,
	}
	t.byOffset[offset] = l
	t.order = append(t.order, offset)
	return l
}

// defineFunction names the label at offset per its function-table
// index (index 0 is "start", others are labelHHHH on the index).
func (t *labelTable) defineFunction(index int, offset uint32) *label {
	l := t.getOrCreate(offset)
	l.FunctionID = index
	if index == 0 {
		l.Name = "start"
	} else {
		l.Name = fmt.Sprintf("label%04X", index)
	}
	return l
}

func (t *labelTable) addReference(target *label, from uint32) {
	target.ReferencedBy = append(target.ReferencedBy, from)
}

func (t *labelTable) addTypeFlag(target *label, f LabelType) {
	target.TypeFlags |= f
}
