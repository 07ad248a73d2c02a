package quest

import "strconv"

// namedReg is one register object in the allocator's constraint graph
// (spec §3 "Register (assembly)"). Anonymous members of a fixed chain
// (the unnamed successors implied by `rA` + count, or literal numeric
// registers embedded in a chain) get a synthetic entry too so adjacency
// and slot occupancy are enforced uniformly.
type namedReg struct {
	name     string
	number   int
	assigned bool
	pinned   bool
	next     *namedReg
	prev     *namedReg
}

type regPatch struct {
	offset uint32
	width  int // 1 (REG) or 4 (REG32)
	reg    *namedReg
}

// registerAllocator solves the adjacency-constraint problem described in
// spec §4.6 for one assemble() call. Only registers declared with the
// `r:name` syntax (plus the synthetic anonymous members of a fixed
// chain) participate; plain numeric `rN`/`fN` references outside a
// named chain are written verbatim and never tracked here.
type registerAllocator struct {
	regs    map[string]*namedReg
	order   []*namedReg // first-seen order, for deterministic window search tie-breaks
	patches []regPatch
	anonSeq int
}

func newRegisterAllocator() *registerAllocator {
	return &registerAllocator{regs: make(map[string]*namedReg)}
}

// get returns (creating if absent) the named entry for name.
func (ra *registerAllocator) get(name string) *namedReg {
	if r, ok := ra.regs[name]; ok {
		return r
	}
	r := &namedReg{name: name}
	ra.regs[name] = r
	ra.order = append(ra.order, r)
	return r
}

// anonymous allocates a fresh, uniquely-named synthetic chain member.
func (ra *registerAllocator) anonymous() *namedReg {
	ra.anonSeq++
	r := &namedReg{name: "$anon" + strconv.Itoa(ra.anonSeq)}
	ra.order = append(ra.order, r)
	return r
}

// pin fixes r's number, failing if it was already pinned to a different value.
func (ra *registerAllocator) pin(r *namedReg, n int) error {
	n = ((n % 256) + 256) % 256
	if r.pinned && r.number != n {
		return &RegisterConflictError{Reason: "register " + r.name + " pinned to conflicting numbers"}
	}
	r.number = n
	r.pinned = true
	r.assigned = true
	return nil
}

// constrain records that b must be numbered (a+1) mod 256, linking the
// two into one adjacency chain.
func (ra *registerAllocator) constrain(a, b *namedReg) error {
	if a.next != nil && a.next != b {
		return &RegisterConflictError{Reason: "register " + a.name + " already has a different successor"}
	}
	if b.prev != nil && b.prev != a {
		return &RegisterConflictError{Reason: "register " + b.name + " already has a different predecessor"}
	}
	a.next = b
	b.prev = a
	if a.pinned {
		if err := ra.pin(b, a.number+1); err != nil {
			return err
		}
	}
	if b.pinned {
		if err := ra.pin(a, b.number-1); err != nil {
			return err
		}
	}
	return nil
}

func (ra *registerAllocator) addPatch(offset uint32, width int, reg *namedReg) {
	ra.patches = append(ra.patches, regPatch{offset: offset, width: width, reg: reg})
}

// chainHead walks prev links to the start of r's adjacency chain.
func chainHead(r *namedReg) *namedReg {
	for r.prev != nil {
		r = r.prev
	}
	return r
}

func chainLen(head *namedReg) int {
	n := 1
	for r := head; r.next != nil; r = r.next {
		n++
	}
	return n
}

// resolve implements spec §4.6's steps 2-3: propagate pins along every
// chain to a fixed point, reject two pinned registers sharing a slot,
// place still-unpinned chains in a free contiguous window, then verify
// every register received a number. Patching is done by patchBytes.
func (ra *registerAllocator) resolve() error {
	if err := ra.propagate(); err != nil {
		return err
	}

	occupied := [256]bool{}
	for _, r := range ra.order {
		if r.assigned {
			if occupied[r.number] {
				return &RegisterConflictError{Reason: "slot " + strconv.Itoa(r.number) + " claimed by more than one register"}
			}
			occupied[r.number] = true
		}
	}

	placed := map[*namedReg]bool{}
	for _, r := range ra.order {
		if r.assigned {
			continue
		}
		head := chainHead(r)
		if placed[head] {
			continue
		}
		placed[head] = true

		n := chainLen(head)
		if n > 256 {
			return &RegisterConflictError{Reason: "adjacency chain longer than 256 registers"}
		}
		start, err := findFreeWindow(occupied[:], n)
		if err != nil {
			return err
		}
		num := start
		for cur := head; cur != nil; cur = cur.next {
			if err := ra.pin(cur, num); err != nil {
				return err
			}
			occupied[cur.number] = true
			num++
		}
	}

	for _, r := range ra.order {
		if !r.assigned {
			return &RegisterConflictError{Reason: "register " + r.name + " never resolved to a number"}
		}
	}
	return nil
}

// propagate repeatedly relaxes adjacency edges until no entry changes,
// catching contradictions as pin() conflicts.
func (ra *registerAllocator) propagate() error {
	for {
		changed := false
		for _, r := range ra.order {
			if !r.pinned {
				continue
			}
			if r.next != nil && !r.next.pinned {
				if err := ra.pin(r.next, r.number+1); err != nil {
					return err
				}
				changed = true
			}
			if r.prev != nil && !r.prev.pinned {
				if err := ra.pin(r.prev, r.number-1); err != nil {
					return err
				}
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
}

// findFreeWindow finds the lowest start in [0,256) such that the n
// consecutive slots starting there (mod 256) are all free.
func findFreeWindow(occupied []bool, n int) (int, error) {
	if n > 256 {
		return 0, &RegisterConflictError{Reason: "adjacency chain longer than 256 registers"}
	}
	for start := 0; start < 256; start++ {
		ok := true
		for i := 0; i < n; i++ {
			if occupied[(start+i)%256] {
				ok = false
				break
			}
		}
		if ok {
			return start, nil
		}
	}
	return 0, &RegisterConflictError{Reason: "no free contiguous window of the required length"}
}

// patchBytes writes every resolved register number into code at its
// recorded emission offset (spec §4.6 step 4).
func (ra *registerAllocator) patchBytes(code []byte) error {
	for _, p := range ra.patches {
		if int(p.offset)+p.width > len(code) {
			return &RegisterConflictError{Reason: "patch offset out of range"}
		}
		switch p.width {
		case 1:
			code[p.offset] = byte(p.reg.number)
		case 4:
			code[p.offset] = byte(p.reg.number)
			code[p.offset+1] = 0
			code[p.offset+2] = 0
			code[p.offset+3] = 0
		}
	}
	return nil
}
