package quest

import "testing"

// TestRegisterAllocatorAdjacencyChain covers spec §8's "Register
// allocation soundness" property for an unpinned named chain.
func TestRegisterAllocatorAdjacencyChain(t *testing.T) {
	ra := newRegisterAllocator()
	a := ra.get("a")
	b := ra.get("b")
	c := ra.get("c")
	if err := ra.constrain(a, b); err != nil {
		t.Fatalf("constrain(a,b): %v", err)
	}
	if err := ra.constrain(b, c); err != nil {
		t.Fatalf("constrain(b,c): %v", err)
	}
	if err := ra.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if b.number != a.number+1 || c.number != b.number+1 {
		t.Fatalf("chain not contiguous: a=%d b=%d c=%d", a.number, b.number, c.number)
	}
}

func TestRegisterAllocatorRespectsPin(t *testing.T) {
	ra := newRegisterAllocator()
	a := ra.get("a")
	b := ra.get("b")
	if err := ra.constrain(a, b); err != nil {
		t.Fatalf("constrain: %v", err)
	}
	if err := ra.pin(b, 10); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := ra.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if a.number != 9 || b.number != 10 {
		t.Fatalf("a=%d b=%d, want a=9 b=10", a.number, b.number)
	}
}

func TestRegisterAllocatorConflictingPinIsAnError(t *testing.T) {
	ra := newRegisterAllocator()
	a := ra.get("a")
	if err := ra.pin(a, 5); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if err := ra.pin(a, 6); err == nil {
		t.Fatal("expected RegisterConflictError for contradictory pin")
	}
}

func TestRegisterAllocatorAvoidsOccupiedSlots(t *testing.T) {
	ra := newRegisterAllocator()
	fixed := ra.get("fixed")
	if err := ra.pin(fixed, 0); err != nil {
		t.Fatalf("pin: %v", err)
	}
	floater := ra.get("floater")
	_ = floater
	if err := ra.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if floater.number == fixed.number {
		t.Fatalf("floater collided with fixed slot %d", fixed.number)
	}
}

func TestRegisterAllocatorPatchBytes(t *testing.T) {
	ra := newRegisterAllocator()
	r := ra.get("x")
	if err := ra.pin(r, 42); err != nil {
		t.Fatalf("pin: %v", err)
	}
	code := make([]byte, 8)
	ra.addPatch(3, 1, r)
	ra.addPatch(4, 4, r)
	if err := ra.resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := ra.patchBytes(code); err != nil {
		t.Fatalf("patchBytes: %v", err)
	}
	if code[3] != 42 {
		t.Errorf("width-1 patch = %d, want 42", code[3])
	}
	if code[4] != 42 || code[5] != 0 || code[6] != 0 || code[7] != 0 {
		t.Errorf("width-4 patch = %v, want [42 0 0 0]", code[4:8])
	}
}
