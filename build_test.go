package quest

import "testing"

func TestParseBuildRoundTrip(t *testing.T) {
	for b := BuildDCNTE; b < BuildPatch1; b++ {
		got, ok := ParseBuild(b.String())
		if !ok {
			t.Fatalf("ParseBuild(%q) reported unknown", b.String())
		}
		if got != b {
			t.Fatalf("ParseBuild(%q) = %v, want %v", b.String(), got, b)
		}
	}
}

func TestParseBuildRejectsReservedAndGarbage(t *testing.T) {
	for _, name := range []string{"PATCH1", "PATCH2", "GC_V5", ""} {
		if _, ok := ParseBuild(name); ok {
			t.Errorf("ParseBuild(%q) unexpectedly succeeded", name)
		}
	}
}

func TestHasArgsGating(t *testing.T) {
	cases := []struct {
		b    Build
		want bool
	}{
		{BuildDCV2, false},
		{BuildPCV2, false},
		{BuildGCV3, true},
		{BuildGCEp3, true},
		{BuildGCXB, true},
		{BuildBBV4, true},
	}
	for _, c := range cases {
		if got := c.b.HasArgs(); got != c.want {
			t.Errorf("%s.HasArgs() = %v, want %v", c.b, got, c.want)
		}
	}
}

func TestVersionBitsAreUniqueAndNonzero(t *testing.T) {
	seen := map[uint16]Build{}
	for b := BuildDCNTE; b < BuildPatch1; b++ {
		bit := b.versionBit()
		if bit == 0 {
			t.Fatalf("%s has zero version bit", b)
		}
		if prev, ok := seen[bit]; ok {
			t.Fatalf("builds %s and %s share version bit %#x", prev, b, bit)
		}
		seen[bit] = b
	}
}

func TestStringEncodingByBuildAndLanguage(t *testing.T) {
	if enc := BuildBBV4.stringEncoding(0); enc != EncodingUTF16LE {
		t.Errorf("BB_V4 encoding = %v, want UTF16LE", enc)
	}
	if enc := BuildGCV3.stringEncoding(0); enc != EncodingShiftJIS {
		t.Errorf("GC_V3 lang=0 encoding = %v, want ShiftJIS", enc)
	}
	if enc := BuildGCV3.stringEncoding(1); enc != EncodingISO8859 {
		t.Errorf("GC_V3 lang=1 encoding = %v, want ISO8859", enc)
	}
}
