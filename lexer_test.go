package quest

import "testing"

func TestStripCommentsPreservesLineNumbers(t *testing.T) {
	src := "a\n/* block\ncomment */b\n// line\nc"
	out, err := stripComments(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := tokenizeLines(out)
	if len(lines) != 3 {
		t.Fatalf("expected 3 non-blank lines, got %d: %+v", len(lines), lines)
	}
	if lines[0].text != "a" || lines[0].no != 1 {
		t.Errorf("line 1 = %+v", lines[0])
	}
	if lines[1].text != "b" || lines[1].no != 3 {
		t.Errorf("line 3 = %+v", lines[1])
	}
	if lines[2].text != "c" || lines[2].no != 5 {
		t.Errorf("line 5 = %+v", lines[2])
	}
}

func TestStripCommentsUnterminatedBlock(t *testing.T) {
	_, err := stripComments("x\n/* never closed")
	if err == nil {
		t.Fatal("expected UnterminatedCommentError")
	}
	var uce *UnterminatedCommentError
	if _, ok := err.(*UnterminatedCommentError); !ok {
		_ = uce
		t.Fatalf("expected *UnterminatedCommentError, got %T", err)
	}
}

func TestSplitOperandsRespectsNesting(t *testing.T) {
	got := splitOperands(`r:a, [labelA, labelB], "hi, there"`)
	want := []string{"r:a", "[labelA, labelB]", `"hi, there"`}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("operand %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitOperandsEmpty(t *testing.T) {
	if got := splitOperands("  "); got != nil {
		t.Errorf("expected nil for blank operand text, got %v", got)
	}
}

func TestSplitMnemonicAndOperands(t *testing.T) {
	m, rest := splitMnemonicAndOperands(`set_register r:dst, 0x10`)
	if m != "set_register" || rest != "r:dst, 0x10" {
		t.Errorf("got (%q, %q)", m, rest)
	}
	m, rest = splitMnemonicAndOperands("ret")
	if m != "ret" || rest != "" {
		t.Errorf("got (%q, %q)", m, rest)
	}
}
