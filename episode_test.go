package quest

import (
	"strings"
	"testing"
)

func assembleOrFatal(t *testing.T, src string) []byte {
	t.Helper()
	bin, err := Assemble(src, AssembleOptions{})
	if err != nil {
		t.Fatalf("Assemble failed: %v\nsource:\n%s", err, src)
	}
	return bin
}

func episodeSource(literal string) string {
	return `.version DC_V2
.name "Q"
.quest_num 1
start:
  set_episode ` + literal + `
  ret
`
}

func TestEpisodeSetterSingleValue(t *testing.T) {
	cases := []struct {
		literal string
		want    Episode
	}{
		{"1", Ep2},
		{"2", Ep4},
		{"0", Ep1},
	}
	for _, c := range cases {
		bin := assembleOrFatal(t, episodeSource(c.literal))
		ep, warning, err := FindEpisode(bin, BuildDCV2, 0xFF)
		if err != nil {
			t.Fatalf("literal %s: FindEpisode error: %v", c.literal, err)
		}
		if warning != "" {
			t.Fatalf("literal %s: unexpected warning: %s", c.literal, warning)
		}
		if ep != c.want {
			t.Errorf("literal %s: got %v, want %v", c.literal, ep, c.want)
		}
	}
}

func TestEpisodeSetterInvalidLiteralWarns(t *testing.T) {
	bin := assembleOrFatal(t, episodeSource("3"))
	_, warning, err := FindEpisode(bin, BuildDCV2, 0xFF)
	if err != nil {
		t.Fatalf("unexpected hard error: %v", err)
	}
	if !strings.Contains(warning, "invalid set_episode literal") {
		t.Errorf("warning = %q, want mention of invalid literal", warning)
	}
}

func TestEpisodeDetectorMultipleDistinctValues(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  set_episode 1
  set_episode 2
  ret
`
	bin := assembleOrFatal(t, src)
	_, _, err := FindEpisode(bin, BuildDCV2, 0xFF)
	if err == nil {
		t.Fatal("expected MultipleEpisodesError")
	}
	if _, ok := err.(*MultipleEpisodesError); !ok {
		t.Fatalf("expected *MultipleEpisodesError, got %T: %v", err, err)
	}
}

// TestEpisodeDetectorSkipsUTF16StringBeforeSetter guards against the
// episode detector's argument skipper desyncing on a UTF16LE build: a
// CSTRING operand ahead of set_episode must be skipped using 16-bit
// code units, not single NUL-terminated bytes, or the scan stops at
// the high zero byte of the first UTF16LE character.
func TestEpisodeDetectorSkipsUTF16StringBeforeSetter(t *testing.T) {
	src := `.version BB_V4
.name "Q"
.quest_num 1
start:
  print "hi"
  set_episode 1
  ret
`
	bin := assembleOrFatal(t, src)
	ep, warning, err := FindEpisode(bin, BuildBBV4, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning (likely desync): %s", warning)
	}
	if ep != Ep2 {
		t.Errorf("got %v, want Ep2", ep)
	}
}

func TestEpisodeDetectorNoSetterFallsBackToHeader(t *testing.T) {
	src := `.version DC_V2
.name "Q"
.quest_num 1
start:
  nop
  ret
`
	bin := assembleOrFatal(t, src)
	ep, warning, err := FindEpisode(bin, BuildDCV2, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Errorf("unexpected warning: %s", warning)
	}
	if ep != Ep1 {
		t.Errorf("got %v, want Ep1 (header default)", ep)
	}
}
