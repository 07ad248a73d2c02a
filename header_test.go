package quest

import "testing"

func TestHeaderWriteParseRoundTripAllVariants(t *testing.T) {
	builds := []Build{BuildDCNTE, BuildDCV2, BuildPCV2, BuildGCV3, BuildBBV4}
	for _, b := range builds {
		hdr := &Header{
			Build:      b,
			Language:   0,
			QuestNum:   42,
			Episode:    Ep2,
			MaxPlayers: 4,
			Joinable:   true,
			Name:       "Test Quest",
			ShortDesc:  "a short description",
			LongDesc:   "a longer description of the quest",
		}
		encoded, err := writeHeader(hdr)
		if err != nil {
			t.Fatalf("%s: writeHeader: %v", b, err)
		}
		layout := layoutFor(b.headerVariant())
		if len(encoded) != layout.headerSize() {
			t.Fatalf("%s: encoded header length = %d, want %d", b, len(encoded), layout.headerSize())
		}

		decoded, err := parseHeader(encoded, b)
		if err != nil {
			t.Fatalf("%s: parseHeader: %v", b, err)
		}
		if decoded.Name != hdr.Name {
			t.Errorf("%s: Name = %q, want %q", b, decoded.Name, hdr.Name)
		}
		if decoded.QuestNum != hdr.QuestNum {
			t.Errorf("%s: QuestNum = %d, want %d", b, decoded.QuestNum, hdr.QuestNum)
		}
		if layout.hasEpisode && decoded.Episode != hdr.Episode {
			t.Errorf("%s: Episode = %v, want %v", b, decoded.Episode, hdr.Episode)
		}
		if layout.hasMaxPlayers {
			if decoded.MaxPlayers != hdr.MaxPlayers {
				t.Errorf("%s: MaxPlayers = %d, want %d", b, decoded.MaxPlayers, hdr.MaxPlayers)
			}
			if decoded.Joinable != hdr.Joinable {
				t.Errorf("%s: Joinable = %v, want %v", b, decoded.Joinable, hdr.Joinable)
			}
		}
	}
}

func TestEffectiveLanguageClampsOutOfRange(t *testing.T) {
	if got := effectiveLanguage(BuildDCV2, 99, 0xFF); got != 1 {
		t.Errorf("out-of-range header language should clamp to 1, got %d", got)
	}
	if got := effectiveLanguage(BuildDCV2, 2, 0xFF); got != 2 {
		t.Errorf("in-range header language should pass through, got %d", got)
	}
	if got := effectiveLanguage(BuildDCV2, 2, 3); got != 3 {
		t.Errorf("explicit override should win, got %d", got)
	}
}

func TestWriteFunctionTableSentinels(t *testing.T) {
	buf := writeFunctionTable(map[int]uint32{0: 100, 2: 200}, 2)
	if len(buf) != 12 {
		t.Fatalf("expected 12 bytes (3 entries), got %d", len(buf))
	}
	idx1 := buf[4:8]
	want := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	for i := range want {
		if idx1[i] != want[i] {
			t.Fatalf("sentinel bytes = % X, want % X", idx1, want)
		}
	}
}
