package progression

import (
	"sort"
	"testing"

	"github.com/frnsys/dust/pkg/theory"
)

func mustChord(t *testing.T, s string) theory.ChordSpec {
	t.Helper()
	cs, err := theory.ParseChord(s)
	if err != nil {
		t.Fatalf("ParseChord(%q): %v", s, err)
	}
	return cs
}

// buildProgression lays the given chords on an eighth-note grid, one
// per tick, padded with rests to a whole number of bars.
func buildProgression(t *testing.T, chords ...string) *Progression {
	t.Helper()
	resolution := theory.Eighth
	ticksPerBar := resolution.TicksPerBar()
	bars := (len(chords) + ticksPerBar - 1) / ticksPerBar
	sequence := make([]*theory.ChordSpec, bars*ticksPerBar)
	for i, s := range chords {
		cs := mustChord(t, s)
		sequence[i] = &cs
	}
	return New(sequence, resolution)
}

// checkIndex verifies the chord index matches the non-rest ticks of
// the sequence, in ascending order.
func checkIndex(t *testing.T, p *Progression) {
	t.Helper()
	var want []int
	for i, cs := range p.Sequence {
		if cs != nil {
			want = append(want, i)
		}
	}
	got := p.ChordIndex()
	if !sort.IntsAreSorted(got) {
		t.Fatalf("chord index not sorted: %v", got)
	}
	if len(got) != len(want) {
		t.Fatalf("chord index = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chord index = %v, want %v", got, want)
		}
	}
	if p.NumChords() != len(want) {
		t.Errorf("NumChords() = %d, want %d", p.NumChords(), len(want))
	}
}

func TestProgressionBars(t *testing.T) {
	p := buildProgression(t, "I", "IV", "V", "I")
	if got := p.Bars(); got != 1 {
		t.Errorf("Bars() = %d, want 1", got)
	}

	sequence := make([]*theory.ChordSpec, 3*theory.Sixteenth.TicksPerBar())
	p = New(sequence, theory.Sixteenth)
	if got := p.Bars(); got != 3 {
		t.Errorf("Bars() = %d, want 3", got)
	}
}

func TestProgressionChordAccess(t *testing.T) {
	p := buildProgression(t, "I", "IV", "V")

	if got := p.NumChords(); got != 3 {
		t.Fatalf("NumChords() = %d, want 3", got)
	}
	if got := p.Chord(1); got == nil || got.String() != "IV" {
		t.Errorf("Chord(1) = %v, want IV", got)
	}
	if got := p.Chord(-1); got != nil {
		t.Errorf("Chord(-1) = %v, want nil", got)
	}
	if got := p.Chord(3); got != nil {
		t.Errorf("Chord(3) = %v, want nil", got)
	}

	chords := p.Chords()
	want := []string{"I", "IV", "V"}
	if len(chords) != len(want) {
		t.Fatalf("Chords() has %d entries, want %d", len(chords), len(want))
	}
	for i, cs := range chords {
		if cs.String() != want[i] {
			t.Errorf("Chords()[%d] = %s, want %s", i, cs.String(), want[i])
		}
	}
}

func TestProgressionPrevChord(t *testing.T) {
	p := buildProgression(t, "I", "IV", "V")

	cases := []struct {
		chordIdx int
		want     string
	}{
		{1, "I"},
		{2, "IV"},
		{0, "V"}, // wraps to the last chord
	}
	for _, tt := range cases {
		if got := p.PrevChord(tt.chordIdx); got.String() != tt.want {
			t.Errorf("PrevChord(%d) = %s, want %s", tt.chordIdx, got.String(), tt.want)
		}
	}
}

func TestProgressionMutation(t *testing.T) {
	p := buildProgression(t, "I", "IV", "V", "I")
	checkIndex(t, p)

	p.SetChord(1, mustChord(t, "ii"))
	checkIndex(t, p)
	if got := p.Chord(1).String(); got != "ii" {
		t.Errorf("after SetChord, Chord(1) = %s, want ii", got)
	}

	p.DeleteChordAt(2)
	checkIndex(t, p)
	if got := p.NumChords(); got != 3 {
		t.Fatalf("after delete, NumChords() = %d, want 3", got)
	}
	if got := p.Chord(2).String(); got != "I" {
		t.Errorf("after delete, Chord(2) = %s, want I", got)
	}

	p.InsertChordAt(6, mustChord(t, "vi"))
	checkIndex(t, p)
	if got := p.NumChords(); got != 4 {
		t.Fatalf("after insert, NumChords() = %d, want 4", got)
	}
	if got := p.Chord(3).String(); got != "vi" {
		t.Errorf("after insert, Chord(3) = %s, want vi", got)
	}
}

func TestSeqIdxToChordIdx(t *testing.T) {
	// Grid: I _ IV _ V _ _ _
	sequence := make([]*theory.ChordSpec, 8)
	for i, s := range map[int]string{0: "I", 2: "IV", 4: "V"} {
		cs := mustChord(t, s)
		sequence[i] = &cs
	}
	p := New(sequence, theory.Eighth)

	cases := []struct {
		seqIdx int
		want   int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{7, 3},
	}
	for _, tt := range cases {
		if got := p.SeqIdxToChordIdx(tt.seqIdx); got != tt.want {
			t.Errorf("SeqIdxToChordIdx(%d) = %d, want %d", tt.seqIdx, got, tt.want)
		}
	}
}

func TestProgressionInKey(t *testing.T) {
	sequence := make([]*theory.ChordSpec, 4)
	cs := mustChord(t, "I")
	sequence[0] = &cs
	p := New(sequence, theory.Quarter)

	key := theory.Key{Root: theory.Note{Semitones: 39}, Mode: theory.Major} // C4
	chords := p.InKey(key)
	if len(chords) != 4 {
		t.Fatalf("InKey returned %d ticks, want 4", len(chords))
	}
	if chords[0] == nil || chords[0].String() != "C4-E4-G4" {
		t.Errorf("chords[0] = %v, want C4-E4-G4", chords[0])
	}
	for i := 1; i < 4; i++ {
		if chords[i] != nil {
			t.Errorf("chords[%d] = %v, want rest", i, chords[i])
		}
	}
}

func TestProgressionVoiceLead(t *testing.T) {
	// Grid: i _ VI _ III _ v _
	sequence := make([]*theory.ChordSpec, 8)
	for _, pair := range []struct {
		at int
		s  string
	}{{0, "i"}, {2, "VI"}, {4, "III"}, {6, "v"}} {
		cs := mustChord(t, pair.s)
		sequence[pair.at] = &cs
	}
	p := New(sequence, theory.Eighth)

	led := p.VoiceLead()

	// The original is untouched.
	if got := p.Chord(1).String(); got != "VI" {
		t.Fatalf("original mutated: Chord(1) = %s", got)
	}

	// Rest positions are preserved.
	gotIdx := led.ChordIndex()
	wantIdx := []int{0, 2, 4, 6}
	for i := range wantIdx {
		if gotIdx[i] != wantIdx[i] {
			t.Fatalf("voice-led chord index = %v, want %v", gotIdx, wantIdx)
		}
	}

	key := theory.Key{Root: theory.Note{Semitones: 36}, Mode: theory.Minor} // A3
	chords := led.InKey(key)
	want := map[int]string{
		0: "A3-C4-E4",
		2: "A3-C4-F4",
		4: "G3-C4-E4",
		6: "G3-B3-E4",
	}
	for at, s := range want {
		if chords[at] == nil || chords[at].String() != s {
			t.Errorf("tick %d = %v, want %s", at, chords[at], s)
		}
	}
}
