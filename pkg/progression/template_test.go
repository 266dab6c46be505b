package progression

import (
	"math/rand"
	"testing"

	"github.com/frnsys/dust/pkg/theory"
)

func testTemplate(t *testing.T) *ProgressionTemplate {
	t.Helper()
	template, err := ParseTemplate([]byte(`
resolution: eighth
major:
  - "I V vi IV"
  - "I IV V IV"
minor:
  - "i VI III v"
`))
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	return template
}

func chordStrings(chords []theory.ChordSpec) []string {
	out := make([]string, len(chords))
	for i, cs := range chords {
		out[i] = cs.String()
	}
	return out
}

func TestTransitions(t *testing.T) {
	template := testTemplate(t)

	cases := []struct {
		chord string
		mode  theory.Mode
		want  []string
	}{
		// Interior chord: itself, predecessor, successor.
		{"VI", theory.Minor, []string{"VI", "i", "III"}},
		// First chord wraps back to the pattern's last.
		{"i", theory.Minor, []string{"i", "v", "VI"}},
		// Last chord wraps forward to the pattern's first.
		{"v", theory.Minor, []string{"v", "III", "i"}},
		// "I" opens both major patterns, so candidates accumulate.
		{"I", theory.Major, []string{"I", "IV", "V", "I", "IV", "IV"}},
	}
	for _, tt := range cases {
		t.Run(tt.chord, func(t *testing.T) {
			got := chordStrings(template.Next(mustChord(t, tt.chord), tt.mode))
			if len(got) != len(tt.want) {
				t.Fatalf("Next(%s) = %v, want %v", tt.chord, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Next(%s) = %v, want %v", tt.chord, got, tt.want)
				}
			}
		})
	}
}

func TestNextUnknownChord(t *testing.T) {
	template := testTemplate(t)
	if got := template.Next(mustChord(t, "vii-"), theory.Major); len(got) != 0 {
		t.Errorf("Next(vii-) = %v, want empty", got)
	}
}

func TestGenProgressionShape(t *testing.T) {
	template := testTemplate(t)
	rng := rand.New(rand.NewSource(42))

	for _, bars := range []int{1, 2, 4, 8} {
		p := template.GenProgression(rng, bars, theory.Major)

		want := bars * template.Resolution.TicksPerBar()
		if len(p.Sequence) != want {
			t.Errorf("bars=%d: grid has %d ticks, want %d", bars, len(p.Sequence), want)
		}
		if p.Bars() != bars {
			t.Errorf("bars=%d: Bars() = %d", bars, p.Bars())
		}
		if p.Sequence[0] == nil {
			t.Errorf("bars=%d: first tick is a rest", bars)
		}
		if p.NumChords() < 1 {
			t.Errorf("bars=%d: no chords generated", bars)
		}
	}
}

// Every generated chord after the first must come from the previous
// chord's transition candidates, or from the pattern pool when the
// previous chord has none.
func TestGenProgressionFollowsTransitions(t *testing.T) {
	template := testTemplate(t)

	pool := map[string]bool{}
	for _, pattern := range template.Minor.Patterns {
		for _, cs := range pattern {
			pool[cs.String()] = true
		}
	}

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		p := template.GenProgression(rng, 4, theory.Minor)
		chords := p.Chords()
		if !pool[chords[0].String()] {
			t.Fatalf("seed chord %s not in pool", chords[0].String())
		}
		for i := 1; i < len(chords); i++ {
			cands := template.Next(chords[i-1], theory.Minor)
			ok := false
			for _, c := range cands {
				if c.Equal(chords[i]) {
					ok = true
					break
				}
			}
			if !ok && len(cands) > 0 {
				t.Fatalf("chord %s cannot follow %s", chords[i].String(), chords[i-1].String())
			}
			if len(cands) == 0 && !pool[chords[i].String()] {
				t.Fatalf("fallback chord %s not in pool", chords[i].String())
			}
		}
	}
}

func TestGenProgressionFromSeed(t *testing.T) {
	template := testTemplate(t)
	rng := rand.New(rand.NewSource(3))

	seed := mustChord(t, "i")
	p := template.GenProgressionFromSeed(rng, seed, 2, theory.Minor)
	if got := p.Chord(0); got == nil || !got.Equal(seed) {
		t.Errorf("first chord = %v, want %s", got, seed.String())
	}
}

func TestGenProgressionDeterministic(t *testing.T) {
	template := testTemplate(t)

	a := template.GenProgression(rand.New(rand.NewSource(11)), 4, theory.Major)
	b := template.GenProgression(rand.New(rand.NewSource(11)), 4, theory.Major)

	if len(a.Sequence) != len(b.Sequence) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(a.Sequence), len(b.Sequence))
	}
	for i := range a.Sequence {
		switch {
		case a.Sequence[i] == nil && b.Sequence[i] == nil:
		case a.Sequence[i] != nil && b.Sequence[i] != nil && a.Sequence[i].Equal(*b.Sequence[i]):
		default:
			t.Fatalf("sequences diverge at tick %d", i)
		}
	}
}

func TestRandChord(t *testing.T) {
	template := testTemplate(t)
	rng := rand.New(rand.NewSource(1))

	pool := map[string]bool{}
	for _, pattern := range template.Major.Patterns {
		for _, cs := range pattern {
			pool[cs.String()] = true
		}
	}
	for i := 0; i < 50; i++ {
		cs := template.RandChord(rng, theory.Major)
		if !pool[cs.String()] {
			t.Fatalf("RandChord returned %s, not in any pattern", cs.String())
		}
	}
}
