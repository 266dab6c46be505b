package progression

import (
	"math/rand"

	"github.com/frnsys/dust/pkg/theory"
)

// ModeTemplate holds example chord patterns for one mode and the
// transition graph derived from them.
type ModeTemplate struct {
	Patterns [][]theory.ChordSpec

	// Candidate next chords, keyed by rendered chord string so
	// structurally equal specs collapse to one entry.
	transitions map[string][]theory.ChordSpec
}

// UpdateTransitions rebuilds the chord transition graph from the
// patterns. Call after any change to Patterns.
func (mt *ModeTemplate) UpdateTransitions() {
	mt.transitions = make(map[string][]theory.ChordSpec)
	for _, pattern := range mt.Patterns {
		n := len(pattern)
		for i, chord := range pattern {
			key := chord.String()

			// Candidate following chords are the chord itself
			// (repeat), its predecessor and its successor, wrapping
			// at the pattern's ends.
			mt.transitions[key] = append(mt.transitions[key],
				chord,
				pattern[(i-1+n)%n],
				pattern[(i+1)%n],
			)
		}
	}
}

// Next returns the candidate chords to follow the given chord, or an
// empty list if the chord appears in no pattern.
func (mt *ModeTemplate) Next(chord theory.ChordSpec) []theory.ChordSpec {
	return mt.transitions[chord.String()]
}

// ProgressionTemplate is a library of example progressions for both
// modes, plus the grid resolution generated progressions use.
type ProgressionTemplate struct {
	Major      ModeTemplate
	Minor      ModeTemplate
	Resolution theory.Duration
}

// UpdateTransitions rebuilds the transition graph for each mode.
func (t *ProgressionTemplate) UpdateTransitions() {
	t.Major.UpdateTransitions()
	t.Minor.UpdateTransitions()
}

func (t *ProgressionTemplate) mode(mode theory.Mode) *ModeTemplate {
	if mode == theory.Minor {
		return &t.Minor
	}
	return &t.Major
}

// Next returns the candidate chords to follow the given chord in the
// given mode.
func (t *ProgressionTemplate) Next(chord theory.ChordSpec, mode theory.Mode) []theory.ChordSpec {
	return t.mode(mode).Next(chord)
}

// RandPattern picks a random example pattern for the mode.
func (t *ProgressionTemplate) RandPattern(rng *rand.Rand, mode theory.Mode) []theory.ChordSpec {
	patterns := t.mode(mode).Patterns
	return patterns[rng.Intn(len(patterns))]
}

// RandChord picks a random chord from the mode's pattern pool.
func (t *ProgressionTemplate) RandChord(rng *rand.Rand, mode theory.Mode) theory.ChordSpec {
	pattern := t.RandPattern(rng, mode)
	return pattern[rng.Intn(len(pattern))]
}

// GenProgression generates a progression of the given length, seeded
// with a random chord from the mode's pool.
func (t *ProgressionTemplate) GenProgression(rng *rand.Rand, bars int, mode theory.Mode) *Progression {
	seed := t.RandChord(rng, mode)
	return t.GenProgressionFromSeed(rng, seed, bars, mode)
}

// GenProgressionFromSeed generates a progression starting from the
// given chord: a first-order random walk over the transition graph,
// placed on the tick grid by an independently generated timing
// sequence. Chords with no transition entry fall back to a fresh
// random chord from the mode's pool.
func (t *ProgressionTemplate) GenProgressionFromSeed(rng *rand.Rand, seed theory.ChordSpec, bars int, mode theory.Mode) *Progression {
	timing := t.genTiming(rng, bars)

	sequence := make([]*theory.ChordSpec, len(timing))
	last := seed
	first := true
	for i, hasChord := range timing {
		if !hasChord {
			continue
		}
		var next theory.ChordSpec
		if first {
			next = seed
			first = false
		} else {
			cands := t.Next(last, mode)
			if len(cands) == 0 {
				next = t.RandChord(rng, mode)
			} else {
				next = cands[rng.Intn(len(cands))]
			}
		}
		chord := next
		sequence[i] = &chord
		last = next
	}
	return New(sequence, t.Resolution)
}

// genTiming marks which ticks carry a new chord. The first tick always
// does; after each chord a random rest of up to a bar is inserted.
func (t *ProgressionTemplate) genTiming(rng *rand.Rand, bars int) []bool {
	ticksPerBar := t.Resolution.TicksPerBar()
	total := bars * ticksPerBar

	timing := make([]bool, 0, total+ticksPerBar)
	timing = append(timing, true)
	for len(timing) < total {
		rest := rng.Intn(ticksPerBar)
		for i := 0; i < rest; i++ {
			timing = append(timing, false)
		}
		timing = append(timing, true)
	}
	return timing[:total]
}
