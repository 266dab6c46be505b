// Package progression generates and edits multi-bar chord progressions:
// a pattern-template library compiled into a chord transition graph, a
// stochastic sequence/timing generator, and the tick-grid Progression
// structure the rest of the tool works on.
package progression

import (
	"github.com/frnsys/dust/pkg/theory"
)

// Progression is a generated chord sequence on a fixed tick grid. Each
// tick either starts a new chord or is a rest (nil). The chord index is
// derived from the sequence and kept consistent by every mutator; don't
// write Sequence directly.
type Progression struct {
	Resolution theory.Duration

	// One slot per tick; nil slots are rests.
	Sequence []*theory.ChordSpec

	// Tick positions of each chord, ascending:
	// chordIndex[0] is the tick of the first chord.
	chordIndex []int
}

// New builds a progression over the given sequence.
func New(sequence []*theory.ChordSpec, resolution theory.Duration) *Progression {
	return &Progression{
		Resolution: resolution,
		Sequence:   sequence,
		chordIndex: indexChords(sequence),
	}
}

// Bars returns how many bars the grid spans.
func (p *Progression) Bars() int {
	return len(p.Sequence) / p.Resolution.TicksPerBar()
}

// InKey resolves every tick for the given key; rests stay nil.
func (p *Progression) InKey(key theory.Key) []*theory.Chord {
	out := make([]*theory.Chord, len(p.Sequence))
	for i, cs := range p.Sequence {
		if cs != nil {
			chord := cs.ChordForKey(key)
			out[i] = &chord
		}
	}
	return out
}

// NumChords returns the number of chords (non-rest ticks).
func (p *Progression) NumChords() int {
	return len(p.chordIndex)
}

// Chord returns the i-th chord in performance order, or nil if i is
// out of range.
func (p *Progression) Chord(chordIdx int) *theory.ChordSpec {
	if chordIdx < 0 || chordIdx >= len(p.chordIndex) {
		return nil
	}
	return p.Sequence[p.chordIndex[chordIdx]]
}

// Chords returns the chords in performance order, rests skipped.
func (p *Progression) Chords() []theory.ChordSpec {
	out := make([]theory.ChordSpec, 0, len(p.chordIndex))
	for _, seqIdx := range p.chordIndex {
		out = append(out, *p.Sequence[seqIdx])
	}
	return out
}

// SetChord replaces the i-th chord in place. Rest positions are
// unchanged.
func (p *Progression) SetChord(chordIdx int, chord theory.ChordSpec) {
	seqIdx := p.chordIndex[chordIdx]
	p.Sequence[seqIdx] = &chord
}

// PrevChord returns the chord before chord i in performance order,
// wrapping around from the first chord to the last.
func (p *Progression) PrevChord(chordIdx int) theory.ChordSpec {
	n := len(p.chordIndex)
	idx := ((chordIdx-1)%n + n) % n
	return *p.Sequence[p.chordIndex[idx]]
}

// DeleteChordAt turns the given tick into a rest.
func (p *Progression) DeleteChordAt(seqIdx int) {
	p.Sequence[seqIdx] = nil
	p.UpdateChords()
}

// InsertChordAt places a chord at the given tick.
func (p *Progression) InsertChordAt(seqIdx int, chord theory.ChordSpec) {
	p.Sequence[seqIdx] = &chord
	p.UpdateChords()
}

// UpdateChords recomputes the derived chord index from the sequence.
func (p *Progression) UpdateChords() {
	p.chordIndex = indexChords(p.Sequence)
}

// ChordIndex returns the tick position of each chord, ascending.
func (p *Progression) ChordIndex() []int {
	out := make([]int, len(p.chordIndex))
	copy(out, p.chordIndex)
	return out
}

// SeqIdxToChordIdx returns the chord index a tick position would
// occupy: the count of chords strictly before that tick.
func (p *Progression) SeqIdxToChordIdx(seqIdx int) int {
	chordIdx := 0
	for i, tick := range p.Sequence {
		if i == seqIdx {
			break
		}
		if tick != nil {
			chordIdx++
		}
	}
	return chordIdx
}

// VoiceLead returns a copy of the progression with its chords re-voiced
// for minimal movement (see theory.VoiceLead). Rest positions are
// preserved.
func (p *Progression) VoiceLead() *Progression {
	sequence := make([]*theory.ChordSpec, len(p.Sequence))
	copy(sequence, p.Sequence)
	out := New(sequence, p.Resolution)
	for i, chord := range theory.VoiceLead(p.Chords()) {
		out.SetChord(i, chord)
	}
	return out
}

func indexChords(sequence []*theory.ChordSpec) []int {
	var idx []int
	for i, cs := range sequence {
		if cs != nil {
			idx = append(idx, i)
		}
	}
	return idx
}
