// Package export renders progressions to standard MIDI files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/frnsys/dust/pkg/progression"
	"github.com/frnsys/dust/pkg/theory"
)

// A0 is MIDI note 21, the lowest key on an 88-key piano.
const midiA0 = 21

var ErrNoteRange = errors.New("note outside MIDI range")

// MIDIExporter writes a progression, resolved for a key, as a
// single-track MIDI file.
type MIDIExporter struct {
	ticksPerQuarter uint16
	tempo           float64
}

// NewMIDIExporter creates an exporter with standard resolution and a
// 120 BPM default tempo.
func NewMIDIExporter() *MIDIExporter {
	return &MIDIExporter{
		ticksPerQuarter: 480,
		tempo:           120.0,
	}
}

// SetTempo sets the tempo in beats per minute. Non-positive values are
// ignored.
func (e *MIDIExporter) SetTempo(bpm float64) {
	if bpm > 0 {
		e.tempo = bpm
	}
}

// Generate renders the progression as MIDI data. Each chord sustains
// until the next chord starts or the grid ends; rests between chords
// do not cut notes short.
func (e *MIDIExporter) Generate(p *progression.Progression, key theory.Key) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil progression")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(e.ticksPerQuarter)

	var track smf.Track

	// Tempo meta event (FF 51 03, microseconds per beat)
	microsecondsPerBeat := uint32(60000000.0 / e.tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	// Time signature (4/4)
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))

	// MIDI ticks per grid tick: the grid subdivides the quarter-note
	// beat by the resolution's ticks per beat.
	ticksPerGrid := uint32(e.ticksPerQuarter) / uint32(p.Resolution.TicksPerBeat())

	chords := p.InKey(key)
	chordIndex := p.ChordIndex()

	channel := uint8(0)
	velocity := uint8(100)
	var currentTick uint32

	for n, seqIdx := range chordIndex {
		chord := chords[seqIdx]

		// Sustain to the next chord onset, or to the end of the grid.
		endIdx := len(chords)
		if n+1 < len(chordIndex) {
			endIdx = chordIndex[n+1]
		}

		startTick := uint32(seqIdx) * ticksPerGrid
		duration := uint32(endIdx-seqIdx) * ticksPerGrid

		keys, err := midiKeys(chord)
		if err != nil {
			return nil, err
		}

		delta := startTick - currentTick
		for _, k := range keys {
			track.Add(delta, midi.NoteOn(channel, k, velocity))
			delta = 0
		}
		delta = duration
		for _, k := range keys {
			track.Add(delta, midi.NoteOff(channel, k))
			delta = 0
		}
		currentTick = startTick + duration
	}

	// Pad so the file spans the full grid even when it ends in rests.
	totalTicks := uint32(len(chords)) * ticksPerGrid
	if currentTick < totalTicks {
		track.Add(totalTicks-currentTick, smf.Message([]byte{0xFF, 0x06, 0x00}))
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the progression and writes it to a file.
func (e *MIDIExporter) WriteFile(p *progression.Progression, key theory.Key, filename string) error {
	data, err := e.Generate(p, key)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// midiKeys maps a chord's notes to MIDI key numbers, anchoring
// semitone 0 at A0 (MIDI note 21).
func midiKeys(chord *theory.Chord) ([]uint8, error) {
	notes := chord.Notes()
	keys := make([]uint8, len(notes))
	for i, note := range notes {
		k := note.Semitones + midiA0
		if k < 0 || k > 127 {
			return nil, fmt.Errorf("%w: %s", ErrNoteRange, note.String())
		}
		keys[i] = uint8(k)
	}
	return keys, nil
}
