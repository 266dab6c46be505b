package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/frnsys/dust/pkg/progression"
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

func cMajor() theory.Key {
	return theory.Key{Root: theory.Note{Semitones: 39}, Mode: theory.Major} // C4
}

type noteEvent struct {
	tick uint32
	key  uint8
	on   bool
}

func readNoteEvents(t *testing.T, data []byte) []noteEvent {
	t.Helper()
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parsing generated MIDI: %v", err)
	}
	var events []noteEvent
	for _, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			msg := []byte(ev.Message)
			if len(msg) < 3 {
				continue
			}
			status := msg[0]
			if status >= 0x90 && status <= 0x9F && msg[2] > 0 {
				events = append(events, noteEvent{tick: tick, key: msg[1], on: true})
			}
			if (status >= 0x80 && status <= 0x8F) || (status >= 0x90 && status <= 0x9F && msg[2] == 0) {
				events = append(events, noteEvent{tick: tick, key: msg[1], on: false})
			}
		}
	}
	return events
}

func TestGenerate(t *testing.T) {
	// Grid (eighth resolution, 1 bar): I _ _ _ V _ _ _
	sequence := make([]*theory.ChordSpec, 8)
	one := mustChord(t, "I")
	five := mustChord(t, "V")
	sequence[0] = &one
	sequence[4] = &five
	p := progression.New(sequence, theory.Eighth)

	data, err := NewMIDIExporter().Generate(p, cMajor())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "MThd" {
		t.Fatal("output is not a MIDI file")
	}

	events := readNoteEvents(t, data)

	// Eighth-note grid: 240 MIDI ticks per slot.
	want := []noteEvent{
		// I in C4: C4 E4 G4
		{0, 60, true},
		{0, 64, true},
		{0, 67, true},
		{960, 60, false},
		{960, 64, false},
		{960, 67, false},
		// V in C4: G4 B4 D5
		{960, 67, true},
		{960, 71, true},
		{960, 74, true},
		{1920, 67, false},
		{1920, 71, false},
		{1920, 74, false},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d note events, want %d: %v", len(events), len(want), events)
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestGenerateSustainsThroughRests(t *testing.T) {
	// A single chord should sound for the whole grid.
	sequence := make([]*theory.ChordSpec, 4)
	one := mustChord(t, "I")
	sequence[0] = &one
	p := progression.New(sequence, theory.Quarter)

	data, err := NewMIDIExporter().Generate(p, cMajor())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	events := readNoteEvents(t, data)
	for _, ev := range events {
		if !ev.on && ev.tick != 4*480 {
			t.Errorf("note off at tick %d, want %d", ev.tick, 4*480)
		}
	}
}

func TestGenerateNoteRange(t *testing.T) {
	sequence := make([]*theory.ChordSpec, 4)
	low := mustChord(t, "I<9")
	sequence[0] = &low
	p := progression.New(sequence, theory.Quarter)

	_, err := NewMIDIExporter().Generate(p, cMajor())
	if !errors.Is(err, ErrNoteRange) {
		t.Errorf("err = %v, want ErrNoteRange", err)
	}
}

func TestGenerateNilProgression(t *testing.T) {
	if _, err := NewMIDIExporter().Generate(nil, cMajor()); err == nil {
		t.Error("expected error for nil progression")
	}
}

func TestWriteFile(t *testing.T) {
	sequence := make([]*theory.ChordSpec, 4)
	one := mustChord(t, "I")
	sequence[0] = &one
	p := progression.New(sequence, theory.Quarter)

	path := filepath.Join(t.TempDir(), "out.mid")
	if err := NewMIDIExporter().WriteFile(p, cMajor(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 4 || string(data[:4]) != "MThd" {
		t.Error("written file is not a MIDI file")
	}
}

func TestSetTempo(t *testing.T) {
	e := NewMIDIExporter()
	e.SetTempo(90)
	if e.tempo != 90 {
		t.Errorf("tempo = %v, want 90", e.tempo)
	}
	e.SetTempo(-10)
	if e.tempo != 90 {
		t.Errorf("tempo = %v after invalid set, want 90", e.tempo)
	}
}
