// Package theory implements the pitch, scale and chord model behind dust:
// notes as absolute semitone offsets, scale degrees, mode-relative chord
// specs with a compact roman-numeral grammar, and voice leading.
package theory

import (
	"errors"
	"fmt"
	"strconv"
)

// Flat-preferred note names, cycling from A.
var noteNames = [12]string{"A", "Bb", "B", "C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab"}

// ErrInvalidNoteName is returned when a note name's letter/accidental
// prefix is not one of the twelve recognized names.
var ErrInvalidNoteName = errors.New("invalid note name")

// Note is an absolute pitch. 0 semitones = "A0".
type Note struct {
	Semitones int
}

// ParseNote parses a note from a string, e.g. "C3".
func ParseNote(s string) (Note, error) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	name, octaveStr := s[:i], s[i:]

	offset := -1
	for idx, n := range noteNames {
		if n == name {
			offset = idx
			break
		}
	}
	if offset < 0 {
		return Note{}, fmt.Errorf("%w %q", ErrInvalidNoteName, name)
	}

	octave, err := strconv.Atoi(octaveStr)
	if err != nil {
		return Note{}, fmt.Errorf("couldn't parse octave: %w", err)
	}

	// Octave numbers increment at C, so names C and above sit one
	// notated octave ahead of their A-based offset.
	octave -= (offset + 9) / 12
	return Note{Semitones: octave*12 + offset%12}, nil
}

// String renders the note name, e.g. "C3".
func (n Note) String() string {
	name := noteNames[mod(n.Semitones, 12)]
	octave := (n.Semitones + 9) / 12
	return fmt.Sprintf("%s%d", name, octave)
}

// Add returns the note an interval above this one.
func (n Note) Add(intv Interval) Note {
	return Note{Semitones: n.Semitones + intv.Semitones}
}

// Sub returns the note an interval below this one.
func (n Note) Sub(intv Interval) Note {
	return Note{Semitones: n.Semitones - intv.Semitones}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// mod is the euclidean remainder, always in [0, m).
func mod(a, m int) int {
	return ((a % m) + m) % m
}
