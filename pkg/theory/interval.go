package theory

import (
	"errors"
	"fmt"
)

var intervalNames = [12]string{
	"P1", "m2", "M2", "m3", "M3", "P4", "d5", "P5", "m6", "M6", "m7", "M7",
}

// Scale-degree spellings for each semitone within an octave, used to
// convert an interval back into a degree when building inversions.
var (
	majorDegrees = [12]Degree{
		{1, 0}, {2, -1}, {2, 0}, {3, -1}, {3, 0}, {4, 0},
		{5, -1}, {5, 0}, {6, -1}, {6, 0}, {7, -1}, {7, 0},
	}
	minorDegrees = [12]Degree{
		{1, 0}, {2, 0}, {3, -1}, {3, 0}, {4, -1}, {4, 0},
		{5, -1}, {5, 0}, {6, 0}, {7, -1}, {7, 0}, {7, 1},
	}
)

// ErrInvalidInterval is returned for an unrecognized interval name.
var ErrInvalidInterval = errors.New("invalid interval")

// Interval is a signed pitch distance in semitones.
type Interval struct {
	Semitones int
}

// ToDegree expresses the interval as a scale degree in the given mode,
// reduced modulo the octave.
func (i Interval) ToDegree(mode Mode) Degree {
	idx := mod(i.Semitones, 12)
	if mode == Minor {
		return minorDegrees[idx]
	}
	return majorDegrees[idx]
}

// String renders the interval's conventional name, reduced modulo the
// octave, e.g. "P5".
func (i Interval) String() string {
	return intervalNames[mod(i.Semitones, 12)]
}

// ParseInterval parses a named interval, e.g. "M3", "m3", "P5", "d5".
func ParseInterval(s string) (Interval, error) {
	var semitones int
	switch s {
	case "P1", "d2":
		semitones = 0
	case "m2", "A1":
		semitones = 1
	case "M2", "d3":
		semitones = 2
	case "m3", "A2":
		semitones = 3
	case "M3", "d4":
		semitones = 4
	case "P4", "A3":
		semitones = 5
	case "d5", "A4":
		semitones = 6
	case "P5", "d6":
		semitones = 7
	case "m6", "A5":
		semitones = 8
	case "M6", "d7":
		semitones = 9
	case "m7", "A6":
		semitones = 10
	case "M7", "d8":
		semitones = 11
	case "P8", "A7":
		semitones = 12
	default:
		return Interval{}, fmt.Errorf("%w %q", ErrInvalidInterval, s)
	}
	return Interval{Semitones: semitones}, nil
}
