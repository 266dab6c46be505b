package theory

// Mode is the scale quality of a key or chord.
type Mode int

const (
	Major Mode = iota
	Minor
)

// Semitone offsets of the seven scale steps for each mode.
var (
	majorScale = [7]int{0, 2, 4, 5, 7, 9, 11}
	minorScale = [7]int{0, 1, 3, 5, 7, 8, 10}
)

func (m Mode) scale() [7]int {
	if m == Minor {
		return minorScale
	}
	return majorScale
}

func (m Mode) String() string {
	if m == Minor {
		return "Minor"
	}
	return "Major"
}

// Key is a tonal center: a root note and a mode.
type Key struct {
	Root Note
	Mode Mode
}

// DefaultKey is C4 major.
func DefaultKey() Key {
	return Key{
		Root: Note{Semitones: 39}, // C4
		Mode: Major,
	}
}

// Interval computes the interval from the key's root to the given scale
// degree. Degrees are 1-indexed by convention: degree 1 is the key's
// root. Degrees past 7 wrap back to the same pitch class, so degree 9
// yields the same interval as degree 2.
func (k Key) Interval(degree Degree) Interval {
	semitones := k.Mode.scale()[(degree.Degree-1)%7] + degree.Adj
	return Interval{Semitones: semitones}
}

// Note computes the note at the given scale degree.
func (k Key) Note(degree Degree) Note {
	return k.Root.Add(k.Interval(degree))
}
