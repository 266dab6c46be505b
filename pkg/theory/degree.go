package theory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDegree is returned for a degree string that doesn't match
// the accidental-prefix-then-digits pattern.
var ErrInvalidDegree = errors.New("invalid degree")

// Degree is a 1-indexed position within a 7-note scale, plus a
// chromatic adjustment in semitones. "b7" is {7, -1}; octave shifts are
// folded into Adj as multiples of 12.
type Degree struct {
	Degree int
	Adj    int
}

// ToInterval converts the degree to a semitone interval in the given
// mode. Every 8 degrees adds an octave.
func (d Degree) ToInterval(mode Mode) int {
	degree0 := d.Degree - 1
	octaves := (degree0 / 8) * 12
	return mode.scale()[degree0%7] + octaves + d.Adj
}

// ParseDegree parses a chord extension or bass degree,
// e.g. "7", "b7", "#9", "bb7".
func ParseDegree(s string) (Degree, error) {
	i := 0
	adj := 0
	for i < len(s) && (s[i] == 'b' || s[i] == '#') {
		if s[i] == '#' {
			adj++
		} else {
			adj--
		}
		i++
	}
	if i == len(s) {
		return Degree{}, fmt.Errorf("%w %q", ErrInvalidDegree, s)
	}
	for j := i; j < len(s); j++ {
		if s[j] < '0' || s[j] > '9' {
			return Degree{}, fmt.Errorf("%w %q", ErrInvalidDegree, s)
		}
	}
	degree, err := strconv.Atoi(s[i:])
	if err != nil {
		return Degree{}, fmt.Errorf("couldn't parse degree: %w", err)
	}
	return Degree{Degree: degree, Adj: adj}, nil
}

// String renders the degree with its accidental prefix, e.g. "b7".
func (d Degree) String() string {
	var b strings.Builder
	count := abs(d.Adj)
	if d.Adj < 0 {
		b.WriteString(strings.Repeat("b", count))
	} else if d.Adj > 0 {
		b.WriteString(strings.Repeat("#", count))
	}
	fmt.Fprintf(&b, "%d", d.Degree)
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
