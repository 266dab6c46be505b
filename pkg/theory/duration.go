package theory

import (
	"errors"
	"fmt"
)

// BeatsPerBar assumes 4/4 time throughout.
const BeatsPerBar = 4

// ErrInvalidDuration is returned for an unrecognized resolution name.
var ErrInvalidDuration = errors.New("invalid duration")

// Duration is the subdivision used to grid a progression: how finely a
// bar is split into ticks.
type Duration int

const (
	Quarter Duration = iota
	Eighth
	Sixteenth
	ThirtySecond
)

// TicksPerBar returns the number of grid ticks in one 4/4 bar.
func (d Duration) TicksPerBar() int {
	switch d {
	case Quarter:
		return 4
	case Eighth:
		return 8
	case Sixteenth:
		return 16
	case ThirtySecond:
		return 32
	}
	return 0
}

// TicksPerBeat returns the number of grid ticks per quarter-note beat.
func (d Duration) TicksPerBeat() int {
	switch d {
	case Quarter:
		return 1
	case Eighth:
		return 2
	case Sixteenth:
		return 4
	case ThirtySecond:
		return 8
	}
	return 0
}

func (d Duration) String() string {
	switch d {
	case Quarter:
		return "quarter"
	case Eighth:
		return "eighth"
	case Sixteenth:
		return "sixteenth"
	case ThirtySecond:
		return "thirty-second"
	}
	return "unknown"
}

// ParseDuration parses a resolution name as written in pattern
// configuration, e.g. "eighth".
func ParseDuration(s string) (Duration, error) {
	switch s {
	case "quarter":
		return Quarter, nil
	case "eighth":
		return Eighth, nil
	case "sixteenth":
		return Sixteenth, nil
	case "thirty-second":
		return ThirtySecond, nil
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidDuration, s)
}
