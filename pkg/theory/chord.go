package theory

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Numerals are the roman numerals for the seven scale degrees.
var Numerals = [7]string{"I", "II", "III", "IV", "V", "VI", "VII"}

// Chord parse errors. Each malformed component is reported separately
// so callers can surface a precise message.
var (
	ErrInvalidChord     = errors.New("invalid chord")
	ErrInvalidNumeral   = errors.New("invalid numeral")
	ErrInvalidTriad     = errors.New("invalid triad symbol")
	ErrInvalidExtension = errors.New("couldn't parse extension")
	ErrInvalidRelKey    = errors.New("invalid relative key")
)

// Triad is the base interval skeleton of a chord before extensions.
// ModeTriad means the default triad for the chord's own mode.
type Triad int

const (
	ModeTriad Triad = iota
	Diminished
	Augmented
	Sus2
	Sus4
	Power
)

// RelKey points a chord at the scale of another degree within the same
// key, e.g. for secondary dominants ("the V of V").
type RelKey struct {
	Degree int
	Mode   Mode
}

// ChordSpec is a mode-relative, un-voiced chord description. It carries
// no absolute pitch until resolved against a Key. The zero value is not
// meaningful; construct through NewChordSpec or ParseChord.
type ChordSpec struct {
	Root       Degree
	mode       Mode
	triad      Triad
	extensions []Degree
	bassDegree *Degree
	inversion  int
	relKey     *RelKey
}

// NewChordSpec creates a plain triad on the given 1-indexed scale
// degree and mode.
func NewChordSpec(degree int, mode Mode) ChordSpec {
	return ChordSpec{
		Root: Degree{Degree: degree},
		mode: mode,
	}
}

// Mode returns the chord's own mode.
func (cs ChordSpec) Mode() Mode {
	return cs.mode
}

// Triad returns a copy with the given triad type.
func (cs ChordSpec) Triad(t Triad) ChordSpec {
	cs.triad = t
	return cs
}

// Add returns a copy with an extension at the given scale degree and
// chromatic adjustment: Add(7, 0) adds a 7, Add(7, -1) a "b7".
func (cs ChordSpec) Add(degree, adj int) ChordSpec {
	exts := make([]Degree, len(cs.extensions), len(cs.extensions)+1)
	copy(exts, cs.extensions)
	cs.extensions = append(exts, Degree{Degree: degree, Adj: adj})
	return cs
}

// Bass returns a copy with the given bass degree, realizing an
// inversion: every chord tone below the bass is raised an octave.
func (cs ChordSpec) Bass(degree, adj int) ChordSpec {
	cs.bassDegree = &Degree{Degree: degree, Adj: adj}
	return cs
}

// KeyOf returns a copy set in the relative key of the given degree,
// e.g. for secondary dominants.
func (cs ChordSpec) KeyOf(degree int, mode Mode) ChordSpec {
	cs.relKey = &RelKey{Degree: degree, Mode: mode}
	return cs
}

// Adj returns a copy with the root chromatically adjusted, for
// out-of-scale roots like "VIIb".
func (cs ChordSpec) Adj(adj int) ChordSpec {
	cs.Root.Adj = adj
	return cs
}

// Shift returns a copy moved by whole octaves.
func (cs ChordSpec) Shift(octaves int) ChordSpec {
	cs.Root.Adj += octaves * 12
	return cs
}

// Inversion returns a copy with the lowest n chord tones rotated up an
// octave.
func (cs ChordSpec) Inversion(n int) ChordSpec {
	cs.inversion = n
	return cs
}

// Equal reports structural equality.
func (cs ChordSpec) Equal(other ChordSpec) bool {
	if cs.Root != other.Root || cs.mode != other.mode ||
		cs.triad != other.triad || cs.inversion != other.inversion {
		return false
	}
	if len(cs.extensions) != len(other.extensions) {
		return false
	}
	for i := range cs.extensions {
		if cs.extensions[i] != other.extensions[i] {
			return false
		}
	}
	if (cs.bassDegree == nil) != (other.bassDegree == nil) {
		return false
	}
	if cs.bassDegree != nil && *cs.bassDegree != *other.bassDegree {
		return false
	}
	if (cs.relKey == nil) != (other.relKey == nil) {
		return false
	}
	if cs.relKey != nil && *cs.relKey != *other.relKey {
		return false
	}
	return true
}

// Inversions returns the chord's possible inversions: one variant per
// chord tone, each with that tone as the bass degree.
func (cs ChordSpec) Inversions() []ChordSpec {
	intervals := cs.Intervals()
	out := make([]ChordSpec, 0, len(intervals))
	for _, intv := range intervals {
		deg := Interval{Semitones: intv}.ToDegree(cs.mode)
		out = append(out, cs.Bass(deg.Degree, deg.Adj))
	}
	return out
}

// Intervals computes the semitone intervals that make up this chord,
// relative to the chord's root. Duplicate-degree extensions are kept,
// so cluster chords are representable.
func (cs ChordSpec) Intervals() []int {
	// A relative key shifts the whole chord by the target degree's
	// interval within the chord's own mode, and extensions resolve in
	// the relative key's mode.
	offset := 0
	effMode := cs.mode
	if cs.relKey != nil {
		offset = cs.mode.scale()[(cs.relKey.Degree-1)%7]
		effMode = cs.relKey.Mode
	}

	var intervals []int
	switch cs.triad {
	case Diminished:
		intervals = []int{0, 3, 6}
	case Augmented:
		intervals = []int{0, 4, 8}
	case Sus2:
		intervals = []int{0, 2, 7}
	case Sus4:
		intervals = []int{0, 5, 7}
	case Power:
		intervals = []int{0, 7}
	default:
		if cs.mode == Minor {
			intervals = []int{0, 3, 7}
		} else {
			intervals = []int{0, 4, 7}
		}
	}

	for _, ext := range cs.extensions {
		intervals = append(intervals, ext.ToInterval(effMode))
	}

	if cs.bassDegree != nil {
		bass := cs.bassDegree.ToInterval(effMode)
		for i, intv := range intervals {
			if intv < bass {
				intervals[i] = intv + 12
			}
		}
	}

	if cs.inversion > 0 {
		inv := cs.inversion
		if inv > len(intervals) {
			inv = len(intervals)
		}
		rotated := make([]int, 0, len(intervals))
		rotated = append(rotated, intervals[inv:]...)
		for _, intv := range intervals[:inv] {
			rotated = append(rotated, intv+12)
		}
		intervals = rotated
	}

	for i := range intervals {
		intervals[i] += offset
	}
	return intervals
}

// IntervalsFromKeyRoot computes the chord's intervals relative to the
// key's root rather than the chord's own.
func (cs ChordSpec) IntervalsFromKeyRoot() []int {
	offset := cs.Root.ToInterval(cs.mode)
	intervals := cs.Intervals()
	for i := range intervals {
		intervals[i] += offset
	}
	return intervals
}

// ChordForKey resolves the chord spec into actual pitches for the
// given key.
func (cs ChordSpec) ChordForKey(key Key) Chord {
	return NewChord(key.Note(cs.Root), cs.Intervals())
}

// Distance estimates the semitone movement between this chord and
// another: each tone greedily claims the closest unclaimed tone of the
// other chord, in this chord's tone order. The greedy claiming makes
// the result order-dependent and not symmetric for chords of different
// sizes; voice leading depends on exactly this behavior.
func (cs ChordSpec) Distance(other ChordSpec) int {
	a := cs.IntervalsFromKeyRoot()
	b := other.IntervalsFromKeyRoot()

	remaining := make([]int, len(b))
	copy(remaining, b)

	dist := 0
	for _, intv := range a {
		if len(remaining) == 0 {
			break
		}
		bestIdx, bestDist := 0, abs(intv-remaining[0])
		for i, r := range remaining[1:] {
			if d := abs(intv - r); d < bestDist {
				bestIdx, bestDist = i+1, d
			}
		}
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		dist += bestDist
	}
	return dist
}

// String renders the chord in dust's roman-numeral notation. Rendering
// is the left inverse of ParseChord for any spec built through the
// constructor methods.
func (cs ChordSpec) String() string {
	var name strings.Builder

	numeral := Numerals[(cs.Root.Degree-1)%7]
	if cs.mode == Minor || cs.triad == Diminished {
		numeral = strings.ToLower(numeral)
	}
	name.WriteString(numeral)

	count := abs(cs.Root.Adj)
	octaves := count / 12
	rem := count % 12
	if cs.Root.Adj < 0 {
		name.WriteString(strings.Repeat("b", rem))
	} else if cs.Root.Adj > 0 {
		name.WriteString(strings.Repeat("#", rem))
	}

	switch cs.triad {
	case Diminished:
		name.WriteByte('-')
	case Augmented:
		name.WriteByte('+')
	case Sus2:
		name.WriteByte('_')
	case Sus4:
		name.WriteByte('^')
	case Power:
		name.WriteByte('5')
	}

	if len(cs.extensions) > 0 {
		name.WriteByte(':')
		exts := make([]string, len(cs.extensions))
		for i, ext := range cs.extensions {
			exts[i] = ext.String()
		}
		name.WriteString(strings.Join(exts, ","))
	}

	if cs.bassDegree != nil {
		name.WriteByte('/')
		name.WriteString(cs.bassDegree.String())
	}

	if cs.inversion > 0 {
		fmt.Fprintf(&name, "%%%d", cs.inversion)
	}

	if octaves != 0 {
		if cs.Root.Adj < 0 {
			fmt.Fprintf(&name, "<%d", octaves)
		} else if cs.Root.Adj > 0 {
			fmt.Fprintf(&name, ">%d", octaves)
		}
	}

	if cs.relKey != nil {
		name.WriteByte('~')
		numeral := Numerals[(cs.relKey.Degree-1)%7]
		if cs.relKey.Mode == Minor {
			numeral = strings.ToLower(numeral)
		}
		name.WriteString(numeral)
	}

	return name.String()
}

// chordParser is a hand-written scanner over the chord grammar.
type chordParser struct {
	s   string
	pos int
}

func (p *chordParser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *chordParser) eat(c byte) bool {
	if b, ok := p.peek(); ok && b == c {
		p.pos++
		return true
	}
	return false
}

func (p *chordParser) takeRun(pred func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.s) && pred(p.s[p.pos]) {
		p.pos++
	}
	return p.s[start:p.pos]
}

func isNumeralChar(c byte) bool {
	return c == 'I' || c == 'V' || c == 'i' || c == 'v'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDegreeChar(c byte) bool {
	return isDigit(c) || c == 'b' || c == '#'
}

// numeralIndex maps a roman numeral (either case) to its 0-indexed
// scale degree, or -1 if it isn't one of the seven numerals.
func numeralIndex(numeral string) int {
	upper := strings.ToUpper(numeral)
	for i, n := range Numerals {
		if n == upper {
			return i
		}
	}
	return -1
}

// numeralMode derives mode from numeral case; mixed case is an error.
func numeralMode(numeral string) (Mode, error) {
	if numeral == strings.ToLower(numeral) {
		return Minor, nil
	}
	if numeral == strings.ToUpper(numeral) {
		return Major, nil
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidNumeral, numeral)
}

// ParseChord parses a chord from dust's notation, e.g. "III:7,9",
// "i-:b7/3", "V:b7~V". See the grammar in the package documentation.
func ParseChord(s string) (ChordSpec, error) {
	p := &chordParser{s: s}

	numeral := p.takeRun(isNumeralChar)
	if numeral == "" {
		return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidChord, s)
	}
	mode, err := numeralMode(numeral)
	if err != nil {
		return ChordSpec{}, err
	}
	degree0 := numeralIndex(numeral)
	if degree0 < 0 {
		return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidNumeral, numeral)
	}

	adj := 0
	for {
		if p.eat('b') {
			adj--
		} else if p.eat('#') {
			adj++
		} else {
			break
		}
	}

	cs := NewChordSpec(degree0+1, mode)

	if c, ok := p.peek(); ok {
		switch c {
		case '-':
			cs = cs.Triad(Diminished)
			p.pos++
		case '+':
			cs = cs.Triad(Augmented)
			p.pos++
		case '_':
			cs = cs.Triad(Sus2)
			p.pos++
		case '^':
			cs = cs.Triad(Sus4)
			p.pos++
		case '5':
			cs = cs.Triad(Power)
			p.pos++
		case ':', '/', '%', '>', '<', '~':
			// Not a triad symbol; handled below.
		default:
			return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidTriad, string(c))
		}
	}

	if p.eat(':') {
		run := p.takeRun(func(c byte) bool { return isDegreeChar(c) || c == ',' })
		for _, tok := range strings.Split(run, ",") {
			if tok == "" {
				continue
			}
			ext, err := ParseDegree(tok)
			if err != nil {
				return ChordSpec{}, fmt.Errorf("%w: %w", ErrInvalidExtension, err)
			}
			cs = cs.Add(ext.Degree, ext.Adj)
		}
	}

	// Bass degree and numeric inversion are mutually exclusive syntax.
	if p.eat('/') {
		tok := p.takeRun(isDegreeChar)
		bass, err := ParseDegree(tok)
		if err != nil {
			return ChordSpec{}, fmt.Errorf("%w: %w", ErrInvalidExtension, err)
		}
		cs = cs.Bass(bass.Degree, bass.Adj)
	} else if p.eat('%') {
		tok := p.takeRun(isDigit)
		inv, err := strconv.Atoi(tok)
		if err != nil {
			return ChordSpec{}, fmt.Errorf("couldn't parse inversion: %w", err)
		}
		cs = cs.Inversion(inv)
	}

	if p.eat('>') {
		tok := p.takeRun(isDigit)
		octaves, err := strconv.Atoi(tok)
		if err != nil {
			return ChordSpec{}, fmt.Errorf("couldn't parse octave shift: %w", err)
		}
		adj += octaves * 12
	}
	if p.eat('<') {
		tok := p.takeRun(isDigit)
		octaves, err := strconv.Atoi(tok)
		if err != nil {
			return ChordSpec{}, fmt.Errorf("couldn't parse octave shift: %w", err)
		}
		adj -= octaves * 12
	}

	if p.eat('~') {
		numeral := p.takeRun(isNumeralChar)
		relMode, err := numeralMode(numeral)
		if err != nil {
			return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidRelKey, numeral)
		}
		relDegree0 := numeralIndex(numeral)
		if relDegree0 < 0 {
			return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidRelKey, numeral)
		}
		cs = cs.KeyOf(relDegree0+1, relMode)
	}

	if p.pos != len(p.s) {
		return ChordSpec{}, fmt.Errorf("%w %q", ErrInvalidChord, s)
	}

	return cs.Adj(adj), nil
}

// Chord is a resolved chord: an absolute root plus intervals.
type Chord struct {
	root      Note
	intervals []Interval
}

// NewChord builds a chord from a root note and semitone intervals.
func NewChord(root Note, intervals []int) Chord {
	intvs := make([]Interval, len(intervals))
	for i, s := range intervals {
		intvs[i] = Interval{Semitones: s}
	}
	return Chord{root: root, intervals: intvs}
}

// Root returns the chord's root note.
func (c Chord) Root() Note {
	return c.root
}

// Notes returns the chord's absolute pitches, sorted ascending.
func (c Chord) Notes() []Note {
	notes := make([]Note, len(c.intervals))
	for i, intv := range c.intervals {
		notes[i] = c.root.Add(intv)
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].Semitones < notes[j].Semitones
	})
	return notes
}

// DescribeNotes returns the chord's note names, lowest first.
func (c Chord) DescribeNotes() []string {
	notes := c.Notes()
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.String()
	}
	return out
}

// String renders the chord's notes joined by dashes, e.g. "C3-E3-G3".
func (c Chord) String() string {
	return strings.Join(c.DescribeNotes(), "-")
}
