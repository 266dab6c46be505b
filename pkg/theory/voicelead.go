package theory

// VoiceLead re-voices a chord sequence to minimize semitone movement.
// The first chord is kept as-is; each subsequent chord is replaced by
// whichever of its inversions, searched across the same and adjacent
// octaves, is closest to the previously chosen voicing. Ties keep the
// first candidate found, so the result is deterministic.
func VoiceLead(chords []ChordSpec) []ChordSpec {
	if len(chords) == 0 {
		return nil
	}

	out := make([]ChordSpec, 0, len(chords))
	out = append(out, chords[0])
	for _, cs := range chords[1:] {
		last := out[len(out)-1]

		var best ChordSpec
		bestDist := -1
		for shift := -1; shift <= 1; shift++ {
			for _, cand := range cs.Shift(shift).Inversions() {
				if d := cand.Distance(last); bestDist < 0 || d < bestDist {
					best = cand
					bestDist = d
				}
			}
		}
		out = append(out, best)
	}
	return out
}
