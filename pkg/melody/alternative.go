package melody

import "github.com/james-see/notemaker/pkg/theory"

// Alternative returns a varied copy of notes: each note moves, with the given
// percent probability, to the scale tone directly above or below its nearest
// scale tone. Positions, lengths and expression are kept.
func Alternative(notes []theory.Note, root int, intervals []int, probability float64, r theory.Rand) ([]theory.Note, error) {
	tones, err := theory.ExpandScale(((root%12)+12)%12, intervals, theory.MinPitch, theory.MaxPitch)
	if err != nil {
		return nil, err
	}
	probability = theory.ClampPercent(probability)

	out := theory.CloneNotes(notes)
	for i := range out {
		if !theory.Chance(r, probability) {
			continue
		}
		idx := theory.IndexOfNearest(tones, out[i].Pitch)
		if idx < 0 {
			continue
		}
		step := 1
		if r.IntN(2) == 0 {
			step = -1
		}
		idx = min(max(idx+step, 0), len(tones)-1)
		out[i].Pitch = theory.ClampPitch(tones[idx])
	}
	return out, nil
}
