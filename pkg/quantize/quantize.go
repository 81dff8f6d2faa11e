// Package quantize snaps note pitches onto a scale without letting two notes
// of the same step collapse onto one pitch.
package quantize

import (
	"math"
	"slices"

	"github.com/james-see/notemaker/pkg/theory"
)

// ReferenceOctave is the MIDI pitch of the root pitch class 0 the scale
// tones are laid out from
const ReferenceOctave = 60

// Correction moves the note at (Step, Pitch) by Delta semitones
type Correction struct {
	Step  int `json:"step"`
	Pitch int `json:"pitch"`
	Delta int `json:"delta"`
}

// Target is the pitch the note ends up on
func (c Correction) Target() int {
	return c.Pitch + c.Delta
}

// Quantizer holds the scale tones across the whole MIDI range
type Quantizer struct {
	root      int
	intervals []int
	tones     []int
}

// New lays the scale with root pitch class root (0-11) over the MIDI range
func New(root int, intervals []int) (*Quantizer, error) {
	root = ((root % 12) + 12) % 12
	tones, err := theory.ExpandScale(ReferenceOctave+root, intervals, theory.MinPitch, theory.MaxPitch)
	if err != nil {
		return nil, err
	}
	return &Quantizer{root: root, intervals: append([]int(nil), intervals...), tones: tones}, nil
}

// Tones returns the sorted scale pitches
func (q *Quantizer) Tones() []int {
	return append([]int(nil), q.tones...)
}

// Quantize computes the corrections for every column (step -> pitches
// present). Every note already on the scale stays and reserves its pitch
// before any other note moves. Off-scale notes then take, in ascending
// order, the nearer unreserved scale tone directly below or above them and
// reserve it. A note with both neighbours reserved stays where it is. Only
// nonzero moves are returned, ordered by step and pitch.
func (q *Quantizer) Quantize(columns map[int][]int) []Correction {
	steps := make([]int, 0, len(columns))
	for step := range columns {
		steps = append(steps, step)
	}
	slices.Sort(steps)

	var out []Correction
	for _, step := range steps {
		out = append(out, q.column(step, columns[step])...)
	}
	return out
}

func (q *Quantizer) column(step int, pitches []int) []Correction {
	original := slices.Clone(pitches)
	slices.Sort(original)
	original = slices.Compact(original)

	used := make(map[int]bool, len(original))
	for _, y := range original {
		if theory.ContainsTone(q.tones, y) {
			used[y] = true
		}
	}

	var out []Correction
	for _, y := range original {
		if theory.ContainsTone(q.tones, y) {
			continue
		}

		lower, higher, hasLower, hasHigher := theory.NearestBelowAbove(q.tones, y)
		var candidates []int
		if hasLower {
			candidates = append(candidates, lower)
		}
		if hasHigher {
			candidates = append(candidates, higher)
		}

		target, ok := closest(y, candidates, func(c int) bool { return !used[c] })
		if !ok {
			// both neighbours taken: leave the note unmoved
			continue
		}
		used[target] = true
		if delta := target - y; delta != 0 {
			out = append(out, Correction{Step: step, Pitch: y, Delta: delta})
		}
	}
	return out
}

// closest picks the candidate nearest to y among those accepted by keep,
// preferring the earlier (lower) one on a tie
func closest(y int, candidates []int, keep func(int) bool) (int, bool) {
	best, found := 0, false
	for _, c := range candidates {
		if !keep(c) {
			continue
		}
		if !found || math.Abs(float64(c-y)) < math.Abs(float64(best-y)) {
			best, found = c, true
		}
	}
	return best, found
}

// Apply returns a copy of notes with the corrections applied. A note is
// matched by the integer step of its position and its pitch.
func Apply(notes []theory.Note, corrections []Correction) []theory.Note {
	type key struct{ step, pitch int }
	moves := make(map[key]int, len(corrections))
	for _, c := range corrections {
		moves[key{c.Step, c.Pitch}] = c.Delta
	}
	out := theory.CloneNotes(notes)
	for i, n := range out {
		if delta, ok := moves[key{int(math.Floor(n.Position)), n.Pitch}]; ok {
			out[i].Pitch = theory.ClampPitch(n.Pitch + delta)
		}
	}
	return out
}

// Columns groups notes into step -> pitches using the integer step of each
// note's position
func Columns(notes []theory.Note) map[int][]int {
	columns := make(map[int][]int)
	for _, n := range notes {
		step := int(math.Floor(n.Position))
		columns[step] = append(columns[step], n.Pitch)
	}
	return columns
}

// Notes quantizes a note list in one go
func (q *Quantizer) Notes(notes []theory.Note) ([]theory.Note, []Correction) {
	corrections := q.Quantize(Columns(notes))
	return Apply(notes, corrections), corrections
}

// Stack returns one muted sixteenth at step 0 for every scale pitch, a
// visual reference of the scale in a piano roll
func Stack(root int, intervals []int) ([]theory.Note, error) {
	q, err := New(root, intervals)
	if err != nil {
		return nil, err
	}
	notes := make([]theory.Note, len(q.tones))
	for i, p := range q.tones {
		notes[i] = theory.Note{Pitch: p, Length: 0.25, Velocity: 60, Muted: true}
	}
	return notes, nil
}
