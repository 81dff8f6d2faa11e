package chords

import "github.com/james-see/notemaker/pkg/theory"

const (
	octave          = 12
	maxOctaveShift  = 2
	maxUnisonPasses = 64

	// DefaultMinInterval is the spacing used when RevoiceOptions leaves it unset
	DefaultMinInterval = 2
	maxMinInterval     = octave - 1
)

// RevoiceOptions tunes the voice-leading pass
type RevoiceOptions struct {
	// MinInterval is the smallest allowed distance in semitones between two
	// voices of the same chord. Voices are only ever moved by whole octaves.
	MinInterval int
	// Pedal anchors one role to its own predecessor instead of the nearest
	// voice of the previous chord. RoleNone disables it.
	Pedal theory.Role
}

// Revoice moves every voice of every chord after the first by whole octaves
// so it lands as close as possible to the already revoiced previous chord.
// The first chord is the reference and is returned unchanged. No chord of the
// result holds two voices on the same pitch.
func Revoice(p Progression, opts RevoiceOptions) Progression {
	if len(p) == 0 {
		return p.Clone()
	}
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	if minInterval > maxMinInterval {
		minInterval = maxMinInterval
	}

	out := make(Progression, len(p))
	out[0] = p[0].clone()
	for i := 1; i < len(p); i++ {
		prev := out[i-1]
		cur := p[i].clone()
		for j := range cur.Notes {
			cur.Notes[j].Pitch = closestOctave(cur.Notes[j], prev, opts.Pedal)
		}
		enforceSpacing(cur.Notes, minInterval, opts.Pedal)
		resolveUnisons(cur.Notes, opts.Pedal)
		lowerRootOnOverlap(cur.Notes)
		fitRange(cur.Notes)
		out[i] = cur
	}
	return out
}

// closestOctave searches octave shifts of n for the pitch nearest to the
// previous chord: the same role for the pedal voice, any voice otherwise.
func closestOctave(n theory.Note, prev Chord, pedal theory.Role) int {
	refs := make([]int, 0, len(prev.Notes))
	if pedal != theory.RoleNone && n.Role == pedal {
		ref, ok := prev.Find(pedal)
		if !ok {
			return n.Pitch
		}
		refs = append(refs, ref.Pitch)
	} else {
		for _, pn := range prev.Notes {
			refs = append(refs, pn.Pitch)
		}
	}

	best := n.Pitch
	bestDiff := -1
	for _, ref := range refs {
		for k := -maxOctaveShift; k <= maxOctaveShift; k++ {
			candidate := n.Pitch + octave*k
			diff := abs(candidate - ref)
			if bestDiff < 0 || diff < bestDiff {
				bestDiff = diff
				best = candidate
			}
		}
	}
	return best
}

// enforceSpacing pushes apart voices closer than minInterval by one octave.
// The pedal voice never moves; otherwise the lower voice drops.
func enforceSpacing(notes []theory.Note, minInterval int, pedal theory.Role) {
	isPedal := func(n theory.Note) bool { return pedal != theory.RoleNone && n.Role == pedal }
	for j := 0; j < len(notes); j++ {
		for k := j + 1; k < len(notes); k++ {
			a, b := &notes[j], &notes[k]
			if abs(a.Pitch-b.Pitch) >= minInterval {
				continue
			}
			switch {
			case isPedal(*a):
				moveAway(b, a.Pitch)
			case isPedal(*b):
				moveAway(a, b.Pitch)
			case a.Pitch < b.Pitch:
				a.Pitch -= octave
			case b.Pitch < a.Pitch:
				b.Pitch -= octave
			default:
				b.Pitch += octave
			}
		}
	}
}

func moveAway(n *theory.Note, from int) {
	if n.Pitch >= from {
		n.Pitch += octave
	} else {
		n.Pitch -= octave
	}
}

// resolveUnisons lifts the second of two identical pitches (or the non-pedal
// voice) by an octave until no unison is left or the pass budget runs out.
func resolveUnisons(notes []theory.Note, pedal theory.Role) {
	for pass := 0; pass < maxUnisonPasses; pass++ {
		clean := true
		for a := 0; a < len(notes); a++ {
			for b := a + 1; b < len(notes); b++ {
				if notes[a].Pitch != notes[b].Pitch {
					continue
				}
				clean = false
				switch {
				case pedal != theory.RoleNone && notes[a].Role == pedal:
					notes[b].Pitch += octave
				case pedal != theory.RoleNone && notes[b].Role == pedal:
					notes[a].Pitch -= octave
				default:
					notes[b].Pitch += octave
				}
			}
		}
		if clean {
			return
		}
	}
}

func lowerRootOnOverlap(notes []theory.Note) {
	root := -1
	for i, n := range notes {
		if n.Role == theory.RoleRoot {
			root = i
			break
		}
	}
	if root < 0 {
		return
	}
	for i, n := range notes {
		if i != root && n.Pitch == notes[root].Pitch {
			notes[root].Pitch -= octave
			return
		}
	}
}

// fitRange folds every voice into the MIDI range by octaves and then gives
// any voice that collides with an earlier one the nearest free octave.
func fitRange(notes []theory.Note) {
	for i := range notes {
		for notes[i].Pitch > theory.MaxPitch {
			notes[i].Pitch -= octave
		}
		for notes[i].Pitch < theory.MinPitch {
			notes[i].Pitch += octave
		}
	}

	taken := make(map[int]bool, len(notes))
	for i := range notes {
		p := notes[i].Pitch
		if taken[p] {
			for step := 1; step*octave <= theory.MaxPitch; step++ {
				if up := p + step*octave; up <= theory.MaxPitch && !taken[up] {
					p = up
					break
				}
				if down := p - step*octave; down >= theory.MinPitch && !taken[down] {
					p = down
					break
				}
			}
			notes[i].Pitch = p
		}
		taken[p] = true
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
