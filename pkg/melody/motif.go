package melody

import (
	"fmt"
	"slices"
	"strings"

	"github.com/james-see/notemaker/pkg/theory"
)

// MotifOp is one of the motif development operations
type MotifOp int

const (
	OpTranspose MotifOp = iota
	OpInvert
	OpRetrograde
	OpOctave
	motifOps
)

var opNames = [...]string{"transpose", "invert", "retrograde", "octave"}

func (op MotifOp) String() string {
	if op < 0 || op >= motifOps {
		return "unknown"
	}
	return opNames[op]
}

// ParseMotifOp resolves an operation name
func ParseMotifOp(name string) (MotifOp, error) {
	for i, n := range opNames {
		if strings.EqualFold(n, name) {
			return MotifOp(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown motif operation %q", theory.ErrInvalidParameter, name)
}

// Window is the register a melody may use: the scale tones between Low and
// High inclusive
type Window struct {
	Low   int   `json:"low"`
	High  int   `json:"high"`
	Tones []int `json:"tones"`
}

// NewWindow lays the scale rooted at base out over [low, high]
func NewWindow(base int, intervals []int, low, high int) (Window, error) {
	tones, err := theory.ExpandScale(base, intervals, low, high)
	if err != nil {
		return Window{}, err
	}
	return Window{Low: theory.ClampPitch(low), High: theory.ClampPitch(high), Tones: tones}, nil
}

// windowFor covers every pitch the new-note sampler can produce for cfg
func windowFor(cfg Config, profile []int, period int) (Window, error) {
	base := cfg.BaseNote()
	top := len(cfg.DegreeWeights) - 1 + (cfg.OctaveRange-1)*len(profile)
	high := theory.DegreePitch(base, profile, period, top)
	return NewWindow(base, cfg.Intervals, theory.ClampPitch(base), theory.ClampPitch(high))
}

// Contains reports whether p lies inside the window bounds
func (w Window) Contains(p int) bool {
	return p >= w.Low && p <= w.High
}

// Snap moves p onto the nearest scale tone of the window
func (w Window) Snap(p int) int {
	return theory.ClampPitch(theory.NearestTone(w.Tones, p))
}

// Transform returns a developed copy of motif m. Transpose moves every note
// amount scale steps, invert mirrors the pitches around the first note,
// retrograde reverses the note order and octave shifts the whole motif one
// octave in the direction of amount when it still fits the window. Every
// resulting pitch is snapped back onto the window's scale tones.
func Transform(m []theory.Note, op MotifOp, amount int, w Window) []theory.Note {
	out := theory.CloneNotes(m)
	if len(out) == 0 {
		return out
	}

	switch op {
	case OpTranspose:
		for i := range out {
			idx := theory.IndexOfNearest(w.Tones, out[i].Pitch)
			if idx < 0 {
				continue
			}
			idx = min(max(idx+amount, 0), len(w.Tones)-1)
			out[i].Pitch = w.Tones[idx]
		}
	case OpInvert:
		axis := out[0].Pitch
		for i := range out {
			out[i].Pitch = 2*axis - out[i].Pitch
		}
	case OpRetrograde:
		slices.Reverse(out)
	case OpOctave:
		shift := theory.OctaveSemitones
		if amount < 0 {
			shift = -shift
		}
		fits := true
		for _, n := range out {
			if !w.Contains(n.Pitch + shift) {
				fits = false
				break
			}
		}
		if fits {
			for i := range out {
				out[i].Pitch += shift
			}
		}
	}

	if len(w.Tones) > 0 {
		for i := range out {
			out[i].Pitch = w.Snap(out[i].Pitch)
		}
	}
	return out
}
