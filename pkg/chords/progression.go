// Package chords builds diatonic chord progressions from a Markov chain over
// scale degrees and revoices them for smooth voice leading.
package chords

import (
	"fmt"

	"github.com/james-see/notemaker/pkg/theory"
)

// Degree counts
const (
	Degrees    = 7
	MaxDegree  = Degrees - 1
	triadSpan  = 4 // d, d+2, d+4
	repeatCost = 0.3
)

// Generation defaults and limits
const (
	DefaultBars       = 4
	DefaultBaseOctave = 60
	DefaultVelocity   = 64
	MaxBars           = 64
)

// DegreeNames are the roman numerals of the seven diatonic degrees
var DegreeNames = []string{"I", "ii", "iii", "IV", "V", "vi", "vii°"}

type transition struct {
	to     int
	weight float64
}

// chordFlow is the fixed transition graph between diatonic degrees
var chordFlow = [Degrees][]transition{
	0: {{1, 15}, {2, 10}, {3, 30}, {4, 35}, {5, 10}},
	1: {{4, 80}, {0, 20}},
	2: {{5, 70}, {3, 30}},
	3: {{0, 20}, {4, 50}, {1, 30}},
	4: {{0, 80}, {5, 20}},
	5: {{1, 30}, {3, 30}, {4, 40}},
	6: {{0, 90}, {4, 10}},
}

// Chord is one bar of the progression
type Chord struct {
	Degree int           `json:"degree"`
	Notes  []theory.Note `json:"notes"`
}

// Name returns the roman numeral of the chord's degree
func (c Chord) Name() string {
	if c.Degree < 0 || c.Degree >= len(DegreeNames) {
		return "?"
	}
	return DegreeNames[c.Degree]
}

// Find returns the first note with the given role
func (c Chord) Find(role theory.Role) (theory.Note, bool) {
	for _, n := range c.Notes {
		if n.Role == role {
			return n, true
		}
	}
	return theory.Note{}, false
}

// Has reports whether the chord contains a note with the given role
func (c Chord) Has(role theory.Role) bool {
	_, ok := c.Find(role)
	return ok
}

func (c Chord) clone() Chord {
	return Chord{Degree: c.Degree, Notes: theory.CloneNotes(c.Notes)}
}

// Progression is an ordered list of chords, one per bar
type Progression []Chord

// Clone returns a deep copy of the progression
func (p Progression) Clone() Progression {
	if p == nil {
		return nil
	}
	out := make(Progression, len(p))
	for i, c := range p {
		out[i] = c.clone()
	}
	return out
}

// Notes flattens the progression into a single note list
func (p Progression) Notes() []theory.Note {
	var notes []theory.Note
	for _, c := range p {
		notes = append(notes, c.Notes...)
	}
	return notes
}

// Degrees returns the degree sequence of the progression
func (p Progression) Degrees() []int {
	out := make([]int, len(p))
	for i, c := range p {
		out[i] = c.Degree
	}
	return out
}

// Config holds the generation parameters
type Config struct {
	Root        int   `json:"root"`        // pitch class 0-11
	Intervals   []int `json:"intervals"`   // scale steps
	Bars        int   `json:"bars"`        // number of chords, 1-64
	BaseOctave  int   `json:"baseOctave"`  // MIDI pitch of the octave the root sits in, default 60
	Velocity    int   `json:"velocity"`    // 1-127, default 64
	StartDegree int   `json:"startDegree"` // 0-6, default 0 (I)
}

// Normalize fills defaults and clamps every field into range. It rejects a
// non-positive bar count and an invalid scale.
func (c Config) Normalize() (Config, error) {
	if c.Bars <= 0 {
		return c, fmt.Errorf("%w: bars must be positive, got %d", theory.ErrInvalidParameter, c.Bars)
	}
	if c.Bars > MaxBars {
		c.Bars = MaxBars
	}
	if _, err := theory.ToSemitoneProfile(c.Intervals); err != nil {
		return c, err
	}
	c.Root = ((c.Root % 12) + 12) % 12
	if c.BaseOctave == 0 {
		c.BaseOctave = DefaultBaseOctave
	}
	c.BaseOctave = theory.ClampPitch(c.BaseOctave)
	if c.Velocity == 0 {
		c.Velocity = DefaultVelocity
	}
	c.Velocity = theory.ClampVelocity(c.Velocity)
	if c.StartDegree < 0 || c.StartDegree > MaxDegree {
		c.StartDegree = 0
	}
	return c, nil
}

// BuildScaleTones lays the scale out upward from root for at least the given
// number of periods, ending on the root of the next period, and extends it
// until a triad can be stacked on the highest degree.
func BuildScaleTones(root int, intervals []int, periods int) ([]int, error) {
	profile, err := theory.ToSemitoneProfile(intervals)
	if err != nil {
		return nil, err
	}
	period := theory.Period(intervals)
	minLen := MaxDegree + triadSpan + 1
	for periods*len(profile)+1 < minLen {
		periods++
	}
	tones := make([]int, 0, periods*len(profile)+1)
	for o := 0; o < periods; o++ {
		for _, offset := range profile {
			tones = append(tones, root+offset+o*period)
		}
	}
	return append(tones, root+periods*period), nil
}

// Generate walks the degree graph from cfg.StartDegree and stacks a triad on
// every visited degree. Degrees already used are made less likely.
func Generate(cfg Config, r theory.Rand) (Progression, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	tones, err := BuildScaleTones(cfg.BaseOctave+cfg.Root, cfg.Intervals, 4)
	if err != nil {
		return nil, err
	}

	degrees := []int{cfg.StartDegree}
	current := cfg.StartDegree
	for i := 1; i < cfg.Bars; i++ {
		next, err := nextDegree(current, degrees, r)
		if err != nil {
			return nil, fmt.Errorf("bar %d: %w", i+1, err)
		}
		degrees = append(degrees, next)
		current = next
	}

	progression := make(Progression, len(degrees))
	for i, d := range degrees {
		progression[i] = triad(d, i, tones, cfg.Velocity)
	}
	return progression, nil
}

func nextDegree(current int, used []int, r theory.Rand) (int, error) {
	edges := chordFlow[current]
	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.weight
		for _, u := range used {
			if u == e.to {
				weights[i] *= repeatCost
				break
			}
		}
	}
	idx, err := theory.WeightedChoice(r, weights)
	if err != nil {
		return 0, err
	}
	return edges[idx].to, nil
}

func triad(degree, bar int, tones []int, velocity int) Chord {
	position := float64(bar * theory.StepsPerBar)
	const barQuarters = theory.StepsPerBar / theory.StepsPerQuarter
	voice := func(offset int, role theory.Role) theory.Note {
		return theory.Note{
			Pitch:    theory.ClampPitch(tones[degree+offset]),
			Position: position,
			Length:   barQuarters,
			Velocity: velocity,
			Channel:  role.Channel(),
			Role:     role,
		}
	}
	return Chord{
		Degree: degree,
		Notes: []theory.Note{
			voice(0, theory.RoleRoot),
			voice(2, theory.RoleThird),
			voice(4, theory.RoleFifth),
		},
	}
}
