// Package melody generates stepwise melodies from weighted scale degrees with
// phrase repetition and motif development.
package melody

import (
	"fmt"
	"slices"

	"github.com/james-see/notemaker/pkg/theory"
)

// Parameter ranges
const (
	MaxOctaveStart = 8
	MaxOctaveRange = 4
	MaxBars        = 64
	historySize    = 8
	recentSize     = 4
	maxRetries     = 8
)

// DefaultDegreeWeights favours tonic, subdominant and dominant
var DefaultDegreeWeights = []float64{30, 10, 10, 20, 20, 5, 5}

// Config holds the generation parameters. Percentages run 0-100.
type Config struct {
	Root             int       `json:"root"`             // pitch class 0-11
	Intervals        []int     `json:"intervals"`        // scale steps
	OctaveStart      int       `json:"octaveStart"`      // 0-8, lowest octave
	OctaveRange      int       `json:"octaveRange"`      // 1-4 octaves
	Bars             int       `json:"bars"`             // 1-64
	DegreeWeights    []float64 `json:"degreeWeights"`    // one weight per degree, nil for defaults
	RestProbability  float64   `json:"restProbability"`  // chance a slot stays silent
	RepetitionChance float64   `json:"repetitionChance"` // chance to replay the recent phrase
	MotifChance      float64   `json:"motifChance"`      // chance to develop a motif
	LengthVariation  float64   `json:"lengthVariation"`  // 0 = all sixteenths
	Emphasis         float64   `json:"emphasis"`         // boost of I, IV, V on strong steps
	Randomness       float64   `json:"randomness"`       // blend of random over baseline expression
	AllowRepeats     bool      `json:"allowRepeats"`
	Channel          int       `json:"channel"`
}

// DefaultConfig returns a one bar C major melody in octave 3
func DefaultConfig() Config {
	return Config{
		Intervals:     []int{2, 2, 1, 2, 2, 2, 1},
		OctaveStart:   3,
		OctaveRange:   1,
		Bars:          1,
		DegreeWeights: append([]float64(nil), DefaultDegreeWeights...),
		Randomness:    100,
	}
}

// Normalize clamps every field into range and fills missing degree weights.
// It rejects a non-positive bar count, an invalid scale and degree weights
// with no positive entry.
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
	c.OctaveStart = min(max(c.OctaveStart, 0), MaxOctaveStart)
	c.OctaveRange = min(max(c.OctaveRange, 1), MaxOctaveRange)
	if len(c.DegreeWeights) == 0 {
		c.DegreeWeights = DefaultDegreeWeights
	}
	weights := make([]float64, len(c.DegreeWeights))
	for i, w := range c.DegreeWeights {
		weights[i] = theory.ClampPercent(w)
	}
	if !slices.ContainsFunc(weights, func(w float64) bool { return w > 0 }) {
		return c, fmt.Errorf("%w: degree weights %v have no positive entry", theory.ErrInvalidParameter, c.DegreeWeights)
	}
	c.DegreeWeights = weights
	c.RestProbability = theory.ClampPercent(c.RestProbability)
	c.RepetitionChance = theory.ClampPercent(c.RepetitionChance)
	c.MotifChance = theory.ClampPercent(c.MotifChance)
	c.LengthVariation = theory.ClampPercent(c.LengthVariation)
	c.Emphasis = theory.ClampPercent(c.Emphasis)
	c.Randomness = theory.ClampPercent(c.Randomness)
	c.Channel = theory.ClampChannel(c.Channel)
	return c, nil
}

// BaseNote is the MIDI pitch of the root in the starting octave
func (c Config) BaseNote() int {
	return c.Root + (c.OctaveStart+1)*theory.OctaveSemitones
}

// TotalSteps is the melody length in 16th steps
func (c Config) TotalSteps() int {
	return c.Bars * theory.StepsPerBar
}
