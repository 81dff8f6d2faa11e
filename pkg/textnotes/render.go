// Package textnotes writes text into a piano roll: every lit cell of a glyph
// becomes a short note, columns map to steps and rows to scale degrees.
package textnotes

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/james-see/notemaker/pkg/theory"
)

// Layout constants
const (
	glyphRows     = 7
	glyphAdvance  = 5 // columns taken by a glyph before the gap
	spaceAdvance  = 4
	lowestRoot    = 24
	noteVelocity  = 60
	noteLength    = 0.25
	MaxOctave     = 5
	MaxScale      = 8
	DefaultGap    = 3
	DefaultOctave = 3
)

// Options control the rendering. Width stretches glyph columns over steps,
// Height stretches glyph rows over scale degrees and Gap is the number of
// steps left between characters.
type Options struct {
	Root        int    `json:"root"`        // pitch class 0-11
	Intervals   []int  `json:"intervals"`   // scale steps
	OctaveStart int    `json:"octaveStart"` // 0-5
	Text        string `json:"text"`
	Width       int    `json:"width"`  // 1-8
	Height      int    `json:"height"` // 1-8
	Gap         int    `json:"gap"`    // 1-8 steps
	Italic      bool   `json:"italic"`
}

// DefaultOptions renders in C major from octave 3 at unit size
func DefaultOptions(text string) Options {
	return Options{
		Intervals:   []int{2, 2, 1, 2, 2, 2, 1},
		OctaveStart: DefaultOctave,
		Text:        text,
		Width:       1,
		Height:      1,
		Gap:         DefaultGap,
	}
}

func (o Options) normalize() (Options, error) {
	if _, err := theory.ToSemitoneProfile(o.Intervals); err != nil {
		return o, err
	}
	if o.Width <= 0 || o.Height <= 0 {
		return o, fmt.Errorf("%w: width and height must be positive", theory.ErrInvalidParameter)
	}
	o.Root = ((o.Root % 12) + 12) % 12
	o.OctaveStart = min(max(o.OctaveStart, 0), MaxOctave)
	o.Width = min(o.Width, MaxScale)
	o.Height = min(o.Height, MaxScale)
	o.Gap = min(max(o.Gap, 0), MaxScale)
	return o, nil
}

// Supported reports whether r has a glyph
func Supported(r rune) bool {
	_, ok := font[unicode.ToUpper(r)]
	return ok
}

// Render converts opts.Text into notes. Letters are upper-cased; a space or
// a character without a glyph advances by four columns. Notes that would
// leave the MIDI range are dropped.
func Render(opts Options) ([]theory.Note, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	profile, _ := theory.ToSemitoneProfile(opts.Intervals)
	base := lowestRoot + opts.Root + opts.OctaveStart*theory.OctaveSemitones
	n := len(profile)

	var notes []theory.Note
	position := 0
	for _, ch := range strings.ToUpper(opts.Text) {
		glyph := font[ch]
		if len(glyph) == 0 {
			position += spaceAdvance * opts.Width
			continue
		}
		for _, cell := range glyph {
			x := cell.X * opts.Width
			inverted := glyphRows - 1 - cell.Y
			if opts.Italic {
				x += inverted * opts.Width
			}
			y := inverted * opts.Height
			degree := y % n
			if degree < 0 {
				degree = -degree
			}
			octave := int(math.Floor(float64(y) / float64(n)))
			pitch := base + profile[degree] + octave*theory.OctaveSemitones
			if pitch < theory.MinPitch || pitch > theory.MaxPitch {
				continue
			}
			notes = append(notes, theory.Note{
				Pitch:    pitch,
				Position: float64(position + x),
				Length:   noteLength,
				Velocity: noteVelocity,
			})
		}
		position += glyphAdvance*opts.Width + opts.Gap
	}
	return notes, nil
}

// Width returns the number of steps the rendered text occupies
func Width(opts Options) int {
	opts, err := opts.normalize()
	if err != nil {
		return 0
	}
	position := 0
	for _, ch := range strings.ToUpper(opts.Text) {
		if len(font[ch]) == 0 {
			position += spaceAdvance * opts.Width
			continue
		}
		position += glyphAdvance*opts.Width + opts.Gap
	}
	return position
}
