// Package converter moves generated notes in and out of files: Standard MIDI
// Files for DAWs and JSON for tooling.
package converter

import (
	"math"

	"github.com/james-see/notemaker/pkg/theory"
)

// Clip is a named note list at a tempo, the unit every codec reads and writes
type Clip struct {
	Name  string        `json:"name"`
	Tempo float64       `json:"tempo"`
	Notes []theory.Note `json:"notes"`
}

// Steps returns the end of the last note in 16th steps, rounded up to a
// whole bar
func (c *Clip) Steps() int {
	end := 0.0
	for _, n := range c.Notes {
		end = math.Max(end, n.Position+n.Steps())
	}
	bars := int(math.Ceil(end / theory.StepsPerBar))
	if bars == 0 {
		bars = 1
	}
	return bars * theory.StepsPerBar
}

// ConversionResult holds the result of a conversion
type ConversionResult struct {
	Data     []byte
	Filename string
	Format   Format
}

// Codec encodes and decodes clips for one file format
type Codec interface {
	Name() string
	Format() Format
	Encode(clip *Clip) ([]byte, error)
	Decode(data []byte) (*Clip, error)
}

// Converter handles format conversions between the registered codecs
type Converter struct {
	codecs map[Format]Codec
}

// New creates a Converter with the given codecs, or the MIDI and JSON codecs
// when none are given
func New(codecs ...Codec) *Converter {
	if len(codecs) == 0 {
		codecs = []Codec{NewMIDIConverter(), JSONCodec{}}
	}
	c := &Converter{codecs: make(map[Format]Codec, len(codecs))}
	for _, codec := range codecs {
		c.SetCodec(codec)
	}
	return c
}

// GetCodec returns the codec registered for a format
func (c *Converter) GetCodec(f Format) (Codec, bool) {
	codec, ok := c.codecs[f]
	return codec, ok
}

// SetCodec registers or replaces the codec for its format
func (c *Converter) SetCodec(codec Codec) {
	c.codecs[codec.Format()] = codec
}
