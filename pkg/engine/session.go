// Package engine owns the per-user generation state: the last progression,
// the last melody, the capture buffer and the quantize grid.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/james-see/notemaker/pkg/capture"
	"github.com/james-see/notemaker/pkg/chords"
	"github.com/james-see/notemaker/pkg/converter"
	"github.com/james-see/notemaker/pkg/melody"
	"github.com/james-see/notemaker/pkg/quantize"
	"github.com/james-see/notemaker/pkg/textnotes"
	"github.com/james-see/notemaker/pkg/theory"
)

var (
	ErrNotGenerated    = errors.New("nothing generated yet")
	ErrSessionNotFound = errors.New("session not found")
)

// Part names a clip a session can export
type Part string

const (
	PartChords  Part = "chords"
	PartMelody  Part = "melody"
	PartCapture Part = "capture"
)

// Session is one generation context. All methods are safe for concurrent
// use; generation runs under the session lock.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu     sync.Mutex
	logger *slog.Logger
	rng    theory.Rand
	tempo  float64

	progression chords.Progression
	voicing     chords.VoicingOptions
	melody      []theory.Note
	melodyCfg   melody.Config
	hasMelody   bool

	capture *capture.Buffer
	grid    *quantize.Grid
}

// NewSession creates a session drawing from rng
func NewSession(id string, rng theory.Rand, tempo float64, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	buf := capture.NewBuffer(tempo)
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		logger:    logger.With("session", id),
		rng:       rng,
		tempo:     buf.Tempo(),
		capture:   buf,
		grid:      quantize.NewGrid(),
	}
}

// GenerateChords builds a new progression, keeps the plain triads for later
// repaints and returns the voiced result
func (s *Session) GenerateChords(cfg chords.Config, opts chords.VoicingOptions) (chords.Progression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := chords.Generate(cfg, s.rng)
	if err != nil {
		return nil, fmt.Errorf("generate chords: %w", err)
	}
	s.progression = p
	s.voicing = opts
	s.logger.Debug("chords generated", "bars", len(p), "degrees", p.Degrees())
	return chords.Voice(p, opts), nil
}

// RepaintChords re-applies voicing options to the last progression
func (s *Session) RepaintChords(opts chords.VoicingOptions) (chords.Progression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.progression == nil {
		return nil, ErrNotGenerated
	}
	s.voicing = opts
	s.logger.Debug("chords repainted", "revoice", opts.Revoice, "pedal", opts.Pedal.String())
	return chords.Voice(s.progression, opts), nil
}

// Chords returns the last progression with its current voicing
func (s *Session) Chords() (chords.Progression, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.progression == nil {
		return nil, ErrNotGenerated
	}
	return chords.Voice(s.progression, s.voicing), nil
}

// GenerateMelody replaces the session melody
func (s *Session) GenerateMelody(cfg melody.Config) (melody.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := melody.Generate(cfg, s.rng)
	if err != nil {
		return melody.Result{}, fmt.Errorf("generate melody: %w", err)
	}
	s.melody = res.Notes
	s.melodyCfg = cfg
	s.hasMelody = true
	s.logger.Debug("melody generated", "notes", len(res.Notes), "steps", res.Steps)
	return res, nil
}

// AlternativeMelody returns a variation of the last melody in its own
// scale. The stored melody stays as it was.
func (s *Session) AlternativeMelody(probability float64) ([]theory.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasMelody {
		return nil, ErrNotGenerated
	}
	notes, err := melody.Alternative(s.melody, s.melodyCfg.Root, s.melodyCfg.Intervals, probability, s.rng)
	if err != nil {
		return nil, fmt.Errorf("alternative melody: %w", err)
	}
	s.logger.Debug("alternative melody", "probability", probability, "notes", len(notes))
	return notes, nil
}

// Melody returns the last generated melody
func (s *Session) Melody() ([]theory.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasMelody {
		return nil, ErrNotGenerated
	}
	return theory.CloneNotes(s.melody), nil
}

// Quantize snaps notes onto a scale
func (s *Session) Quantize(root int, intervals []int, notes []theory.Note) ([]theory.Note, []quantize.Correction, error) {
	q, err := quantize.New(root, intervals)
	if err != nil {
		return nil, nil, err
	}
	out, corrections := q.Notes(notes)
	s.logger.Debug("notes quantized", "notes", len(notes), "moved", len(corrections))
	return out, corrections, nil
}

// Observe feeds one step observation into the session grid. With continuous
// set the grid is re-quantized right away and the corrections returned.
func (s *Session) Observe(step, pitch, state int, continuous bool, root int, intervals []int) ([]quantize.Correction, error) {
	s.grid.Observe(step, pitch, state)
	if !continuous {
		return nil, nil
	}
	return s.SyncGrid(root, intervals)
}

// SyncGrid quantizes the session grid in place
func (s *Session) SyncGrid(root int, intervals []int) ([]quantize.Correction, error) {
	q, err := quantize.New(root, intervals)
	if err != nil {
		return nil, err
	}
	return s.grid.Sync(q), nil
}

// Grid exposes the session's step grid
func (s *Session) Grid() *quantize.Grid {
	return s.grid
}

// RenderText turns text into piano roll notes
func (s *Session) RenderText(opts textnotes.Options) ([]theory.Note, error) {
	notes, err := textnotes.Render(opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("text rendered", "chars", len(opts.Text), "notes", len(notes))
	return notes, nil
}

// ScaleStack returns the muted note stack of a scale
func (s *Session) ScaleStack(root int, intervals []int) ([]theory.Note, error) {
	return quantize.Stack(root, intervals)
}

// Capture returns the session's capture buffer
func (s *Session) Capture() *capture.Buffer {
	return s.capture
}

// CaptureNotes renders the capture buffer. With a key filter, notes off the
// scale are left out.
func (s *Session) CaptureNotes(keyFilter bool, root int, intervals []int) ([]theory.Note, error) {
	notes := s.capture.Notes()
	if !keyFilter {
		return notes, nil
	}
	q, err := quantize.New(root, intervals)
	if err != nil {
		return nil, err
	}
	tones := q.Tones()
	kept := notes[:0]
	for _, n := range notes {
		if theory.ContainsTone(tones, n.Pitch) {
			kept = append(kept, n)
		}
	}
	return kept, nil
}

// SetTempo updates the session tempo and the capture window. The tempo is
// clamped to the capture range; a non-positive value resets it to 120 BPM.
func (s *Session) SetTempo(bpm float64) {
	s.capture.SetTempo(bpm)
	s.mu.Lock()
	s.tempo = s.capture.Tempo()
	s.mu.Unlock()
}

// Clip packages one part of the session for export
func (s *Session) Clip(part Part) (*converter.Clip, error) {
	var notes []theory.Note
	var err error
	switch part {
	case PartChords:
		var p chords.Progression
		p, err = s.Chords()
		notes = p.Notes()
	case PartMelody:
		notes, err = s.Melody()
	case PartCapture:
		notes = s.capture.Notes()
	default:
		return nil, fmt.Errorf("%w: unknown part %q", theory.ErrInvalidParameter, part)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	tempo := s.tempo
	s.mu.Unlock()
	return &converter.Clip{Name: string(part), Tempo: tempo, Notes: notes}, nil
}
