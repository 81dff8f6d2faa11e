// Package capture keeps a rolling window of played notes so a performance
// can be written down after the fact.
package capture

import (
	"math"
	"sort"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/james-see/notemaker/pkg/theory"
)

// Tempo bounds of the host's normalized tempo control
const (
	MinTempo     = 20.0
	MaxTempo     = 666.0
	DefaultTempo = 120.0
	WindowBars   = 8
)

// Event is one captured note. Duration is set once the matching note-off
// arrives.
type Event struct {
	Pitch     uint8         `json:"pitch"`
	Velocity  uint8         `json:"velocity"`
	Channel   uint8         `json:"channel"`
	Timestamp time.Time     `json:"timestamp"`
	Paired    bool          `json:"paired"`
	Duration  time.Duration `json:"duration"`
}

// Buffer collects note events pushed by a MIDI input. It is safe for
// concurrent use.
type Buffer struct {
	mu         sync.Mutex
	tempo      float64
	events     []Event
	lastUpdate time.Time
}

// NewBuffer returns an empty buffer at the given tempo
func NewBuffer(tempo float64) *Buffer {
	b := &Buffer{}
	b.SetTempo(tempo)
	return b
}

// NormalizedTempo maps the host's 0..1 tempo value onto 20..666 BPM,
// rounded to two decimals
func NormalizedTempo(v float64) float64 {
	v = theory.Clamp01(v)
	return math.Round((MinTempo+v*(MaxTempo-MinTempo))*100) / 100
}

// SetTempo changes the tempo used for the window and for rendering. Already
// paired durations are not touched.
func (b *Buffer) SetTempo(bpm float64) {
	if bpm <= 0 {
		bpm = DefaultTempo
	}
	b.mu.Lock()
	b.tempo = math.Min(math.Max(bpm, MinTempo), MaxTempo)
	b.mu.Unlock()
}

// Tempo returns the current tempo in BPM
func (b *Buffer) Tempo() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tempo
}

// Window is the span of 8 bars at the current tempo
func (b *Buffer) Window() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.window()
}

func (b *Buffer) window() time.Duration {
	return time.Duration(WindowBars * 4 * b.beat())
}

func (b *Buffer) beat() float64 {
	return float64(time.Minute) / b.tempo
}

// Push feeds one raw MIDI message. A note-on is stored unpaired; a note-off
// (or a note-on with velocity 0) pairs the newest unpaired note-on of the
// same pitch and channel. Paired events older than the window are dropped;
// unpaired ones stay until released.
func (b *Buffer) Push(status, data1, data2 uint8, at time.Time) {
	msg := midi.Message([]byte{status, data1, data2})
	var ch, key, vel uint8

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		b.events = append(b.events, Event{Pitch: key, Velocity: vel, Channel: ch, Timestamp: at})
	case msg.GetNoteEnd(&ch, &key):
		b.lastUpdate = at
		for i := len(b.events) - 1; i >= 0; i-- {
			e := &b.events[i]
			if !e.Paired && e.Pitch == key && e.Channel == ch {
				e.Paired = true
				e.Duration = at.Sub(e.Timestamp)
				break
			}
		}
	}
	b.cleanup(at)
}

func (b *Buffer) cleanup(now time.Time) {
	cutoff := now.Add(-b.window())
	kept := b.events[:0]
	for _, e := range b.events {
		if !e.Paired || !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	b.events = kept
}

// Events returns a copy of the buffered events in arrival order
func (b *Buffer) Events() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.events...)
}

// Len is the number of buffered events
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Clear drops every event
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.events = nil
	b.mu.Unlock()
}

// Notes renders the paired events into notes relative to the start of the
// window that ends at the last note-off. Events that began before the window
// are skipped and durations are cut to the window length.
func (b *Buffer) Notes() []theory.Note {
	b.mu.Lock()
	defer b.mu.Unlock()

	window := b.window()
	start := b.lastUpdate.Add(-window)
	perStep := b.beat() / theory.StepsPerQuarter

	var notes []theory.Note
	for _, e := range b.events {
		if !e.Paired || e.Duration <= 0 {
			continue
		}
		offset := float64(e.Timestamp.Sub(start))
		if offset < 0 {
			continue
		}
		duration := min(e.Duration, window)
		notes = append(notes, theory.Note{
			Pitch:    int(e.Pitch),
			Position: math.Floor(offset / perStep),
			Length:   float64(duration) / b.beat(),
			Velocity: theory.ClampVelocity(int(e.Velocity)),
			Channel:  int(e.Channel),
		})
	}
	return notes
}

// Replay feeds notes through Push as note-on/note-off pairs, timed from
// start at the buffer's tempo. Offs sort before ons at the same instant.
func (b *Buffer) Replay(notes []theory.Note, start time.Time) {
	beat := time.Duration(float64(time.Minute) / b.Tempo())
	perStep := beat / theory.StepsPerQuarter

	type timed struct {
		at  time.Time
		off bool
		msg midi.Message
	}
	events := make([]timed, 0, 2*len(notes))
	for _, n := range notes {
		n = n.Clamped()
		ch, key := uint8(n.Channel), uint8(n.Pitch)
		on := start.Add(time.Duration(n.Position * float64(perStep)))
		off := on.Add(time.Duration(n.Length * float64(beat)))
		events = append(events,
			timed{on, false, midi.NoteOn(ch, key, uint8(max(n.Velocity, 1)))},
			timed{off, true, midi.NoteOff(ch, key)},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].off && !events[j].off
	})
	for _, e := range events {
		b.Push(e.msg[0], e.msg[1], e.msg[2], e.at)
	}
}
