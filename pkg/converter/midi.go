package converter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/james-see/notemaker/pkg/theory"
)

// MutedVelocity is written for muted notes, which SMF cannot express
const MutedVelocity = 1

// MIDIConverter handles MIDI file parsing and generation
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter() *MIDIConverter {
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           120.0,
	}
}

// Name returns the codec name
func (m *MIDIConverter) Name() string { return "Standard MIDI File" }

// Format returns FormatMIDI
func (m *MIDIConverter) Format() Format { return FormatMIDI }

// Encode implements Codec
func (m *MIDIConverter) Encode(clip *Clip) ([]byte, error) { return m.GenerateMIDI(clip) }

// Decode implements Codec
func (m *MIDIConverter) Decode(data []byte) (*Clip, error) { return m.ParseMIDI(data) }

// ParseMIDIFile reads a MIDI file and extracts its notes
func (m *MIDIConverter) ParseMIDIFile(filename string) (*Clip, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return m.ParseMIDI(data)
}

// ParseMIDI parses MIDI data into a clip. Notes of all tracks are merged;
// positions are converted to 16th steps and lengths to quarters.
func (m *MIDIConverter) ParseMIDI(data []byte) (*Clip, error) {
	reader := bytes.NewReader(data)

	s, err := smf.ReadFrom(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	ticksPerQuarter := m.ticksPerQuarter
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = mt.Resolution()
	}
	ticksPerStep := float64(ticksPerQuarter) / theory.StepsPerQuarter

	clip := &Clip{Tempo: m.tempo}

	type open struct {
		tick     int64
		velocity uint8
	}
	type voice struct{ channel, key uint8 }

	for _, track := range s.Tracks {
		pending := make(map[voice][]open)
		var currentTick int64
		for _, ev := range track {
			currentTick += int64(ev.Delta)
			msg := ev.Message

			var bpm float64
			if msg.GetMetaTempo(&bpm) {
				if bpm > 0 {
					clip.Tempo = math.Round(bpm*100) / 100
				}
				continue
			}
			var name string
			if msg.GetMetaTrackName(&name) {
				if clip.Name == "" {
					clip.Name = name
				}
				continue
			}

			var ch, key, vel uint8
			switch mm := midi.Message(msg); {
			case mm.GetNoteStart(&ch, &key, &vel):
				v := voice{ch, key}
				pending[v] = append(pending[v], open{tick: currentTick, velocity: vel})
			case mm.GetNoteEnd(&ch, &key):
				v := voice{ch, key}
				starts := pending[v]
				if len(starts) == 0 {
					continue
				}
				start := starts[0]
				pending[v] = starts[1:]
				clip.Notes = append(clip.Notes, theory.Note{
					Pitch:    int(key),
					Position: float64(start.tick) / ticksPerStep,
					Length:   float64(currentTick-start.tick) / float64(ticksPerQuarter),
					Velocity: int(start.velocity),
					Channel:  int(ch),
				})
			}
		}
	}

	sort.SliceStable(clip.Notes, func(i, j int) bool {
		if clip.Notes[i].Position != clip.Notes[j].Position {
			return clip.Notes[i].Position < clip.Notes[j].Position
		}
		return clip.Notes[i].Pitch < clip.Notes[j].Pitch
	})
	return clip, nil
}

type timedMessage struct {
	tick uint32
	off  bool
	msg  midi.Message
}

// GenerateMIDI creates a single track Standard MIDI File from a clip. Each
// note keeps its channel; the file is padded to a whole number of bars.
func (m *MIDIConverter) GenerateMIDI(clip *Clip) ([]byte, error) {
	if clip == nil {
		return nil, errors.New("nil clip")
	}

	tempo := clip.Tempo
	if tempo <= 0 {
		tempo = m.tempo
	}

	// Create SMF with one track
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	if clip.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(clip.Name))
	}
	track.Add(0, smf.MetaTempo(tempo))
	track.Add(0, smf.MetaMeter(4, 4))

	ticksPerStep := float64(m.ticksPerQuarter) / theory.StepsPerQuarter
	var events []timedMessage
	for _, n := range clip.Notes {
		n = n.Clamped()
		if n.Length <= 0 {
			continue
		}
		velocity := uint8(n.Velocity)
		if n.Muted {
			velocity = MutedVelocity
		}
		start := uint32(math.Round(math.Max(0, n.Position) * ticksPerStep))
		end := start + uint32(math.Max(1, math.Round(n.Length*float64(m.ticksPerQuarter))))
		channel, key := uint8(n.Channel), uint8(n.Pitch)
		events = append(events,
			timedMessage{tick: start, msg: midi.NoteOn(channel, key, velocity)},
			timedMessage{tick: end, off: true, msg: midi.NoteOff(channel, key)},
		)
	}
	// note-offs first on a shared tick so repeated pitches retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].off && !events[j].off
	})

	var currentTick uint32
	for _, ev := range events {
		track.Add(ev.tick-currentTick, ev.msg)
		currentTick = ev.tick
	}

	// Pad to the end of the last bar
	totalTicks := uint32(float64(clip.Steps()) * ticksPerStep)
	if currentTick < totalTicks {
		track.Add(totalTicks-currentTick, smf.Message([]byte{0xFF, 0x06, 0x00})) // Marker event as padding
	}

	// Add end of track
	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	// Write to buffer
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteMIDIFile writes a clip to a MIDI file
func (m *MIDIConverter) WriteMIDIFile(clip *Clip, filename string) error {
	data, err := m.GenerateMIDI(clip)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
