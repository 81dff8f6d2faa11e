package capture

import (
	"testing"
	"time"

	"github.com/james-see/notemaker/pkg/theory"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPairing(t *testing.T) {
	b := NewBuffer(120)
	b.Push(0x90, 60, 100, t0)
	b.Push(0x80, 60, 0, t0.Add(500*time.Millisecond))

	events := b.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if !e.Paired || e.Duration != 500*time.Millisecond {
		t.Errorf("event = %+v, want paired with 500ms", e)
	}

	b.SetTempo(60)
	if got := b.Events()[0].Duration; got != 500*time.Millisecond {
		t.Errorf("duration after tempo change = %v, want 500ms", got)
	}
}

func TestNoteOnVelocityZeroEndsNote(t *testing.T) {
	b := NewBuffer(120)
	b.Push(0x93, 64, 90, t0)
	b.Push(0x93, 64, 0, t0.Add(time.Second))
	e := b.Events()[0]
	if !e.Paired || e.Channel != 3 || e.Duration != time.Second {
		t.Errorf("event = %+v", e)
	}
}

func TestPairsNewestUnpaired(t *testing.T) {
	b := NewBuffer(120)
	b.Push(0x90, 60, 80, t0)
	b.Push(0x90, 60, 90, t0.Add(100*time.Millisecond))
	b.Push(0x80, 60, 0, t0.Add(300*time.Millisecond))

	events := b.Events()
	if events[0].Paired {
		t.Error("oldest note-on should still be held")
	}
	if !events[1].Paired || events[1].Duration != 200*time.Millisecond {
		t.Errorf("newest note-on = %+v, want paired with 200ms", events[1])
	}
}

func TestNoteOffOtherChannelIgnored(t *testing.T) {
	b := NewBuffer(120)
	b.Push(0x90, 60, 80, t0)
	b.Push(0x81, 60, 0, t0.Add(time.Second))
	if b.Events()[0].Paired {
		t.Error("note-off on another channel paired the note")
	}
}

func TestWindowCleanup(t *testing.T) {
	b := NewBuffer(120)
	if b.Window() != 16*time.Second {
		t.Fatalf("Window() = %v, want 16s", b.Window())
	}

	b.Push(0x90, 50, 80, t0) // held forever
	b.Push(0x90, 60, 80, t0)
	b.Push(0x80, 60, 0, t0.Add(time.Second))
	b.Push(0x90, 62, 80, t0.Add(20*time.Second))

	events := b.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}
	if events[0].Pitch != 50 || events[0].Paired {
		t.Errorf("held note was dropped: %+v", events)
	}
	if events[1].Pitch != 62 {
		t.Errorf("latest note missing: %+v", events)
	}
}

func TestNotes(t *testing.T) {
	b := NewBuffer(120)
	b.Push(0x90, 60, 100, t0)
	b.Push(0x80, 60, 0, t0.Add(500*time.Millisecond))
	b.Push(0x90, 67, 0x7f, t0.Add(time.Second))
	b.Push(0x80, 67, 0, t0.Add(2*time.Second))
	b.Push(0x90, 72, 80, t0.Add(2*time.Second)) // unpaired, not rendered

	notes := b.Notes()
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	// window ends at the last note-off (t0+2s) and spans 16s = 128 steps
	if notes[0].Position != 112 || notes[0].Length != 1 || notes[0].Pitch != 60 {
		t.Errorf("first note = %+v, want position 112 length 1", notes[0])
	}
	if notes[1].Position != 120 || notes[1].Length != 2 || notes[1].Velocity != 127 {
		t.Errorf("second note = %+v, want position 120 length 2", notes[1])
	}
}

func TestNormalizedTempo(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 20}, {1, 666}, {0.5, 343}, {0.15479876, 120}, {-1, 20}, {2, 666},
	}
	for _, tt := range tests {
		if got := NormalizedTempo(tt.in); got != tt.want {
			t.Errorf("NormalizedTempo(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	b := NewBuffer(0)
	if b.Tempo() != DefaultTempo {
		t.Errorf("Tempo() = %v, want default", b.Tempo())
	}
	b.Push(0x90, 60, 100, t0)
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Clear", b.Len())
	}
}

func TestReplay(t *testing.T) {
	b := NewBuffer(120)
	b.Replay([]theory.Note{
		{Pitch: 60, Position: 0, Length: 1, Velocity: 100},
		{Pitch: 62, Position: 4, Length: 0.5, Velocity: 0, Channel: 2},
	}, t0)

	events := b.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Paired || events[0].Duration != 500*time.Millisecond {
		t.Errorf("first event = %+v, want paired with 500ms", events[0])
	}
	if events[1].Velocity != 1 || events[1].Channel != 2 || events[1].Duration != 250*time.Millisecond {
		t.Errorf("second event = %+v", events[1])
	}

	notes := b.Notes()
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if d := notes[1].Position - notes[0].Position; d != 4 {
		t.Errorf("position gap = %v, want 4", d)
	}
	if notes[0].Length != 1 || notes[1].Length != 0.5 {
		t.Errorf("lengths = %v, %v; want 1, 0.5", notes[0].Length, notes[1].Length)
	}
}
