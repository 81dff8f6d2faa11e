package textnotes

import (
	"errors"
	"testing"

	"github.com/james-see/notemaker/pkg/theory"
)

type cell struct {
	pos   float64
	pitch int
}

func TestRenderLetterA(t *testing.T) {
	notes, err := Render(DefaultOptions("A"))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := []cell{
		{0, 69}, {0, 67}, {0, 65}, {0, 64}, {0, 62}, {1, 71}, {0, 60}, {2, 71},
		{3, 60}, {3, 69}, {3, 67}, {3, 65}, {3, 64}, {3, 62}, {1, 65}, {2, 65},
	}
	if len(notes) != len(want) {
		t.Fatalf("Render() produced %d notes, want %d", len(notes), len(want))
	}
	for i, w := range want {
		n := notes[i]
		if n.Position != w.pos || n.Pitch != w.pitch {
			t.Errorf("note %d = (%v, %d), want (%v, %d)", i, n.Position, n.Pitch, w.pos, w.pitch)
		}
		if n.Velocity != 60 || n.Length != 0.25 || n.Channel != 0 {
			t.Errorf("note %d attributes = %+v", i, n)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a, _ := Render(DefaultOptions("Hello, World 42!"))
	b, _ := Render(DefaultOptions("hello, world 42!"))
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("len = %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("note %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRenderAdvance(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		gap   int
		want  int
	}{
		{"single glyph", "A", 1, 3, 8},
		{"space", " ", 1, 3, 4},
		{"unknown character", "#", 2, 3, 8},
		{"two glyphs wide", "AB", 2, 1, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(tt.text)
			opts.Width = tt.width
			opts.Gap = tt.gap
			if got := Width(opts); got != tt.want {
				t.Errorf("Width() = %d, want %d", got, tt.want)
			}
		})
	}

	// the second glyph starts after 5 columns and the gap
	opts := DefaultOptions("II")
	notes, _ := Render(opts)
	first := notes[len(notes)/2]
	if first.Position != 8 {
		t.Errorf("second glyph starts at %v, want 8", first.Position)
	}
}

func TestRenderItalic(t *testing.T) {
	opts := DefaultOptions("L")
	opts.Italic = true
	notes, _ := Render(opts)
	// top-left cell is slanted six columns to the right
	if notes[0].Position != 6 || notes[0].Pitch != 71 {
		t.Errorf("first italic cell = (%v, %d), want (6, 71)", notes[0].Position, notes[0].Pitch)
	}
}

func TestRenderHeightAndDescender(t *testing.T) {
	opts := DefaultOptions(",")
	notes, err := Render(opts)
	if err != nil {
		t.Fatal(err)
	}
	// row 7 sits one degree below the root: D an octave down
	found := false
	for _, n := range notes {
		if n.Pitch == 50 {
			found = true
		}
	}
	if !found {
		t.Errorf("descender pitch 50 missing from %+v", notes)
	}

	opts = DefaultOptions("I")
	opts.Height = 2
	notes, _ = Render(opts)
	if notes[0].Pitch != 81 {
		t.Errorf("top row at height 2 = %d, want 81", notes[0].Pitch)
	}
}

func TestRenderRejectsBadOptions(t *testing.T) {
	opts := DefaultOptions("A")
	opts.Intervals = nil
	if _, err := Render(opts); !errors.Is(err, theory.ErrInvalidScale) {
		t.Errorf("empty scale error = %v", err)
	}
	opts = DefaultOptions("A")
	opts.Width = 0
	if _, err := Render(opts); !errors.Is(err, theory.ErrInvalidParameter) {
		t.Errorf("zero width error = %v", err)
	}
}

func TestSupported(t *testing.T) {
	if !Supported('a') || !Supported('?') || Supported('#') {
		t.Error("unexpected glyph support")
	}
}
