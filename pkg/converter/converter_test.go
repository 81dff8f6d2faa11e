package converter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/james-see/notemaker/pkg/theory"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
	}{
		{"test.mid", FormatMIDI},
		{"test.midi", FormatMIDI},
		{"TEST.MID", FormatMIDI},
		{"test.json", FormatJSON},
		{"test.txt", FormatUnknown},
		{"test", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			result := DetectFormat(tt.filename)
			if result != tt.expected {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestDetectFormatFromContent(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Format
	}{
		{"MIDI file", []byte("MThd\x00\x00\x00\x06"), FormatMIDI},
		{"JSON clip", []byte("  {\"name\": \"x\"}"), FormatJSON},
		{"Short data", []byte{0x00, 0x01}, FormatUnknown},
		{"Binary data", []byte{0x3C, 0x01, 0x3E, 0x02, 0x40, 0x03}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DetectFormatFromContent(tt.data)
			if result != tt.expected {
				t.Errorf("DetectFormatFromContent() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func sampleClip() *Clip {
	return &Clip{
		Name:  "progression",
		Tempo: 96,
		Notes: []theory.Note{
			{Pitch: 60, Position: 0, Length: 4, Velocity: 64, Channel: 0, Role: theory.RoleRoot},
			{Pitch: 64, Position: 0, Length: 4, Velocity: 64, Channel: 2, Role: theory.RoleThird},
			{Pitch: 67, Position: 0, Length: 4, Velocity: 64, Channel: 4, Role: theory.RoleFifth},
			{Pitch: 72, Position: 18, Length: 0.25, Velocity: 100, Channel: 0},
		},
	}
}

func TestMIDIRoundTrip(t *testing.T) {
	m := NewMIDIConverter()
	data, err := m.GenerateMIDI(sampleClip())
	if err != nil {
		t.Fatalf("GenerateMIDI() error = %v", err)
	}
	if DetectFormatFromContent(data) != FormatMIDI {
		t.Fatal("generated data is not a MIDI file")
	}

	clip, err := m.ParseMIDI(data)
	if err != nil {
		t.Fatalf("ParseMIDI() error = %v", err)
	}
	if clip.Name != "progression" {
		t.Errorf("Name = %q, want progression", clip.Name)
	}
	if clip.Tempo != 96 {
		t.Errorf("Tempo = %v, want 96", clip.Tempo)
	}
	if len(clip.Notes) != 4 {
		t.Fatalf("got %d notes, want 4", len(clip.Notes))
	}

	want := sampleClip().Notes
	for i, n := range clip.Notes {
		w := want[i]
		if n.Pitch != w.Pitch || n.Position != w.Position || n.Length != w.Length || n.Velocity != w.Velocity || n.Channel != w.Channel {
			t.Errorf("note %d = %+v, want %+v", i, n, w)
		}
	}
}

func TestMIDILongTrackName(t *testing.T) {
	m := NewMIDIConverter()
	clip := sampleClip()
	clip.Name = strings.Repeat("chords ", 30)
	clip.Tempo = 133.5

	data, err := m.GenerateMIDI(clip)
	if err != nil {
		t.Fatalf("GenerateMIDI() error = %v", err)
	}
	got, err := m.ParseMIDI(data)
	if err != nil {
		t.Fatalf("ParseMIDI() error = %v", err)
	}
	if got.Name != clip.Name {
		t.Errorf("Name has %d bytes, want %d", len(got.Name), len(clip.Name))
	}
	if got.Tempo != 133.5 {
		t.Errorf("Tempo = %v, want 133.5", got.Tempo)
	}
	if len(got.Notes) != len(clip.Notes) {
		t.Errorf("got %d notes, want %d", len(got.Notes), len(clip.Notes))
	}
}

func TestGenerateMIDIMutedAndNil(t *testing.T) {
	m := NewMIDIConverter()
	if _, err := m.GenerateMIDI(nil); err == nil {
		t.Error("GenerateMIDI(nil) should fail")
	}

	data, err := m.GenerateMIDI(&Clip{Notes: []theory.Note{{Pitch: 48, Length: 0.25, Velocity: 60, Muted: true}}})
	if err != nil {
		t.Fatal(err)
	}
	clip, err := m.ParseMIDI(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(clip.Notes) != 1 || clip.Notes[0].Velocity != MutedVelocity {
		t.Errorf("muted note = %+v", clip.Notes)
	}
	if clip.Tempo != 120 {
		t.Errorf("default tempo = %v, want 120", clip.Tempo)
	}
}

func TestParseMIDIRejectsGarbage(t *testing.T) {
	if _, err := NewMIDIConverter().ParseMIDI([]byte("not a midi file")); err == nil {
		t.Error("ParseMIDI() should fail on garbage")
	}
}

func TestClipSteps(t *testing.T) {
	tests := []struct {
		name  string
		notes []theory.Note
		want  int
	}{
		{"empty", nil, 16},
		{"one bar", []theory.Note{{Position: 0, Length: 4}}, 16},
		{"spills over", []theory.Note{{Position: 15, Length: 0.5}}, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Clip{Notes: tt.notes}
			if got := c.Steps(); got != tt.want {
				t.Errorf("Steps() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConverterFiles(t *testing.T) {
	dir := t.TempDir()
	conv := New()

	jsonPath := filepath.Join(dir, "clip.json")
	if err := conv.WriteFile(sampleClip(), jsonPath); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	midiPath := filepath.Join(dir, "clip.mid")
	if err := conv.ConvertFile(jsonPath, midiPath); err != nil {
		t.Fatalf("ConvertFile() error = %v", err)
	}
	clip, err := conv.ReadFile(midiPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(clip.Notes) != 4 {
		t.Errorf("got %d notes after conversion, want 4", len(clip.Notes))
	}

	// content detection for a file without a known extension
	rawPath := filepath.Join(dir, "clip.bin")
	data, _ := os.ReadFile(midiPath)
	if err := os.WriteFile(rawPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := conv.ReadFile(rawPath); err != nil {
		t.Errorf("ReadFile() without extension error = %v", err)
	}

	if err := conv.WriteFile(sampleClip(), filepath.Join(dir, "clip.txt")); err == nil {
		t.Error("WriteFile() to an unknown format should fail")
	}
}

func TestConverterCodecs(t *testing.T) {
	conv := New(JSONCodec{})
	if _, ok := conv.GetCodec(FormatMIDI); ok {
		t.Error("MIDI codec should not be registered")
	}
	conv.SetCodec(NewMIDIConverter())
	if codec, ok := conv.GetCodec(FormatMIDI); !ok || codec.Name() != "Standard MIDI File" {
		t.Error("SetCodec() did not register the MIDI codec")
	}

	conversions := conv.GetSupportedConversions()
	expected := []string{"json -> midi", "midi -> json"}
	if len(conversions) != len(expected) {
		t.Fatalf("GetSupportedConversions() = %v", conversions)
	}
	for i, exp := range expected {
		if conversions[i] != exp {
			t.Errorf("conversions[%d] = %q, want %q", i, conversions[i], exp)
		}
	}

	result, err := conv.Encode(&Clip{}, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if result.Filename != "clip.json" || result.Format != FormatJSON {
		t.Errorf("Encode() result = %+v", result)
	}
}

func TestSuggestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	tests := []struct {
		genre    string
		expected string
	}{
		{"DNB", "2024-03-10_DNB"},
		{"amb", "2024-03-10_AMB"},
		{" pst ", "2024-03-10_PST"},
	}
	for _, tt := range tests {
		got, err := SuggestFilename(tt.genre, at)
		if err != nil || got != tt.expected {
			t.Errorf("SuggestFilename(%q) = %q, %v; want %q", tt.genre, got, err, tt.expected)
		}
	}
	if _, err := SuggestFilename("POLKA", at); !errors.Is(err, theory.ErrInvalidParameter) {
		t.Errorf("unknown genre error = %v", err)
	}
}
