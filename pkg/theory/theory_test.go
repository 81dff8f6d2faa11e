package theory

import (
	"errors"
	"testing"
)

// fixedRand replays a scripted sequence of Float64 values
type fixedRand struct {
	floats []float64
	i      int
}

func (f *fixedRand) Float64() float64 {
	v := f.floats[f.i%len(f.floats)]
	f.i++
	return v
}

func (f *fixedRand) IntN(n int) int {
	return int(f.Float64() * float64(n))
}

func TestToSemitoneProfile(t *testing.T) {
	tests := []struct {
		name      string
		intervals []int
		expected  []int
	}{
		{"major", []int{2, 2, 1, 2, 2, 2, 1}, []int{0, 2, 4, 5, 7, 9, 11}},
		{"minor pentatonic", []int{3, 2, 2, 3, 2}, []int{0, 3, 5, 7, 10}},
		{"chromatic", []int{1}, []int{0}},
		{"hirajoshi", []int{4, 2, 3, 4, 3}, []int{0, 4, 6, 9, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := ToSemitoneProfile(tt.intervals)
			if err != nil {
				t.Fatalf("ToSemitoneProfile() error = %v", err)
			}
			if len(profile) != len(tt.intervals) {
				t.Fatalf("len = %d, want %d", len(profile), len(tt.intervals))
			}
			if profile[0] != 0 {
				t.Errorf("profile[0] = %d, want 0", profile[0])
			}
			for i := range tt.expected {
				if profile[i] != tt.expected[i] {
					t.Errorf("profile[%d] = %d, want %d", i, profile[i], tt.expected[i])
				}
			}
		})
	}
}

func TestToSemitoneProfileRejectsMalformed(t *testing.T) {
	for _, intervals := range [][]int{nil, {}, {2, 0, 3}, {2, -1}} {
		if _, err := ToSemitoneProfile(intervals); !errors.Is(err, ErrInvalidScale) {
			t.Errorf("ToSemitoneProfile(%v) error = %v, want ErrInvalidScale", intervals, err)
		}
	}
}

func TestExpandScaleOctaveRepeatingIsPeriodic(t *testing.T) {
	for _, s := range Scales() {
		if !IsOctaveRepeating(s.Intervals) {
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			tones, err := ExpandScale(62, s.Intervals, 0, 127)
			if err != nil {
				t.Fatalf("ExpandScale() error = %v", err)
			}
			for i := 1; i < len(tones); i++ {
				if tones[i] <= tones[i-1] {
					t.Fatalf("tones not strictly ascending at %d: %v", i, tones)
				}
			}
			for _, p := range tones {
				if p+12 <= 127 && !ContainsTone(tones, p+12) {
					t.Errorf("%d present but %d missing", p, p+12)
				}
			}
			perOctave := 0
			for _, p := range tones {
				if p >= 24 && p < 36 {
					perOctave++
				}
			}
			if perOctave != len(s.Intervals) {
				t.Errorf("pitches per octave = %d, want %d", perOctave, len(s.Intervals))
			}
		})
	}
}

func TestExpandScaleMajorSpansRange(t *testing.T) {
	tones, err := ExpandScale(60, []int{2, 2, 1, 2, 2, 2, 1}, 0, 127)
	if err != nil {
		t.Fatal(err)
	}
	if tones[0] != 0 {
		t.Errorf("lowest tone = %d, want 0", tones[0])
	}
	if tones[len(tones)-1] != 127 {
		t.Errorf("highest tone = %d, want 127 (G)", tones[len(tones)-1])
	}
	if ContainsTone(tones, 61) {
		t.Error("C# should not be in C major")
	}
}

func TestExpandScaleNonRepeating(t *testing.T) {
	// Hirajoshi spans 16 semitones per cycle
	tones, err := ExpandScale(60, []int{4, 2, 3, 4, 3}, 40, 80)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{41, 44, 48, 50, 53, 57, 60, 64, 66, 69, 73, 76, 80}
	if len(tones) != len(want) {
		t.Fatalf("ExpandScale() = %v, want %v", tones, want)
	}
	for i := range want {
		if tones[i] != want[i] {
			t.Errorf("tones[%d] = %d, want %d", i, tones[i], want[i])
		}
	}
}

func TestExpandScaleInvertedRange(t *testing.T) {
	_, err := ExpandScale(60, []int{2, 2, 1, 2, 2, 2, 1}, 90, 30)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestNearestTone(t *testing.T) {
	tones := []int{60, 62, 64, 65, 67}
	tests := []struct {
		pitch    int
		expected int
	}{
		{61, 60}, // midpoint resolves low
		{63, 62},
		{66, 65},
		{64, 64},
		{50, 60},
		{90, 67},
	}
	for _, tt := range tests {
		if got := NearestTone(tones, tt.pitch); got != tt.expected {
			t.Errorf("NearestTone(%d) = %d, want %d", tt.pitch, got, tt.expected)
		}
	}
}

func TestNearestBelowAbove(t *testing.T) {
	tones := []int{60, 62, 64}
	lower, higher, hasLower, hasHigher := NearestBelowAbove(tones, 63)
	if !hasLower || !hasHigher || lower != 62 || higher != 64 {
		t.Errorf("NearestBelowAbove(63) = %d %d %v %v", lower, higher, hasLower, hasHigher)
	}
	_, higher, hasLower, hasHigher = NearestBelowAbove(tones, 10)
	if hasLower || !hasHigher || higher != 60 {
		t.Errorf("NearestBelowAbove(10) = _ %d %v %v", higher, hasLower, hasHigher)
	}
}

func TestDegreePitch(t *testing.T) {
	profile := []int{0, 2, 4, 5, 7, 9, 11}
	tests := []struct {
		degree   int
		expected int
	}{
		{0, 60}, {4, 67}, {7, 72}, {9, 76}, {-1, 59}, {-7, 48},
	}
	for _, tt := range tests {
		if got := DegreePitch(60, profile, 12, tt.degree); got != tt.expected {
			t.Errorf("DegreePitch(%d) = %d, want %d", tt.degree, got, tt.expected)
		}
	}
}

func TestWeightedChoiceSingleWeight(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 200; i++ {
		idx, err := WeightedChoice(r, []float64{0, 0, 10, 0})
		if err != nil {
			t.Fatal(err)
		}
		if idx != 2 {
			t.Fatalf("WeightedChoice() = %d, want 2", idx)
		}
	}
}

func TestWeightedChoiceCumulative(t *testing.T) {
	weights := []float64{1, 3, 6}
	tests := []struct {
		draw     float64
		expected int
	}{
		{0.0, 0}, {0.09, 0}, {0.1, 1}, {0.39, 1}, {0.4, 2}, {0.999, 2},
	}
	for _, tt := range tests {
		idx, err := WeightedChoice(&fixedRand{floats: []float64{tt.draw}}, weights)
		if err != nil {
			t.Fatal(err)
		}
		if idx != tt.expected {
			t.Errorf("draw %.3f: WeightedChoice() = %d, want %d", tt.draw, idx, tt.expected)
		}
	}
}

func TestWeightedChoiceNoSelection(t *testing.T) {
	for _, weights := range [][]float64{nil, {0, 0, 0}, {-1, 0}} {
		idx, err := WeightedChoice(NewRand(1), weights)
		if idx != -1 || !errors.Is(err, ErrNoSelection) || !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("WeightedChoice(%v) = %d, %v", weights, idx, err)
		}
	}
}

func TestLookupScaleAndRoot(t *testing.T) {
	intervals, err := LookupScale("natural minor")
	if err != nil {
		t.Fatal(err)
	}
	if len(intervals) != 7 || intervals[1] != 1 {
		t.Errorf("LookupScale() = %v", intervals)
	}
	if _, err := LookupScale("Nonexistent"); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("LookupScale(unknown) error = %v", err)
	}

	for name, want := range map[string]int{"C": 0, "f#": 6, "B": 11, "9": 9} {
		got, err := ParseRoot(name)
		if err != nil || got != want {
			t.Errorf("ParseRoot(%q) = %d, %v; want %d", name, got, err, want)
		}
	}
	if _, err := ParseRoot("H"); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ParseRoot(H) error = %v", err)
	}
}

func TestNoteClamped(t *testing.T) {
	n := Note{Pitch: 140, Velocity: 0, Channel: 20, Expression: &Expression{Pressure: 2, Timbre: -3, ReleaseVelocity: -1}}
	c := n.Clamped()
	if c.Pitch != 127 || c.Velocity != 1 || c.Channel != 15 {
		t.Errorf("Clamped() = %+v", c)
	}
	if c.Expression.Pressure != 1 || c.Expression.Timbre != -1 || c.Expression.ReleaseVelocity != 0 {
		t.Errorf("Clamped().Expression = %+v", *c.Expression)
	}
	if n.Expression.Pressure != 2 {
		t.Error("Clamped() must not modify the receiver's expression")
	}
}

func TestRoleText(t *testing.T) {
	for _, r := range []Role{RoleRoot, RoleThird, RoleFifth, RoleSeventh, RoleTenth, RoleBass, RoleMelody} {
		text, _ := r.MarshalText()
		var back Role
		if err := back.UnmarshalText(text); err != nil || back != r {
			t.Errorf("role %v did not survive text encoding (%s -> %v)", r, text, back)
		}
	}
	if RoleBass.Channel() != 15 || RoleTenth.Channel() != 9 || RoleRoot.Channel() != 0 {
		t.Error("unexpected role channel mapping")
	}
}

func TestResolveScale(t *testing.T) {
	got, err := ResolveScale("ignored", []int{3, 4, 5})
	if err != nil || len(got) != 3 {
		t.Errorf("ResolveScale(explicit) = %v, %v", got, err)
	}
	got, err = ResolveScale("Blues", nil)
	if err != nil || len(got) != 6 {
		t.Errorf("ResolveScale(Blues) = %v, %v", got, err)
	}
	if _, err := ResolveScale("", []int{0}); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("ResolveScale(zero step) error = %v", err)
	}
}
