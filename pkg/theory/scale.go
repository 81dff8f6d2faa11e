package theory

import (
	"fmt"
	"sort"
	"strings"
)

// MIDI pitch bounds
const (
	MinPitch = 0
	MaxPitch = 127
)

// OctaveSemitones is the span of an octave-repeating scale
const OctaveSemitones = 12

// RootNames lists the selectable roots, index = pitch class
var RootNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Scale is a named sequence of semitone steps
type Scale struct {
	Name      string `json:"name"`
	Intervals []int  `json:"intervals"`
}

// scaleTable keeps the definitions in presentation order.
// Chromatic stays after the heptatonic and exotic modes; the legacy
// Ionian/Aeolian aliases come last.
var scaleTable = []Scale{
	{"Lydian", []int{2, 2, 2, 1, 2, 2, 1}},
	{"Major", []int{2, 2, 1, 2, 2, 2, 1}},
	{"Mixolydian", []int{2, 2, 1, 2, 2, 1, 2}},
	{"Dorian", []int{2, 1, 2, 2, 2, 1, 2}},
	{"Natural Minor", []int{2, 1, 2, 2, 1, 2, 2}},
	{"Phrygian", []int{1, 2, 2, 2, 1, 2, 2}},
	{"Locrian", []int{1, 2, 2, 1, 2, 2, 2}},
	{"Harmonic Minor", []int{2, 1, 2, 2, 1, 3, 1}},
	{"Melodic Minor", []int{2, 1, 2, 2, 2, 2, 1}},
	{"Double Harmonic Minor", []int{1, 3, 1, 2, 1, 3, 1}},
	{"Double Harmonic Major", []int{1, 3, 1, 2, 1, 3, 1}},
	{"Phrygian Dominant", []int{1, 3, 1, 2, 1, 2, 2}},
	{"Mixolydian Flat 6", []int{2, 2, 1, 2, 1, 2, 2}},
	{"Lydian Dominant", []int{2, 2, 2, 1, 2, 1, 2}},
	{"Lydian Diminished", []int{2, 1, 3, 1, 1, 2, 1}},
	{"Lydian Augmented", []int{2, 2, 2, 2, 1, 2, 1}},
	{"Whole Tone", []int{2, 2, 2, 2, 2, 2}},
	{"Major Whole Tone", []int{2, 2, 1, 2, 1, 2, 1}},
	{"Minor Whole Tone", []int{2, 1, 2, 1, 2, 2, 2}},
	{"Iwato", []int{1, 4, 1, 4, 2}},
	{"Istrian", []int{1, 2, 1, 2, 1, 5}},
	{"Hirajoshi", []int{4, 2, 3, 4, 3}},
	{"Major Pentatonic", []int{2, 2, 3, 2, 3}},
	{"Minor Pentatonic", []int{3, 2, 2, 3, 2}},
	{"Blues", []int{3, 2, 1, 1, 3, 2}},
	{"Arabic", []int{2, 1, 3, 1, 2, 2, 1}},
	{"Persian", []int{1, 3, 1, 1, 2, 3, 1}},
	{"Prometheus", []int{2, 2, 2, 3, 1, 2}},
	{"Pelog", []int{1, 2, 4, 1, 4}},
	{"Chromatic", []int{1}},
	{"Ionian", []int{2, 2, 1, 2, 2, 2, 1}},
	{"Aeolian", []int{2, 1, 2, 2, 1, 2, 2}},
}

// Scales returns a copy of the built-in scale table
func Scales() []Scale {
	out := make([]Scale, len(scaleTable))
	for i, s := range scaleTable {
		out[i] = Scale{Name: s.Name, Intervals: append([]int(nil), s.Intervals...)}
	}
	return out
}

// ScaleNames returns the built-in scale names in table order
func ScaleNames() []string {
	names := make([]string, len(scaleTable))
	for i, s := range scaleTable {
		names[i] = s.Name
	}
	return names
}

// LookupScale returns the intervals of a built-in scale. Matching is
// case-insensitive.
func LookupScale(name string) ([]int, error) {
	for _, s := range scaleTable {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return append([]int(nil), s.Intervals...), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown scale %q", ErrInvalidScale, name)
}

// ResolveScale returns explicit intervals when given and otherwise looks the
// scale up by name
func ResolveScale(name string, intervals []int) ([]int, error) {
	if len(intervals) > 0 {
		if err := validateIntervals(intervals); err != nil {
			return nil, err
		}
		return append([]int(nil), intervals...), nil
	}
	return LookupScale(name)
}

// ParseRoot converts a root name (C, C#, ... B) or a pitch class number to 0-11
func ParseRoot(name string) (int, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, r := range RootNames {
		if r == n {
			return i, nil
		}
	}
	var pc int
	if _, err := fmt.Sscanf(n, "%d", &pc); err == nil && pc >= 0 && pc < len(RootNames) {
		return pc, nil
	}
	return 0, fmt.Errorf("%w: unknown root %q", ErrInvalidParameter, name)
}

func validateIntervals(intervals []int) error {
	if len(intervals) == 0 {
		return fmt.Errorf("%w: empty interval list", ErrInvalidScale)
	}
	for i, step := range intervals {
		if step <= 0 {
			return fmt.Errorf("%w: interval %d is %d, must be positive", ErrInvalidScale, i, step)
		}
	}
	return nil
}

// ToSemitoneProfile converts degree intervals into cumulative semitone offsets
// from the root. The octave-closing step is dropped, so the profile has one
// entry per degree and always starts at 0.
func ToSemitoneProfile(intervals []int) ([]int, error) {
	if err := validateIntervals(intervals); err != nil {
		return nil, err
	}
	profile := make([]int, len(intervals))
	current := 0
	for i, step := range intervals {
		profile[i] = current
		current += step
	}
	return profile, nil
}

// Period is the semitone span after which the scale pattern repeats
func Period(intervals []int) int {
	sum := 0
	for _, step := range intervals {
		sum += step
	}
	return sum
}

// IsOctaveRepeating reports whether the intervals close exactly on an octave
func IsOctaveRepeating(intervals []int) bool {
	return Period(intervals) == OctaveSemitones
}

// DegreePitch returns the pitch of an arbitrary (possibly negative or
// beyond-profile) scale degree, counting whole periods past the profile.
func DegreePitch(base int, profile []int, period, degree int) int {
	n := len(profile)
	if n == 0 {
		return base
	}
	octave := degree / n
	idx := degree % n
	if idx < 0 {
		idx += n
		octave--
	}
	return base + profile[idx] + octave*period
}

// ExpandScale returns every pitch of the scale rooted at root within
// [floor, ceil], sorted and free of duplicates. Octave-repeating scales are
// replicated by pitch class; other scales are walked up and down from the
// root applying the intervals cyclically.
func ExpandScale(root int, intervals []int, floor, ceil int) ([]int, error) {
	if err := validateIntervals(intervals); err != nil {
		return nil, err
	}
	floor = ClampPitch(floor)
	ceil = ClampPitch(ceil)
	if floor > ceil {
		return nil, fmt.Errorf("%w: pitch floor %d above ceiling %d", ErrInvalidParameter, floor, ceil)
	}

	seen := make(map[int]bool)
	if IsOctaveRepeating(intervals) {
		classes := make(map[int]bool)
		current := root
		for _, step := range intervals {
			classes[mod(current, OctaveSemitones)] = true
			current += step
		}
		for p := floor; p <= ceil; p++ {
			if classes[mod(p, OctaveSemitones)] {
				seen[p] = true
			}
		}
	} else {
		if root >= floor && root <= ceil {
			seen[root] = true
		}
		n := len(intervals)
		for i, current := 0, root; ; i++ {
			current += intervals[i%n]
			if current > ceil {
				break
			}
			if current >= floor {
				seen[current] = true
			}
		}
		for i, current := 0, root; ; i++ {
			current -= intervals[n-1-i%n]
			if current < floor {
				break
			}
			if current <= ceil {
				seen[current] = true
			}
		}
	}

	tones := make([]int, 0, len(seen))
	for p := range seen {
		tones = append(tones, p)
	}
	sort.Ints(tones)
	return tones, nil
}

// ContainsTone reports whether p is in the sorted tone list
func ContainsTone(tones []int, p int) bool {
	i := sort.SearchInts(tones, p)
	return i < len(tones) && tones[i] == p
}

// NearestBelowAbove finds the closest tones at or below and at or above p.
// When p is itself a tone both results equal p.
func NearestBelowAbove(tones []int, p int) (lower, higher int, hasLower, hasHigher bool) {
	low, high := 0, len(tones)-1
	for low <= high {
		mid := (low + high) / 2
		switch current := tones[mid]; {
		case current == p:
			return p, p, true, true
		case current < p:
			lower, hasLower = current, true
			low = mid + 1
		default:
			higher, hasHigher = current, true
			high = mid - 1
		}
	}
	return lower, higher, hasLower, hasHigher
}

// NearestTone returns the tone closest to p, preferring the lower tone on an
// exact midpoint. It returns p unchanged for an empty tone list.
func NearestTone(tones []int, p int) int {
	lower, higher, hasLower, hasHigher := NearestBelowAbove(tones, p)
	switch {
	case hasLower && hasHigher:
		if p-lower <= higher-p {
			return lower
		}
		return higher
	case hasLower:
		return lower
	case hasHigher:
		return higher
	default:
		return p
	}
}

// IndexOfNearest returns the index in tones of NearestTone(tones, p), or -1
// for an empty list
func IndexOfNearest(tones []int, p int) int {
	if len(tones) == 0 {
		return -1
	}
	return sort.SearchInts(tones, NearestTone(tones, p))
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
