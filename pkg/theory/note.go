package theory

import "math"

// Role is the musical function of a note within a chord or part
type Role int

const (
	RoleNone Role = iota
	RoleRoot
	RoleThird
	RoleFifth
	RoleSeventh
	RoleTenth
	RoleBass
	RoleMelody
)

var roleNames = map[Role]string{
	RoleNone:    "none",
	RoleRoot:    "root",
	RoleThird:   "third",
	RoleFifth:   "fifth",
	RoleSeventh: "seventh",
	RoleTenth:   "tenth",
	RoleBass:    "bass",
	RoleMelody:  "melody",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRole converts a role name back to a Role. Unknown names map to RoleNone.
func ParseRole(name string) Role {
	for r, n := range roleNames {
		if n == name {
			return r
		}
	}
	return RoleNone
}

// MarshalText encodes the role by name
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name
func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// Channel is the conventional note channel used to keep chord voices apart
// on a single clip (root=0, third=2, fifth=4, seventh=6, tenth=9, bass=15).
func (r Role) Channel() int {
	switch r {
	case RoleThird:
		return 2
	case RoleFifth:
		return 4
	case RoleSeventh:
		return 6
	case RoleTenth:
		return 9
	case RoleBass:
		return 15
	default:
		return 0
	}
}

// Expression holds the optional per-note expressive attributes
type Expression struct {
	ReleaseVelocity float64 `json:"releaseVelocity"` // 0..1
	Pressure        float64 `json:"pressure"`        // 0..1
	Timbre          float64 `json:"timbre"`          // -1..1
}

// Note is a timed, pitched note ready for a host to render into a grid.
// Position is in 16th-note steps, Length in quarter notes.
type Note struct {
	Pitch      int         `json:"pitch"`
	Position   float64     `json:"position"`
	Length     float64     `json:"length"`
	Velocity   int         `json:"velocity"`
	Channel    int         `json:"channel"`
	Role       Role        `json:"role"`
	Muted      bool        `json:"muted,omitempty"`
	Expression *Expression `json:"expression,omitempty"`
}

// Steps returns the note length in 16th-note steps
func (n Note) Steps() float64 {
	return n.Length * StepsPerQuarter
}

// Grid units
const (
	StepsPerQuarter = 4
	StepsPerBar     = 16
)

// ClampPitch limits p to the MIDI pitch range
func ClampPitch(p int) int {
	return clampInt(p, MinPitch, MaxPitch)
}

// ClampVelocity limits v to the audible MIDI velocity range 1..127
func ClampVelocity(v int) int {
	return clampInt(v, 1, 127)
}

// ClampChannel limits c to the 16 MIDI channels
func ClampChannel(c int) int {
	return clampInt(c, 0, 15)
}

// Clamp01 limits v to [0, 1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ClampSigned limits v to [-1, 1]
func ClampSigned(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// ClampPercent limits v to [0, 100]
func ClampPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// Clamped returns a copy of n with every attribute inside its legal range
func (n Note) Clamped() Note {
	n.Pitch = ClampPitch(n.Pitch)
	n.Velocity = ClampVelocity(n.Velocity)
	n.Channel = ClampChannel(n.Channel)
	if n.Expression != nil {
		e := *n.Expression
		e.ReleaseVelocity = Clamp01(e.ReleaseVelocity)
		e.Pressure = Clamp01(e.Pressure)
		e.Timbre = ClampSigned(e.Timbre)
		n.Expression = &e
	}
	return n
}

// CloneNotes copies a note slice so the result can be modified freely
func CloneNotes(notes []Note) []Note {
	if notes == nil {
		return nil
	}
	return append([]Note(nil), notes...)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
