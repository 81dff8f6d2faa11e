package chords

import "github.com/james-see/notemaker/pkg/theory"

// Extension offsets in semitones from their anchor tone
const (
	seventhFromThird = 7
	tenthFromRoot    = 14
	bassFromRoot     = -24
)

// AddSeventh adds a seventh a fifth above each chord's third
func AddSeventh(p Progression) Progression {
	return extend(p, theory.RoleThird, theory.RoleSeventh, seventhFromThird)
}

// AddTenth adds a tone 14 semitones above each chord's root
func AddTenth(p Progression) Progression {
	return extend(p, theory.RoleRoot, theory.RoleTenth, tenthFromRoot)
}

// AddBass doubles each chord's root two octaves down
func AddBass(p Progression) Progression {
	return extend(p, theory.RoleRoot, theory.RoleBass, bassFromRoot)
}

// extend returns a copy of p where every chord holding an anchor tone (and
// not yet the target role) gains a note derived from it. Chords without the
// anchor pass through unchanged.
func extend(p Progression, anchor, role theory.Role, offset int) Progression {
	out := p.Clone()
	for i, c := range out {
		src, ok := c.Find(anchor)
		if !ok || c.Has(role) {
			continue
		}
		n := src
		n.Pitch = theory.ClampPitch(src.Pitch + offset)
		n.Role = role
		n.Channel = role.Channel()
		out[i].Notes = append(out[i].Notes, n)
	}
	return out
}

// VoicingOptions selects the passes applied when rendering a progression
type VoicingOptions struct {
	Seventh     bool        `json:"seventh"`
	Tenth       bool        `json:"tenth"`
	Bass        bool        `json:"bass"`
	Revoice     bool        `json:"revoice"`
	MinInterval int         `json:"minInterval"` // semitones, default 2
	Pedal       theory.Role `json:"pedal"`       // RoleNone disables the pedal
}

// Voice applies the selected passes to a copy of p in the order seventh,
// tenth, revoice, bass. The bass is added after revoicing so it stays two
// octaves under the revoiced root.
func Voice(p Progression, opts VoicingOptions) Progression {
	out := p.Clone()
	if opts.Seventh {
		out = AddSeventh(out)
	}
	if opts.Tenth {
		out = AddTenth(out)
	}
	if opts.Revoice {
		out = Revoice(out, RevoiceOptions{MinInterval: opts.MinInterval, Pedal: opts.Pedal})
	}
	if opts.Bass {
		out = AddBass(out)
	}
	return out
}
