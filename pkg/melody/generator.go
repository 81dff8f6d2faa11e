package melody

import (
	"math"

	"github.com/james-see/notemaker/pkg/theory"
)

// Note lengths in quarters: sixteenth, eighth, quarter, half
var noteLengths = []float64{0.25, 0.5, 1, 2}

// Expression baselines blended with random values by Config.Randomness
const (
	baseVelocity    = 80
	minVelocity     = 25
	velocitySpread  = 70
	basePressure    = 0.5
	baseTimbre      = 0.0
	baseRelease     = 0.5
	strongStepEvery = 4
)

// Degrees boosted on strong steps: tonic, fourth, fifth
var emphasized = []int{0, 3, 4}

// Result is a generated melody and the number of 16th steps it consumed
type Result struct {
	Notes []theory.Note `json:"notes"`
	Steps float64       `json:"steps"`
}

type generator struct {
	cfg     Config
	r       theory.Rand
	profile []int
	period  int
	window  Window
	total   float64

	position float64
	notes    []theory.Note
	history  []theory.Note
	recent   []int
}

// Generate scans the melody forward one action at a time: develop a motif
// from the history, repeat a recent phrase, or sample a new note. A note that
// would run past the end is truncated so the result always consumes exactly
// Bars*16 steps.
func Generate(cfg Config, r theory.Rand) (Result, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return Result{}, err
	}
	profile, err := theory.ToSemitoneProfile(cfg.Intervals)
	if err != nil {
		return Result{}, err
	}
	period := theory.Period(cfg.Intervals)
	window, err := windowFor(cfg, profile, period)
	if err != nil {
		return Result{}, err
	}

	g := &generator{
		cfg:     cfg,
		r:       r,
		profile: profile,
		period:  period,
		window:  window,
		total:   float64(cfg.TotalSteps()),
	}
	for g.position < g.total {
		switch {
		case len(g.history) >= 3 && theory.Chance(r, cfg.MotifChance):
			g.developMotif()
		case len(g.history) > 1 && theory.Chance(r, cfg.RepetitionChance):
			g.repeatPhrase()
		default:
			g.newNote()
		}
	}
	return Result{Notes: g.notes, Steps: g.position}, nil
}

// place writes n at the current position, truncated to the remaining steps,
// and advances the position. Rests only advance.
func (g *generator) place(n theory.Note, rest bool) (theory.Note, bool) {
	steps := n.Length * theory.StepsPerQuarter
	if remaining := g.total - g.position; steps > remaining {
		steps = remaining
		n.Length = steps / theory.StepsPerQuarter
	}
	n.Position = g.position
	g.position += steps
	if rest {
		return n, false
	}
	n = n.Clamped()
	g.notes = append(g.notes, n)
	g.remember(n.Pitch)
	return n, true
}

func (g *generator) remember(pitch int) {
	g.recent = append(g.recent, pitch)
	if len(g.recent) > recentSize {
		g.recent = g.recent[len(g.recent)-recentSize:]
	}
}

func (g *generator) pushHistory(n theory.Note) {
	g.history = append(g.history, n)
	if len(g.history) > historySize {
		g.history = g.history[len(g.history)-historySize:]
	}
}

func (g *generator) rest() bool {
	return theory.Chance(g.r, g.cfg.RestProbability)
}

func (g *generator) developMotif() {
	size := min(3+g.r.IntN(3), len(g.history))
	source := g.history[len(g.history)-size:]
	op := MotifOp(g.r.IntN(int(motifOps)))
	amount := g.r.IntN(5) - 2
	if op == OpOctave && amount == 0 {
		amount = 1
	}
	for _, n := range Transform(source, op, amount, g.window) {
		if g.position >= g.total {
			return
		}
		if placed, ok := g.place(n, false); ok {
			g.pushHistory(placed)
		}
	}
}

func (g *generator) repeatPhrase() {
	size := min(g.r.IntN(4)+1, len(g.history))
	source := theory.CloneNotes(g.history[len(g.history)-size:])
	for _, n := range source {
		if g.position >= g.total {
			return
		}
		g.place(n, g.rest())
	}
}

func (g *generator) newNote() {
	length := g.noteLength()
	n := theory.Note{Length: length, Channel: g.cfg.Channel, Role: theory.RoleMelody}
	if g.rest() {
		g.place(n, true)
		return
	}
	n.Pitch = g.pitch()
	n.Velocity, n.Expression = g.expression()
	if placed, ok := g.place(n, false); ok {
		g.pushHistory(placed)
	}
}

func (g *generator) noteLength() float64 {
	v := g.cfg.LengthVariation
	weights := []float64{math.Max(0, 100-v), v * 0.6, v * 0.3, v * 0.1}
	idx, err := theory.WeightedChoice(g.r, weights)
	if err != nil {
		return noteLengths[0]
	}
	return noteLengths[idx]
}

func (g *generator) degreeWeights() []float64 {
	weights := append([]float64(nil), g.cfg.DegreeWeights...)
	strong := g.position == math.Floor(g.position) && int(g.position)%strongStepEvery == 0
	if strong && g.cfg.Emphasis > 0 {
		boost := 1 + g.cfg.Emphasis/100
		for _, d := range emphasized {
			if d < len(weights) {
				weights[d] *= boost
			}
		}
	}
	return weights
}

func (g *generator) samplePitch(weights []float64) int {
	// Normalize guarantees a positive weight, so the choice cannot fail
	degree, _ := theory.WeightedChoice(g.r, weights)
	octave := g.r.IntN(g.cfg.OctaveRange)
	return theory.DegreePitch(g.cfg.BaseNote(), g.profile, g.period, degree+octave*len(g.profile))
}

func (g *generator) isRecent(p int) bool {
	for _, r := range g.recent {
		if r == p {
			return true
		}
	}
	return false
}

// pitch samples a degree, retrying while it repeats a recent pitch and then
// substituting a fourth, fifth or octave away
func (g *generator) pitch() int {
	weights := g.degreeWeights()
	p := g.samplePitch(weights)
	if g.cfg.AllowRepeats {
		return theory.ClampPitch(p)
	}
	for attempt := 0; attempt < maxRetries && g.isRecent(p); attempt++ {
		p = g.samplePitch(weights)
	}
	if !g.isRecent(p) {
		return theory.ClampPitch(p)
	}

	var alternatives []int
	for _, delta := range []int{7, -7, 5, -5, 12, -12} {
		alt := p + delta
		if alt >= theory.MinPitch && alt <= theory.MaxPitch && !g.isRecent(alt) {
			alternatives = append(alternatives, alt)
		}
	}
	if len(alternatives) == 0 {
		// range exhausted: keep the repeat
		return theory.ClampPitch(p)
	}
	return alternatives[g.r.IntN(len(alternatives))]
}

func (g *generator) expression() (int, *theory.Expression) {
	k := g.cfg.Randomness / 100
	blend := func(base, random float64) float64 {
		return base*(1-k) + random*k
	}
	randomVelocity := float64(minVelocity + g.r.IntN(velocitySpread))
	velocity := theory.ClampVelocity(int(math.Round(blend(baseVelocity, randomVelocity))))
	return velocity, &theory.Expression{
		ReleaseVelocity: theory.Clamp01(blend(baseRelease, g.r.Float64())),
		Pressure:        theory.Clamp01(blend(basePressure, g.r.Float64())),
		Timbre:          theory.ClampSigned(blend(baseTimbre, g.r.Float64()*2-1)),
	}
}
