package quantize

import (
	"slices"
	"sync"
)

// Grid tracks which pitches are present on which step, fed one observation
// at a time, so quantization can follow a clip while it is being edited
type Grid struct {
	mu      sync.Mutex
	columns map[int]map[int]int
}

// NewGrid returns an empty grid
func NewGrid() *Grid {
	return &Grid{columns: make(map[int]map[int]int)}
}

// Observe records the state of (step, pitch). State 0 removes the note, any
// other value marks it present.
func (g *Grid) Observe(step, pitch, state int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observe(step, pitch, state)
}

func (g *Grid) observe(step, pitch, state int) {
	column := g.columns[step]
	if state == 0 {
		if column != nil {
			delete(column, pitch)
			if len(column) == 0 {
				delete(g.columns, step)
			}
		}
		return
	}
	if column == nil {
		column = make(map[int]int)
		g.columns[step] = column
	}
	column[pitch] = state
}

// Columns returns a snapshot in the form Quantize consumes
func (g *Grid) Columns() map[int][]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[int][]int, len(g.columns))
	for step, column := range g.columns {
		pitches := make([]int, 0, len(column))
		for p := range column {
			pitches = append(pitches, p)
		}
		slices.Sort(pitches)
		out[step] = pitches
	}
	return out
}

// Len is the number of notes present
func (g *Grid) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, column := range g.columns {
		n += len(column)
	}
	return n
}

// Apply moves the corrected notes inside the grid, keeping their state
func (g *Grid) Apply(corrections []Correction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	type moved struct{ step, pitch, state int }
	var pending []moved
	for _, c := range corrections {
		column := g.columns[c.Step]
		state, ok := column[c.Pitch]
		if !ok {
			continue
		}
		g.observe(c.Step, c.Pitch, 0)
		pending = append(pending, moved{c.Step, c.Target(), state})
	}
	for _, m := range pending {
		g.observe(m.step, m.pitch, m.state)
	}
}

// Sync quantizes the grid with q and applies the result, returning the
// corrections that were made
func (g *Grid) Sync(q *Quantizer) []Correction {
	corrections := q.Quantize(g.Columns())
	g.Apply(corrections)
	return corrections
}
