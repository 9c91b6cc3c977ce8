package pipeline

import "github.com/ironsheep/slidemarks/internal/detection"

// Accumulator collects marker positions across the pages of one run.
type Accumulator struct {
	positions []detection.Position
}

// Add appends positions in the order given.
func (a *Accumulator) Add(positions ...detection.Position) {
	a.positions = append(a.positions, positions...)
}

// Positions returns a copy of everything added so far.
func (a *Accumulator) Positions() []detection.Position {
	out := make([]detection.Position, len(a.positions))
	copy(out, a.positions)
	return out
}

// Len returns the number of accumulated positions.
func (a *Accumulator) Len() int {
	return len(a.positions)
}
