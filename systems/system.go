// Package systems defines the geometry capability consumed by the sample
// builders, and a brute-force implementation of it.
package systems

import (
	"errors"
	"fmt"
)

// ErrInvalidCutoff is returned by ComputeNeighbors for unusable cutoffs.
var ErrInvalidCutoff = errors.New("invalid cutoff")

// Pair is a pair of atoms closer than the cutoff.
type Pair struct {
	// First is the index of the first atom, always lower than Second.
	First int
	// Second is the index of the second atom.
	Second int
	// Vector goes from the first atom to the second, wrapped inside the
	// unit cell.
	Vector Vector3
}

// System is an atomic structure able to list its neighbor pairs.
type System interface {
	// Size returns the number of atoms.
	Size() int
	// Species returns the species of every atom.
	Species() []int
	// Positions returns the cartesian position of every atom.
	Positions() []Vector3
	// Cell returns the periodic boundary conditions.
	Cell() UnitCell
	// ComputeNeighbors refreshes the pair list for the given cutoff.
	ComputeNeighbors(cutoff float64) error
	// Pairs returns the pairs found by the last ComputeNeighbors call.
	Pairs() []Pair
}

// SimpleSystem is an in-memory System computing pairs by checking every
// atom pair with the minimum image convention.
type SimpleSystem struct {
	cell      UnitCell
	species   []int
	positions []Vector3
	pairs     []Pair
}

var _ System = (*SimpleSystem)(nil)

// NewSimpleSystem creates an empty system.
func NewSimpleSystem(cell UnitCell) *SimpleSystem {
	return &SimpleSystem{cell: cell}
}

// AddAtom appends an atom. It invalidates the current pairs.
func (s *SimpleSystem) AddAtom(species int, position Vector3) {
	s.species = append(s.species, species)
	s.positions = append(s.positions, position)
	s.pairs = nil
}

func (s *SimpleSystem) Size() int            { return len(s.species) }
func (s *SimpleSystem) Species() []int       { return s.species }
func (s *SimpleSystem) Positions() []Vector3 { return s.positions }
func (s *SimpleSystem) Cell() UnitCell       { return s.cell }
func (s *SimpleSystem) Pairs() []Pair        { return s.pairs }

// ComputeNeighbors lists every pair i < j closer than cutoff. For periodic
// cells, the cutoff must not exceed half the smallest distance between faces,
// so that the minimum image is the only image in range.
func (s *SimpleSystem) ComputeNeighbors(cutoff float64) error {
	if !(cutoff > 0) {
		return fmt.Errorf("%w: %v must be positive", ErrInvalidCutoff, cutoff)
	}
	if !s.cell.IsInfinite() {
		d := s.cell.DistancesBetweenFaces()
		if limit := min(d[0], d[1], d[2]) / 2; cutoff > limit {
			return fmt.Errorf("%w: %v is larger than half the cell (%v)", ErrInvalidCutoff, cutoff, limit)
		}
	}

	pairs := make([]Pair, 0, len(s.positions))
	for i := range s.positions {
		for j := i + 1; j < len(s.positions); j++ {
			v := s.cell.MinimumImage(s.positions[j].Sub(s.positions[i]))
			if v.Norm() < cutoff {
				pairs = append(pairs, Pair{First: i, Second: j, Vector: v})
			}
		}
	}
	s.pairs = pairs

	return nil
}
