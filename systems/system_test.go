package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitCell_Infinite(t *testing.T) {
	cell := NewUnitCell(Matrix3{})
	assert.True(t, cell.IsInfinite())

	v := Vector3{10, -20, 30}
	assert.Equal(t, v, cell.MinimumImage(v))
	assert.True(t, math.IsInf(cell.DistancesBetweenFaces()[0], 1))
}

func TestUnitCell_Fractional(t *testing.T) {
	cell := NewUnitCell(Matrix3{{10, 0, 0}, {2, 10, 0}, {0, 0, 5}})
	require.False(t, cell.IsInfinite())

	v := Vector3{3, 4, 1}
	back := cell.Cartesian(cell.Fractional(v))
	assert.InDeltaSlice(t, v[:], back[:], 1e-12)

	f := cell.Fractional(Vector3{12, 10, 5})
	assert.InDeltaSlice(t, []float64{1, 1, 1}, f[:], 1e-12)
}

func TestUnitCell_MinimumImage(t *testing.T) {
	cell := OrthorhombicCell(10, 10, 10)

	got := cell.MinimumImage(Vector3{9, -6, 4})
	assert.InDeltaSlice(t, []float64{-1, 4, 4}, got[:], 1e-12)
}

func TestUnitCell_DistancesBetweenFaces(t *testing.T) {
	d := OrthorhombicCell(3, 4, 5).DistancesBetweenFaces()
	assert.InDeltaSlice(t, []float64{3, 4, 5}, d[:], 1e-12)

	// a 45 degree tilt of b shortens the distance between the a faces
	d = NewUnitCell(Matrix3{{10, 0, 0}, {10, 10, 0}, {0, 0, 10}}).DistancesBetweenFaces()
	assert.InDelta(t, 10/math.Sqrt2, d[0], 1e-12)
	assert.InDelta(t, 10, d[1], 1e-12)
}

func TestUnitCell_Degenerate(t *testing.T) {
	assert.Panics(t, func() { NewUnitCell(Matrix3{{1, 0, 0}, {2, 0, 0}, {0, 0, 1}}) })
}

func TestSimpleSystem_ComputeNeighbors(t *testing.T) {
	s := NewSimpleSystem(NewUnitCell(Matrix3{}))
	s.AddAtom(8, Vector3{0, 0, 0})
	s.AddAtom(1, Vector3{1, 0, 0})
	s.AddAtom(1, Vector3{0, 1.5, 0})
	s.AddAtom(1, Vector3{0, 10, 0})

	assert.Equal(t, 4, s.Size())
	assert.Equal(t, []int{8, 1, 1, 1}, s.Species())

	require.NoError(t, s.ComputeNeighbors(2))
	pairs := s.Pairs()
	require.Len(t, pairs, 3)

	assert.Equal(t, 0, pairs[0].First)
	assert.Equal(t, 1, pairs[0].Second)
	assert.Equal(t, Vector3{1, 0, 0}, pairs[0].Vector)

	assert.Equal(t, 0, pairs[1].First)
	assert.Equal(t, 2, pairs[1].Second)

	assert.Equal(t, 1, pairs[2].First)
	assert.Equal(t, 2, pairs[2].Second)
	assert.Equal(t, Vector3{-1, 1.5, 0}, pairs[2].Vector)

	s.AddAtom(1, Vector3{0, 0, 1})
	assert.Empty(t, s.Pairs(), "adding atoms invalidates pairs")
}

func TestSimpleSystem_Periodic(t *testing.T) {
	s := NewSimpleSystem(OrthorhombicCell(10, 10, 10))
	s.AddAtom(1, Vector3{0.5, 0, 0})
	s.AddAtom(1, Vector3{9.5, 0, 0})

	require.NoError(t, s.ComputeNeighbors(2))
	require.Len(t, s.Pairs(), 1)
	assert.InDeltaSlice(t, []float64{-1, 0, 0}, s.Pairs()[0].Vector[:], 1e-12)
}

func TestSimpleSystem_InvalidCutoff(t *testing.T) {
	s := NewSimpleSystem(OrthorhombicCell(4, 4, 4))
	assert.ErrorIs(t, s.ComputeNeighbors(0), ErrInvalidCutoff)
	assert.ErrorIs(t, s.ComputeNeighbors(math.NaN()), ErrInvalidCutoff)
	assert.ErrorIs(t, s.ComputeNeighbors(3), ErrInvalidCutoff)
	assert.NoError(t, s.ComputeNeighbors(2))
}
