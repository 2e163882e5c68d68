package systems

import "math"

// Vector3 is a cartesian vector.
type Vector3 [3]float64

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

// Dot returns the scalar product.
func (v Vector3) Dot(o Vector3) float64 { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }

// Cross returns the vector product.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Norm returns the euclidean length.
func (v Vector3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Matrix3 is a 3x3 matrix. In a unit cell, each row is one cell vector.
type Matrix3 [3][3]float64

// UnitCell describes the periodic boundary conditions of a system. The zero
// matrix means an infinite cell, without periodicity.
type UnitCell struct {
	matrix  Matrix3
	inverse Matrix3
}

// NewUnitCell creates a cell from its vectors. It returns an infinite cell
// for the zero matrix.
func NewUnitCell(matrix Matrix3) UnitCell {
	if matrix == (Matrix3{}) {
		return UnitCell{}
	}
	return UnitCell{matrix: matrix, inverse: invert(matrix)}
}

// OrthorhombicCell creates a cell with orthogonal vectors of the given lengths.
func OrthorhombicCell(a, b, c float64) UnitCell {
	return NewUnitCell(Matrix3{{a, 0, 0}, {0, b, 0}, {0, 0, c}})
}

// IsInfinite reports whether the cell has no periodicity.
func (c UnitCell) IsInfinite() bool { return c.matrix == (Matrix3{}) }

// Matrix returns the cell vectors.
func (c UnitCell) Matrix() Matrix3 { return c.matrix }

// Fractional converts a cartesian vector to fractional coordinates.
func (c UnitCell) Fractional(v Vector3) Vector3 { return mulRow(v, c.inverse) }

// Cartesian converts fractional coordinates to a cartesian vector.
func (c UnitCell) Cartesian(f Vector3) Vector3 { return mulRow(f, c.matrix) }

// MinimumImage wraps v to the shortest periodic image. Infinite cells return
// v unchanged.
func (c UnitCell) MinimumImage(v Vector3) Vector3 {
	if c.IsInfinite() {
		return v
	}
	f := c.Fractional(v)
	for i := range f {
		f[i] -= math.Round(f[i])
	}
	return c.Cartesian(f)
}

// DistancesBetweenFaces returns the distance between opposite faces of the
// cell, along each cell vector. Infinite cells have infinite distances.
func (c UnitCell) DistancesBetweenFaces() Vector3 {
	if c.IsInfinite() {
		inf := math.Inf(1)
		return Vector3{inf, inf, inf}
	}
	a, b, cc := Vector3(c.matrix[0]), Vector3(c.matrix[1]), Vector3(c.matrix[2])
	volume := math.Abs(a.Dot(b.Cross(cc)))
	return Vector3{
		volume / b.Cross(cc).Norm(),
		volume / cc.Cross(a).Norm(),
		volume / a.Cross(b).Norm(),
	}
}

func mulRow(v Vector3, m Matrix3) Vector3 {
	return Vector3{
		v[0]*m[0][0] + v[1]*m[1][0] + v[2]*m[2][0],
		v[0]*m[0][1] + v[1]*m[1][1] + v[2]*m[2][1],
		v[0]*m[0][2] + v[1]*m[1][2] + v[2]*m[2][2],
	}
}

func invert(m Matrix3) Matrix3 {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		panic("systems: degenerate unit cell")
	}
	inv := 1 / det

	return Matrix3{
		{
			(m[1][1]*m[2][2] - m[1][2]*m[2][1]) * inv,
			(m[0][2]*m[2][1] - m[0][1]*m[2][2]) * inv,
			(m[0][1]*m[1][2] - m[0][2]*m[1][1]) * inv,
		},
		{
			(m[1][2]*m[2][0] - m[1][0]*m[2][2]) * inv,
			(m[0][0]*m[2][2] - m[0][2]*m[2][0]) * inv,
			(m[0][2]*m[1][0] - m[0][0]*m[1][2]) * inv,
		},
		{
			(m[1][0]*m[2][1] - m[1][1]*m[2][0]) * inv,
			(m[0][1]*m[2][0] - m[0][0]*m[2][1]) * inv,
			(m[0][0]*m[1][1] - m[0][1]*m[1][0]) * inv,
		},
	}
}
