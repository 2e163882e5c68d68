package descriptor

import (
	"fmt"
	"slices"
)

// Matrix is a dense row-major matrix of float64.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix allocates a zero-filled matrix.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("descriptor: invalid matrix shape (%d, %d)", rows, cols))
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns the element at (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row returns a mutable view of row i.
func (m *Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// Data returns the row-major backing buffer. Reshaping the owning descriptor
// invalidates it.
func (m *Matrix) Data() []float64 {
	return m.data
}

// Assign copies rows into the matrix. It panics if the shape differs.
func (m *Matrix) Assign(rows [][]float64) {
	if len(rows) != m.rows {
		panic(fmt.Sprintf("descriptor: assigning %d rows to a matrix with %d rows", len(rows), m.rows))
	}
	for i, row := range rows {
		if len(row) != m.cols {
			panic(fmt.Sprintf("descriptor: row %d has %d values, expected %d", i, len(row), m.cols))
		}
		copy(m.Row(i), row)
	}
}

// Sum returns the sum of all elements.
func (m *Matrix) Sum() float64 {
	var sum float64
	for _, v := range m.data {
		sum += v
	}
	return sum
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// Equal reports whether both matrices have the same shape and elements.
func (m *Matrix) Equal(other *Matrix) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.rows == other.rows && m.cols == other.cols && slices.Equal(m.data, other.data)
}

// Bytes returns the storage size of a rows x cols matrix.
func Bytes(rows, cols int) int64 {
	return int64(rows) * int64(cols) * 8
}
