// Package indexes provides the immutable, named, multi-column index tables
// used to label the rows (samples) and columns (features) of a descriptor.
//
// An Indexes table is built once through an append-only Builder and sealed by
// Finish. Every transformation afterwards produces a new table.
package indexes

import (
	"fmt"
	"iter"
	"slices"
)

// Value is the fixed-width signed integer tag stored in every index column.
type Value int32

// Indexes is an ordered table of rows with named columns. Values are stored
// row-major in a single flat buffer.
type Indexes struct {
	names  []string
	values []Value
}

// Builder accumulates rows for an Indexes table.
type Builder struct {
	names    []string
	values   []Value
	finished bool
}

// NewBuilder creates a builder for a table with the given column names.
//
// It panics if any name is not a valid identifier: non-empty, not starting
// with a digit, and made only of ASCII letters, digits and underscores.
func NewBuilder(names ...string) *Builder {
	for _, name := range names {
		if !IsValidName(name) {
			panic(fmt.Sprintf("indexes: all names must be valid identifiers, %q is not", name))
		}
	}
	return &Builder{names: slices.Clone(names)}
}

// Size returns the number of columns.
func (b *Builder) Size() int {
	return len(b.names)
}

// Add appends a row. It panics if the row width does not match the number of
// columns or if the builder was already finished.
func (b *Builder) Add(row ...Value) {
	if b.finished {
		panic("indexes: Add called on a finished builder")
	}
	if len(row) != len(b.names) {
		panic(fmt.Sprintf("indexes: row has %d values, expected %d", len(row), len(b.names)))
	}
	b.values = append(b.values, row...)
}

// Finish seals the builder and returns the table.
func (b *Builder) Finish() *Indexes {
	b.finished = true
	idx := &Indexes{names: b.names, values: b.values}
	b.names, b.values = nil, nil
	return idx
}

// Empty returns a table without columns nor rows.
func Empty() *Indexes {
	return &Indexes{}
}

// FromRows builds a table from a slice of rows.
func FromRows(names []string, rows ...[]Value) *Indexes {
	b := NewBuilder(names...)
	for _, row := range rows {
		b.Add(row...)
	}
	return b.Finish()
}

// Size returns the number of columns.
func (i *Indexes) Size() int {
	return len(i.names)
}

// Count returns the number of rows. A table without columns has no rows.
func (i *Indexes) Count() int {
	if len(i.names) == 0 {
		return 0
	}
	return len(i.values) / len(i.names)
}

// Names returns a copy of the column names.
func (i *Indexes) Names() []string {
	return slices.Clone(i.names)
}

// NamePosition returns the column position of name.
func (i *Indexes) NamePosition(name string) (int, bool) {
	pos := slices.Index(i.names, name)
	return pos, pos >= 0
}

// Row returns the values of row n. The returned slice aliases the table
// storage and must not be modified.
func (i *Indexes) Row(n int) []Value {
	size := len(i.names)
	return i.values[n*size : (n+1)*size : (n+1)*size]
}

// Values returns the flat row-major buffer backing the table. The slice is a
// read-only view.
func (i *Indexes) Values() []Value {
	return i.values
}

// All iterates over the rows in insertion order.
func (i *Indexes) All() iter.Seq2[int, []Value] {
	return func(yield func(int, []Value) bool) {
		for n := 0; n < i.Count(); n++ {
			if !yield(n, i.Row(n)) {
				return
			}
		}
	}
}

// Position returns the index of the first row equal to row.
func (i *Indexes) Position(row []Value) (int, bool) {
	if len(row) != len(i.names) {
		return 0, false
	}
	for n := 0; n < i.Count(); n++ {
		if slices.Equal(i.Row(n), row) {
			return n, true
		}
	}
	return 0, false
}

// Equal reports whether both tables have the same names and the same rows in
// the same order.
func (i *Indexes) Equal(other *Indexes) bool {
	if i == other {
		return true
	}
	if i == nil || other == nil {
		return false
	}
	return slices.Equal(i.names, other.names) && slices.Equal(i.values, other.values)
}

// String implements fmt.Stringer.
func (i *Indexes) String() string {
	return fmt.Sprintf("Indexes%v[%d rows]", i.names, i.Count())
}

// IsValidName reports whether name can be used as a column name.
func IsValidName(name string) bool {
	if name == "" {
		return false
	}
	for n, c := range name {
		if n == 0 && c >= '0' && c <= '9' {
			return false
		}
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return true
}
