package indexes

import (
	"encoding/binary"
	"slices"
)

// Compare orders two rows lexicographically. A shorter row that is a prefix
// of a longer one sorts first.
func Compare(a, b []Value) int {
	return slices.Compare(a, b)
}

// key packs a row into a string usable as a map key.
func key(row []Value) string {
	buf := make([]byte, 4*len(row))
	for n, v := range row {
		binary.LittleEndian.PutUint32(buf[4*n:], uint32(v))
	}
	return string(buf)
}

// OrderedSet is a set of rows remembering the order in which rows were first
// inserted. Positions are dense and stable.
type OrderedSet struct {
	positions map[string]int
	rows      [][]Value
}

// NewOrderedSet creates an empty set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{positions: make(map[string]int)}
}

// Insert adds row if it is not present yet, and returns its position together
// with a flag telling whether it was newly inserted. The row is copied.
func (s *OrderedSet) Insert(row []Value) (int, bool) {
	k := key(row)
	if pos, ok := s.positions[k]; ok {
		return pos, false
	}
	pos := len(s.rows)
	s.positions[k] = pos
	s.rows = append(s.rows, slices.Clone(row))
	return pos, true
}

// Position returns the position of row.
func (s *OrderedSet) Position(row []Value) (int, bool) {
	pos, ok := s.positions[key(row)]
	return pos, ok
}

// Len returns the number of distinct rows.
func (s *OrderedSet) Len() int {
	return len(s.rows)
}

// Rows returns the rows in first-seen order.
func (s *OrderedSet) Rows() [][]Value {
	return s.rows
}

// Indexes builds a table with the given names from the rows of the set.
func (s *OrderedSet) Indexes(names []string) *Indexes {
	b := NewBuilder(names...)
	for _, row := range s.rows {
		b.Add(row...)
	}
	return b.Finish()
}

// SortedSet is a set of rows kept in lexicographic order (see Compare).
type SortedSet struct {
	rows [][]Value
}

// NewSortedSet creates an empty set.
func NewSortedSet() *SortedSet {
	return &SortedSet{}
}

// Insert adds row if it is not present yet and reports whether it was added.
func (s *SortedSet) Insert(row []Value) bool {
	pos, found := slices.BinarySearchFunc(s.rows, row, Compare)
	if found {
		return false
	}
	s.rows = slices.Insert(s.rows, pos, slices.Clone(row))
	return true
}

// Contains reports whether row is in the set.
func (s *SortedSet) Contains(row []Value) bool {
	_, found := slices.BinarySearchFunc(s.rows, row, Compare)
	return found
}

// Len returns the number of rows.
func (s *SortedSet) Len() int {
	return len(s.rows)
}

// Rows returns the rows in sorted order.
func (s *SortedSet) Rows() [][]Value {
	return s.rows
}

// Equal reports whether both sets hold the same rows.
func (s *SortedSet) Equal(other *SortedSet) bool {
	return slices.EqualFunc(s.rows, other.rows, func(a, b []Value) bool { return slices.Equal(a, b) })
}
