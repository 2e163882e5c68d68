package indexes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	assert.Equal(t, 0, Compare([]Value{1, 2}, []Value{1, 2}))
	assert.Equal(t, -1, Compare([]Value{1, 2}, []Value{1, 3}))
	assert.Equal(t, 1, Compare([]Value{2}, []Value{1, 9}))
	assert.Equal(t, -1, Compare([]Value{-5}, []Value{1}))
	assert.Equal(t, -1, Compare([]Value{1}, []Value{1, 0}))
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet()

	pos, inserted := s.Insert([]Value{3, 0})
	assert.True(t, inserted)
	assert.Equal(t, 0, pos)

	pos, inserted = s.Insert([]Value{1, 0})
	assert.True(t, inserted)
	assert.Equal(t, 1, pos)

	pos, inserted = s.Insert([]Value{3, 0})
	assert.False(t, inserted)
	assert.Equal(t, 0, pos)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, [][]Value{{3, 0}, {1, 0}}, s.Rows())

	pos, ok := s.Position([]Value{1, 0})
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	_, ok = s.Position([]Value{0, 1})
	assert.False(t, ok)

	idx := s.Indexes([]string{"a", "b"})
	assert.Equal(t, 2, idx.Count())
	assert.Equal(t, []Value{3, 0}, idx.Row(0))
}

func TestOrderedSet_NegativeValues(t *testing.T) {
	s := NewOrderedSet()
	s.Insert([]Value{-1})
	_, inserted := s.Insert([]Value{1})
	assert.True(t, inserted, "-1 and 1 must be distinct keys")
}

func TestOrderedSet_CopiesRows(t *testing.T) {
	s := NewOrderedSet()
	row := []Value{1, 2}
	s.Insert(row)
	row[0] = 5
	assert.Equal(t, []Value{1, 2}, s.Rows()[0])
}

func TestSortedSet(t *testing.T) {
	s := NewSortedSet()
	assert.True(t, s.Insert([]Value{6}))
	assert.True(t, s.Insert([]Value{123456}))
	assert.True(t, s.Insert([]Value{1}))
	assert.False(t, s.Insert([]Value{6}))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, [][]Value{{1}, {6}, {123456}}, s.Rows())
	assert.True(t, s.Contains([]Value{6}))
	assert.False(t, s.Contains([]Value{8}))

	other := NewSortedSet()
	other.Insert([]Value{123456})
	other.Insert([]Value{1})
	assert.False(t, s.Equal(other))
	other.Insert([]Value{6})
	assert.True(t, s.Equal(other))
}
