package datalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRejectsNestedSets(t *testing.T) {
	inner, err := NewSet(Int(1))
	require.NoError(t, err)

	_, err = NewSet(inner)
	assert.ErrorIs(t, err, ErrNestedSet)
}

func TestSetDeduplicatesElements(t *testing.T) {
	s, err := NewSet(Int(1), Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestSetEqualIgnoresOrder(t *testing.T) {
	a, _ := NewSet(Int(1), Int(2))
	b, _ := NewSet(Int(2), Int(1))
	assert.True(t, a.Equal(b))
}

func TestSetIsSubsetOf(t *testing.T) {
	small, _ := NewSet(Int(1))
	big, _ := NewSet(Int(1), Int(2))
	assert.True(t, small.IsSubsetOf(big))
	assert.False(t, big.IsSubsetOf(small))
}

func TestSetIntersectionUnion(t *testing.T) {
	a, _ := NewSet(Int(1), Int(2))
	b, _ := NewSet(Int(2), Int(3))

	inter := a.Intersection(b)
	assert.Equal(t, 1, inter.Len())
	assert.True(t, inter.has(Int(2)))

	union := a.Union(b)
	assert.Equal(t, 3, union.Len())
}

func TestValueEqualRequiresSameKind(t *testing.T) {
	assert.False(t, Int(1).Equal(Str("1")))
	assert.True(t, Int(1).Equal(Int(1)))
}

func TestDateOrdering(t *testing.T) {
	now := time.Now()
	a := Date(now)
	b := Date(now.Add(time.Hour))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(Date(now)))
}

func TestBytesEqual(t *testing.T) {
	assert.True(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 2})))
	assert.False(t, Bytes([]byte{1, 2}).Equal(Bytes([]byte{1, 3})))
}
