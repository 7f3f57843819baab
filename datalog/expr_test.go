package datalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionUnboundVariable(t *testing.T) {
	e := Leaf{Term: Variable("x")}
	_, err := e.Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestExpressionNegate(t *testing.T) {
	e := Unary{Op: OpNegate, Operand: Leaf{Term: Bool(true)}}
	v, err := e.Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)

	_, err = Unary{Op: OpNegate, Operand: Leaf{Term: Int(1)}}.Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestExpressionLength(t *testing.T) {
	cases := []struct {
		term Value
		want Int
	}{
		{Str("hello"), 5},
		{Bytes([]byte{1, 2, 3}), 3},
	}
	for _, c := range cases {
		v, err := (Unary{Op: OpLength, Operand: Leaf{Term: c.term}}).Evaluate(Binding{})
		require.NoError(t, err)
		assert.Equal(t, c.want, v)
	}

	set, _ := NewSet(Int(1), Int(2))
	v, err := (Unary{Op: OpLength, Operand: Leaf{Term: set}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Int(2), v)
}

func TestExpressionArithmetic(t *testing.T) {
	add := Binary{Op: OpAdd, Left: Leaf{Term: Int(2)}, Right: Leaf{Term: Int(3)}}
	v, err := add.Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Int(5), v)

	div0 := Binary{Op: OpDiv, Left: Leaf{Term: Int(1)}, Right: Leaf{Term: Int(0)}}
	_, err = div0.Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestExpressionAndOrAreStrict(t *testing.T) {
	// true OR <fault> must fault, not short-circuit (spec open question).
	faulting := Leaf{Term: Variable("missing")}
	expr := Binary{Op: OpOr, Left: Leaf{Term: Bool(true)}, Right: faulting}
	_, err := expr.Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestExpressionComparisonTypeMismatch(t *testing.T) {
	_, err := (Binary{Op: OpLessThan, Left: Leaf{Term: Int(1)}, Right: Leaf{Term: Str("a")}}).Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestExpressionPrefixSuffix(t *testing.T) {
	v, err := (Binary{Op: OpPrefix, Left: Leaf{Term: Str("hello")}, Right: Leaf{Term: Str("he")}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	v, err = (Binary{Op: OpSuffix, Left: Leaf{Term: Str("hello")}, Right: Leaf{Term: Str("lo")}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestExpressionContainsScalarAndSet(t *testing.T) {
	set, _ := NewSet(Str("a"), Str("b"))

	v, err := (Binary{Op: OpContains, Left: Leaf{Term: set}, Right: Leaf{Term: Str("a")}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	sub, _ := NewSet(Str("a"))
	v, err = (Binary{Op: OpContains, Left: Leaf{Term: set}, Right: Leaf{Term: sub}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}

func TestExpressionContainsAcceptsDateAndBoolScalars(t *testing.T) {
	d := Date(time.Unix(1000, 0))
	dateSet, _ := NewSet(d)
	v, err := (Binary{Op: OpContains, Left: Leaf{Term: dateSet}, Right: Leaf{Term: d}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)

	boolSet, _ := NewSet(Bool(true))
	v, err = (Binary{Op: OpContains, Left: Leaf{Term: boolSet}, Right: Leaf{Term: Bool(false)}}).Evaluate(Binding{})
	require.NoError(t, err)
	assert.Equal(t, Bool(false), v)
}

func TestExpressionRegexAlwaysFails(t *testing.T) {
	_, err := (Binary{Op: OpRegex, Left: Leaf{Term: Str("x")}, Right: Leaf{Term: Str(".*")}}).Evaluate(Binding{})
	assert.ErrorIs(t, err, ErrUnsupportedRegex)
}

func TestExpressionIntersectionUnion(t *testing.T) {
	a, _ := NewSet(Int(1), Int(2))
	b, _ := NewSet(Int(2), Int(3))

	v, err := (Binary{Op: OpIntersection, Left: Leaf{Term: a}, Right: Leaf{Term: b}}).Evaluate(Binding{})
	require.NoError(t, err)
	set := v.(Set)
	assert.Equal(t, 1, set.Len())

	v, err = (Binary{Op: OpUnion, Left: Leaf{Term: a}, Right: Leaf{Term: b}}).Evaluate(Binding{})
	require.NoError(t, err)
	set = v.(Set)
	assert.Equal(t, 3, set.Len())
}

func TestExpressionVariableResolution(t *testing.T) {
	b := Binding{"x": Int(10)}
	v, err := (Binary{Op: OpEqual, Left: Leaf{Term: Variable("x")}, Right: Leaf{Term: Int(10)}}).Evaluate(b)
	require.NoError(t, err)
	assert.Equal(t, Bool(true), v)
}
