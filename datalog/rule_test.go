package datalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleRejectsEmptyBody(t *testing.T) {
	_, err := NewRule(NewPredicate("h"), nil, nil)
	assert.ErrorIs(t, err, ErrEmptyRuleBody)
}

func TestNewRuleRejectsUnsafeHead(t *testing.T) {
	head := NewPredicate("h", Variable("y"))
	body := []Predicate{NewPredicate("b", Variable("x"))}
	_, err := NewRule(head, body, nil)
	var unsafe UnsafeRuleError
	require.ErrorAs(t, err, &unsafe)
	assert.Equal(t, Variable("y"), unsafe.Variable)
}

func TestRuleApplyProducesFacts(t *testing.T) {
	// parent($x, $y), parent($y, $z) -> grandparent($x, $z)
	head := NewPredicate("grandparent", Variable("x"), Variable("z"))
	body := []Predicate{
		NewPredicate("parent", Variable("x"), Variable("y")),
		NewPredicate("parent", Variable("y"), Variable("z")),
	}
	rule, err := NewRule(head, body, nil)
	require.NoError(t, err)

	facts := []Fact{
		NewFact("parent", Str("alice"), Str("bob")),
		NewFact("parent", Str("bob"), Str("carol")),
	}
	produced := rule.Apply(facts)
	require.Len(t, produced, 1)
	assert.True(t, produced[0].Equal(NewFact("grandparent", Str("alice"), Str("carol"))))
}

func TestRuleApplyFiltersWithExpressions(t *testing.T) {
	head := NewPredicate("adult", Variable("x"))
	body := []Predicate{NewPredicate("age", Variable("x"), Variable("age"))}
	exprs := []Expression{
		Binary{Op: OpGreaterOrEqual, Left: Leaf{Term: Variable("age")}, Right: Leaf{Term: Int(18)}},
	}
	rule, err := NewRule(head, body, exprs)
	require.NoError(t, err)

	facts := []Fact{
		NewFact("age", Str("alice"), Int(30)),
		NewFact("age", Str("bob"), Int(10)),
	}
	produced := rule.Apply(facts)
	require.Len(t, produced, 1)
	assert.Equal(t, "alice", string(produced[0].Terms[0].(Str)))
}

func TestRuleApplyDiscardsFaultingExpressionSilently(t *testing.T) {
	head := NewPredicate("r", Variable("x"))
	body := []Predicate{NewPredicate("p", Variable("x"))}
	exprs := []Expression{
		Binary{Op: OpDiv, Left: Leaf{Term: Int(1)}, Right: Leaf{Term: Int(0)}},
	}
	rule, err := NewRule(head, body, exprs)
	require.NoError(t, err)

	produced := rule.Apply([]Fact{NewFact("p", Int(1))})
	assert.Empty(t, produced)
}

func TestRuleForbidBlocksMatchingFacts(t *testing.T) {
	head := NewPredicate("r", Variable("x"))
	body := []Predicate{NewPredicate("p", Variable("x"))}
	rule, err := NewRule(head, body, nil)
	require.NoError(t, err)
	rule = rule.Forbid(Str("forbidden"))

	facts := []Fact{NewFact("p", Str("ok")), NewFact("p", Str("forbidden"))}
	produced := rule.Apply(facts)
	require.Len(t, produced, 1)
	assert.Equal(t, Str("ok"), produced[0].Terms[0])
}

func TestRuleApplyNoMatchingFactsProducesNothing(t *testing.T) {
	head := NewPredicate("r", Variable("x"))
	body := []Predicate{NewPredicate("p", Variable("x"))}
	rule, err := NewRule(head, body, nil)
	require.NoError(t, err)

	produced := rule.Apply(nil)
	assert.Empty(t, produced)
}
