package datalog

import (
	"errors"
	"fmt"
)

// ErrEmptyRuleBody is returned when constructing a rule or query with no
// body predicates; a body must be non-empty (spec §3).
var ErrEmptyRuleBody = errors.New("datalog: rule body must not be empty")

// UnsafeRuleError reports that a rule's head references a variable that
// never appears in its body, violating the safety requirement of §3.
type UnsafeRuleError struct {
	Variable Variable
}

func (e UnsafeRuleError) Error() string {
	return fmt.Sprintf("datalog: head variable %s does not appear in the rule body", e.Variable)
}

// Rule is `head :- body, expressions` (spec §3, §4.4, component C4).
type Rule struct {
	Head        Predicate
	Body        []Predicate
	Expressions []Expression

	forbidden []Value
}

// NewRule builds a rule, checking that the body is non-empty and that
// every head variable is bound somewhere in the body (safety).
func NewRule(head Predicate, body []Predicate, expressions []Expression) (Rule, error) {
	if len(body) == 0 {
		return Rule{}, ErrEmptyRuleBody
	}
	r := Rule{Head: head, Body: body, Expressions: expressions}
	if err := r.checkSafety(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

// Forbid attaches a set of values that must never appear in a fact
// produced by this rule; any substitution that would produce such a
// fact is discarded instead. This supports revocation-style rules that
// must not be able to "launder" a forbidden identifier back into a
// derived fact.
func (r Rule) Forbid(values ...Value) Rule {
	r.forbidden = append(append([]Value{}, r.forbidden...), values...)
	return r
}

func (r Rule) checkSafety() error {
	bodyVars := bodyVariables(r.Body)
	for _, t := range r.Head.Terms {
		if v, ok := t.(Variable); ok {
			if !bodyVars[v] {
				return UnsafeRuleError{Variable: v}
			}
		}
	}
	return nil
}

func bodyVariables(body []Predicate) map[Variable]bool {
	out := map[Variable]bool{}
	for _, p := range body {
		for _, t := range p.Terms {
			if v, ok := t.(Variable); ok {
				out[v] = true
			}
		}
	}
	return out
}

// freeVariables returns the distinct variables occurring in body, in
// first-occurrence order.
func freeVariables(body []Predicate) []Variable {
	var out []Variable
	seen := map[Variable]bool{}
	for _, p := range body {
		for _, t := range p.Terms {
			if v, ok := t.(Variable); ok && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Apply combines per-predicate candidate bindings into rule solutions
// and substitutes them into the head, implementing spec §4.4 steps 1-7.
//
// Expression and substitution faults never propagate: an evaluation
// error discards the offending tuple silently (spec §7 class 3), and a
// head substitution that would leave a variable unbound, or that would
// produce a forbidden value, discards the tuple too.
func (r Rule) Apply(facts []Fact) []Fact {
	predFacts := make([][]Fact, len(r.Body))
	for i, p := range r.Body {
		for _, f := range facts {
			if sameShape(p, f) {
				predFacts[i] = append(predFacts[i], f)
			}
		}
		if len(predFacts[i]) == 0 {
			return nil
		}
	}

	var solutions []Binding
	r.solve(predFacts, 0, Binding{}, &solutions)

	out := make([]Fact, 0, len(solutions))
	for _, sol := range solutions {
		if f, ok := r.substituteHead(sol); ok {
			out = append(out, f)
		}
	}
	return out
}

func (r Rule) solve(predFacts [][]Fact, i int, binding Binding, out *[]Binding) {
	if i == len(r.Body) {
		if r.evaluateExpressions(binding) {
			*out = append(*out, binding)
		}
		return
	}

	pred := r.Body[i]
	for _, f := range predFacts[i] {
		next := binding.Clone()
		if !unifyInto(next, pred, f) {
			continue
		}
		r.solve(predFacts, i+1, next, out)
	}
}

// unifyInto extends binding in place with the bindings required to match
// pred against f, returning false if they are inconsistent.
func unifyInto(binding Binding, pred Predicate, f Fact) bool {
	for i, t := range pred.Terms {
		switch term := t.(type) {
		case Variable:
			name := string(term)
			if existing, bound := binding[name]; bound {
				if !existing.Equal(f.Terms[i]) {
					return false
				}
				continue
			}
			binding[name] = f.Terms[i]
		case Value:
			if !term.Equal(f.Terms[i]) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (r Rule) evaluateExpressions(binding Binding) bool {
	for _, e := range r.Expressions {
		v, err := e.Evaluate(binding)
		if err != nil {
			return false
		}
		b, ok := v.(Bool)
		if !ok || !bool(b) {
			return false
		}
	}
	return true
}

func (r Rule) substituteHead(binding Binding) (Fact, bool) {
	values := make([]Value, len(r.Head.Terms))
	for i, t := range r.Head.Terms {
		switch term := t.(type) {
		case Variable:
			v, ok := binding[string(term)]
			if !ok {
				return Fact{}, false
			}
			values[i] = v
		case Value:
			values[i] = term
		default:
			return Fact{}, false
		}
	}
	for _, v := range values {
		for _, forbidden := range r.forbidden {
			if v.Equal(forbidden) {
				return Fact{}, false
			}
		}
	}
	return NewFact(r.Head.Name, values...), true
}
