package datalog

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyDisjunction is returned when constructing a Check or Policy
// with no queries; both require a non-empty disjunction (spec §3).
var ErrEmptyDisjunction = errors.New("datalog: disjunction must contain at least one query")

// Query is a body plus filtering expressions, evaluated as a synthetic
// rule whose head exposes every free variable of the body (spec §4.6).
type Query struct {
	Body        []Predicate
	Expressions []Expression
}

// NewQuery builds a Query, requiring a non-empty body.
func NewQuery(body []Predicate, expressions []Expression) (Query, error) {
	if len(body) == 0 {
		return Query{}, ErrEmptyRuleBody
	}
	return Query{Body: body, Expressions: expressions}, nil
}

// Solutions evaluates the query against facts, returning the set of
// distinct bindings (restricted to the query's free variables) that
// satisfy its body and expressions.
//
// This is implemented exactly as spec §4.6 describes: the query runs as
// a rule with an arbitrary dummy head over its free variables, reusing
// the rule applicator (C4). The head's predicate name is generated
// fresh per call so it can never collide with a real predicate supplied
// by a block or authorizer.
func (q Query) Solutions(facts []Fact) []Binding {
	vars := freeVariables(q.Body)

	headTerms := make([]Term, len(vars))
	for i, v := range vars {
		headTerms[i] = v
	}
	head := Predicate{Name: "$query:" + uuid.NewString(), Terms: headTerms}

	rule, err := NewRule(head, q.Body, q.Expressions)
	if err != nil {
		// The head only ever contains variables gathered from the body,
		// so it is always safe; this is reached only for a Query built
		// without NewQuery whose body is empty, which has no solutions.
		return nil
	}

	produced := rule.Apply(facts)

	seen := map[string]bool{}
	out := make([]Binding, 0, len(produced))
	for _, f := range produced {
		b := make(Binding, len(vars))
		for i, v := range vars {
			b[string(v)] = f.Terms[i]
		}
		key := bindingKey(b)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

func bindingKey(b Binding) string {
	names := make([]string, 0, len(b))
	for k := range b {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, n := range names {
		sb.WriteString(n)
		sb.WriteByte('=')
		sb.WriteString(b[n].String())
		sb.WriteByte(';')
	}
	return sb.String()
}

// Check is a non-empty disjunction of queries (spec §3, component C6).
// It passes iff at least one query has a non-empty solution set.
type Check struct {
	Queries []Query
}

// NewCheck builds a Check, requiring at least one query.
func NewCheck(queries ...Query) (Check, error) {
	if len(queries) == 0 {
		return Check{}, ErrEmptyDisjunction
	}
	return Check{Queries: queries}, nil
}

// Passes reports whether the check is satisfied against facts.
func (c Check) Passes(facts []Fact) bool {
	for _, q := range c.Queries {
		if len(q.Solutions(facts)) > 0 {
			return true
		}
	}
	return false
}

// PolicyKind distinguishes an Allow policy from a Deny policy.
type PolicyKind int

const (
	PolicyAllow PolicyKind = iota
	PolicyDeny
)

func (k PolicyKind) String() string {
	if k == PolicyDeny {
		return "deny"
	}
	return "allow"
}

// Policy is an ordered Allow/Deny decision rule: a kind plus a
// non-empty disjunction of queries (spec §3, component C6).
type Policy struct {
	Kind    PolicyKind
	Queries []Query
}

// NewPolicy builds a Policy, requiring at least one query.
func NewPolicy(kind PolicyKind, queries ...Query) (Policy, error) {
	if len(queries) == 0 {
		return Policy{}, ErrEmptyDisjunction
	}
	return Policy{Kind: kind, Queries: queries}, nil
}

// MatchedQuery carries the query and the solution bindings of the first
// query within a policy's disjunction that matched.
type MatchedQuery struct {
	Query    Query
	Bindings []Binding
}

// Match reports whether any of the policy's queries has a non-empty
// solution set against facts, returning the first such query's matched
// bindings.
func (p Policy) Match(facts []Fact) (*MatchedQuery, bool) {
	for _, q := range p.Queries {
		if sols := q.Solutions(facts); len(sols) > 0 {
			return &MatchedQuery{Query: q, Bindings: sols}, true
		}
	}
	return nil, false
}

// PolicyResult is the outcome of scanning an ordered policy list (spec
// §4.6 "Policy list evaluation"): the first policy that matches decides,
// regardless of what policies (if any) follow it. Matched is false if
// no policy in the list matched.
type PolicyResult struct {
	Matched bool
	Kind    PolicyKind
	Query   *MatchedQuery
}

// EvaluatePolicies scans policies in declaration order and returns the
// outcome of the first one that matches.
func EvaluatePolicies(policies []Policy, facts []Fact) PolicyResult {
	for _, p := range policies {
		if mq, ok := p.Match(facts); ok {
			return PolicyResult{Matched: true, Kind: p.Kind, Query: mq}
		}
	}
	return PolicyResult{}
}

// ValuesForVariable projects the set of distinct values bound to name
// across solutions. This is a convenience used when querying authority
// facts after a successful authorization (spec §4.8).
func ValuesForVariable(solutions []Binding, name string) []Value {
	var out []Value
	for _, b := range solutions {
		v, ok := b.Get(name)
		if !ok {
			continue
		}
		dup := false
		for _, e := range out {
			if e.Equal(v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

// ErrNoValue is returned by SingleValueForVariable when no solution
// binds the requested variable.
var ErrNoValue = errors.New("datalog: no value bound for variable")

// ErrMultipleValues is returned by SingleValueForVariable when more than
// one distinct value is bound to the requested variable across
// solutions.
var ErrMultipleValues = errors.New("datalog: multiple distinct values bound for variable")

// SingleValueForVariable projects exactly one value for name across
// solutions, failing if zero or more than one distinct value is found.
func SingleValueForVariable(solutions []Binding, name string) (Value, error) {
	values := ValuesForVariable(solutions, name)
	switch len(values) {
	case 0:
		return nil, ErrNoValue
	case 1:
		return values[0], nil
	default:
		return nil, ErrMultipleValues
	}
}
