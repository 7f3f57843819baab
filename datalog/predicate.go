package datalog

import "strings"

// Predicate is a named, ordered list of terms. It may contain variables
// when it appears in a rule body/head, a check query or a policy query.
type Predicate struct {
	Name  string
	Terms []Term
}

// NewPredicate builds a Predicate from a name and terms.
func NewPredicate(name string, terms ...Term) Predicate {
	return Predicate{Name: name, Terms: terms}
}

func (p Predicate) String() string {
	parts := make([]string, len(p.Terms))
	for i, t := range p.Terms {
		parts[i] = t.String()
	}
	return p.Name + "(" + strings.Join(parts, ", ") + ")"
}

// sameShape reports whether a predicate and a fact could possibly match:
// same name, same arity. This is the cheap pre-filter the unifier and
// rule applicator use before doing per-term matching.
func sameShape(p Predicate, f Fact) bool {
	return p.Name == f.Name && len(p.Terms) == len(f.Terms)
}

// Fact is a predicate whose terms are all grounded Values.
type Fact struct {
	Name  string
	Terms []Value
}

// NewFact builds a Fact from a name and values.
func NewFact(name string, values ...Value) Fact {
	return Fact{Name: name, Terms: values}
}

// Predicate returns the Fact viewed as a Predicate (its terms upcast to
// Term), useful when a fact must be compared against a predicate shape.
func (f Fact) Predicate() Predicate {
	terms := make([]Term, len(f.Terms))
	for i, v := range f.Terms {
		terms[i] = v
	}
	return Predicate{Name: f.Name, Terms: terms}
}

func (f Fact) String() string { return f.Predicate().String() }

// Equal reports structural equality between two facts: same name, same
// arity, and pairwise-equal values.
func (f Fact) Equal(o Fact) bool {
	if f.Name != o.Name || len(f.Terms) != len(o.Terms) {
		return false
	}
	for i := range f.Terms {
		if !f.Terms[i].Equal(o.Terms[i]) {
			return false
		}
	}
	return true
}

// Binding maps a variable name to the value it has been unified with.
type Binding map[string]Value

// Clone returns a shallow copy of the binding, safe to extend
// independently of the original.
func (b Binding) Clone() Binding {
	out := make(Binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Get returns the value bound to name, if any.
func (b Binding) Get(name string) (Value, bool) {
	v, ok := b[name]
	return v, ok
}
