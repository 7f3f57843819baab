package datalog

// Match implements the unifier (spec §4.3, component C3): it attempts to
// match a predicate (which may contain variables) against a single
// ground fact, returning the binding produced if they unify.
//
// Matching requires equal name and arity. Each positional pair is then
// checked: a variable term binds to the fact's value at that position,
// unless it is already bound within this match to a different value (in
// which case matching fails); a value term must be structurally equal
// to the fact's value.
func Match(p Predicate, f Fact) (Binding, bool) {
	if !sameShape(p, f) {
		return nil, false
	}

	b := make(Binding, len(p.Terms))
	for i, t := range p.Terms {
		switch term := t.(type) {
		case Variable:
			name := string(term)
			if existing, bound := b[name]; bound {
				if !existing.Equal(f.Terms[i]) {
					return nil, false
				}
				continue
			}
			b[name] = f.Terms[i]
		case Value:
			if !term.Equal(f.Terms[i]) {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return b, true
}

// CandidateBindings matches a single predicate against every fact in
// facts, returning the set of bindings obtained from each match. This is
// the "candidate_bindings" operation of spec §4.3, applied to one
// predicate; the rule applicator (C4) combines the per-predicate results
// across a whole rule body.
func CandidateBindings(facts []Fact, pred Predicate) []Binding {
	var out []Binding
	for _, f := range facts {
		if b, ok := Match(pred, f); ok {
			out = append(out, b)
		}
	}
	return out
}
