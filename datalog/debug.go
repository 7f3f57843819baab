package datalog

import "strings"

// Debugger renders datalog values back to human-readable text, the way
// the teacher's SymbolDebugger does for its symbol-table-backed terms.
// This engine has no symbol table (Symbol is already a plain distinct
// string type, since the wire-compression concern that motivated the
// teacher's symbol table is out of scope here), so Debugger needs no
// constructor argument.
type Debugger struct{}

// Predicate renders a predicate, e.g. `right($x, "read")`.
func (Debugger) Predicate(p Predicate) string { return p.String() }

// Fact renders a fact.
func (Debugger) Fact(f Fact) string { return f.String() }

// Rule renders a rule as `head <- body, expressions`.
func (d Debugger) Rule(r Rule) string {
	preds := make([]string, len(r.Body))
	for i, p := range r.Body {
		preds[i] = p.String()
	}
	exprs := make([]string, len(r.Expressions))
	for i, e := range r.Expressions {
		exprs[i] = e.String()
	}

	body := strings.Join(preds, ", ")
	if len(exprs) > 0 {
		if body != "" {
			body += ", "
		}
		body += strings.Join(exprs, ", ")
	}
	return r.Head.String() + " <- " + body
}

// Query renders a check/policy query body.
func (d Debugger) Query(q Query) string {
	preds := make([]string, len(q.Body))
	for i, p := range q.Body {
		preds[i] = p.String()
	}
	exprs := make([]string, len(q.Expressions))
	for i, e := range q.Expressions {
		exprs[i] = e.String()
	}
	parts := append(preds, exprs...)
	return strings.Join(parts, ", ")
}

// Check renders a check as `check if q1 or q2 ...`.
func (d Debugger) Check(c Check) string {
	queries := make([]string, len(c.Queries))
	for i, q := range c.Queries {
		queries[i] = d.Query(q)
	}
	return "check if " + strings.Join(queries, " or ")
}

// Policy renders a policy as `allow if q1 or q2 ...` / `deny if ...`.
func (d Debugger) Policy(p Policy) string {
	queries := make([]string, len(p.Queries))
	for i, q := range p.Queries {
		queries[i] = d.Query(q)
	}
	return p.Kind.String() + " if " + strings.Join(queries, " or ")
}

// World renders a world's facts and rules for debugging.
func (d Debugger) World(w *World) string {
	facts := make([]string, 0, w.facts.Len())
	for _, f := range w.Facts() {
		facts = append(facts, f.String())
	}
	rules := make([]string, 0, len(w.rules))
	for _, r := range w.Rules() {
		rules = append(rules, d.Rule(r))
	}
	return "World {\n\tfacts: [" + strings.Join(facts, ", ") + "]\n\trules: [" + strings.Join(rules, ", ") + "]\n}"
}
