package datalog

import (
	"context"
	"errors"
)

// Fatal resource errors (spec §7 class 1): these abort the current
// authorization immediately and are returned verbatim, with no partial
// facts and no partial check list surfaced by World.Run.
var (
	ErrTooManyFacts      = errors.New("datalog: too many facts")
	ErrTooManyIterations = errors.New("datalog: too many iterations")
	ErrTimeout           = errors.New("datalog: timeout")
)

// World is the evaluation frame for one fixpoint computation: a set of
// rules and a set of facts (spec §3, component C5). It is not persisted;
// its facts accumulate across successive Run calls on the same World.
type World struct {
	facts   *FactSet
	rules   []Rule
	limits  Limits
	metrics *Metrics
}

// NewWorld builds an empty World bounded by limits.
func NewWorld(limits Limits, opts ...WorldOption) *World {
	w := &World{
		facts:  &FactSet{},
		limits: limits,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

// WithMetrics attaches a metrics sink to the world's fixpoint loop.
func WithMetrics(m *Metrics) WorldOption {
	return func(w *World) { w.metrics = m }
}

// AddFact inserts f into the world's fact set.
func (w *World) AddFact(f Fact) { w.facts.Insert(f) }

// AddFacts inserts every fact in facts.
func (w *World) AddFacts(facts []Fact) { w.facts.InsertAll(facts) }

// AddRule appends r to the world's rule set.
func (w *World) AddRule(r Rule) { w.rules = append(w.rules, r) }

// AddRuleForbidding appends r to the world's rule set after attaching a
// forbidden-value guard, so r can never produce a fact containing any of
// forbidden. Useful for building revocation checks directly against
// revocation_id facts without letting a later block launder a revoked
// identifier back into a derived fact.
func (w *World) AddRuleForbidding(r Rule, forbidden ...Value) {
	w.AddRule(r.Forbid(forbidden...))
}

// AddRules appends every rule in rules.
func (w *World) AddRules(rules []Rule) { w.rules = append(w.rules, rules...) }

// ResetRules clears the world's rule set, keeping its facts. Used
// between authorization phases so that one phase's rules cannot fire
// against facts contributed by a later phase (spec §4.7 transition 3).
func (w *World) ResetRules() { w.rules = nil }

// Facts returns the facts currently held, as a plain slice.
func (w *World) Facts() []Fact { return w.facts.Slice() }

// Rules returns the rules currently held.
func (w *World) Rules() []Rule { return w.rules }

// Clone returns an independent copy of the world, sharing its limits and
// metrics sink.
func (w *World) Clone() *World {
	return &World{
		facts:   w.facts.Clone(),
		rules:   append([]Rule{}, w.rules...),
		limits:  w.limits,
		metrics: w.metrics,
	}
}

// Run computes the fixpoint of all facts derivable from the world's
// rules under bounded resources (spec §4.5, "computeAllFacts").
//
// Each round applies every rule to the current fact set, merges newly
// derived facts in, and increments the iteration counter -- on every
// round, including the one that discovers nothing new (spec §4.5, §9).
// After merging, the round checks MaxFacts then MaxIterations; if
// neither is crossed and the round produced no new facts, the
// computation has reached its fixpoint and Run returns nil.
//
// The whole computation races against ctx's deadline; crossing it
// returns ErrTimeout. Per spec §5, MaxTime bounds one authorization as
// a single unit of work, not each individual World.Run call -- so Run
// honors whatever deadline ctx already carries rather than deriving a
// fresh MaxTime-wide one of its own. Callers running several worlds in
// sequence for one authorization (the authority phase, then each
// block) must derive that one deadline up front and pass the same ctx
// through every call. The fixpoint computation itself is
// single-threaded and purely computational (spec §5); the only
// concurrency is the cooperative race against the deadline.
func (w *World) Run(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- w.runFixpoint(ctx)
	}()

	select {
	case <-ctx.Done():
		return ErrTimeout
	case err := <-done:
		return err
	}
}

func (w *World) runFixpoint(ctx context.Context) error {
	iterations := 0
	for {
		select {
		case <-ctx.Done():
			return ErrTimeout
		default:
		}

		var newFacts []Fact
		current := w.facts.Slice()
		for _, r := range w.rules {
			select {
			case <-ctx.Done():
				return ErrTimeout
			default:
			}
			newFacts = append(newFacts, r.Apply(current)...)
		}

		added := false
		for _, f := range newFacts {
			if w.facts.Insert(f) {
				added = true
			}
		}
		iterations++
		w.metrics.observe(w.facts.Len())

		if w.facts.Len() >= w.limits.MaxFacts {
			return ErrTooManyFacts
		}
		if iterations >= w.limits.MaxIterations {
			return ErrTooManyIterations
		}
		if !added {
			return nil
		}
	}
}
