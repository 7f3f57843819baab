package datalog

// FactSet is a deduplicated collection of facts. Insertion order is not
// significant; equality is structural (Fact.Equal), not pointer identity.
type FactSet struct {
	facts []Fact
}

// NewFactSet builds a FactSet from the given facts, deduplicating them.
func NewFactSet(facts ...Fact) *FactSet {
	s := &FactSet{}
	s.InsertAll(facts)
	return s
}

// Insert adds f if it is not already present, reporting whether it was
// newly added.
func (s *FactSet) Insert(f Fact) bool {
	for _, existing := range s.facts {
		if existing.Equal(f) {
			return false
		}
	}
	s.facts = append(s.facts, f)
	return true
}

// InsertAll inserts every fact in facts, skipping duplicates.
func (s *FactSet) InsertAll(facts []Fact) {
	for _, f := range facts {
		s.Insert(f)
	}
}

// Len returns the number of facts held.
func (s *FactSet) Len() int { return len(s.facts) }

// Slice returns the facts as a plain slice. Callers must not mutate it.
func (s *FactSet) Slice() []Fact { return s.facts }

// Clone returns an independent copy of the set.
func (s *FactSet) Clone() *FactSet {
	out := make([]Fact, len(s.facts))
	copy(out, s.facts)
	return &FactSet{facts: out}
}
