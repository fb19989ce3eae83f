package ingest

// orderedSet is a string set that iterates in insertion order. The builder's
// first-match rules (indication selection, brand fan-out) depend on row order
// in the relationship tables, so an unordered map set would change results.
type orderedSet struct {
	seen   map[string]bool
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]bool)}
}

func (s *orderedSet) Add(v string) {
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.values = append(s.values, v)
}

func (s *orderedSet) Len() int { return len(s.values) }

// Values returns the members in insertion order. Callers must not mutate.
func (s *orderedSet) Values() []string { return s.values }
