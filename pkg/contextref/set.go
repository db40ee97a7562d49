package contextref

// Set is an insertion-ordered, duplicate-free collection of references.
// Sets are values: operations return a new Set and never modify the receiver.
type Set struct {
	refs []Reference
}

func NewSet(refs ...Reference) Set {
	s := Set{}
	for _, r := range refs {
		if r == nil || s.Contains(r) {
			continue
		}
		s.refs = append(s.refs, r)
	}
	return s
}

func (s Set) Len() int {
	return len(s.refs)
}

func (s Set) Contains(r Reference) bool {
	return s.indexOf(r) >= 0
}

// Items returns a copy of the references in insertion order.
func (s Set) Items() []Reference {
	out := make([]Reference, len(s.refs))
	copy(out, s.refs)
	return out
}

func (s Set) indexOf(r Reference) int {
	key := KeyOf(r)
	for i, existing := range s.refs {
		if KeyOf(existing) == key {
			return i
		}
	}
	return -1
}

type OpKind int

const (
	OpAdd OpKind = iota + 1
	OpRemove
)

// Mutation is one registry operation. Apply returns the mutation annotated with
// what it actually changed so that Compensate can restore the prior set exactly.
type Mutation struct {
	Kind OpKind
	Ref  Reference

	applied bool
	index   int
}

func (m Mutation) Applied() bool {
	return m.applied
}

// Apply trials m against s. Adding a present reference or removing an absent
// one is a no-op and the returned mutation reports Applied() == false.
func Apply(s Set, m Mutation) (Set, Mutation) {
	m.applied = false
	m.index = -1

	switch m.Kind {
	case OpAdd:
		if s.Contains(m.Ref) {
			return s, m
		}
		next := append(s.Items(), m.Ref)
		m.applied = true
		m.index = len(next) - 1
		return Set{refs: next}, m
	case OpRemove:
		i := s.indexOf(m.Ref)
		if i < 0 {
			return s, m
		}
		next := make([]Reference, 0, len(s.refs)-1)
		next = append(next, s.refs[:i]...)
		next = append(next, s.refs[i+1:]...)
		m.applied = true
		m.index = i
		return Set{refs: next}, m
	}
	return s, m
}

// Compensate reverts an applied mutation, returning the set as it was before Apply.
func Compensate(s Set, m Mutation) Set {
	if !m.applied {
		return s
	}

	switch m.Kind {
	case OpAdd:
		i := s.indexOf(m.Ref)
		if i < 0 {
			return s
		}
		prior := make([]Reference, 0, len(s.refs)-1)
		prior = append(prior, s.refs[:i]...)
		prior = append(prior, s.refs[i+1:]...)
		return Set{refs: prior}
	case OpRemove:
		if s.Contains(m.Ref) {
			return s
		}
		i := m.index
		if i < 0 || i > len(s.refs) {
			i = len(s.refs)
		}
		prior := make([]Reference, 0, len(s.refs)+1)
		prior = append(prior, s.refs[:i]...)
		prior = append(prior, m.Ref)
		prior = append(prior, s.refs[i:]...)
		return Set{refs: prior}
	}
	return s
}
