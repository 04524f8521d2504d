package schema

// Step addresses one member by position: arena node index plus member index
// within that node. Paths compare by position, not by name, since names can
// collide across unrelated records.
type Step struct {
	Node  int
	Index int
}

// MemberPath is the chain of members identifying one field from the schema
// root down to a leaf or composite. A valid path is never empty, and every
// step except the first belongs to the record referenced by the step above
// it. Paths must not outlive the handle their schema came from.
type MemberPath struct {
	schema *Schema
	steps  []Step
}

// NewPath builds a path over s from explicit steps. The steps are copied.
// Intended for construction by the resolver and traversal cursor; callers
// assembling steps by hand are responsible for their validity.
func NewPath(s *Schema, steps []Step) MemberPath {
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return MemberPath{schema: s, steps: cp}
}

// Schema returns the arena this path points into.
func (p MemberPath) Schema() *Schema { return p.schema }

// Len returns the number of steps. Zero only for the zero value.
func (p MemberPath) Len() int { return len(p.steps) }

// IsZero reports whether p is the zero path (no steps).
func (p MemberPath) IsZero() bool { return len(p.steps) == 0 }

// Member returns the descriptor at step i.
func (p MemberPath) Member(i int) *Member {
	st := p.steps[i]
	return &p.schema.Nodes[st.Node].Members[st.Index]
}

// Last returns the terminal descriptor, the field the path identifies.
func (p MemberPath) Last() *Member {
	return p.Member(len(p.steps) - 1)
}

// Names returns the member names along the path, suitable for resolving
// back to an equal path against the same schema.
func (p MemberPath) Names() []string {
	names := make([]string, len(p.steps))
	for i := range p.steps {
		names[i] = p.Member(i).Name
	}
	return names
}

// Equal reports whether two paths address the same field positions in the
// same schema arena.
func (p MemberPath) Equal(q MemberPath) bool {
	if p.schema != q.schema || len(p.steps) != len(q.steps) {
		return false
	}
	for i := range p.steps {
		if p.steps[i] != q.steps[i] {
			return false
		}
	}
	return true
}

func (p MemberPath) String() string {
	return FormatPath(p)
}
