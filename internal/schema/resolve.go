package schema

// Resolve walks names from the schema root and returns the member path they
// identify. Every name but the last must land on a nested-record member to
// descend through; the last may be of any tag.
//
// A miss returns (zero, false) rather than an error: configured fields that
// no longer exist in a newer message definition are routine, not failures.
func Resolve(s *Schema, names []string) (MemberPath, bool) {
	if len(names) == 0 {
		return MemberPath{}, false
	}
	steps := make([]Step, 0, len(names))
	node := s.Root
	for i, name := range names {
		idx := memberIndex(&s.Nodes[node], name)
		if idx < 0 {
			return MemberPath{}, false
		}
		steps = append(steps, Step{Node: node, Index: idx})
		if i == len(names)-1 {
			break
		}
		m := &s.Nodes[node].Members[idx]
		if m.Tag != Record {
			// cannot descend into a non-composite
			return MemberPath{}, false
		}
		node = m.Record
	}
	return MemberPath{schema: s, steps: steps}, true
}

func memberIndex(n *Node, name string) int {
	for i := range n.Members {
		if n.Members[i].Name == name {
			return i
		}
	}
	return -1
}
