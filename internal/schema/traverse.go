package schema

// Cursor walks a schema depth-first, pre-order, yielding every member path
// exactly once. A composite member is yielded as a step in its own right,
// immediately followed by its first child.
//
// Depth lives on a heap-allocated frame stack, not the call stack, so
// arbitrarily deep nesting cannot overflow. The frame stack doubles as the
// current path: frame i holds the (node, index) pair of path step i.
//
// Cursors over a cyclic arena never terminate; acyclic schemas are a
// precondition, not a defended invariant.
type Cursor struct {
	schema *Schema
	frames []Step
}

// Begin returns a cursor positioned on the first root member. A schema with
// an empty root yields an already-exhausted cursor. Independent cursors
// share no mutable state, so a walk is restartable by calling Begin again.
func Begin(s *Schema) *Cursor {
	c := &Cursor{schema: s}
	if len(s.Nodes[s.Root].Members) > 0 {
		c.frames = append(c.frames, Step{Node: s.Root, Index: 0})
	}
	return c
}

// Done reports whether the cursor is exhausted.
func (c *Cursor) Done() bool { return len(c.frames) == 0 }

// Path returns the member path at the current position. The returned path
// is a copy and stays valid as the cursor moves on.
func (c *Cursor) Path() MemberPath {
	return NewPath(c.schema, c.frames)
}

// Member returns the descriptor at the current position.
func (c *Cursor) Member() *Member {
	st := c.frames[len(c.frames)-1]
	return &c.schema.Nodes[st.Node].Members[st.Index]
}

// Advance moves the cursor one step in pre-order and reports whether a
// position remains. Given the current member d:
//
//   - descend: d is a nested record with members, so push a frame for its
//     first child;
//   - sibling: d has a next sibling, so bump the top frame's index;
//   - backtrack: pop exhausted frames until an ancestor has a sibling left,
//     or the stack empties and the cursor is exhausted.
func (c *Cursor) Advance() bool {
	if len(c.frames) == 0 {
		return false
	}
	if m := c.Member(); m.Tag == Record {
		if nested := &c.schema.Nodes[m.Record]; len(nested.Members) > 0 {
			c.frames = append(c.frames, Step{Node: m.Record, Index: 0})
			return true
		}
	}
	for len(c.frames) > 0 {
		top := &c.frames[len(c.frames)-1]
		if top.Index+1 < len(c.schema.Nodes[top.Node].Members) {
			top.Index++
			return true
		}
		c.frames = c.frames[:len(c.frames)-1]
	}
	return false
}

// Equal reports whether two cursors are at the same traversal state:
// identical stack depth and identical (node, index) pair at every level.
// All exhausted cursors over the same schema compare equal, which is how
// the end state is distinguished from any live state.
func (c *Cursor) Equal(other *Cursor) bool {
	if c.schema != other.schema || len(c.frames) != len(other.frames) {
		return false
	}
	for i := range c.frames {
		if c.frames[i] != other.frames[i] {
			return false
		}
	}
	return true
}
