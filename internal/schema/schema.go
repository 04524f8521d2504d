// Package schema models the runtime-discovered field layout of a message
// type: names, type tags, byte offsets and nesting. A schema is an arena of
// record nodes addressed by index; nested-record members hold a node index
// rather than a pointer, so ownership and lifetime stay with the arena no
// matter where the descriptors came from.
package schema

// TypeTag identifies the wire representation of one member.
type TypeTag uint8

const (
	Invalid TypeTag = iota
	Bool
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	String
	Record
	Array
)

// typeNames is indexed by TypeTag.
var typeNames = [...]string{
	"invalid", "bool",
	"int8", "int16", "int32", "int64",
	"uint8", "uint16", "uint32", "uint64",
	"float32", "float64",
	"string", "record", "array",
}

func (t TypeTag) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// Numeric reports whether a member with this tag can be widened to a
// float64 by the extractor. Strings, records and arrays are not numeric.
func (t TypeTag) Numeric() bool {
	switch t {
	case Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64, Float32, Float64:
		return true
	}
	return false
}

// Size returns the number of bytes a scalar of this tag occupies in the
// native layout. Strings occupy an opaque fixed-size header. Record and
// Array sizes depend on their contents and are not answered here (0).
func (t TypeTag) Size() uint32 {
	switch t {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	case String:
		return StringHeaderSize
	}
	return 0
}

// Opaque header sizes in the native layout. A string is a pointer-and-length
// header; a variable-length array is a pointer, length and capacity.
const (
	StringHeaderSize = 16
	VectorHeaderSize = 24
)

// ArrayInfo describes the element type of an Array member.
type ArrayInfo struct {
	// Elem is the element type tag. Record elements reference a node
	// through ElemRecord.
	Elem TypeTag

	// ElemRecord is the arena index of the element record when Elem is
	// Record, -1 otherwise.
	ElemRecord int

	// Fixed marks a fixed-length array laid out inline. Variable-length
	// arrays occupy an opaque vector header instead.
	Fixed bool

	// Len is the element count for fixed-length arrays.
	Len uint32
}

// Member is one field's metadata within a record node.
type Member struct {
	Name string
	Tag  TypeTag

	// Offset is the byte offset of this member within its enclosing record.
	Offset uint32

	// Record is the arena index of the nested record when Tag is Record,
	// -1 otherwise.
	Record int

	// Arr describes the element type when Tag is Array.
	Arr ArrayInfo
}

// Node is one record level in the arena: a named list of members with a
// computed native size and alignment.
type Node struct {
	Name    string
	Members []Member
	Size    uint32
	Align   uint32
}

// Schema is the arena of record nodes for one message type. Nodes[Root] is
// the top-level record. Schemas are immutable after construction and shared
// by every path derived from them.
type Schema struct {
	Nodes []Node
	Root  int
}

// RootMembers returns the top-level member list.
func (s *Schema) RootMembers() []Member {
	return s.Nodes[s.Root].Members
}

// MemberCount counts members across every nesting level reachable from the
// root, the number of paths a full traversal yields. Assumes an acyclic
// arena, like everything else here.
func (s *Schema) MemberCount() int {
	n := 0
	for c := Begin(s); !c.Done(); c.Advance() {
		n++
	}
	return n
}
