package protoload

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/banshee-data/fieldscope/internal/schema"
)

// Native layout rules, C-style packing over the deserializer's flat buffer:
//
//   - bool and 8-bit integers take 1 byte, 16-bit 2, 32-bit and float32 4,
//     64-bit and float64 8; each aligned to its own size;
//   - strings and bytes occupy an opaque 16-byte header, 8-aligned;
//   - repeated fields occupy an opaque 24-byte vector header, 8-aligned;
//   - a nested message is laid out inline; its alignment is the maximum of
//     its members' and its size is rounded up to that alignment;
//   - fields are packed in declaration order, each aligned up from the end
//     of the previous one.
//
// Enums decode as int32. Map fields lay out like a repeated entry message.

type layoutBuilder struct {
	nodes []schema.Node

	// done maps a message full name to its finished node index; inFlight
	// marks names currently being laid out, which is how a self-referential
	// type is caught before it recurses forever.
	done     map[protoreflect.FullName]int
	inFlight map[protoreflect.FullName]bool
}

// buildSchema computes the schema arena for a message descriptor. Fails on
// cyclic message types: a self-referential message has no finite inline
// layout.
func buildSchema(md protoreflect.MessageDescriptor) (*schema.Schema, error) {
	b := &layoutBuilder{
		done:     make(map[protoreflect.FullName]int),
		inFlight: make(map[protoreflect.FullName]bool),
	}
	root, err := b.node(md)
	if err != nil {
		return nil, err
	}
	return &schema.Schema{Nodes: b.nodes, Root: root}, nil
}

func (b *layoutBuilder) node(md protoreflect.MessageDescriptor) (int, error) {
	name := md.FullName()
	if idx, ok := b.done[name]; ok {
		return idx, nil
	}
	if b.inFlight[name] {
		return 0, fmt.Errorf("cyclic message type %s has no inline layout", name)
	}
	b.inFlight[name] = true
	defer delete(b.inFlight, name)

	// Reserve the slot first so the node index is stable while nested
	// messages append theirs.
	idx := len(b.nodes)
	b.nodes = append(b.nodes, schema.Node{Name: string(name)})

	fields := md.Fields()
	members := make([]schema.Member, 0, fields.Len())
	var off, maxAlign uint32
	maxAlign = 1
	for i := 0; i < fields.Len(); i++ {
		m, size, align, err := b.member(fields.Get(i))
		if err != nil {
			return 0, err
		}
		off = alignUp(off, align)
		m.Offset = off
		off += size
		if align > maxAlign {
			maxAlign = align
		}
		members = append(members, m)
	}

	b.nodes[idx] = schema.Node{
		Name:    string(name),
		Members: members,
		Size:    alignUp(off, maxAlign),
		Align:   maxAlign,
	}
	b.done[name] = idx
	return idx, nil
}

// member computes the descriptor, size and alignment for one field.
func (b *layoutBuilder) member(fd protoreflect.FieldDescriptor) (schema.Member, uint32, uint32, error) {
	m := schema.Member{Name: string(fd.Name()), Record: -1}

	if fd.IsList() || fd.IsMap() {
		m.Tag = schema.Array
		m.Arr = schema.ArrayInfo{Elem: scalarTag(fd.Kind()), ElemRecord: -1}
		if fd.IsMap() || fd.Kind() == protoreflect.MessageKind || fd.Kind() == protoreflect.GroupKind {
			elem := fd.Message()
			nested, err := b.node(elem)
			if err != nil {
				return m, 0, 0, err
			}
			m.Arr.Elem = schema.Record
			m.Arr.ElemRecord = nested
		}
		return m, schema.VectorHeaderSize, 8, nil
	}

	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		nested, err := b.node(fd.Message())
		if err != nil {
			return m, 0, 0, err
		}
		m.Tag = schema.Record
		m.Record = nested
		n := &b.nodes[nested]
		return m, n.Size, n.Align, nil
	case protoreflect.StringKind, protoreflect.BytesKind:
		m.Tag = schema.String
		return m, schema.StringHeaderSize, 8, nil
	default:
		m.Tag = scalarTag(fd.Kind())
		if m.Tag == schema.Invalid {
			return m, 0, 0, fmt.Errorf("field %s has unsupported kind %s", fd.FullName(), fd.Kind())
		}
		size := m.Tag.Size()
		return m, size, size, nil
	}
}

func scalarTag(k protoreflect.Kind) schema.TypeTag {
	switch k {
	case protoreflect.BoolKind:
		return schema.Bool
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind, protoreflect.EnumKind:
		return schema.Int32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return schema.Int64
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return schema.Uint32
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return schema.Uint64
	case protoreflect.FloatKind:
		return schema.Float32
	case protoreflect.DoubleKind:
		return schema.Float64
	case protoreflect.StringKind, protoreflect.BytesKind:
		return schema.String
	}
	return schema.Invalid
}

func alignUp(off, align uint32) uint32 {
	if align <= 1 {
		return off
	}
	return (off + align - 1) &^ (align - 1)
}
