// Package protoload resolves message type names to native field layouts at
// runtime. Type descriptors come from protobuf descriptor sets registered
// with a Registry; the layout builder turns a message descriptor into a
// schema arena with byte offsets the extractor can walk.
//
// This is the dynamic-loading seam of the engine: the process never needs
// generated code for the message types it inspects, only a descriptor set
// produced alongside them (protoc --descriptor_set_out).
package protoload

import (
	"fmt"
	"os"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/banshee-data/fieldscope/internal/monitoring"
	"github.com/banshee-data/fieldscope/internal/schema"
)

// LoadError reports a type name that could not be resolved to a usable
// layout: unknown type, missing descriptor set, or an unbuildable schema.
type LoadError struct {
	TypeName string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("protoload: loading %q: %v", e.TypeName, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Registry resolves fully-qualified message type names against registered
// descriptor sets and caches one shared, reference-counted Handle per type.
type Registry struct {
	mu      sync.Mutex
	files   *protoregistry.Files
	handles map[string]*Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		files:   new(protoregistry.Files),
		handles: make(map[string]*Handle),
	}
}

// AddDescriptorSet registers every file in a descriptor set. Dependencies
// must resolve within the set itself or against files already registered
// globally.
func (r *Registry) AddDescriptorSet(fds *descriptorpb.FileDescriptorSet) error {
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return fmt.Errorf("protoload: parsing descriptor set: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var regErr error
	files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		if err := r.files.RegisterFile(fd); err != nil {
			regErr = fmt.Errorf("protoload: registering %s: %w", fd.Path(), err)
			return false
		}
		return true
	})
	return regErr
}

// AddDescriptorFile reads a serialized FileDescriptorSet from disk and
// registers it.
func (r *Registry) AddDescriptorFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("protoload: reading descriptor file: %w", err)
	}
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(raw, fds); err != nil {
		return fmt.Errorf("protoload: unmarshaling %s: %w", path, err)
	}
	return r.AddDescriptorSet(fds)
}

// Load resolves typeName to a Handle, computing the native layout on first
// use and sharing the cached handle afterwards. The caller owns one
// reference and gives it back with Release.
func (r *Registry) Load(typeName string) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[typeName]; ok {
		h.refs++
		return h, nil
	}
	desc, err := r.files.FindDescriptorByName(protoreflect.FullName(typeName))
	if err != nil {
		return nil, &LoadError{TypeName: typeName, Err: err}
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, &LoadError{TypeName: typeName, Err: fmt.Errorf("descriptor is a %T, not a message", desc)}
	}
	sch, err := buildSchema(md)
	if err != nil {
		return nil, &LoadError{TypeName: typeName, Err: err}
	}
	h := &Handle{
		registry: r,
		typeName: typeName,
		schema:   sch,
		stamp:    findHeaderStamp(sch),
		refs:     1,
	}
	monitoring.Debugf("protoload: built layout for %s (%d nodes, size %d)",
		typeName, len(sch.Nodes), sch.Nodes[sch.Root].Size)
	r.handles[typeName] = h
	return h, nil
}

// release drops one reference and evicts the cached handle at zero.
func (r *Registry) release(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.refs > 0 {
		h.refs--
	}
	if h.refs == 0 {
		delete(r.handles, h.typeName)
	}
}

// Handle is a shared reference to one loaded type layout. Immutable after
// construction; member paths derived from it must not outlive it.
type Handle struct {
	registry *Registry
	typeName string
	schema   *schema.Schema
	stamp    stampLayout
	refs     int // guarded by registry.mu
}

// TypeName returns the fully-qualified message type name.
func (h *Handle) TypeName() string { return h.typeName }

// Schema returns the arena of the loaded layout.
func (h *Handle) Schema() *schema.Schema { return h.schema }

// RootMembers returns the top-level member list.
func (h *Handle) RootMembers() []schema.Member { return h.schema.RootMembers() }

// Retain takes an extra reference for a second owner.
func (h *Handle) Retain() *Handle {
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	h.refs++
	return h
}

// Release gives a reference back. The registry drops its cache entry when
// the last one goes.
func (h *Handle) Release() {
	h.registry.release(h)
}
