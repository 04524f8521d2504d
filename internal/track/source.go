// Package track aggregates extracted samples per data source. A Source owns
// one sample buffer per tracked member path; an external delivery context
// feeds raw message buffers into OnMessage while a reader context takes
// buffer views, and the two never share more than brief lock windows.
//
// Lock order is always the source's field-list lock first, then a buffer's
// own lock, never the reverse. Readers take only buffer locks.
package track

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/banshee-data/fieldscope/internal/extract"
	"github.com/banshee-data/fieldscope/internal/monitoring"
	"github.com/banshee-data/fieldscope/internal/sample"
	"github.com/banshee-data/fieldscope/internal/schema"
	"github.com/banshee-data/fieldscope/internal/timeutil"
)

// TypeHandle is the slice of a loaded type handle the tracker needs: the
// schema to resolve against and the message's own timestamp, when its
// layout carries one. protoload.Handle satisfies it.
type TypeHandle interface {
	Schema() *schema.Schema
	Stamp(buf []byte) (float64, bool)
}

// ErrDuplicateField rejects tracking the same member path twice on one
// source.
var ErrDuplicateField = errors.New("track: field already tracked")

// Options tune a Source. The zero value is usable.
type Options struct {
	// Clock supplies arrival times; defaults to the real clock.
	Clock timeutil.Clock

	// BufferCapacity is the initial capacity of each field's sample
	// buffer. Buffers double when full and never drop fresh samples, so
	// this only sets the growth starting point.
	BufferCapacity int
}

// Field is one tracked scalar signal: a resolved member path, its canonical
// source id and the buffer its samples land in.
type Field struct {
	Path schema.MemberPath
	ID   string
	Data *sample.Buffer
}

// Source tracks fields for one (topic, message type) pair.
type Source struct {
	topic  string
	handle TypeHandle
	clock  timeutil.Clock
	cap    int

	// mu guards the field list and arrival bookkeeping; each buffer
	// carries its own lock for its contents.
	mu     sync.Mutex
	fields []*Field

	lastArrival time.Time
	periodStats sample.MovingStats
}

// NewSource builds a source over a loaded type handle. The source shares
// the handle; the caller keeps its own reference for the handle's lifetime.
func NewSource(topic string, handle TypeHandle, opts Options) *Source {
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Source{
		topic:  topic,
		handle: handle,
		clock:  clock,
		cap:    opts.BufferCapacity,
	}
}

// Topic returns the source's topic name.
func (s *Source) Topic() string { return s.topic }

// Handle returns the shared type handle.
func (s *Source) Handle() TypeHandle { return s.handle }

// ResolveField resolves a field-name path against the source's schema.
// False means the field does not exist in this message definition, a
// normal outcome for stale configuration.
func (s *Source) ResolveField(names []string) (schema.MemberPath, bool) {
	return schema.Resolve(s.handle.Schema(), names)
}

// AddField starts tracking a member path. The terminal member must be
// numeric; tracking the same path twice is refused.
func (s *Source) AddField(path schema.MemberPath) (*Field, error) {
	if !extract.IsNumeric(path.Last().Tag) {
		return nil, fmt.Errorf("track: field %s is %s: %w",
			schema.FormatPath(path), path.Last().Tag, extract.ErrUnsupportedType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.Path.Equal(path) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, schema.FormatPath(path))
		}
	}
	f := &Field{
		Path: path,
		ID:   schema.SourceIDForPath(s.topic, path),
		Data: sample.NewBuffer(s.cap),
	}
	s.fields = append(s.fields, f)
	return f, nil
}

// RemoveField stops tracking a path and reports whether it was tracked.
// The field's buffer goes with it.
func (s *Source) RemoveField(path schema.MemberPath) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.fields {
		if f.Path.Equal(path) {
			s.fields = append(s.fields[:i], s.fields[i+1:]...)
			return true
		}
	}
	return false
}

// Field returns the tracked field for a path, if any.
func (s *Source) Field(path schema.MemberPath) (*Field, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		if f.Path.Equal(path) {
			return f, true
		}
	}
	return nil, false
}

// FieldByNames is Field after resolving names against the schema.
func (s *Source) FieldByNames(names []string) (*Field, bool) {
	path, ok := s.ResolveField(names)
	if !ok {
		return nil, false
	}
	return s.Field(path)
}

// Fields returns a snapshot of the tracked field list.
func (s *Source) Fields() []*Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// OnMessage ingests one raw message buffer: stamps it from the message's
// own header field when the schema has one, else from the clock, then
// extracts and pushes every tracked field. One field failing to extract
// never stops the others; failures are logged and skipped.
func (s *Source) OnMessage(raw []byte) {
	arrival := s.clock.Now()
	stamp, ok := s.handle.Stamp(raw)
	if !ok {
		stamp = float64(arrival.UnixNano()) / 1e9
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.lastArrival.IsZero() {
		s.periodStats.Add(arrival.Sub(s.lastArrival).Seconds())
	}
	s.lastArrival = arrival
	for _, f := range s.fields {
		v, err := extract.Value(raw, f.Path)
		if err != nil {
			monitoring.Logf("track: %s: %v", f.ID, err)
			continue
		}
		f.Data.Push(stamp, v)
	}
}

// ClearAll empties every tracked field's buffer, the user-initiated reset.
func (s *Source) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		f.Data.Clear()
	}
}

// TrimBefore drops samples older than cutoff from every tracked buffer and
// returns the total removed.
func (s *Source) TrimBefore(cutoff float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, f := range s.fields {
		removed += f.Data.TrimBefore(cutoff)
	}
	return removed
}

// PeriodStats returns a snapshot of the inter-arrival statistics.
func (s *Source) PeriodStats() sample.Stats {
	return s.periodStats.Snapshot()
}
