// Package sample stores time-ordered (timestamp, value) observations of
// tracked fields. Buffers grow rather than overwrite: a freshly pushed
// sample is never silently discarded, stale samples go only on an explicit
// trim. The trade is unbounded memory on long sessions with high-rate
// sources, which callers bound by trimming against their display window.
package sample

import "sync"

// DefaultCapacity is the initial buffer capacity used when a caller passes
// a non-positive one.
const DefaultCapacity = 512

// Sample is a single observation: timestamp in seconds, value as widened
// by the extractor.
type Sample struct {
	Time  float64
	Value float64
}

// Buffer is a growable circular store of samples in arrival order. One
// producer pushes, one reader takes snapshots or views; the buffer's own
// mutex serialises them.
type Buffer struct {
	mu   sync.Mutex
	data []Sample
	head int // index of oldest sample
	size int
}

// NewBuffer returns an empty buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{data: make([]Sample, capacity)}
}

// Push appends a sample. A full buffer doubles its capacity in place
// first; samples are never dropped to make room.
func (b *Buffer) Push(t, v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == len(b.data) {
		b.grow()
	}
	b.data[(b.head+b.size)%len(b.data)] = Sample{Time: t, Value: v}
	b.size++
}

// grow doubles capacity and linearises the ring. Caller holds b.mu.
func (b *Buffer) grow() {
	bigger := make([]Sample, 2*len(b.data))
	for i := 0; i < b.size; i++ {
		bigger[i] = b.data[(b.head+i)%len(b.data)]
	}
	b.data = bigger
	b.head = 0
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Empty reports whether the buffer holds no samples.
func (b *Buffer) Empty() bool {
	return b.Len() == 0
}

// TrimBefore removes the contiguous prefix of samples older than cutoff
// and returns how many went. Later samples keep their relative order.
// Only the oldest end is ever trimmed, matching ordered arrival.
func (b *Buffer) TrimBefore(cutoff float64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for b.size > 0 && b.data[b.head].Time < cutoff {
		b.head = (b.head + 1) % len(b.data)
		b.size--
		removed++
	}
	return removed
}

// Clear empties the buffer, keeping its capacity.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.size = 0
}

// Snapshot copies the current contents oldest-first.
func (b *Buffer) Snapshot() []Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Sample, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.data[(b.head+i)%len(b.data)]
	}
	return out
}

// View returns a read-only view over the buffer's contents, stable for as
// long as it is held: the buffer's mutex stays locked until Close. Pushes
// block while a view is open, so hold it only as long as a render pass
// needs.
func (b *Buffer) View() *View {
	b.mu.Lock()
	return &View{buf: b}
}

// View is a locked, immutable window onto a buffer. Must be Closed.
type View struct {
	buf    *Buffer
	closed bool
}

// Len returns the number of samples in the view.
func (v *View) Len() int { return v.buf.size }

// At returns the i-th sample, oldest first.
func (v *View) At(i int) Sample {
	b := v.buf
	return b.data[(b.head+i)%len(b.data)]
}

// Close releases the view's lock on the buffer. Safe to call once.
func (v *View) Close() {
	if !v.closed {
		v.closed = true
		v.buf.mu.Unlock()
	}
}
