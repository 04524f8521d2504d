// Package testutil provides schema and payload fixtures shared across test
// packages: small hand-built descriptor arenas with known member offsets and
// byte buffers encoded to match them.
package testutil

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/banshee-data/fieldscope/internal/schema"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// FlatSchema builds a single-level schema from members, for tests that do
// not care about nesting.
func FlatSchema(members ...schema.Member) *schema.Schema {
	return &schema.Schema{
		Nodes: []schema.Node{{Name: "test.Flat", Members: members}},
	}
}

// NestedSchema builds the two-level fixture used across the engine's tests:
//
//	a int32   @0
//	b record  @4 { c float64 @0 }
func NestedSchema() *schema.Schema {
	return &schema.Schema{
		Root: 0,
		Nodes: []schema.Node{
			{
				Name: "test.Outer",
				Members: []schema.Member{
					{Name: "a", Tag: schema.Int32, Offset: 0, Record: -1},
					{Name: "b", Tag: schema.Record, Offset: 4, Record: 1},
				},
				Size: 12, Align: 8,
			},
			{
				Name: "test.Inner",
				Members: []schema.Member{
					{Name: "c", Tag: schema.Float64, Offset: 0, Record: -1},
				},
				Size: 8, Align: 8,
			},
		},
	}
}

// NestedBuffer lays out a raw message for NestedSchema with the given
// field values.
func NestedBuffer(a int32, c float64) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(a))
	binary.LittleEndian.PutUint64(buf[4:12], math.Float64bits(c))
	return buf
}
