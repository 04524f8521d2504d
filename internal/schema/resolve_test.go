package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve_Nested(t *testing.T) {
	s := nestedFixture()
	path, ok := Resolve(s, []string{"b", "c"})
	if !ok {
		t.Fatal("resolve b.c failed")
	}
	if path.Len() != 2 {
		t.Fatalf("path length = %d, want 2", path.Len())
	}
	if path.Last().Tag != Float64 {
		t.Errorf("terminal tag = %s, want float64", path.Last().Tag)
	}

	// The resolved path must be the same position the traversal yields.
	c := Begin(s)
	c.Advance()
	c.Advance()
	if !c.Path().Equal(path) {
		t.Error("resolved path differs from the traversal's third yield")
	}
}

func TestResolve_RoundTrip(t *testing.T) {
	s := nestedFixture()
	for _, names := range [][]string{{"a"}, {"b"}, {"b", "c"}} {
		path, ok := Resolve(s, names)
		if !ok {
			t.Fatalf("resolve %v failed", names)
		}
		if diff := cmp.Diff(names, path.Names()); diff != "" {
			t.Errorf("round trip mismatch for %v (-want +got):\n%s", names, diff)
		}
	}
}

func TestResolve_Misses(t *testing.T) {
	s := nestedFixture()
	cases := []struct {
		name  string
		names []string
	}{
		{"unknown root member", []string{"z"}},
		{"unknown nested member", []string{"b", "z"}},
		{"descend through scalar", []string{"a", "c"}},
		{"descend past leaf", []string{"b", "c", "deeper"}},
		{"empty name list", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if path, ok := Resolve(s, tc.names); ok {
				t.Errorf("resolve %v = %v, want miss", tc.names, path.Names())
			}
		})
	}
}

// The final name may land on any tag; only intermediate names must be
// records.
func TestResolve_TerminalAnyTag(t *testing.T) {
	path, ok := Resolve(nestedFixture(), []string{"b"})
	if !ok {
		t.Fatal("resolve b failed")
	}
	if path.Last().Tag != Record {
		t.Errorf("terminal tag = %s, want record", path.Last().Tag)
	}
}

func TestPathEqual_PositionNotName(t *testing.T) {
	s := nestedFixture()
	other := nestedFixture()

	p1, _ := Resolve(s, []string{"b", "c"})
	p2, _ := Resolve(other, []string{"b", "c"})
	if p1.Equal(p2) {
		t.Error("paths into different arenas must not be equal, even with equal names")
	}

	p3, _ := Resolve(s, []string{"b", "c"})
	if !p1.Equal(p3) {
		t.Error("paths at the same positions in the same arena must be equal")
	}

	p4, _ := Resolve(s, []string{"a"})
	if p1.Equal(p4) {
		t.Error("distinct positions must not be equal")
	}
}
