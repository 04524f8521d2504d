package main

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/fieldscope/internal/schema"
	"github.com/banshee-data/fieldscope/internal/testutil"
	"github.com/banshee-data/fieldscope/internal/track"
)

type staticHandle struct{ s *schema.Schema }

func (h *staticHandle) Schema() *schema.Schema       { return h.s }
func (h *staticHandle) Stamp([]byte) (float64, bool) { return 0, false }

func frameRecords(payloads ...[]byte) []byte {
	var buf bytes.Buffer
	var lenBuf [4]byte
	for _, p := range payloads {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(p)))
		buf.Write(lenBuf[:])
		buf.Write(p)
	}
	return buf.Bytes()
}

func newReplaySource(t *testing.T) (*track.Source, *track.Field) {
	t.Helper()
	src := track.NewSource("/replay", &staticHandle{s: testutil.NestedSchema()}, track.Options{})
	path, ok := src.ResolveField([]string{"b", "c"})
	if !ok {
		t.Fatal("resolve failed")
	}
	f, err := src.AddField(path)
	if err != nil {
		t.Fatalf("AddField: %v", err)
	}
	return src, f
}

func TestReplayRecords(t *testing.T) {
	src, f := newReplaySource(t)
	framed := frameRecords(
		testutil.NestedBuffer(1, 0.5),
		testutil.NestedBuffer(2, 1.5),
		testutil.NestedBuffer(3, 2.5),
	)

	n, err := replayRecords(bytes.NewReader(framed), src)
	if err != nil {
		t.Fatalf("replayRecords: %v", err)
	}
	if n != 3 {
		t.Errorf("records = %d, want 3", n)
	}
	got := f.Data.Snapshot()
	if len(got) != 3 {
		t.Fatalf("samples = %d, want 3", len(got))
	}
	want := []float64{0.5, 1.5, 2.5}
	for i, s := range got {
		if s.Value != want[i] {
			t.Errorf("sample %d value = %v, want %v", i, s.Value, want[i])
		}
	}
}

func TestReplayRecords_TruncatedPayload(t *testing.T) {
	src, _ := newReplaySource(t)
	framed := frameRecords(testutil.NestedBuffer(1, 0.5))
	framed = framed[:len(framed)-4] // cut the last payload short

	n, err := replayRecords(bytes.NewReader(framed), src)
	if err == nil {
		t.Fatal("expected error for truncated payload")
	}
	if n != 0 {
		t.Errorf("records = %d, want 0", n)
	}
}

func TestReplayRecords_Empty(t *testing.T) {
	src, _ := newReplaySource(t)
	n, err := replayRecords(bytes.NewReader(nil), src)
	if err != nil {
		t.Fatalf("replayRecords: %v", err)
	}
	if n != 0 {
		t.Errorf("records = %d, want 0", n)
	}
}

func TestExportCSV(t *testing.T) {
	src, f := newReplaySource(t)
	src.OnMessage(testutil.NestedBuffer(1, 10))
	src.OnMessage(testutil.NestedBuffer(2, 20))

	dir := t.TempDir()
	if err := exportCSV(src, dir); err != nil {
		t.Fatalf("exportCSV: %v", err)
	}

	file := filepath.Join(dir, "_replay_b_c.csv")
	raw, err := os.Open(file)
	if err != nil {
		t.Fatalf("expected csv for %s: %v", f.ID, err)
	}
	defer raw.Close()
	rows, err := csv.NewReader(raw).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "t" || rows[0][1] != "value" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "10" || rows[2][1] != "20" {
		t.Errorf("values = %q, %q; want 10, 20", rows[1][1], rows[2][1])
	}
}
