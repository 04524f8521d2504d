package protoload

import (
	"github.com/banshee-data/fieldscope/internal/extract"
	"github.com/banshee-data/fieldscope/internal/schema"
)

// Messages carrying their own acquisition time do so by convention: either
// a top-level numeric "stamp"/"timestamp" holding seconds, or a top-level
// "header" record with a "stamp" record of integer "sec"/"nanosec" parts.
// Absence of both is normal, not an error; the tracker falls back to the
// wall clock on arrival.

type stampLayout struct {
	ok     bool
	offset uint32 // byte offset of the stamp field from the buffer base

	// Either single is set, or sec and nsec both are.
	single schema.MemberPath
	sec    schema.MemberPath
	nsec   schema.MemberPath
}

func findHeaderStamp(s *schema.Schema) stampLayout {
	for _, name := range []string{"timestamp", "stamp"} {
		if p, ok := schema.Resolve(s, []string{name}); ok && p.Last().Tag.Numeric() {
			return stampLayout{ok: true, offset: p.Last().Offset, single: p}
		}
	}
	sec, okSec := schema.Resolve(s, []string{"header", "stamp", "sec"})
	nsec, okNsec := schema.Resolve(s, []string{"header", "stamp", "nanosec"})
	if okSec && okNsec && sec.Last().Tag.Numeric() && nsec.Last().Tag.Numeric() {
		off := sec.Member(0).Offset + sec.Member(1).Offset
		return stampLayout{ok: true, offset: off, sec: sec, nsec: nsec}
	}
	return stampLayout{}
}

// HeaderOffset returns the byte offset of the conventional timestamp field
// at the schema's top level, if it has one.
func (h *Handle) HeaderOffset() (uint32, bool) {
	return h.stamp.offset, h.stamp.ok
}

// Stamp extracts the message's own timestamp in seconds from a raw buffer.
// Returns false when the schema carries no timestamp convention or the
// buffer is too short for it.
func (h *Handle) Stamp(buf []byte) (float64, bool) {
	if !h.stamp.ok {
		return 0, false
	}
	if !h.stamp.single.IsZero() {
		v, err := extract.Value(buf, h.stamp.single)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	sec, err := extract.Value(buf, h.stamp.sec)
	if err != nil {
		return 0, false
	}
	nsec, err := extract.Value(buf, h.stamp.nsec)
	if err != nil {
		return 0, false
	}
	return sec + nsec*1e-9, true
}
