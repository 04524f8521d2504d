// Package extract reinterprets raw message bytes as numeric values. Given a
// buffer laid out per a schema and a resolved member path, it computes the
// field's address by summing record offsets and widens whatever scalar sits
// there to a float64.
package extract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/fieldscope/internal/schema"
)

var (
	// ErrUnsupportedType marks a terminal path member that is not a
	// numeric scalar (string, record, array).
	ErrUnsupportedType = errors.New("extract: terminal member is not numeric")

	// ErrUnsupportedPath marks an intermediate path member that is not a
	// plain nested record, e.g. a path through an array of records.
	ErrUnsupportedPath = errors.New("extract: intermediate member is not a plain record")

	// ErrShortBuffer marks a buffer too small for the computed address.
	ErrShortBuffer = errors.New("extract: buffer too short for field offset")
)

// IsNumeric reports whether a member with this tag can be extracted.
// Callers use it to filter candidate fields before offering them for
// tracking.
func IsNumeric(t schema.TypeTag) bool { return t.Numeric() }

// Value extracts the field identified by path from buf, widened to float64.
//
// Booleans map to 0 and 1. Integers widen exactly within float64's 53-bit
// mantissa; beyond that precision loss is accepted. Buffers are assumed
// little-endian, matching the native layouts the schema loader computes.
func Value(buf []byte, path schema.MemberPath) (float64, error) {
	if path.IsZero() {
		return 0, fmt.Errorf("extract: empty member path")
	}
	base := uint32(0)
	for i := 0; i < path.Len()-1; i++ {
		m := path.Member(i)
		if m.Tag != schema.Record {
			return 0, fmt.Errorf("%w: %q is %s", ErrUnsupportedPath, m.Name, m.Tag)
		}
		base += m.Offset
	}
	term := path.Last()
	if !term.Tag.Numeric() {
		return 0, fmt.Errorf("%w: %q is %s", ErrUnsupportedType, term.Name, term.Tag)
	}
	addr := base + term.Offset
	size := term.Tag.Size()
	if uint32(len(buf)) < addr+size {
		return 0, fmt.Errorf("%w: need %d bytes for %q, have %d",
			ErrShortBuffer, addr+size, term.Name, len(buf))
	}
	return decode(buf[addr:addr+size], term.Tag), nil
}

func decode(b []byte, tag schema.TypeTag) float64 {
	switch tag {
	case schema.Bool:
		if b[0] != 0 {
			return 1
		}
		return 0
	case schema.Int8:
		return float64(int8(b[0]))
	case schema.Uint8:
		return float64(b[0])
	case schema.Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case schema.Uint16:
		return float64(binary.LittleEndian.Uint16(b))
	case schema.Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case schema.Uint32:
		return float64(binary.LittleEndian.Uint32(b))
	case schema.Int64:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case schema.Uint64:
		return float64(binary.LittleEndian.Uint64(b))
	case schema.Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case schema.Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}
