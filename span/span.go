// Package span describes non-owning references into memory owned by the host application.
//
// A Span is a start address plus a byte length. Spans are collected from an entry tree once,
// when a log is built, and then read on every recorded row, so they must stay valid for the
// whole lifetime of the log that references them. Holding a Span keeps the referenced Go
// object reachable, but the bytes themselves are read without synchronization: the host is
// responsible for not mutating them concurrently with a recording.
//
// # Condensation
//
// Spans that share an owner and touch in address order (a.Start()+a.Len() == b.Start()) can
// be merged into one larger span. Condense performs that merge over an ordered list, which
// both reduces the number of copies per recorded row and defines the byte layout of a row.
//
// The owner of a span is the object it was built from: the pointer given to Of, the first
// element of the slice given to OfSlice, or the base given to At. Spans of different owners
// are never merged, even when their addresses touch: separate allocations must not be read
// as one. Members of one struct are therefore described relative to a common base:
//
//	var pose struct{ X, Y, Z float64 }
//	base := unsafe.Pointer(&pose)
//	spans := []span.Span{
//		span.At(base, unsafe.Offsetof(pose.X), 8),
//		span.At(base, unsafe.Offsetof(pose.Y), 8),
//		span.At(base, unsafe.Offsetof(pose.Z), 8),
//	}
//	condensed := span.Condense(spans) // one span of 24 bytes
package span

import (
	"fmt"
	"unsafe"
)

// Span is an address and a length referencing host-owned memory.
// The zero Span references nothing and is never produced by the constructors.
type Span struct {
	ptr   unsafe.Pointer
	n     int
	owner unsafe.Pointer
}

// Of returns the span covering the value pointed to by p.
// A nil pointer or a zero-sized type yields the zero Span.
func Of[T any](p *T) Span {
	if p == nil {
		return Span{}
	}

	n := int(unsafe.Sizeof(*p))
	if n == 0 {
		return Span{}
	}

	return Span{ptr: unsafe.Pointer(p), n: n, owner: unsafe.Pointer(p)}
}

// OfSlice returns the span covering the elements of s, from s[0] to s[len(s)-1].
// An empty slice or a zero-sized element type yields the zero Span.
func OfSlice[T any](s []T) Span {
	if len(s) == 0 {
		return Span{}
	}

	n := len(s) * int(unsafe.Sizeof(s[0]))
	if n == 0 {
		return Span{}
	}

	p := unsafe.Pointer(unsafe.SliceData(s))

	return Span{ptr: p, n: n, owner: p}
}

// FromBytes returns the span covering b.
func FromBytes(b []byte) Span {
	return OfSlice(b)
}

// At returns the span of n bytes starting offset bytes after base. The span is owned by
// base, so spans built from the same base can be condensed. The referenced bytes must lie
// within the object base points to.
func At(base unsafe.Pointer, offset uintptr, n int) Span {
	if base == nil || n <= 0 {
		return Span{}
	}

	return Span{ptr: unsafe.Add(base, offset), n: n, owner: base}
}

// Start returns the address of the first referenced byte.
func (s Span) Start() uintptr {
	return uintptr(s.ptr)
}

// End returns the address one past the last referenced byte.
func (s Span) End() uintptr {
	return uintptr(s.ptr) + uintptr(s.n)
}

// Len returns the number of referenced bytes.
func (s Span) Len() int {
	return s.n
}

// IsZero reports whether s references no memory.
func (s Span) IsZero() bool {
	return s.ptr == nil || s.n <= 0
}

// Bytes returns a live view of the referenced memory. Writes through the returned
// slice modify host memory.
func (s Span) Bytes() []byte {
	if s.IsZero() {
		return nil
	}

	return unsafe.Slice((*byte)(s.ptr), s.n)
}

// Adjacent reports whether next has the same owner as s and begins exactly where s ends.
func (s Span) Adjacent(next Span) bool {
	return !s.IsZero() && !next.IsZero() && s.owner == next.owner && s.End() == next.Start()
}

// SameOwner reports whether s and other were built from the same object.
func (s Span) SameOwner(other Span) bool {
	return s.owner != nil && s.owner == other.owner
}

func (s Span) String() string {
	return fmt.Sprintf("[0x%x, 0x%x) %d bytes", s.Start(), s.End(), s.n)
}

// Condense merges every span into its predecessor when the two are adjacent and returns
// the resulting, possibly shorter, list. The relative order of spans is preserved and the input
// is not modified. Condense(Condense(s)) equals Condense(s).
func Condense(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}

	result := make([]Span, 0, len(spans))
	cur := spans[0]
	for _, next := range spans[1:] {
		if cur.Adjacent(next) {
			cur.n += next.n
			continue
		}
		result = append(result, cur)
		cur = next
	}

	return append(result, cur)
}

// TotalLen returns the sum of the span lengths, which is the size of one recorded row.
func TotalLen(spans []Span) int {
	total := 0
	for _, s := range spans {
		total += s.n
	}

	return total
}

// Gather copies the referenced bytes of every span, in order, into dst and returns the
// number of bytes copied. Copying stops when dst is full.
func Gather(dst []byte, spans []Span) int {
	off := 0
	for _, s := range spans {
		if off >= len(dst) {
			break
		}
		off += copy(dst[off:], s.Bytes())
	}

	return off
}
